package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/rs/zerolog"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/internal/mcpserver"
)

// Log output formats
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	LogFormatText    = "text"
)

// Env holds the CLI settings read from OASGUARD_* environment variables.
// Flags override them.
type Env struct {
	LogLevel  string `env:"OASGUARD_LOG_LEVEL,default=warn"`
	LogFormat string `env:"OASGUARD_LOG_FORMAT,default=console"`
	// Watch reloads the mcp command's default contract when its file changes.
	Watch bool `env:"OASGUARD_WATCH,default=false"`

	mcpserver.Config
}

// LoadEnv reads the environment over the defaults.
func LoadEnv() (Env, error) {
	env := Env{LogLevel: "warn", LogFormat: LogFormatConsole, Config: mcpserver.DefaultConfig()}
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Env{}, fmt.Errorf("commands: reading environment: %w", err)
	}
	return env, nil
}

// NewLogger creates the logger for format and level writing to w.
// console is a zerolog console writer, json and text are slog handlers.
func NewLogger(w io.Writer, format, level string) (contract.Logger, error) {
	switch strings.ToLower(format) {
	case LogFormatConsole, "":
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(lvl).With().Timestamp().Logger()
		return contract.NewZerologAdapter(zl), nil
	case LogFormatJSON, LogFormatText:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		opts := &slog.HandlerOptions{Level: lvl}
		var h slog.Handler = slog.NewTextHandler(w, opts)
		if strings.EqualFold(format, LogFormatJSON) {
			h = slog.NewJSONHandler(w, opts)
		}
		return contract.NewSlogAdapter(slog.New(h)), nil
	default:
		return nil, fmt.Errorf("invalid log format '%s'. Valid formats: %s, %s, %s", format, LogFormatConsole, LogFormatJSON, LogFormatText)
	}
}
