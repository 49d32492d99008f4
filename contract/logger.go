package contract

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"
)

// Logger is the interface that oasguard uses for structured logging.
//
// The interface is designed to be minimal yet compatible with popular logging
// libraries including log/slog and zerolog. It uses variadic key-value
// pairs for structured attributes, following the same convention as log/slog.
//
// Implementations should treat attrs as alternating key-value pairs:
//
//	logger.Debug("parameter rejected", "operation", "showPetById", "parameter", "petId")
//
// # Usage with log/slog
//
// Use [NewSlogAdapter] to wrap a standard library slog.Logger:
//
//	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
//	c, err := contract.Load(ctx, "openapi.yaml", contract.WithLogger(contract.NewSlogAdapter(slog.New(handler))))
//
// # Usage with zerolog
//
// Use [NewZerologAdapter]:
//
//	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
//	logger := contract.NewZerologAdapter(zl)
type Logger interface {
	// Debug logs at debug level. Use for detailed diagnostic information.
	Debug(msg string, attrs ...any)

	// Info logs at info level. Use for general operational information.
	Info(msg string, attrs ...any)

	// Warn logs at warn level. Use for potentially harmful situations.
	Warn(msg string, attrs ...any)

	// Error logs at error level. Use for error conditions.
	Error(msg string, attrs ...any)

	// With returns a new Logger with the given attributes prepended to every log.
	With(attrs ...any) Logger
}

// NopLogger is a no-op logger that discards all output.
// It is the default logger used when no logger is configured.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

// Ensure NopLogger implements Logger at compile time.
var _ Logger = NopLogger{}

// SlogAdapter wraps a *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter from a *slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) {
	s.logger.Debug(msg, attrs...)
}

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) {
	s.logger.Info(msg, attrs...)
}

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) {
	s.logger.Warn(msg, attrs...)
}

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) {
	s.logger.Error(msg, attrs...)
}

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

// Ensure SlogAdapter implements Logger at compile time.
var _ Logger = (*SlogAdapter)(nil)

// ZerologAdapter wraps a zerolog.Logger to implement the Logger interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new ZerologAdapter.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Debug implements Logger.
func (z *ZerologAdapter) Debug(msg string, attrs ...any) {
	z.logger.Debug().Fields(pairs(attrs)).Msg(msg)
}

// Info implements Logger.
func (z *ZerologAdapter) Info(msg string, attrs ...any) {
	z.logger.Info().Fields(pairs(attrs)).Msg(msg)
}

// Warn implements Logger.
func (z *ZerologAdapter) Warn(msg string, attrs ...any) {
	z.logger.Warn().Fields(pairs(attrs)).Msg(msg)
}

// Error implements Logger.
func (z *ZerologAdapter) Error(msg string, attrs ...any) {
	z.logger.Error().Fields(pairs(attrs)).Msg(msg)
}

// With implements Logger.
func (z *ZerologAdapter) With(attrs ...any) Logger {
	return &ZerologAdapter{logger: z.logger.With().Fields(pairs(attrs)).Logger()}
}

// Ensure ZerologAdapter implements Logger at compile time.
var _ Logger = (*ZerologAdapter)(nil)

// pairs turns slog-style alternating attrs into a map zerolog accepts.
// A trailing key without a value is recorded under "!BADKEY", as slog does.
func pairs(attrs []any) map[string]any {
	fields := make(map[string]any, len(attrs)/2+1)
	for i := 0; i < len(attrs); i += 2 {
		if i+1 >= len(attrs) {
			fields["!BADKEY"] = attrs[i]
			break
		}
		fields[fmt.Sprint(attrs[i])] = attrs[i+1]
	}
	return fields
}
