package mcpserver

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"

	"github.com/erraggy/oasguard/httpvalidator"
)

// Config holds the validation defaults shared by the MCP server and the CLI.
// Loaded from OASGUARD_* environment variables by LoadConfig.
type Config struct {
	// Strict enables strict body media type and response status checks.
	Strict bool `env:"OASGUARD_STRICT,default=false"`

	// UnsupportedMediaType is "reject" or "pass-through".
	UnsupportedMediaType string `env:"OASGUARD_UNSUPPORTED_MEDIA_TYPE,default=reject"`

	// MaxBodySize bounds bodies read from HTTP requests, in bytes.
	MaxBodySize int64 `env:"OASGUARD_MAX_BODY_SIZE,default=10485760"`

	// MaxInlineSize bounds inline contract content passed to tools, in bytes.
	MaxInlineSize int64 `env:"OASGUARD_MAX_INLINE_SIZE,default=10485760"`

	// CacheMaxSize is the number of built contracts kept per server.
	CacheMaxSize int `env:"OASGUARD_CACHE_MAX_SIZE,default=10"`
}

// DefaultConfig returns the configuration used when no variables are set.
func DefaultConfig() Config {
	return Config{
		UnsupportedMediaType: httpvalidator.UnsupportedMediaTypeReject.String(),
		MaxBodySize:          httpvalidator.DefaultMaxBodySize,
		MaxInlineSize:        10 << 20,
		CacheMaxSize:         10,
	}
}

// LoadConfig reads OASGUARD_* environment variables over the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("mcpserver: reading environment: %w", err)
	}
	if _, err := cfg.ValidatorOptions(); err != nil {
		return Config{}, err
	}
	if cfg.MaxBodySize < 0 {
		return Config{}, fmt.Errorf("mcpserver: OASGUARD_MAX_BODY_SIZE cannot be negative, got %d", cfg.MaxBodySize)
	}
	if cfg.CacheMaxSize <= 0 {
		return Config{}, fmt.Errorf("mcpserver: OASGUARD_CACHE_MAX_SIZE must be positive, got %d", cfg.CacheMaxSize)
	}
	return cfg, nil
}

// ValidatorOptions converts the configuration into httpvalidator options.
func (c Config) ValidatorOptions() ([]httpvalidator.Option, error) {
	policy, err := httpvalidator.ParseUnsupportedMediaTypePolicy(c.UnsupportedMediaType)
	if err != nil {
		return nil, err
	}
	return []httpvalidator.Option{
		httpvalidator.WithStrictMode(c.Strict),
		httpvalidator.WithUnsupportedMediaType(policy),
		httpvalidator.WithMaxBodySize(c.MaxBodySize),
	}, nil
}
