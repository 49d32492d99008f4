package httpvalidator

import (
	"strings"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/mediatype"
	"github.com/erraggy/oasguard/oaserrors"
)

// DefaultMaxBodySize is the body limit applied by ValidateHTTPRequest unless
// WithMaxBodySize overrides it.
const DefaultMaxBodySize int64 = 10 << 20

// UnsupportedMediaTypePolicy decides what happens to a body whose declared
// media type has no registered content analyser.
type UnsupportedMediaTypePolicy int

const (
	// UnsupportedMediaTypeReject fails validation with *oaserrors.MediaTypeError.
	UnsupportedMediaTypeReject UnsupportedMediaTypePolicy = iota
	// UnsupportedMediaTypePassThrough accepts the body as opaque bytes without
	// schema validation.
	UnsupportedMediaTypePassThrough
)

// String returns "reject" or "pass-through".
func (p UnsupportedMediaTypePolicy) String() string {
	if p == UnsupportedMediaTypePassThrough {
		return "pass-through"
	}
	return "reject"
}

// ParseUnsupportedMediaTypePolicy parses the String form of a policy.
// The empty string selects UnsupportedMediaTypeReject.
func ParseUnsupportedMediaTypePolicy(s string) (UnsupportedMediaTypePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return UnsupportedMediaTypeReject, nil
	case "pass-through", "passthrough":
		return UnsupportedMediaTypePassThrough, nil
	default:
		return 0, &oaserrors.ConfigError{Option: "unsupported media type policy", Value: s, Message: `expected "reject" or "pass-through"`}
	}
}

// Option is a functional option for configuring a Validator.
type Option func(*config) error

// config holds the configuration for a Validator.
type config struct {
	registry *mediatype.Registry

	// Validation behavior
	strictMode  bool
	unsupported UnsupportedMediaTypePolicy

	// Resource limits
	maxBodySize int64

	logger contract.Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		unsupported: UnsupportedMediaTypeReject,
		maxBodySize: DefaultMaxBodySize,
		logger:      contract.NopLogger{},
	}
}

func applyOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.registry == nil {
		cfg.registry = mediatype.DefaultRegistry()
	}
	return cfg, nil
}

// WithRegistry sets the media type registry used to decode bodies and
// content-encoded parameters.
// Default: mediatype.DefaultRegistry().
func WithRegistry(r *mediatype.Registry) Option {
	return func(c *config) error {
		if r == nil {
			return &oaserrors.ConfigError{Option: "WithRegistry", Message: "registry cannot be nil"}
		}
		c.registry = r
		return nil
	}
}

// WithStrictMode enables strict validation:
//   - bodies whose media type the operation does not declare fail instead of being skipped
//   - response status codes the operation does not document fail
//
// Default: false.
func WithStrictMode(enabled bool) Option {
	return func(c *config) error {
		c.strictMode = enabled
		return nil
	}
}

// WithUnsupportedMediaType sets the policy for declared media types no
// registered analyser can decode.
// Default: UnsupportedMediaTypeReject.
func WithUnsupportedMediaType(p UnsupportedMediaTypePolicy) Option {
	return func(c *config) error {
		switch p {
		case UnsupportedMediaTypeReject, UnsupportedMediaTypePassThrough:
			c.unsupported = p
			return nil
		default:
			return &oaserrors.ConfigError{Option: "WithUnsupportedMediaType", Value: int(p), Message: "unknown policy"}
		}
	}
}

// WithMaxBodySize sets the maximum body size in bytes read by
// ValidateHTTPRequest. Zero restores the default.
// Default: 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n < 0 {
			return &oaserrors.ConfigError{Option: "WithMaxBodySize", Value: n, Message: "cannot be negative"}
		}
		if n == 0 {
			n = DefaultMaxBodySize
		}
		c.maxBodySize = n
		return nil
	}
}

// WithLogger sets the logger for validation failures.
// Default: contract.NopLogger.
func WithLogger(l contract.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return &oaserrors.ConfigError{Option: "WithLogger", Message: "logger cannot be nil"}
		}
		c.logger = l
		return nil
	}
}
