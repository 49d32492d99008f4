package contract

import (
	"fmt"

	"github.com/erraggy/oasguard/oaserrors"
)

// Option is a functional option for configuring contract construction.
type Option func(*config) error

// config holds the configuration for Build.
type config struct {
	logger Logger

	// validateDocument runs a full structural check of the document before building
	validateDocument bool

	// repository replaces the compiled schema repository
	repository SchemaRepository

	// preloadConcurrency bounds schema compilation workers (0 = GOMAXPROCS)
	preloadConcurrency int
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		logger: NopLogger{},
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
	return cfg, nil
}

// WithLogger sets the logger used during construction.
// Default is NopLogger.
func WithLogger(l Logger) Option {
	return func(c *config) error {
		if l == nil {
			return &oaserrors.ConfigError{Option: "WithLogger", Message: "logger cannot be nil"}
		}
		c.logger = l
		return nil
	}
}

// WithDocumentValidation enables a full OpenAPI structural check of the
// document before the contract is built. Only 3.0 documents are checked;
// 3.1 documents are built without it.
//
// Default is false.
func WithDocumentValidation(enabled bool) Option {
	return func(c *config) error {
		c.validateDocument = enabled
		return nil
	}
}

// WithSchemaRepository uses repo instead of compiling the document's schemas.
// If repo also implements Preloader, it is preloaded with every schema the
// contract references.
func WithSchemaRepository(repo SchemaRepository) Option {
	return func(c *config) error {
		if repo == nil {
			return &oaserrors.ConfigError{Option: "WithSchemaRepository", Message: "repository cannot be nil"}
		}
		c.repository = repo
		return nil
	}
}

// WithPreloadConcurrency bounds the number of goroutines compiling schemas.
// Zero uses GOMAXPROCS.
func WithPreloadConcurrency(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return &oaserrors.ConfigError{
				Option:  "WithPreloadConcurrency",
				Value:   n,
				Message: fmt.Sprintf("must be >= 0, got %d", n),
			}
		}
		c.preloadConcurrency = n
		return nil
	}
}
