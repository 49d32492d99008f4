package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard"
	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/httpvalidator"
)

// App carries the state shared by all commands.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    Env

	logger contract.Logger

	// persistent flags
	logLevel      string
	logFormat     string
	strict        bool
	unsupported   string
	checkDocument bool
}

// NewRootCommand builds the oasguard command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "oasguard",
		Short:         "Validate HTTP requests and responses against OpenAPI 3.0/3.1 contracts",
		Version:       oasguard.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := NewLogger(app.Stderr, app.logFormat, app.logLevel)
			if err != nil {
				return err
			}
			app.logger = logger
			return nil
		},
	}
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&app.logLevel, "log-level", app.Env.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&app.logFormat, "log-format", app.Env.LogFormat, "log format: console, json, text")
	flags.BoolVar(&app.strict, "strict", app.Env.Strict, "reject undeclared body media types and undocumented response statuses")
	flags.StringVar(&app.unsupported, "unsupported-media-type", app.Env.UnsupportedMediaType, "bodies no analyser can decode: reject or pass-through")
	flags.BoolVar(&app.checkDocument, "check-document", false, "run a full OpenAPI structural check of 3.0 documents before building the contract")

	root.AddCommand(
		newOperationsCommand(app),
		newValidateRequestCommand(app),
		newValidateResponseCommand(app),
		newMediaTypeCommand(app),
		newMCPCommand(app),
		newVersionCommand(app),
	)
	return root
}

// Logger returns the logger configured by the persistent flags.
func (a *App) Logger() contract.Logger {
	if a.logger == nil {
		return contract.NopLogger{}
	}
	return a.logger
}

// config returns the environment configuration with the persistent flags applied.
func (a *App) config() Env {
	env := a.Env
	env.Strict = a.strict
	env.UnsupportedMediaType = a.unsupported
	return env
}

// validatorOptions converts the effective configuration into validator options.
func (a *App) validatorOptions() ([]httpvalidator.Option, error) {
	opts, err := a.config().ValidatorOptions()
	if err != nil {
		return nil, err
	}
	return append(opts, httpvalidator.WithLogger(a.Logger())), nil
}

// loadValidator builds a validator for the contract file at path.
func (a *App) loadValidator(ctx context.Context, path string) (*httpvalidator.Validator, error) {
	c, err := contract.Load(ctx, path,
		contract.WithLogger(a.Logger()),
		contract.WithDocumentValidation(a.checkDocument),
	)
	if err != nil {
		return nil, err
	}
	opts, err := a.validatorOptions()
	if err != nil {
		return nil, err
	}
	return httpvalidator.New(c, opts...)
}
