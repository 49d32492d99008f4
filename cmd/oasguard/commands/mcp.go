package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/internal/mcpserver"
	"github.com/erraggy/oasguard/internal/specwatch"
)

func newMCPCommand(app *App) *cobra.Command {
	var spec string
	var watch bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve oasguard as MCP tools over stdio",
		Long: `Serve oasguard as MCP (Model Context Protocol) tools over stdio.

With --spec, tools called without a spec argument use that contract.
With --watch, the contract is rebuilt when its file changes; a rebuild that
fails keeps the previous contract.`,
		Example: `  oasguard mcp
  oasguard mcp --spec openapi.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts := []mcpserver.Option{mcpserver.WithLogger(app.Logger())}

			if spec != "" {
				holder, err := app.watchContract(ctx, spec, watch)
				if err != nil {
					return err
				}
				defer func() { _ = holder.Close() }()
				opts = append(opts, mcpserver.WithDefaultContract(holder.Current))
			}

			server, err := mcpserver.New(app.config().Config, opts...)
			if err != nil {
				return err
			}
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&spec, "spec", "", "default contract for tools called without a spec")
	cmd.Flags().BoolVar(&watch, "watch", app.Env.Watch, "rebuild the default contract when its file changes")
	return cmd
}

// watchContract loads the validator for path into a holder, watching the file
// when watch is set.
func (a *App) watchContract(ctx context.Context, path string, watch bool) (*specwatch.Holder[httpvalidator.Validator], error) {
	holder, err := specwatch.New[httpvalidator.Validator](ctx, path, a.loadValidator, specwatch.WithLogger(a.Logger()))
	if err != nil {
		return nil, err
	}
	if watch {
		if err := holder.Watch(ctx); err != nil {
			_ = holder.Close()
			return nil, err
		}
	}
	return holder, nil
}
