package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard"
)

// VersionInfo is the version command's structured output.
type VersionInfo struct {
	Version   string `json:"version"    yaml:"version"`
	Commit    string `json:"commit"     yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func newVersionCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := ValidateOutputFormat(format); err != nil {
				return err
			}
			if format != FormatText {
				return OutputStructured(app.Stdout, VersionInfo{
					Version:   oasguard.Version(),
					Commit:    oasguard.Commit(),
					BuildTime: oasguard.BuildTime(),
					GoVersion: oasguard.GoVersion(),
				}, format)
			}
			Writef(app.Stdout, "oasguard %s\n%s\n", oasguard.Version(), oasguard.BuildInfo())
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatText, "output format: text, json, or yaml")
	return cmd
}
