package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard/mediatype"
)

// MediaTypeResult is the media-type command output.
type MediaTypeResult struct {
	Type        string            `json:"type"                   yaml:"type"`
	Subtype     string            `json:"subtype"                yaml:"subtype"`
	Suffix      string            `json:"suffix,omitempty"       yaml:"suffix,omitempty"`
	FullType    string            `json:"full_type"              yaml:"full_type"`
	Parameters  []mediatype.Param `json:"parameters,omitempty"   yaml:"parameters,omitempty"`
	Analyser    string            `json:"analyser,omitempty"     yaml:"analyser,omitempty"`
	DoesInclude *bool             `json:"does_include,omitempty" yaml:"does_include,omitempty"`
}

func newMediaTypeCommand(app *App) *cobra.Command {
	var format, includes string

	cmd := &cobra.Command{
		Use:   "media-type <content-type>",
		Short: "Parse a Content-Type value and show which analyser decodes it",
		Example: `  oasguard media-type 'application/vnd.api+json; charset=utf-8'
  oasguard media-type 'text/*' --includes text/plain`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := ValidateOutputFormat(format); err != nil {
				return err
			}
			info, err := mediatype.Of(args[0])
			if err != nil {
				return err
			}

			result := MediaTypeResult{
				Type:       info.Type,
				Subtype:    info.Subtype,
				Suffix:     info.Suffix,
				FullType:   info.FullType(),
				Parameters: info.Parameters,
			}
			if reg, ok := mediatype.DefaultRegistry().Lookup(info); ok {
				result.Analyser = reg.Name
			}
			if includes != "" {
				other, err := mediatype.Of(includes)
				if err != nil {
					return err
				}
				included := info.DoesInclude(other)
				result.DoesInclude = &included
			}

			if format != FormatText {
				return OutputStructured(app.Stdout, result, format)
			}
			Writef(app.Stdout, "Type: %s\n", result.FullType)
			for _, p := range result.Parameters {
				Writef(app.Stdout, "Parameter: %s=%s\n", p.Name, p.Value)
			}
			analyser := result.Analyser
			if analyser == "" {
				analyser = "none"
			}
			Writef(app.Stdout, "Analyser: %s\n", analyser)
			if result.DoesInclude != nil {
				Writef(app.Stdout, "Includes %s: %t\n", includes, *result.DoesInclude)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatText, "output format: text, json, or yaml")
	cmd.Flags().StringVar(&includes, "includes", "", "check whether the parsed type, used as a range, includes this media type")
	return cmd
}
