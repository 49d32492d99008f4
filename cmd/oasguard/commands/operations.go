package commands

import (
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard/contract"
)

// OperationRow is one operation in the operations command output.
type OperationRow struct {
	OperationID string   `json:"operation_id"          yaml:"operation_id"`
	Method      string   `json:"method"                yaml:"method"`
	Path        string   `json:"path"                  yaml:"path"`
	Tags        []string `json:"tags,omitempty"        yaml:"tags,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"  yaml:"deprecated,omitempty"`
	Parameters  int      `json:"parameters"            yaml:"parameters"`
	Body        []string `json:"body,omitempty"        yaml:"body,omitempty"`
	Responses   []string `json:"responses,omitempty"   yaml:"responses,omitempty"`
}

func newOperationsCommand(app *App) *cobra.Command {
	var format, tag, method string

	cmd := &cobra.Command{
		Use:   "operations <spec>",
		Short: "List the operations of a contract",
		Example: `  oasguard operations openapi.yaml
  oasguard operations --tag pets --format json openapi.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateOutputFormat(format); err != nil {
				return err
			}
			v, err := app.loadValidator(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var rows []OperationRow
			for _, op := range v.Contract().Operations() {
				if method != "" && !strings.EqualFold(op.Method, method) {
					continue
				}
				if tag != "" && !slices.Contains(op.Tags, tag) {
					continue
				}
				rows = append(rows, operationRow(op))
			}

			if format != FormatText {
				return OutputStructured(app.Stdout, rows, format)
			}
			tw := tabwriter.NewWriter(app.Stdout, 0, 4, 2, ' ', 0)
			Writef(tw, "OPERATION\tMETHOD\tPATH\tRESPONSES\n")
			for _, r := range rows {
				id := r.OperationID
				if r.Deprecated {
					id += " (deprecated)"
				}
				Writef(tw, "%s\t%s\t%s\t%s\n", id, r.Method, r.Path, strings.Join(r.Responses, ","))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatText, "output format: text, json, or yaml")
	cmd.Flags().StringVar(&tag, "tag", "", "only operations with this tag")
	cmd.Flags().StringVar(&method, "method", "", "only operations with this HTTP method")
	return cmd
}

func operationRow(op *contract.Operation) OperationRow {
	row := OperationRow{
		OperationID: op.ID,
		Method:      strings.ToUpper(op.Method),
		Path:        op.Path,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
		Parameters:  len(op.Parameters),
	}
	if op.RequestBody != nil {
		for _, mt := range op.RequestBody.Content {
			row.Body = append(row.Body, mt.MediaType)
		}
	}
	for _, r := range op.Responses {
		row.Responses = append(row.Responses, r.Code)
	}
	return row
}
