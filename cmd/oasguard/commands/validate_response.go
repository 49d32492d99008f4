package commands

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// ResponseResult is the validate-response command output.
type ResponseResult struct {
	Valid        bool     `json:"valid"                   yaml:"valid"`
	RequestID    string   `json:"request_id"              yaml:"request_id"`
	OperationID  string   `json:"operation_id"            yaml:"operation_id"`
	StatusCode   int      `json:"status_code"             yaml:"status_code"`
	Error        *Failure `json:"error,omitempty"         yaml:"error,omitempty"`
	ResponseCode string   `json:"response_code,omitempty" yaml:"response_code,omitempty"`
	Body         any      `json:"body,omitempty"          yaml:"body,omitempty"`
	MediaType    string   `json:"media_type,omitempty"    yaml:"media_type,omitempty"`
}

func newValidateResponseCommand(app *App) *cobra.Command {
	var (
		format, operation, body, bodyFile, contentType string
		status                                         int
	)

	cmd := &cobra.Command{
		Use:   "validate-response <spec>",
		Short: "Validate one HTTP response of an operation",
		Long: `Validate one HTTP response of an operation.

The status code selects the documented response (exact code, then NXX range,
then default) and the body is checked against that response's schema.
Response headers are not validated.

Exit codes: 0 when the response is valid, 1 when it is rejected, 2 on any other error.`,
		Example: `  oasguard validate-response openapi.yaml --operation showPetById --status 200 \
      --content-type application/json --body '{"id":1,"name":"Rex"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateOutputFormat(format); err != nil {
				return err
			}
			payload, err := ReadBody(app.Stdin, body, bodyFile)
			if err != nil {
				return err
			}
			v, err := app.loadValidator(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := ResponseResult{RequestID: uuid.NewString(), OperationID: operation, StatusCode: status}
			logger := app.Logger().With("request_id", result.RequestID)

			vr, err := v.ValidateResponse(operation, status, payload, contentType)
			if err != nil {
				failure, ok := DescribeFailure(err)
				if !ok {
					return err
				}
				result.Error = failure
				logger.Info("response rejected", "operation", operation, "kind", failure.Kind)
			} else {
				result.Valid = true
				result.ResponseCode = vr.ResponseCode()
				result.MediaType = vr.MediaType()
				result.Body, _ = vr.Body()
				logger.Info("response valid", "operation", operation, "response", result.ResponseCode)
			}

			if format != FormatText {
				if err := OutputStructured(app.Stdout, result, format); err != nil {
					return err
				}
			} else if result.Error != nil {
				Writef(app.Stdout, "✗ invalid: %s\n", result.Error.Message)
			} else if result.ResponseCode == "" {
				Writef(app.Stdout, "✓ status %d is not documented; body not checked\n", status)
			} else {
				Writef(app.Stdout, "✓ valid %d response for %s (matched %s)\n", status, operation, result.ResponseCode)
			}

			if result.Error != nil {
				return ErrInvalid
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", FormatText, "output format: text, json, or yaml")
	f.StringVar(&operation, "operation", "", "operationId the response belongs to")
	f.IntVar(&status, "status", 200, "HTTP status code")
	f.StringVar(&body, "body", "", "response body")
	f.StringVar(&bodyFile, "body-file", "", "read the response body from a file, or - for stdin")
	f.StringVar(&contentType, "content-type", "", "Content-Type of the body")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}
