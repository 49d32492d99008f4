package commands

import (
	"bytes"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/httpvalidator"
)

// RequestResult is the validate-request command output.
type RequestResult struct {
	Valid       bool           `json:"valid"                  yaml:"valid"`
	RequestID   string         `json:"request_id"             yaml:"request_id"`
	OperationID string         `json:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	Error       *Failure       `json:"error,omitempty"        yaml:"error,omitempty"`
	Path        map[string]any `json:"path,omitempty"         yaml:"path,omitempty"`
	Query       map[string]any `json:"query,omitempty"        yaml:"query,omitempty"`
	Header      map[string]any `json:"header,omitempty"       yaml:"header,omitempty"`
	Cookie      map[string]any `json:"cookie,omitempty"       yaml:"cookie,omitempty"`
	Body        any            `json:"body,omitempty"         yaml:"body,omitempty"`
	MediaType   string         `json:"media_type,omitempty"   yaml:"media_type,omitempty"`
}

type validateRequestFlags struct {
	format      string
	operation   string
	method      string
	target      string
	path        []string
	query       string
	headers     []string
	cookies     []string
	body        string
	bodyFile    string
	contentType string
}

func newValidateRequestCommand(app *App) *cobra.Command {
	flags := &validateRequestFlags{}

	cmd := &cobra.Command{
		Use:   "validate-request <spec>",
		Short: "Validate one HTTP request against a contract",
		Long: `Validate one HTTP request against a contract.

Select the operation with --operation and give raw path parameters with --path,
or give --method and --url and the operation is routed from the URL.

Exit codes: 0 when the request is valid, 1 when it is rejected, 2 on any other error.`,
		Example: `  oasguard validate-request openapi.yaml --operation showPetById --path petId=42
  oasguard validate-request openapi.yaml --method GET --url '/pets?limit=10' --header X-Request-ID=abc
  echo '{"name":"Rex"}' | oasguard validate-request openapi.yaml --method POST --url /pets \
      --content-type application/json --body-file -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateOutputFormat(flags.format); err != nil {
				return err
			}
			if (flags.operation == "") == (flags.target == "") {
				return fmt.Errorf("provide exactly one of --operation or --url")
			}
			body, err := ReadBody(app.Stdin, flags.body, flags.bodyFile)
			if err != nil {
				return err
			}
			v, err := app.loadValidator(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			requestID := uuid.NewString()
			logger := app.Logger().With("request_id", requestID)

			var vr *httpvalidator.ValidatedRequest
			if flags.target != "" {
				r, err := flags.httpRequest(body)
				if err != nil {
					return err
				}
				vr, err = v.ValidateHTTPRequest(r)
				if err != nil {
					return reportRequest(app, flags.format, RequestResult{RequestID: requestID}, err, logger)
				}
			} else {
				raw, err := flags.rawParameters()
				if err != nil {
					return err
				}
				vr, err = v.ValidateRequest(flags.operation, raw, body, flags.contentType)
				if err != nil {
					return reportRequest(app, flags.format, RequestResult{RequestID: requestID, OperationID: flags.operation}, err, logger)
				}
			}

			result := RequestResult{
				Valid:       true,
				RequestID:   requestID,
				OperationID: vr.OperationID(),
				Path:        vr.Parameters(contract.LocationPath),
				Query:       vr.Parameters(contract.LocationQuery),
				Header:      vr.Parameters(contract.LocationHeader),
				Cookie:      vr.Parameters(contract.LocationCookie),
				MediaType:   vr.MediaType(),
			}
			result.Body, _ = vr.Body()
			logger.Info("request valid", "operation", result.OperationID)
			return reportRequest(app, flags.format, result, nil, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.format, "format", FormatText, "output format: text, json, or yaml")
	f.StringVar(&flags.operation, "operation", "", "operationId to validate against")
	f.StringVar(&flags.method, "method", http.MethodGet, "HTTP method, used with --url")
	f.StringVar(&flags.target, "url", "", "request target (path and query) to route, e.g. /pets/42?x=1")
	f.StringArrayVar(&flags.path, "path", nil, "raw path parameter name=value (repeatable, with --operation)")
	f.StringVar(&flags.query, "query", "", "raw query string (with --operation)")
	f.StringArrayVar(&flags.headers, "header", nil, "header name=value (repeatable)")
	f.StringArrayVar(&flags.cookies, "cookie", nil, "cookie name=value (repeatable)")
	f.StringVar(&flags.body, "body", "", "request body")
	f.StringVar(&flags.bodyFile, "body-file", "", "read the request body from a file, or - for stdin")
	f.StringVar(&flags.contentType, "content-type", "", "Content-Type of the body")
	return cmd
}

func (f *validateRequestFlags) rawParameters() (httpvalidator.RawParameters, error) {
	path, err := ParsePairs("path", f.path)
	if err != nil {
		return httpvalidator.RawParameters{}, err
	}
	query, err := url.ParseQuery(f.query)
	if err != nil {
		return httpvalidator.RawParameters{}, fmt.Errorf("invalid --query: %w", err)
	}
	header, err := f.header()
	if err != nil {
		return httpvalidator.RawParameters{}, err
	}
	cookies, err := ParsePairs("cookie", f.cookies)
	if err != nil {
		return httpvalidator.RawParameters{}, err
	}
	return httpvalidator.RawParameters{Path: path, Query: query, Header: header, Cookie: cookies}, nil
}

func (f *validateRequestFlags) header() (http.Header, error) {
	pairs, err := ParsePairs("header", f.headers)
	if err != nil {
		return nil, err
	}
	header := make(http.Header, len(pairs))
	for name, value := range pairs {
		header.Add(name, value)
	}
	if f.contentType != "" {
		header.Set("Content-Type", f.contentType)
	}
	return header, nil
}

func (f *validateRequestFlags) httpRequest(body []byte) (*http.Request, error) {
	target, err := url.ParseRequestURI(f.target)
	if err != nil {
		return nil, fmt.Errorf("invalid --url: %w", err)
	}
	r, err := http.NewRequest(f.method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if r.Header, err = f.header(); err != nil {
		return nil, err
	}
	cookies, err := ParsePairs("cookie", f.cookies)
	if err != nil {
		return nil, err
	}
	for name, value := range cookies {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return r, nil
}

// reportRequest writes result, or the failure err describes, and returns the
// command's error. A rejected request returns ErrInvalid.
func reportRequest(app *App, format string, result RequestResult, err error, logger contract.Logger) error {
	if err != nil {
		failure, ok := DescribeFailure(err)
		if !ok {
			return err
		}
		result.Error = failure
		logger.Info("request rejected", "operation", result.OperationID, "kind", failure.Kind)
	}

	if format != FormatText {
		if outErr := OutputStructured(app.Stdout, result, format); outErr != nil {
			return outErr
		}
	} else {
		writeRequestText(app, result)
	}
	if result.Error != nil {
		return ErrInvalid
	}
	return nil
}

func writeRequestText(app *App, result RequestResult) {
	if result.Error != nil {
		Writef(app.Stdout, "✗ invalid: %s\n", result.Error.Message)
		return
	}
	Writef(app.Stdout, "✓ valid request for %s\n", result.OperationID)
	for _, section := range []struct {
		name   string
		values map[string]any
	}{
		{"path", result.Path},
		{"query", result.Query},
		{"header", result.Header},
		{"cookie", result.Cookie},
	} {
		for _, name := range slices.Sorted(maps.Keys(section.values)) {
			Writef(app.Stdout, "  %s.%s = %v\n", section.name, name, section.values[name])
		}
	}
	if result.MediaType != "" {
		Writef(app.Stdout, "  body (%s) = %v\n", result.MediaType, result.Body)
	}
}
