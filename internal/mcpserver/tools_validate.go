package mcpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/oaserrors"
)

type validateRequestInput struct {
	Spec        specInput         `json:"spec,omitempty"         jsonschema:"The contract (omit to use the server's default contract)"`
	OperationID string            `json:"operation_id,omitempty" jsonschema:"Operation to validate against"`
	Method      string            `json:"method,omitempty"       jsonschema:"HTTP method\\, used with path when operation_id is not given"`
	Path        string            `json:"path,omitempty"         jsonschema:"Request path (e.g. /pets/42)\\, used with method when operation_id is not given"`
	PathParams  map[string]string `json:"path_params,omitempty"  jsonschema:"Raw path parameter values by name (with operation_id)"`
	Query       string            `json:"query,omitempty"        jsonschema:"Raw query string without the leading ?"`
	Headers     map[string]string `json:"headers,omitempty"      jsonschema:"Request headers by name"`
	Cookies     map[string]string `json:"cookies,omitempty"      jsonschema:"Cookies by name"`
	Body        string            `json:"body,omitempty"         jsonschema:"Request body"`
	BodyBase64  bool              `json:"body_base64,omitempty"  jsonschema:"The body is base64 encoded binary"`
	ContentType string            `json:"content_type,omitempty" jsonschema:"Content-Type of the body"`
}

type validateResponseInput struct {
	Spec        specInput `json:"spec,omitempty"         jsonschema:"The contract (omit to use the server's default contract)"`
	OperationID string    `json:"operation_id"           jsonschema:"Operation the response belongs to"`
	StatusCode  int       `json:"status_code"            jsonschema:"HTTP status code"`
	Body        string    `json:"body,omitempty"         jsonschema:"Response body"`
	BodyBase64  bool      `json:"body_base64,omitempty"  jsonschema:"The body is base64 encoded binary"`
	ContentType string    `json:"content_type,omitempty" jsonschema:"Content-Type of the body"`
}

// failure describes the first validation failure.
type failure struct {
	Kind      string `json:"kind"`
	Location  string `json:"location,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Message   string `json:"message"`
	Status    int    `json:"http_status"`
}

type validateRequestOutput struct {
	Valid       bool           `json:"valid"`
	RequestID   string         `json:"request_id"`
	OperationID string         `json:"operation_id"`
	Error       *failure       `json:"error,omitempty"`
	PathParams  map[string]any `json:"path_params,omitempty"`
	QueryParams map[string]any `json:"query_params,omitempty"`
	Headers     map[string]any `json:"headers,omitempty"`
	Cookies     map[string]any `json:"cookies,omitempty"`
	Body        any            `json:"body,omitempty"`
	MediaType   string         `json:"media_type,omitempty"`
}

type validateResponseOutput struct {
	Valid        bool     `json:"valid"`
	RequestID    string   `json:"request_id"`
	OperationID  string   `json:"operation_id"`
	Error        *failure `json:"error,omitempty"`
	ResponseCode string   `json:"response_code,omitempty"`
	Body         any      `json:"body,omitempty"`
	MediaType    string   `json:"media_type,omitempty"`
}

func (s *Server) handleValidateRequest(ctx context.Context, _ *mcp.CallToolRequest, input validateRequestInput) (*mcp.CallToolResult, validateRequestOutput, error) {
	v, err := s.validator(ctx, input.Spec)
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}

	operationID, pathParams := input.OperationID, input.PathParams
	if operationID == "" {
		if input.Method == "" || input.Path == "" {
			return errResult(errors.New("provide operation_id, or both method and path")), validateRequestOutput{}, nil
		}
		op, placeholders, err := v.Contract().Route(input.Method, input.Path)
		if err != nil {
			return errResult(err), validateRequestOutput{}, nil
		}
		operationID, pathParams = op.ID, make(map[string]string, len(placeholders))
		for name, raw := range placeholders {
			decoded, err := url.PathUnescape(raw)
			if err != nil {
				decoded = raw
			}
			pathParams[name] = decoded
		}
	}

	query, err := url.ParseQuery(input.Query)
	if err != nil {
		return errResult(fmt.Errorf("parsing query: %w", err)), validateRequestOutput{}, nil
	}
	body, err := decodeBody(input.Body, input.BodyBase64)
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}
	header := make(http.Header, len(input.Headers))
	for name, value := range input.Headers {
		header.Set(name, value)
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = header.Get("Content-Type")
	}

	requestID := uuid.NewString()
	raw := httpvalidator.RawParameters{Path: pathParams, Query: query, Header: header, Cookie: input.Cookies}
	vr, err := v.ValidateRequest(operationID, raw, body, contentType)

	output := validateRequestOutput{RequestID: requestID, OperationID: operationID}
	if err != nil {
		f, ok := describeFailure(err)
		if !ok {
			return errResult(err), validateRequestOutput{}, nil
		}
		s.logger.Debug("request rejected", "request_id", requestID, "operation", operationID, "kind", f.Kind)
		output.Error = f
		return nil, output, nil
	}

	s.logger.Debug("request valid", "request_id", requestID, "operation", operationID)
	output.Valid = true
	output.PathParams = vr.Parameters(contract.LocationPath)
	output.QueryParams = vr.Parameters(contract.LocationQuery)
	output.Headers = vr.Parameters(contract.LocationHeader)
	output.Cookies = vr.Parameters(contract.LocationCookie)
	output.Body, _ = vr.Body()
	output.MediaType = vr.MediaType()
	return nil, output, nil
}

func (s *Server) handleValidateResponse(ctx context.Context, _ *mcp.CallToolRequest, input validateResponseInput) (*mcp.CallToolResult, validateResponseOutput, error) {
	v, err := s.validator(ctx, input.Spec)
	if err != nil {
		return errResult(err), validateResponseOutput{}, nil
	}
	body, err := decodeBody(input.Body, input.BodyBase64)
	if err != nil {
		return errResult(err), validateResponseOutput{}, nil
	}

	requestID := uuid.NewString()
	vr, err := v.ValidateResponse(input.OperationID, input.StatusCode, body, input.ContentType)

	output := validateResponseOutput{RequestID: requestID, OperationID: input.OperationID}
	if err != nil {
		f, ok := describeFailure(err)
		if !ok {
			return errResult(err), validateResponseOutput{}, nil
		}
		s.logger.Debug("response rejected", "request_id", requestID, "operation", input.OperationID, "kind", f.Kind)
		output.Error = f
		return nil, output, nil
	}

	s.logger.Debug("response valid", "request_id", requestID, "operation", input.OperationID)
	output.Valid = true
	output.ResponseCode = vr.ResponseCode()
	output.Body, _ = vr.Body()
	output.MediaType = vr.MediaType()
	return nil, output, nil
}

// describeFailure converts a message failure into its tool output form.
// ok is false for errors that are not about the message, such as an
// unknown operation.
func describeFailure(err error) (*failure, bool) {
	var ve *oaserrors.ValidationError
	if errors.As(err, &ve) {
		return &failure{
			Kind:      ve.Kind.String(),
			Location:  ve.Location,
			Parameter: ve.Parameter,
			Message:   err.Error(),
			Status:    httpvalidator.StatusCode(err),
		}, true
	}
	if errors.Is(err, oaserrors.ErrUnsupportedMediaType) {
		return &failure{
			Kind:     oaserrors.ErrUnsupportedMediaType.Error(),
			Location: "body",
			Message:  err.Error(),
			Status:   httpvalidator.StatusCode(err),
		}, true
	}
	return nil, false
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 body: %w", err)
	}
	return data, nil
}
