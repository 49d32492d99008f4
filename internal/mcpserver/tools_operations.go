package mcpserver

import (
	"context"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasguard/contract"
)

type listOperationsInput struct {
	Spec   specInput `json:"spec,omitempty"   jsonschema:"The contract to list (omit to use the server's default contract)"`
	Tag    string    `json:"tag,omitempty"    jsonschema:"Only operations with this tag"`
	Method string    `json:"method,omitempty" jsonschema:"Only operations with this HTTP method (get\\, post\\, ...)"`
}

type parameterSummary struct {
	Name       string `json:"name"`
	In         string `json:"in"`
	Required   bool   `json:"required,omitempty"`
	Style      string `json:"style"`
	Explode    bool   `json:"explode,omitempty"`
	SchemaType string `json:"schema_type,omitempty"`
	Content    string `json:"content_type,omitempty"`
}

type operationSummary struct {
	OperationID       string             `json:"operation_id"`
	Method            string             `json:"method"`
	Path              string             `json:"path"`
	Summary           string             `json:"summary,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	Deprecated        bool               `json:"deprecated,omitempty"`
	Parameters        []parameterSummary `json:"parameters,omitempty"`
	RequestMediaTypes []string           `json:"request_media_types,omitempty"`
	BodyRequired      bool               `json:"body_required,omitempty"`
	Responses         []string           `json:"responses,omitempty"`
}

type listOperationsOutput struct {
	Version    string             `json:"version"`
	Dialect    string             `json:"dialect"`
	Total      int                `json:"total"`
	Matched    int                `json:"matched"`
	Operations []operationSummary `json:"operations,omitempty"`
}

func (s *Server) handleListOperations(ctx context.Context, _ *mcp.CallToolRequest, input listOperationsInput) (*mcp.CallToolResult, listOperationsOutput, error) {
	v, err := s.validator(ctx, input.Spec)
	if err != nil {
		return errResult(err), listOperationsOutput{}, nil
	}
	c := v.Contract()

	all := c.Operations()
	var matched []*contract.Operation
	for _, op := range all {
		if input.Method != "" && !strings.EqualFold(op.Method, input.Method) {
			continue
		}
		if input.Tag != "" && !slices.Contains(op.Tags, input.Tag) {
			continue
		}
		matched = append(matched, op)
	}

	output := listOperationsOutput{
		Version:    c.Version(),
		Dialect:    c.Dialect().String(),
		Total:      len(all),
		Matched:    len(matched),
		Operations: makeSlice[operationSummary](len(matched)),
	}
	for _, op := range matched {
		output.Operations = append(output.Operations, summarizeOperation(op))
	}
	return nil, output, nil
}

func summarizeOperation(op *contract.Operation) operationSummary {
	sum := operationSummary{
		OperationID: op.ID,
		Method:      strings.ToUpper(op.Method),
		Path:        op.Path,
		Summary:     op.Summary,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
		Parameters:  makeSlice[parameterSummary](len(op.Parameters)),
		Responses:   makeSlice[string](len(op.Responses)),
	}
	for _, p := range op.Parameters {
		sum.Parameters = append(sum.Parameters, parameterSummary{
			Name:       p.Name,
			In:         string(p.In),
			Required:   p.Required,
			Style:      string(p.Style),
			Explode:    p.Explode,
			SchemaType: p.SchemaType,
			Content:    p.ContentType,
		})
	}
	if op.RequestBody != nil {
		sum.BodyRequired = op.RequestBody.Required
		for _, mt := range op.RequestBody.Content {
			sum.RequestMediaTypes = append(sum.RequestMediaTypes, mt.MediaType)
		}
	}
	for _, r := range op.Responses {
		sum.Responses = append(sum.Responses, r.Code)
	}
	return sum
}
