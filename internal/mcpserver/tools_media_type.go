package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasguard/mediatype"
)

type parseMediaTypeInput struct {
	ContentType string `json:"content_type"       jsonschema:"Content-Type value to parse (e.g. application/vnd.api+json; charset=utf-8)"`
	Includes    string `json:"includes,omitempty" jsonschema:"Another media type to test against content_type used as a range (e.g. text/*)"`
}

type mediaTypeParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type parseMediaTypeOutput struct {
	Type         string           `json:"type"`
	Subtype      string           `json:"subtype"`
	Suffix       string           `json:"suffix,omitempty"`
	FullType     string           `json:"full_type"`
	Parameters   []mediaTypeParam `json:"parameters,omitempty"`
	Analyser     string           `json:"analyser,omitempty"`
	Supported    bool             `json:"supported"`
	DoesInclude  *bool            `json:"does_include,omitempty"`
	IncludesType string           `json:"includes_type,omitempty"`
}

func (s *Server) handleParseMediaType(_ context.Context, _ *mcp.CallToolRequest, input parseMediaTypeInput) (*mcp.CallToolResult, parseMediaTypeOutput, error) {
	info, err := mediatype.Of(input.ContentType)
	if err != nil {
		return errResult(err), parseMediaTypeOutput{}, nil
	}

	output := parseMediaTypeOutput{
		Type:       info.Type,
		Subtype:    info.Subtype,
		Suffix:     info.Suffix,
		FullType:   info.FullType(),
		Parameters: makeSlice[mediaTypeParam](len(info.Parameters)),
	}
	for _, p := range info.Parameters {
		output.Parameters = append(output.Parameters, mediaTypeParam{Name: p.Name, Value: p.Value})
	}
	if reg, ok := mediatype.DefaultRegistry().Lookup(info); ok {
		output.Analyser = reg.Name
		output.Supported = true
	}

	if input.Includes != "" {
		other, err := mediatype.Of(input.Includes)
		if err != nil {
			return errResult(err), parseMediaTypeOutput{}, nil
		}
		included := info.DoesInclude(other)
		output.DoesInclude = &included
		output.IncludesType = other.FullType()
	}
	return nil, output, nil
}
