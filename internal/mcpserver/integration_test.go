package mcpserver

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalOAS31 is a minimal OpenAPI 3.1 contract used across integration tests.
const minimalOAS31 = `{
  "openapi": "3.1.0",
  "info": {"title": "Test API", "version": "1.0.0"},
  "paths": {
    "/pets/{petId}": {
      "get": {
        "operationId": "getPet",
        "tags": ["pets"],
        "parameters": [{"name": "petId", "in": "path", "required": true, "schema": {"type": "integer"}}],
        "responses": {
          "200": {
            "description": "OK",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

// startTestSession creates an in-process MCP server/client pair and returns
// the connected client session. The server is shut down when the test ends.
func startTestSession(t *testing.T, opts ...Option) *mcp.ClientSession {
	t.Helper()

	server := newTestServer(t, opts...).mcpServer()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(
		&mcp.Implementation{Name: "test-client", Version: "test"},
		nil,
	)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-done
	})

	return session
}

func TestIntegration_ListTools(t *testing.T) {
	session := startTestSession(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Tools, 4)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	for _, name := range []string{"list_operations", "validate_request", "validate_response", "parse_media_type"} {
		assert.True(t, slices.Contains(names, name), "missing tool: %s", name)
	}

	for _, tool := range result.Tools {
		assert.NotEmpty(t, tool.Description, "tool %q has empty description", tool.Name)
	}
}

func TestIntegration_CallTool_ListOperations(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "list_operations",
		Arguments: map[string]any{
			"spec": map[string]any{"content": minimalOAS31},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	structured := unmarshalStructured(t, result)
	assert.Equal(t, "3.1.0", structured["version"])
	assert.Equal(t, "oas3.1", structured["dialect"])
	assert.Equal(t, float64(1), structured["total"])
}

func TestIntegration_CallTool_ValidateRequest(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "validate_request",
		Arguments: map[string]any{
			"spec":   map[string]any{"content": minimalOAS31},
			"method": "GET",
			"path":   "/pets/7",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	structured := unmarshalStructured(t, result)
	assert.Equal(t, true, structured["valid"])
	assert.Equal(t, "getPet", structured["operation_id"])
	assert.Equal(t, map[string]any{"petId": float64(7)}, structured["path_params"])
	assert.NotEmpty(t, structured["request_id"])
}

func TestIntegration_CallTool_ValidateRequest_Invalid(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "validate_request",
		Arguments: map[string]any{
			"spec":         map[string]any{"content": minimalOAS31},
			"operation_id": "getPet",
			"path_params":  map[string]any{"petId": "seven"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "a rejected request is a normal result")

	structured := unmarshalStructured(t, result)
	assert.Equal(t, false, structured["valid"])
	failure, ok := structured["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "path", failure["location"])
	assert.Equal(t, "petId", failure["parameter"])
	assert.Equal(t, float64(400), failure["http_status"])
}

func TestIntegration_CallTool_ValidateResponse(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "validate_response",
		Arguments: map[string]any{
			"spec":         map[string]any{"content": minimalOAS31},
			"operation_id": "getPet",
			"status_code":  200,
			"body":         `{"id":7,"name":null}`,
			"content_type": "application/json",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	structured := unmarshalStructured(t, result)
	assert.Equal(t, true, structured["valid"])
	assert.Equal(t, "200", structured["response_code"])
	assert.Equal(t, map[string]any{"id": float64(7), "name": nil}, structured["body"])
}

func TestIntegration_CallTool_ParseMediaType(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "parse_media_type",
		Arguments: map[string]any{
			"content_type": "multipart/form-data; boundary=abc",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	structured := unmarshalStructured(t, result)
	assert.Equal(t, "multipart/form-data", structured["full_type"])
	assert.Equal(t, "multipart", structured["analyser"])
}

func TestIntegration_CallTool_Error_InvalidSpec(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "list_operations",
		Arguments: map[string]any{
			"spec": map[string]any{
				"content": "this is not valid JSON or YAML for an OAS spec",
			},
		},
	})
	require.NoError(t, err, "MCP protocol call should succeed even on tool error")
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "error content should be TextContent")
	assert.NotEmpty(t, text.Text)
}

func TestIntegration_CallTool_Error_MissingSpec(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "list_operations",
		Arguments: map[string]any{
			"spec": map[string]any{},
		},
	})
	require.NoError(t, err, "MCP protocol call should succeed even on tool error")
	require.NotNil(t, result)
	assert.True(t, result.IsError, "list_operations should return IsError when no contract is available")
}

// unmarshalStructured extracts the structured output from a CallToolResult.
// It first checks StructuredContent, then falls back to parsing the first TextContent.
func unmarshalStructured(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	require.NotEmpty(t, result.Content, "expected at least one content item")
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &m), "failed to parse text content as JSON")
	return m
}
