// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasguard validation as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasguard"
	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/httpvalidator"
)

const serverInstructions = `oasguard MCP server: lists the operations of an OpenAPI 3.0/3.1 contract and validates single HTTP requests and responses against it.

Every tool takes a spec object with either file (a path on disk) or content (inline YAML or JSON). When the server was started with a default contract, spec may be omitted.

Configuration: defaults come from OASGUARD_* environment variables set in your MCP client config.
- OASGUARD_STRICT (default: false): reject undeclared body media types and undocumented response statuses
- OASGUARD_UNSUPPORTED_MEDIA_TYPE (default: reject): reject or pass-through bodies no analyser can decode
- OASGUARD_MAX_INLINE_SIZE (default: 10485760): maximum inline spec content in bytes
- OASGUARD_CACHE_MAX_SIZE (default: 10): number of built contracts kept per server

Validation stops at the first failure. A failed validation is a normal result with valid=false and an error object naming the kind, location and parameter; tool errors are reserved for unusable input such as an unknown operation or an invalid contract.`

// Server holds the state shared by tool handlers.
type Server struct {
	cfg           Config
	logger        contract.Logger
	validatorOpts []httpvalidator.Option
	cache         *validatorCache
	fallback      func() *httpvalidator.Validator
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for tool calls and contract builds.
func WithLogger(l contract.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultContract makes tools called without a spec use the validator
// returned by current. current is called once per tool call, so it may
// return a hot-reloaded value.
func WithDefaultContract(current func() *httpvalidator.Validator) Option {
	return func(s *Server) {
		s.fallback = current
	}
}

// New creates a Server from cfg.
func New(cfg Config, opts ...Option) (*Server, error) {
	validatorOpts, err := cfg.ValidatorOptions()
	if err != nil {
		return nil, err
	}
	if cfg.CacheMaxSize <= 0 {
		cfg.CacheMaxSize = DefaultConfig().CacheMaxSize
	}
	if cfg.MaxInlineSize <= 0 {
		cfg.MaxInlineSize = DefaultConfig().MaxInlineSize
	}
	s := &Server{
		cfg:           cfg,
		logger:        contract.NopLogger{},
		validatorOpts: validatorOpts,
		cache:         newValidatorCache(cfg.CacheMaxSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer().Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) mcpServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasguard", Version: oasguard.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	s.registerAllTools(server)
	return server
}

func (s *Server) registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_operations",
		Description: "List the operations of an OpenAPI 3.0/3.1 contract in document order: operationId, method, path template, tags, declared parameters with their location, style and schema type, request body media types, and documented response codes. Filter by tag or method. Operations without an operationId are listed as \"METHOD /path\".",
	}, s.handleListOperations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Validate one HTTP request against an operation. Select the operation by operation_id, or by method and path (path parameters are then taken from the URL). Supply raw parameter values exactly as sent: path_params, query (a raw query string such as a=1&b=2), headers, cookies, and the body with its content_type. Returns the decoded, schema-checked parameters and body, or the first failure with its kind (missing required parameter, illegal value, unsupported value format, cannot decode value, invalid value, unsupported media type).",
	}, s.handleValidateRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_response",
		Description: "Validate one HTTP response of an operation: the status code selects the documented response (exact code, then NXX range, then default) and the body is decoded by its content_type and checked against that response's schema. Response headers are not validated.",
	}, s.handleValidateResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_media_type",
		Description: "Parse a Content-Type value into type, subtype, structured syntax suffix and ordered parameters, and report which content analyser would decode it (json, multipart, form, noop) or none. Set includes to check whether the parsed type, used as a range, includes another media type.",
	}, s.handleParseMediaType)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}
