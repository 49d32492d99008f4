package contract

import (
	"context"
	"strings"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/schemarepo"
)

// SchemaRepository validates values against, and resolves, the schemas a
// contract references. Refs are JSON pointer fragments such as
// "#/components/schemas/Pet".
type SchemaRepository interface {
	// Validate returns nil when value satisfies the schema at ref.
	Validate(ref string, value any) error
	// Resolve returns the schema object at ref with $ref chains followed.
	Resolve(ref string) (map[string]any, error)
}

// Preloader is implemented by repositories that compile schemas ahead of use.
type Preloader interface {
	Preload(ctx context.Context, refs []string, concurrency int) error
}

var _ Preloader = (*schemarepo.Repository)(nil)

// Contract is the immutable model of one OpenAPI document.
// It is safe for concurrent use.
type Contract struct {
	version         string
	dialect         schemarepo.Dialect
	paths           []*Path
	operations      []*Operation
	byID            map[string]*Operation
	schemas         SchemaRepository
	securitySchemes []*SecurityScheme
	router          *pathRouter
}

// Version returns the declared openapi version.
func (c *Contract) Version() string {
	return c.version
}

// Dialect returns the schema dialect implied by the version.
func (c *Contract) Dialect() schemarepo.Dialect {
	return c.dialect
}

// Operation returns the operation with the given id. An unknown id yields a
// *oaserrors.NotFoundError.
func (c *Contract) Operation(id string) (*Operation, error) {
	op, ok := c.byID[id]
	if !ok {
		return nil, &oaserrors.NotFoundError{OperationID: id}
	}
	return op, nil
}

// Operations returns every operation in document order.
func (c *Contract) Operations() []*Operation {
	out := make([]*Operation, len(c.operations))
	copy(out, c.operations)
	return out
}

// Paths returns every path in document order.
func (c *Contract) Paths() []*Path {
	out := make([]*Path, len(c.paths))
	copy(out, c.paths)
	return out
}

// Schemas returns the schema repository backing the contract.
func (c *Contract) Schemas() SchemaRepository {
	return c.schemas
}

// SecuritySchemes returns the declared security schemes in document order.
func (c *Contract) SecuritySchemes() []*SecurityScheme {
	out := make([]*SecurityScheme, len(c.securitySchemes))
	copy(out, c.securitySchemes)
	return out
}

// MatchPath finds the most specific path template matching a request path.
// Literal segments win over placeholders. Placeholder values are returned raw.
func (c *Contract) MatchPath(requestPath string) (*Path, map[string]string, bool) {
	return c.router.match(requestPath)
}

// Route finds the operation serving method and request path.
func (c *Contract) Route(method, requestPath string) (*Operation, map[string]string, error) {
	p, params, ok := c.MatchPath(requestPath)
	if ok {
		if op := p.Operation(strings.ToLower(method)); op != nil {
			return op, params, nil
		}
	}
	return nil, nil, &oaserrors.NotFoundError{OperationID: strings.ToUpper(method) + " " + requestPath}
}
