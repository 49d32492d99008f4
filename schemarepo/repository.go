// Package schemarepo compiles and evaluates the JSON Schemas embedded in an
// OpenAPI contract.
//
// A Repository is created from the contract document, preloaded once with every
// schema reference the contract uses, and then only read. Validate and Resolve
// are safe for concurrent use after Preload returns.
package schemarepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"

	"github.com/erraggy/oasguard/oaserrors"
)

// resourceURL is the base URL the contract document is registered under.
// Schema refs are fragments relative to it.
const resourceURL = "https://oasguard.invalid/contract.json"

// maxRefHops bounds $ref chains followed by Resolve.
const maxRefHops = 32

// Dialect selects the JSON Schema flavour of the contract's schemas.
type Dialect int

const (
	// DialectOAS30 is the OpenAPI 3.0 schema object (draft-04 semantics plus nullable).
	DialectOAS30 Dialect = iota
	// DialectOAS31 is full JSON Schema draft 2020-12.
	DialectOAS31
)

// String returns the dialect name.
func (d Dialect) String() string {
	if d == DialectOAS31 {
		return "oas3.1"
	}
	return "oas3.0"
}

// Repository resolves and validates values against schema fragments of one document.
type Repository struct {
	dialect Dialect
	doc     map[string]any
	raw     []byte
	schemas map[string]*jsonschema.Schema
}

// New prepares a repository for the given document. The document is copied;
// OAS 3.0 nullable schemas are rewritten into type unions on the copy.
func New(doc map[string]any, dialect Dialect) (*Repository, error) {
	if doc == nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "document cannot be nil"}
	}

	normalized, _ := normalize(doc, dialect).(map[string]any)
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("schemarepo: encoding document: %w", err)
	}

	return &Repository{
		dialect: dialect,
		doc:     normalized,
		raw:     raw,
		schemas: make(map[string]*jsonschema.Schema),
	}, nil
}

// Dialect returns the schema dialect the repository compiles with.
func (r *Repository) Dialect() Dialect {
	return r.dialect
}

// Len returns the number of compiled schemas.
func (r *Repository) Len() int {
	return len(r.schemas)
}

// Preload compiles every ref. Work is split across up to concurrency workers,
// each with its own compiler; a non-positive value uses GOMAXPROCS.
// Preload must complete before the repository is shared.
func (r *Repository) Preload(ctx context.Context, refs []string, concurrency int) error {
	refs = uniqueRefs(refs, r.schemas)
	if len(refs) == 0 {
		return nil
	}

	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	if concurrency > len(refs) {
		concurrency = len(refs)
	}

	chunks := make([][]string, concurrency)
	for i, ref := range refs {
		chunks[i%concurrency] = append(chunks[i%concurrency], ref)
	}

	results := make([]map[string]*jsonschema.Schema, concurrency)
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			compiled, err := r.compileChunk(gctx, chunk)
			if err != nil {
				return err
			}
			results[i] = compiled
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, compiled := range results {
		for ref, s := range compiled {
			r.schemas[ref] = s
		}
	}
	return nil
}

// compileChunk compiles refs with a private compiler. Compilers are not safe
// for concurrent use; compiled schemas are.
func (r *Repository) compileChunk(ctx context.Context, refs []string) (map[string]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if r.dialect == DialectOAS31 {
		c.Draft = jsonschema.Draft2020
		c.AssertFormat = true
	} else {
		c.Draft = jsonschema.Draft4
	}
	if err := c.AddResource(resourceURL, bytes.NewReader(r.raw)); err != nil {
		return nil, fmt.Errorf("schemarepo: registering document: %w", err)
	}

	out := make(map[string]*jsonschema.Schema, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(ref, "#") {
			return nil, &oaserrors.ReferenceError{Ref: ref, Message: "only local schema references are supported"}
		}
		s, err := c.Compile(resourceURL + ref)
		if err != nil {
			return nil, &oaserrors.ReferenceError{Ref: ref, Message: "schema does not compile", Cause: err}
		}
		out[ref] = s
	}
	return out, nil
}

// Validate checks value against the schema at ref. A nil return means the
// value is valid; a *Violation carries the validator's explanation.
func (r *Repository) Validate(ref string, value any) error {
	s, ok := r.schemas[ref]
	if !ok {
		return &oaserrors.ReferenceError{Ref: ref, Message: "schema was not preloaded"}
	}

	err := s.Validate(Instance(value))
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		return newViolation(ref, ve)
	}
	return &Violation{Ref: ref, Details: []Detail{{Message: err.Error()}}}
}

// Resolve returns the schema object at ref, following $ref chains.
// The result is the repository's normalized copy and must not be modified.
func (r *Repository) Resolve(ref string) (map[string]any, error) {
	seen := make(map[string]bool)
	current := ref
	for hop := 0; hop < maxRefHops; hop++ {
		if seen[current] {
			return nil, &oaserrors.ReferenceError{Ref: ref, IsCircular: true}
		}
		seen[current] = true

		node, err := r.lookup(current)
		if err != nil {
			return nil, err
		}
		next, isRef := node["$ref"].(string)
		if !isRef {
			return node, nil
		}
		current = next
	}
	return nil, &oaserrors.ReferenceError{Ref: ref, Message: fmt.Sprintf("more than %d chained references", maxRefHops)}
}

func (r *Repository) lookup(ref string) (map[string]any, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, &oaserrors.ReferenceError{Ref: ref, Message: "only local schema references are supported"}
	}
	ptr, err := jsonpointer.New(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, &oaserrors.ReferenceError{Ref: ref, Message: "malformed JSON pointer", Cause: err}
	}
	v, _, err := ptr.Get(r.doc)
	if err != nil {
		return nil, &oaserrors.ReferenceError{Ref: ref, Message: "target not found", Cause: err}
	}
	switch node := v.(type) {
	case map[string]any:
		return node, nil
	case bool:
		// Boolean schemas: true accepts everything, false nothing.
		if node {
			return map[string]any{}, nil
		}
		return map[string]any{"not": map[string]any{}}, nil
	default:
		return nil, &oaserrors.ReferenceError{Ref: ref, Message: fmt.Sprintf("target is %T, not a schema", v)}
	}
}

func uniqueRefs(refs []string, existing map[string]*jsonschema.Schema) []string {
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		if _, ok := existing[ref]; ok {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}
