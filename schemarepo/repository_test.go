package schemarepo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func petDocument() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"paths": map[string]any{
			"/pets/{petId}": map[string]any{
				"get": map[string]any{
					"parameters": []any{
						map[string]any{
							"name":   "petId",
							"in":     "path",
							"schema": map[string]any{"type": "integer", "minimum": float64(1)},
						},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": map[string]any{
					"type":     "object",
					"required": []any{"name"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"tag":  map[string]any{"type": "string", "nullable": true},
						"kind": map[string]any{"type": "string", "enum": []any{"cat", "dog"}, "nullable": true},
						"parent": map[string]any{"$ref": "#/components/schemas/Pet"},
					},
				},
				"PetAlias": map[string]any{"$ref": "#/components/schemas/Pet"},
				"Loop":     map[string]any{"$ref": "#/components/schemas/Loop"},
			},
		},
	}
}

const petIDRef = "#/paths/~1pets~1{petId}/get/parameters/0/schema"

func newPreloaded(t *testing.T, refs ...string) *Repository {
	t.Helper()
	r, err := New(petDocument(), DialectOAS30)
	require.NoError(t, err)
	require.NoError(t, r.Preload(context.Background(), refs, 2))
	return r
}

func TestRepository_Validate(t *testing.T) {
	r := newPreloaded(t, petIDRef, "#/components/schemas/Pet")
	assert.Equal(t, 2, r.Len())

	t.Run("valid integer", func(t *testing.T) {
		assert.NoError(t, r.Validate(petIDRef, float64(42)))
	})

	t.Run("string fails integer schema", func(t *testing.T) {
		err := r.Validate(petIDRef, "abc")
		var v *Violation
		require.True(t, errors.As(err, &v))
		assert.Equal(t, petIDRef, v.Ref)
		assert.NotEmpty(t, v.Details)
	})

	t.Run("minimum enforced", func(t *testing.T) {
		assert.Error(t, r.Validate(petIDRef, float64(0)))
	})

	t.Run("object with recursive ref", func(t *testing.T) {
		pet := map[string]any{"name": "rex", "parent": map[string]any{"name": "max"}}
		assert.NoError(t, r.Validate("#/components/schemas/Pet", pet))
	})

	t.Run("missing required property", func(t *testing.T) {
		err := r.Validate("#/components/schemas/Pet", map[string]any{"tag": "x"})
		var v *Violation
		require.True(t, errors.As(err, &v))
		assert.Contains(t, v.Error(), "name")
	})

	t.Run("nullable accepts null", func(t *testing.T) {
		assert.NoError(t, r.Validate("#/components/schemas/Pet", map[string]any{"name": "rex", "tag": nil}))
	})

	t.Run("nullable enum accepts null", func(t *testing.T) {
		assert.NoError(t, r.Validate("#/components/schemas/Pet", map[string]any{"name": "rex", "kind": nil}))
		assert.Error(t, r.Validate("#/components/schemas/Pet", map[string]any{"name": "rex", "kind": "bird"}))
	})

	t.Run("bytes are validated as strings", func(t *testing.T) {
		assert.NoError(t, r.Validate("#/components/schemas/Pet", map[string]any{"name": []byte("rex")}))
	})

	t.Run("unknown ref is a reference error", func(t *testing.T) {
		err := r.Validate("#/components/schemas/Nope", "x")
		assert.True(t, errors.Is(err, oaserrors.ErrReference))
	})
}

func TestRepository_Preload(t *testing.T) {
	t.Run("remote refs rejected", func(t *testing.T) {
		r, err := New(petDocument(), DialectOAS30)
		require.NoError(t, err)
		err = r.Preload(context.Background(), []string{"other.yaml#/Pet"}, 1)
		assert.True(t, errors.Is(err, oaserrors.ErrReference))
	})

	t.Run("duplicates compiled once", func(t *testing.T) {
		r := newPreloaded(t, petIDRef, petIDRef, "")
		assert.Equal(t, 1, r.Len())
	})

	t.Run("cancelled context", func(t *testing.T) {
		r, err := New(petDocument(), DialectOAS30)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, r.Preload(ctx, []string{petIDRef}, 1))
	})
}

func TestRepository_Resolve(t *testing.T) {
	r, err := New(petDocument(), DialectOAS30)
	require.NoError(t, err)

	t.Run("follows ref chain", func(t *testing.T) {
		s, err := r.Resolve("#/components/schemas/PetAlias")
		require.NoError(t, err)
		assert.Equal(t, "object", s["type"])
	})

	t.Run("nullable rewritten on copy", func(t *testing.T) {
		s, err := r.Resolve("#/components/schemas/Pet")
		require.NoError(t, err)
		props := s["properties"].(map[string]any)
		assert.Equal(t, []any{"string", "null"}, props["tag"].(map[string]any)["type"])
	})

	t.Run("circular ref detected", func(t *testing.T) {
		_, err := r.Resolve("#/components/schemas/Loop")
		assert.True(t, errors.Is(err, oaserrors.ErrCircularReference))
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := r.Resolve("#/components/schemas/Missing")
		assert.True(t, errors.Is(err, oaserrors.ErrReference))
	})
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	doc := petDocument()
	_, err := New(doc, DialectOAS30)
	require.NoError(t, err)
	props := doc["components"].(map[string]any)["schemas"].(map[string]any)["Pet"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, true, props["tag"].(map[string]any)["nullable"])
}

func TestDialect31(t *testing.T) {
	doc := map[string]any{
		"openapi": "3.1.0",
		"components": map[string]any{
			"schemas": map[string]any{
				"Maybe": map[string]any{"type": []any{"integer", "null"}, "exclusiveMinimum": float64(0)},
			},
		},
	}
	r, err := New(doc, DialectOAS31)
	require.NoError(t, err)
	require.NoError(t, r.Preload(context.Background(), []string{"#/components/schemas/Maybe"}, 0))

	assert.NoError(t, r.Validate("#/components/schemas/Maybe", nil))
	assert.NoError(t, r.Validate("#/components/schemas/Maybe", 3))
	assert.Error(t, r.Validate("#/components/schemas/Maybe", float64(0)))
	assert.Equal(t, "oas3.1", r.Dialect().String())
}
