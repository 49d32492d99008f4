package schemarepo

import (
	"slices"
)

// normalize deep-copies a decoded document. For OAS 3.0 it rewrites
// `nullable: true` into a type union so draft-04 evaluation accepts null.
func normalize(node any, dialect Dialect) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = normalize(v, dialect)
		}
		if dialect == DialectOAS30 {
			rewriteNullable(out)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = normalize(v, dialect)
		}
		return out
	default:
		return n
	}
}

func rewriteNullable(schema map[string]any) {
	nullable, _ := schema["nullable"].(bool)
	if !nullable {
		return
	}
	delete(schema, "nullable")

	switch t := schema["type"].(type) {
	case string:
		schema["type"] = []any{t, "null"}
	case []any:
		if !slices.Contains(t, any("null")) {
			schema["type"] = append(t, "null")
		}
	}

	if enum, ok := schema["enum"].([]any); ok && !slices.Contains(enum, nil) {
		schema["enum"] = append(enum, nil)
	}
}

// Instance converts a decoded value into the shapes the validator accepts.
// Raw byte payloads become strings; integer Go types become float64.
func Instance(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = Instance(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Instance(e)
		}
		return out
	default:
		return v
	}
}
