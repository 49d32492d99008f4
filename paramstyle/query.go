package paramstyle

import (
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/erraggy/oasguard/contract"
)

// TransformValues decodes every value supplied for p under its own name.
// Form arrays are comma-joined so exploded (?id=1&id=2) and unexploded
// (?id=1,2) forms decode alike. Other primitives take the first value.
func (t *Transcoder) TransformValues(p *contract.Parameter, values []string) (any, error) {
	switch p.Style {
	case contract.StyleForm, "":
		if shapeOf(p) == shapeArray {
			return t.array(p, strings.Join(values, ","), ",")
		}
		return t.simple(p, first(values))
	case contract.StyleSpaceDelimited:
		return t.delimited(p, values, " ")
	case contract.StylePipeDelimited:
		return t.delimited(p, values, "|")
	default:
		return t.Transform(p, first(values))
	}
}

// TransformQuery locates and decodes p in a parsed query string. present is
// false when the query carries no value for p.
//
// deepObject parameters collect name[key] entries. Exploded form objects
// collect every key for which claimed returns false; claimed may be nil.
func (t *Transcoder) TransformQuery(p *contract.Parameter, query url.Values, claimed func(key string) bool) (value any, present bool, err error) {
	if p.Style == contract.StyleDeepObject {
		return t.deepObject(p, query)
	}

	if shapeOf(p) == shapeObject && p.Explode && (p.Style == contract.StyleForm || p.Style == "") {
		out := make(map[string]any)
		for _, key := range slices.Sorted(maps.Keys(query)) {
			if claimed != nil && claimed(key) {
				continue
			}
			v, err := t.primitive(p, first(query[key]), p.PropertyTypes[key])
			if err != nil {
				return nil, true, err
			}
			out[key] = v
		}
		return out, len(out) > 0, nil
	}

	values, ok := query[p.Name]
	if !ok {
		return nil, false, nil
	}
	v, err := t.TransformValues(p, values)
	return v, true, err
}

// deepObject builds an object from name[key]=value entries. Nested keys
// (name[a][b]) build nested objects; repeated keys build arrays.
func (t *Transcoder) deepObject(p *contract.Parameter, query url.Values) (any, bool, error) {
	if shapeOf(p) != shapeObject {
		return nil, false, unsupported(p, "deepObject style requires an object schema")
	}

	prefix := p.Name + "["
	out := make(map[string]any)
	found := false

	for _, key := range slices.Sorted(maps.Keys(query)) {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if !strings.HasSuffix(key, "]") {
			return nil, true, illegal(p, "malformed deepObject key %q", key)
		}
		path := strings.Split(key[len(prefix):len(key)-1], "][")
		if slices.Contains(path, "") {
			return nil, true, illegal(p, "malformed deepObject key %q", key)
		}

		typ := ""
		if len(path) == 1 {
			typ = p.PropertyTypes[path[0]]
		}
		values := query[key]
		var v any
		if len(values) == 1 {
			decoded, err := t.primitive(p, values[0], typ)
			if err != nil {
				return nil, true, err
			}
			v = decoded
		} else {
			elems := make([]any, 0, len(values))
			for _, raw := range values {
				decoded, err := t.primitive(p, raw, "")
				if err != nil {
					return nil, true, err
				}
				elems = append(elems, decoded)
			}
			v = elems
		}

		if !setPath(out, path, v) {
			return nil, true, illegal(p, "deepObject key %q conflicts with another key", key)
		}
		found = true
	}
	return out, found, nil
}

// setPath stores v at path inside m, creating intermediate objects. It
// reports false when an intermediate key already holds a non-object.
func setPath(m map[string]any, path []string, v any) bool {
	for _, key := range path[:len(path)-1] {
		next, exists := m[key]
		if !exists {
			child := make(map[string]any)
			m[key] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return false
		}
		m = child
	}
	last := path[len(path)-1]
	if _, exists := m[last]; exists {
		return false
	}
	m[last] = v
	return true
}
