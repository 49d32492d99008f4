package paramstyle

import (
	"strings"

	"github.com/erraggy/oasguard/contract"
)

// simple handles simple and form values: comma separated, objects as
// alternating keys and values or, exploded, as key=value pairs.
func (t *Transcoder) simple(p *contract.Parameter, raw string) (any, error) {
	switch shapeOf(p) {
	case shapeObject:
		return t.object(p, raw, ",", p.Explode)
	case shapeArray:
		return t.array(p, raw, ",")
	default:
		return t.primitive(p, raw, p.SchemaType)
	}
}

// label handles ".blue", ".blue.black" and ".R.100.G.200" style values.
func (t *Transcoder) label(p *contract.Parameter, raw string) (any, error) {
	if !strings.HasPrefix(raw, ".") {
		return nil, illegal(p, "label value %q must start with '.'", raw)
	}
	rest := raw[1:]

	switch shapeOf(p) {
	case shapeObject:
		return t.object(p, strings.ReplaceAll(rest, ".", ","), ",", p.Explode)
	case shapeArray:
		return t.array(p, strings.ReplaceAll(rest, ".", ","), ",")
	default:
		return t.primitive(p, rest, p.SchemaType)
	}
}

// matrix handles ";name=blue" style values. ";name" and ";name=" are empty.
func (t *Transcoder) matrix(p *contract.Parameter, raw string) (any, error) {
	prefix := ";" + p.Name
	s := shapeOf(p)

	if raw == prefix || raw == prefix+"=" {
		return t.empty(p, s)
	}

	if s == shapeObject && p.Explode {
		if !strings.HasPrefix(raw, ";") {
			return nil, illegal(p, "matrix value %q must start with ';'", raw)
		}
		return t.object(p, strings.ReplaceAll(raw[1:], ";", ","), ",", true)
	}

	if !strings.HasPrefix(raw, prefix+"=") {
		return nil, illegal(p, "matrix value %q must start with %q", raw, prefix+"=")
	}
	rest := raw[len(prefix)+1:]

	switch s {
	case shapeArray:
		if p.Explode {
			// Every ";name=" becomes a separator, including one inside a value.
			joined := strings.TrimPrefix(strings.ReplaceAll(raw, prefix+"=", ","), ",")
			return t.array(p, joined, ",")
		}
		return t.array(p, rest, ",")
	case shapeObject:
		return t.object(p, rest, ",", false)
	default:
		return t.primitive(p, rest, p.SchemaType)
	}
}

// delimited handles spaceDelimited and pipeDelimited values. Repeated values
// of an exploded array are concatenated.
func (t *Transcoder) delimited(p *contract.Parameter, values []string, sep string) (any, error) {
	switch shapeOf(p) {
	case shapeArray:
		var elems []string
		for _, v := range values {
			if v == "" {
				continue
			}
			elems = append(elems, strings.Split(v, sep)...)
		}
		return t.elements(p, elems)
	case shapeObject:
		return t.object(p, first(values), sep, false)
	default:
		return t.primitive(p, first(values), p.SchemaType)
	}
}

func (t *Transcoder) empty(p *contract.Parameter, s shape) (any, error) {
	switch s {
	case shapeObject:
		return map[string]any{}, nil
	case shapeArray:
		return []any{}, nil
	default:
		return t.primitive(p, "", p.SchemaType)
	}
}

// array splits raw on sep. An empty raw is an empty array.
func (t *Transcoder) array(p *contract.Parameter, raw, sep string) (any, error) {
	if raw == "" {
		return []any{}, nil
	}
	return t.elements(p, strings.Split(raw, sep))
}

func (t *Transcoder) elements(p *contract.Parameter, raws []string) (any, error) {
	out := make([]any, 0, len(raws))
	for _, raw := range raws {
		v, err := t.primitive(p, raw, p.ItemType)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// object splits raw on sep into key=value pairs when explode is set, and into
// alternating keys and values otherwise. An empty raw is an empty object.
func (t *Transcoder) object(p *contract.Parameter, raw, sep string, explode bool) (any, error) {
	out := make(map[string]any)
	if raw == "" {
		return out, nil
	}
	parts := strings.Split(raw, sep)

	if explode {
		for _, part := range parts {
			key, value, ok := strings.Cut(part, "=")
			if !ok {
				return nil, illegal(p, "%q is not a key=value pair", part)
			}
			v, err := t.primitive(p, value, p.PropertyTypes[key])
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	}

	if len(parts)%2 != 0 {
		return nil, illegal(p, "object value %q has an odd number of elements", raw)
	}
	for i := 0; i < len(parts); i += 2 {
		key := parts[i]
		v, err := t.primitive(p, parts[i+1], p.PropertyTypes[key])
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
