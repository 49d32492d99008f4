// Package mediatype parses content types and decodes message bodies into
// JSON-shaped values.
//
// A [Registry] maps a parsed [Info] to the first matching content analyser.
// Analysers run in two phases: CheckSyntacticalCorrectness verifies the
// payload and returns a [Checked] value holding whatever it parsed, and
// Checked.Transform produces the final value from that state.
//
//	analyser, err := mediatype.DefaultRegistry().CreateContentAnalyser(ct, body, mediatype.Request)
//	if err != nil {
//		return err // *oaserrors.MediaTypeError
//	}
//	value, err := mediatype.Analyse(analyser)
package mediatype

import (
	"strings"

	"github.com/elnormous/contenttype"

	"github.com/erraggy/oasguard/oaserrors"
)

// Param is one media type parameter.
type Param struct {
	Name  string
	Value string
}

// Info is a parsed media type such as "application/vnd.api+json; charset=utf-8".
// Type and Subtype are lowercase; Subtype excludes the suffix.
type Info struct {
	Type    string
	Subtype string
	// Suffix is the structured syntax suffix after the last '+', e.g. "json".
	Suffix string
	// Parameters are in header order with their original value casing.
	Parameters []Param
}

// Of parses a Content-Type header value.
func Of(header string) (Info, error) {
	mt := contenttype.NewMediaType(header)
	if mt.Type == "" || mt.Subtype == "" {
		return Info{}, &oaserrors.MediaTypeError{ContentType: header, Message: "malformed media type"}
	}

	info := Info{Type: strings.ToLower(mt.Type)}
	subtype := strings.ToLower(mt.Subtype)
	if idx := strings.LastIndexByte(subtype, '+'); idx > 0 {
		info.Subtype, info.Suffix = subtype[:idx], subtype[idx+1:]
	} else {
		info.Subtype = subtype
	}

	if len(mt.Parameters) > 0 {
		info.Parameters = orderedParams(header, mt.Parameters)
	}
	return info, nil
}

// orderedParams lists params in header order. Values come from the raw
// header because contenttype lowercases them; it only decides which names
// are well-formed.
func orderedParams(header string, params contenttype.Parameters) []Param {
	out := make([]Param, 0, len(params))
	seen := make(map[string]bool, len(params))

	_, rest, _ := strings.Cut(header, ";")
	for rest != "" {
		var name, value string
		name, value, rest = nextParam(rest)
		if _, ok := params[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Param{Name: name, Value: value})
	}
	for name, value := range params {
		if !seen[name] {
			out = append(out, Param{Name: name, Value: value})
		}
	}
	return out
}

// nextParam scans one "name=value" pair from s and returns the remainder
// after the following ';'. Quoted values are unquoted and may contain ';'.
func nextParam(s string) (name, value, rest string) {
	s = strings.TrimLeft(s, " \t")
	eq := strings.IndexAny(s, "=;")
	if eq < 0 {
		return strings.ToLower(strings.TrimSpace(s)), "", ""
	}
	name = strings.ToLower(strings.TrimSpace(s[:eq]))
	if s[eq] == ';' {
		return name, "", s[eq+1:]
	}

	s = strings.TrimLeft(s[eq+1:], " \t")
	if !strings.HasPrefix(s, `"`) {
		value, rest, _ = strings.Cut(s, ";")
		return name, strings.TrimSpace(value), rest
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case c == '"':
			_, rest, _ = strings.Cut(s[i+1:], ";")
			return name, b.String(), rest
		default:
			b.WriteByte(c)
		}
	}
	return name, b.String(), ""
}

// FullType returns "type/subtype[+suffix]" without parameters.
func (i Info) FullType() string {
	s := i.Type + "/" + i.Subtype
	if i.Suffix != "" {
		s += "+" + i.Suffix
	}
	return s
}

// Param returns the value of the named parameter, or "" when absent.
func (i Info) Param(name string) string {
	for _, p := range i.Parameters {
		if strings.EqualFold(p.Name, name) {
			return p.Value
		}
	}
	return ""
}

// String renders the media type with its parameters.
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.FullType())
	for _, p := range i.Parameters {
		b.WriteString("; ")
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// DoesInclude reports whether the pattern i accepts the concrete type other.
// Parameters are ignored. Inclusion is asymmetric:
//
//   - "*/*" and "type/*" include every subtype when they carry no suffix
//   - "type/*+json" includes every subtype with the json suffix
//   - "application/vnd.example" includes "application/vnd.example+json"
//   - "application/vnd.example+json" does not include "application/vnd.example"
func (i Info) DoesInclude(other Info) bool {
	if i.Type != "*" && i.Type != other.Type {
		return false
	}
	if i.Subtype == "*" {
		return i.Suffix == "" || i.Suffix == other.Suffix
	}
	if i.Subtype != other.Subtype {
		return false
	}
	return i.Suffix == "" || i.Suffix == other.Suffix
}
