// Package jsonlit decodes untyped string tokens into JSON-shaped values.
//
// Parameter values and text form fields arrive as bare strings. A token is
// first read as a JSON literal so numbers, booleans, and null keep their type;
// anything else that is not already quoted is read as a JSON string.
package jsonlit

import (
	"github.com/segmentio/encoding/json"
)

// Decode converts a raw token into a JSON-shaped value.
//
//   - "" decodes to the empty string
//   - a valid JSON literal decodes to its value (42 -> float64(42), true -> true, null -> nil)
//   - an unquoted token that is not JSON is wrapped in quotes and decoded as a string
//   - a token that starts with a quote but is not a valid JSON string is an error
//
// The returned error is the underlying JSON syntax error; callers classify it.
func Decode(raw string) (any, error) {
	if raw == "" {
		return "", nil
	}

	var v any
	err := json.Unmarshal([]byte(raw), &v)
	if err == nil {
		return v, nil
	}
	if raw[0] == '"' {
		return nil, err
	}

	var s string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &s); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeText is Decode for free-form text such as form fields. An unquoted
// token that is not valid inside a JSON string (a raw newline, a bare quote,
// a stray backslash) is returned verbatim instead of failing. Tokens that
// start with a quote follow Decode.
func DecodeText(raw string) (any, error) {
	v, err := Decode(raw)
	if err == nil || raw[0] == '"' {
		return v, err
	}
	return raw, nil
}

// DecodeAll decodes each token with Decode, stopping at the first failure.
// The returned index identifies the failing token when err is non-nil.
func DecodeAll(raws []string) (values []any, index int, err error) {
	values = make([]any, len(raws))
	for i, raw := range raws {
		v, err := Decode(raw)
		if err != nil {
			return nil, i, err
		}
		values[i] = v
	}
	return values, -1, nil
}
