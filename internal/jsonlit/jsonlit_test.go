package jsonlit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected any
	}{
		{name: "empty is empty string", raw: "", expected: ""},
		{name: "integer", raw: "42", expected: float64(42)},
		{name: "negative float", raw: "-3.5", expected: -3.5},
		{name: "boolean true", raw: "true", expected: true},
		{name: "boolean false", raw: "false", expected: false},
		{name: "null", raw: "null", expected: nil},
		{name: "free text", raw: "blue", expected: "blue"},
		{name: "text with spaces", raw: "hello world", expected: "hello world"},
		{name: "quoted string", raw: `"quoted"`, expected: "quoted"},
		{name: "leading digits then text", raw: "42abc", expected: "42abc"},
		{name: "json array literal", raw: "[1,2]", expected: []any{float64(1), float64(2)}},
		{name: "json object literal", raw: `{"a":1}`, expected: map[string]any{"a": float64(1)}},
		{name: "unicode text", raw: "héllo", expected: "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unterminated quoted string", raw: `"abc`},
		{name: "quoted string with trailing garbage", raw: `"abc"def`},
		{name: "unquoted with bad escape", raw: `a\qb`},
		{name: "unquoted with embedded quote", raw: `a"b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected any
	}{
		{name: "number", raw: "7", expected: float64(7)},
		{name: "free text", raw: "blue", expected: "blue"},
		{name: "multi-line", raw: "line one\nline two", expected: "line one\nline two"},
		{name: "embedded quote", raw: `he said "hi"`, expected: `he said "hi"`},
		{name: "backslash", raw: `C:\pets\rex`, expected: `C:\pets\rex`},
		{name: "quoted string", raw: `"quoted"`, expected: "quoted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := DecodeText(`"abc`)
	assert.Error(t, err, "a malformed quoted token still fails")
}

func TestDecodeAll(t *testing.T) {
	values, idx, err := DecodeAll([]string{"1", "two", "true"})
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
	assert.Equal(t, []any{float64(1), "two", true}, values)

	_, idx, err = DecodeAll([]string{"ok", `"bad`})
	require.Error(t, err)
	assert.Equal(t, 1, idx)
}
