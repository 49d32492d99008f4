package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func TestParseDocument_PreservesOrder(t *testing.T) {
	doc, err := ParseDocument([]byte(`openapi: 3.0.3
paths:
  /zebras: {}
  /apes: {}
  /mice: {}
`))
	require.NoError(t, err)

	paths := doc.Root()["paths"].(map[string]any)
	assert.Equal(t, []string{"/zebras", "/apes", "/mice"}, doc.keys("/paths", paths))
	assert.Equal(t, "3.0.3", doc.Version())
}

func TestParseDocument_JSON(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"openapi": "3.1.0", "paths": {"/b": {}, "/a": {}}, "x-n": 3, "x-f": 1.5}`))
	require.NoError(t, err)

	root := doc.Root()
	assert.Equal(t, "3.1.0", doc.Version())
	assert.Equal(t, 3, root["x-n"])
	assert.Equal(t, 1.5, root["x-f"])
	assert.Equal(t, []string{"/b", "/a"}, doc.keys("/paths", root["paths"].(map[string]any)))
}

func TestParseDocument_Scalars(t *testing.T) {
	doc, err := ParseDocument([]byte(`openapi: 3.0.3
created: 2024-01-02
flag: true
none: null
list: [1, two, 3.5]
anchor: &a
  k: v
alias: *a
`))
	require.NoError(t, err)

	root := doc.Root()
	assert.Equal(t, "2024-01-02", root["created"])
	assert.Equal(t, true, root["flag"])
	assert.Nil(t, root["none"])
	assert.Equal(t, []any{1, "two", 3.5}, root["list"])
	assert.Equal(t, map[string]any{"k": "v"}, root["alias"])
}

func TestParseDocument_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"invalid yaml", "openapi: [unclosed\n"},
		{"scalar root", "just a string\n"},
		{"sequence root", "- a\n- b\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrParse), "got %v", err)
		})
	}
}

func TestNewDocument_SortedKeys(t *testing.T) {
	doc := NewDocument(map[string]any{
		"openapi": "3.0.0",
		"paths":   map[string]any{"/c": map[string]any{}, "/a": map[string]any{}, "/b": map[string]any{}},
	})
	paths := doc.Root()["paths"].(map[string]any)
	assert.Equal(t, []string{"/a", "/b", "/c"}, doc.keys("/paths", paths))
	assert.Empty(t, doc.Source())
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    version
		wantErr bool
	}{
		{in: "3.0.3", want: version{major: 3, minor: 0, patch: 3}},
		{in: "3.1", want: version{major: 3, minor: 1}},
		{in: "3.1.0-rc1", want: version{major: 3, minor: 1, prerelease: "rc1"}},
		{in: "3", wantErr: true},
		{in: "3.x.0", wantErr: true},
		{in: "3.0.0.1", wantErr: true},
		{in: "-1.0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := parseVersion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *v)
		})
	}
}
