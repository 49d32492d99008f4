package mediatype

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func analyse(t *testing.T, contentType string, body []byte) (any, error) {
	t.Helper()
	a, err := DefaultRegistry().CreateContentAnalyser(contentType, body, Request)
	require.NoError(t, err)
	return Analyse(a)
}

func TestJSONAnalyser(t *testing.T) {
	v, err := analyse(t, "application/json", []byte(`{"name":"Rex","age":3,"tags":["a"],"tag":null}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Rex", "age": float64(3), "tags": []any{"a"}, "tag": nil}, v)

	v, err = analyse(t, "application/vnd.api+json; charset=utf-8", []byte(`[1,true]`))
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), true}, v)

	_, err = analyse(t, "application/json", []byte(`{"name":`))
	require.Error(t, err)
	assert.Equal(t, oaserrors.KindIllegalValue, oaserrors.KindOf(err))
	assert.Contains(t, err.Error(), "body can't be decoded")
}

func TestJSONAnalyser_Charset(t *testing.T) {
	latin1 := []byte("{\"name\":\"caf\xe9\"}")
	v, err := analyse(t, "application/json; charset=iso-8859-1", latin1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "café"}, v)

	_, err = analyse(t, "application/json; charset=x-unknown", []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, oaserrors.KindUnsupportedValueFormat, oaserrors.KindOf(err))
}

func TestJSONAnalyser_TwoPhases(t *testing.T) {
	a, err := DefaultRegistry().CreateContentAnalyser("application/json", []byte(`{"a":1}`), Response)
	require.NoError(t, err)

	checked, err := a.CheckSyntacticalCorrectness()
	require.NoError(t, err)
	v, err := checked.Transform()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)

	a, err = DefaultRegistry().CreateContentAnalyser("application/json", []byte(`nope`), Response)
	require.NoError(t, err)
	_, err = a.CheckSyntacticalCorrectness()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response body can't be decoded")
}

func TestNoOpAnalyser(t *testing.T) {
	body := []byte{0x00, 0xff, 'x'}
	for _, ct := range []string{"application/octet-stream", "text/plain", "text/plain; charset=utf-8"} {
		v, err := analyse(t, ct, body)
		require.NoError(t, err)
		assert.Equal(t, body, v)
	}
}

func TestFormAnalyser(t *testing.T) {
	v, err := analyse(t, "application/x-www-form-urlencoded", []byte("a=1&b=x&b=2&c="))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1), "b": []any{"x", float64(2)}, "c": ""}, v)

	_, err = analyse(t, "application/x-www-form-urlencoded", []byte("a=%zz"))
	require.Error(t, err)
	assert.Equal(t, oaserrors.KindIllegalValue, oaserrors.KindOf(err))
}

type partSpec struct {
	name        string
	contentType string
	data        string
}

func multipartBody(t *testing.T, parts ...partSpec) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.name+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(p.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestMultipartAnalyser(t *testing.T) {
	body, ct := multipartBody(t,
		partSpec{name: "name", contentType: "text/plain", data: "Rex the dog"},
		partSpec{name: "age", data: "3"},
		partSpec{name: "meta", contentType: "application/json", data: `{"vaccinated":true}`},
		partSpec{name: "photo", contentType: "application/octet-stream", data: "\x89PNG"},
		partSpec{name: "nickname", contentType: "text/plain", data: ""},
		partSpec{name: "tag", data: "a"},
		partSpec{name: "tag", data: "b"},
		partSpec{name: "latin", contentType: "text/plain; charset=iso-8859-1", data: "caf\xe9"},
	)

	v, err := analyse(t, ct, body)
	require.NoError(t, err)

	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Rex the dog", obj["name"])
	assert.Equal(t, float64(3), obj["age"])
	assert.Equal(t, map[string]any{"vaccinated": true}, obj["meta"])
	assert.Equal(t, []byte("\x89PNG"), obj["photo"])
	assert.Equal(t, []any{"a", "b"}, obj["tag"])
	assert.Equal(t, "café", obj["latin"])

	_, hasNickname := obj["nickname"]
	assert.False(t, hasNickname, "empty parts are omitted")
}

func TestMultipartAnalyser_FreeText(t *testing.T) {
	body, ct := multipartBody(t,
		partSpec{name: "bio", contentType: "text/plain", data: "line one\nline two"},
		partSpec{name: "quote", data: `she said "sit"`},
	)

	v, err := analyse(t, ct, body)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"bio":   "line one\nline two",
		"quote": `she said "sit"`,
	}, v)
}

func TestMultipartAnalyser_MixedCaseBoundary(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"token", "multipart/form-data; boundary=----WebKitFormBoundary7MA4YWxkTrZu0gW"},
		{"quoted", `multipart/form-data; boundary="----WebKitFormBoundary7MA4YWxkTrZu0gW"`},
	}
	body := []byte("------WebKitFormBoundary7MA4YWxkTrZu0gW\r\n" +
		"Content-Disposition: form-data; name=\"name\"\r\n\r\n" +
		"Rex\r\n" +
		"------WebKitFormBoundary7MA4YWxkTrZu0gW--\r\n")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := analyse(t, tt.contentType, body)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"name": "Rex"}, v)
		})
	}
}

func TestMultipartAnalyser_Errors(t *testing.T) {
	imageBody, imageCT := multipartBody(t, partSpec{name: "photo", contentType: "image/png", data: "x"})
	badText, badTextCT := multipartBody(t, partSpec{name: "note", data: `"unterminated`})
	badJSON, badJSONCT := multipartBody(t, partSpec{name: "meta", contentType: "application/json", data: `{`})

	tests := []struct {
		name        string
		contentType string
		body        []byte
		kind        oaserrors.Kind
		part        string
	}{
		{"missing boundary", "multipart/form-data", []byte("x"), oaserrors.KindMissingParameter, ""},
		{"unsupported part type", imageCT, imageBody, oaserrors.KindUnsupportedValueFormat, "photo"},
		{"undecodable text part", badTextCT, badText, oaserrors.KindCannotDecodeValue, "note"},
		{"undecodable json part", badJSONCT, badJSON, oaserrors.KindIllegalValue, "meta"},
		{"truncated body", "multipart/form-data; boundary=abc",
			[]byte("--abc\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nvalue"), oaserrors.KindIllegalValue, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyse(t, tt.contentType, tt.body)
			require.Error(t, err)
			assert.Equal(t, tt.kind, oaserrors.KindOf(err), "got %v", err)

			var ve *oaserrors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "body", ve.Location)
			if tt.part != "" {
				assert.Equal(t, tt.part, ve.Parameter)
				assert.Contains(t, ve.Error(), tt.part)
			}
		})
	}
}
