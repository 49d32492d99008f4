package httpvalidator

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func TestValidateHTTPRequest(t *testing.T) {
	v := newPetstore(t)

	t.Run("routes and decodes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets/42", nil)
		vr, err := v.ValidateHTTPRequest(req)
		require.NoError(t, err)
		assert.Equal(t, "showPetById", vr.OperationID())
		assert.Equal(t, float64(42), vr.PathParams()["petId"])
	})

	t.Run("literal path wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets/mine", nil)
		vr, err := v.ValidateHTTPRequest(req)
		require.NoError(t, err)
		assert.Equal(t, "listMyPets", vr.OperationID())
	})

	t.Run("percent-encoded placeholder", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/colors/.blue.dark%20red", nil)
		vr, err := v.ValidateHTTPRequest(req)
		require.NoError(t, err)
		assert.Equal(t, []any{"blue", "dark red"}, vr.PathParams()["color"])
	})

	t.Run("query and cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/search/;x=1;y=2?filter%5Bcolor%5D=red", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "s1"})
		vr, err := v.ValidateHTTPRequest(req)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"color": "red"}, vr.QueryParams()["filter"])
		assert.Equal(t, "s1", vr.CookieParams()["session"])
	})

	t.Run("malformed query escape", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets?limit=%zz", nil)
		_, err := v.ValidateHTTPRequest(req)
		require.Error(t, err)
		assert.Equal(t, oaserrors.KindIllegalValue, oaserrors.KindOf(err))

		var ve *oaserrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "query", ve.Location)
	})

	t.Run("unknown path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/owners", nil)
		_, err := v.ValidateHTTPRequest(req)
		assert.ErrorIs(t, err, oaserrors.ErrOperationNotFound)
	})

	t.Run("unknown method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/pets", nil)
		_, err := v.ValidateHTTPRequest(req)
		assert.ErrorIs(t, err, oaserrors.ErrOperationNotFound)
	})

	t.Run("body stays readable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(`{"name":"Rex"}`))
		req.Header.Set("Content-Type", "application/json")
		vr, err := v.ValidateHTTPRequest(req)
		require.NoError(t, err)
		body, ok := vr.Body()
		require.True(t, ok)
		assert.Equal(t, map[string]any{"name": "Rex"}, body)

		again, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Rex"}`, string(again))
	})
}

func TestValidateHTTPRequest_BodyLimit(t *testing.T) {
	v := newPetstore(t, WithMaxBodySize(8))

	t.Run("declared length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(`{"name":"Rexanne"}`))
		req.Header.Set("Content-Type", "application/json")
		_, err := v.ValidateHTTPRequest(req)
		var rle *oaserrors.ResourceLimitError
		require.ErrorAs(t, err, &rle)
		assert.Equal(t, int64(8), rle.Limit)
	})

	t.Run("unknown length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(`{"name":"Rexanne"}`))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1
		_, err := v.ValidateHTTPRequest(req)
		assert.ErrorIs(t, err, oaserrors.ErrResourceLimit)
	})
}

func TestMiddleware(t *testing.T) {
	v := newPetstore(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vr, ok := FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, vr.OperationID())
	})
	handler := v.Middleware(nil)(next)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		ct         string
		wantStatus int
		wantKind   string
	}{
		{"valid", http.MethodGet, "/pets/42", "", "", http.StatusOK, ""},
		{"invalid value", http.MethodGet, "/pets/abc", "", "", http.StatusBadRequest, "invalid value"},
		{"missing body", http.MethodPost, "/pets", "", "", http.StatusBadRequest, "missing required parameter"},
		{"no operation", http.MethodGet, "/owners/1", "", "", http.StatusNotFound, ""},
		{"unsupported media type", http.MethodPut, "/pets/1/photo", "png", "image/png", http.StatusUnsupportedMediaType, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				return
			}
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var p Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantKind, p.Kind)
			assert.NotEmpty(t, p.Error)
		})
	}

	t.Run("valid request reaches handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/42", nil))
		assert.Equal(t, "showPetById", rec.Body.String())
	})

	t.Run("plain text when json is not accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/pets/abc", nil)
		req.Header.Set("Accept", "text/plain")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "invalid value")
	})

	t.Run("custom error handler", func(t *testing.T) {
		var got error
		custom := v.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		})(next)
		rec := httptest.NewRecorder()
		custom.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/abc", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, oaserrors.KindInvalidValue, oaserrors.KindOf(got))
	})
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", oaserrors.NewValidationError(oaserrors.KindIllegalValue, "query", "q", "bad"), http.StatusBadRequest},
		{"not found", &oaserrors.NotFoundError{OperationID: "x"}, http.StatusNotFound},
		{"too large", &oaserrors.ResourceLimitError{ResourceType: "body_size"}, http.StatusRequestEntityTooLarge},
		{"media type", &oaserrors.MediaTypeError{ContentType: "image/png"}, http.StatusUnsupportedMediaType},
		{"other", &oaserrors.ReferenceError{Ref: "#/x"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
