package httpvalidator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/elnormous/contenttype"
	"github.com/segmentio/encoding/json"

	"github.com/erraggy/oasguard/oaserrors"
)

// ValidateHTTPRequest routes r to its operation and validates it.
//
// The body is read up to the configured maximum size and r.Body is replaced
// with a reader over the bytes read, so handlers can read it again.
// A request that matches no path and method fails with *oaserrors.NotFoundError;
// a body over the limit fails with *oaserrors.ResourceLimitError.
func (v *Validator) ValidateHTTPRequest(r *http.Request) (*ValidatedRequest, error) {
	op, placeholders, err := v.contract.Route(r.Method, r.URL.EscapedPath())
	if err != nil {
		v.logger.Debug("no matching operation", "method", r.Method, "path", r.URL.Path)
		return nil, err
	}

	path := make(map[string]string, len(placeholders))
	for name, raw := range placeholders {
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			return nil, v.fail(op, &oaserrors.ValidationError{
				Kind:      oaserrors.KindIllegalValue,
				Location:  "path",
				Parameter: name,
				Message:   "malformed percent-encoding",
				Cause:     err,
			})
		}
		path[name] = decoded
	}

	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}

	query, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		return nil, v.fail(op, &oaserrors.ValidationError{
			Kind:     oaserrors.KindIllegalValue,
			Location: "query",
			Message:  "malformed query string",
			Cause:    err,
		})
	}

	body, err := v.readBody(r)
	if err != nil {
		return nil, v.fail(op, err)
	}

	raw := RawParameters{
		Path:   path,
		Query:  query,
		Header: r.Header,
		Cookie: cookies,
	}
	return v.ValidateRequest(op.ID, raw, body, r.Header.Get("Content-Type"))
}

func (v *Validator) readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	if r.ContentLength > v.maxBodySize {
		return nil, &oaserrors.ResourceLimitError{ResourceType: "body_size", Limit: v.maxBodySize, Actual: r.ContentLength}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, v.maxBodySize+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, oaserrors.NewValidationError(oaserrors.KindIllegalValue, "body", "", "reading request body: %v", err)
	}
	if int64(len(body)) > v.maxBodySize {
		return nil, &oaserrors.ResourceLimitError{ResourceType: "body_size", Limit: v.maxBodySize}
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

type contextKey struct{}

// FromContext returns the validated request stored by Middleware.
func FromContext(ctx context.Context) (*ValidatedRequest, bool) {
	vr, ok := ctx.Value(contextKey{}).(*ValidatedRequest)
	return vr, ok
}

// NewContext returns a copy of ctx carrying vr.
func NewContext(ctx context.Context, vr *ValidatedRequest) context.Context {
	return context.WithValue(ctx, contextKey{}, vr)
}

// ErrorHandler writes the response for a request that failed validation.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware returns net/http middleware that validates every request before
// calling the next handler. The *ValidatedRequest is available to the next
// handler through FromContext. Failures are passed to onError; nil selects
// DefaultErrorHandler.
//
//	mux := http.NewServeMux()
//	http.ListenAndServe(":8080", v.Middleware(nil)(mux))
func (v *Validator) Middleware(onError ErrorHandler) func(http.Handler) http.Handler {
	if onError == nil {
		onError = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vr, err := v.ValidateHTTPRequest(r)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), vr)))
		})
	}
}

// StatusCode maps a validation failure to an HTTP status:
//   - *oaserrors.NotFoundError: 404
//   - *oaserrors.ResourceLimitError: 413
//   - *oaserrors.MediaTypeError: 415
//   - *oaserrors.ValidationError: 400
//
// Anything else is 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, oaserrors.ErrOperationNotFound):
		return http.StatusNotFound
	case errors.Is(err, oaserrors.ErrResourceLimit):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, oaserrors.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, oaserrors.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Problem is the JSON body written by DefaultErrorHandler.
type Problem struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Location  string `json:"location,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

var problemMediaTypes = []contenttype.MediaType{
	contenttype.NewMediaType("application/json"),
	contenttype.NewMediaType("text/plain"),
}

// DefaultErrorHandler writes the StatusCode of err with a Problem body, or a
// plain text body when the client does not accept JSON.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	p := Problem{Status: status, Error: err.Error()}
	var ve *oaserrors.ValidationError
	if errors.As(err, &ve) {
		p.Kind, p.Location, p.Parameter = ve.Kind.String(), ve.Location, ve.Parameter
	}

	accepted, _, negErr := contenttype.GetAcceptableMediaType(r, problemMediaTypes)
	if negErr != nil || accepted.Subtype != "json" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, p.Error+"\n")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
