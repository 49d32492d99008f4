package httpvalidator

import (
	"maps"

	"github.com/erraggy/oasguard/contract"
)

// ValidatedRequest is the decoded view of a request that passed validation.
// It is immutable: accessors return copies of the parameter maps.
type ValidatedRequest struct {
	operationID string
	params      map[contract.Location]map[string]any
	body        any
	hasBody     bool
	mediaType   string
}

// OperationID returns the operation the request was validated against.
func (r *ValidatedRequest) OperationID() string {
	return r.operationID
}

// Parameters returns the decoded parameters at location, keyed by name.
// Optional parameters that were not supplied are absent from the map.
func (r *ValidatedRequest) Parameters(in contract.Location) map[string]any {
	return maps.Clone(r.params[in])
}

// PathParams returns the decoded path parameters.
func (r *ValidatedRequest) PathParams() map[string]any {
	return r.Parameters(contract.LocationPath)
}

// QueryParams returns the decoded query parameters.
func (r *ValidatedRequest) QueryParams() map[string]any {
	return r.Parameters(contract.LocationQuery)
}

// HeaderParams returns the decoded header parameters.
func (r *ValidatedRequest) HeaderParams() map[string]any {
	return r.Parameters(contract.LocationHeader)
}

// CookieParams returns the decoded cookie parameters.
func (r *ValidatedRequest) CookieParams() map[string]any {
	return r.Parameters(contract.LocationCookie)
}

// Param returns one decoded parameter.
func (r *ValidatedRequest) Param(in contract.Location, name string) (any, bool) {
	v, ok := r.params[in][name]
	return v, ok
}

// Body returns the decoded body. ok is false when body validation was skipped.
func (r *ValidatedRequest) Body() (value any, ok bool) {
	return r.body, r.hasBody
}

// MediaType returns the declared media type the body matched, e.g.
// "application/json" or "image/*". Empty when there was no body.
func (r *ValidatedRequest) MediaType() string {
	return r.mediaType
}

// ValidatedResponse is the decoded view of a response that passed validation.
type ValidatedResponse struct {
	operationID  string
	statusCode   int
	responseCode string
	body         any
	hasBody      bool
	mediaType    string
}

// OperationID returns the operation the response was validated against.
func (r *ValidatedResponse) OperationID() string {
	return r.operationID
}

// StatusCode returns the validated HTTP status code.
func (r *ValidatedResponse) StatusCode() int {
	return r.statusCode
}

// ResponseCode returns the responses key that described the status, such as
// "200", "4XX" or "default". Empty when the status is undocumented.
func (r *ValidatedResponse) ResponseCode() string {
	return r.responseCode
}

// Body returns the decoded body. ok is false when body validation was skipped.
func (r *ValidatedResponse) Body() (value any, ok bool) {
	return r.body, r.hasBody
}

// MediaType returns the declared media type the body matched.
func (r *ValidatedResponse) MediaType() string {
	return r.mediaType
}
