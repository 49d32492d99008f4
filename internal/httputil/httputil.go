// Package httputil provides HTTP method and status-code helpers shared by the
// contract model and the validators.
package httputil

import (
	"strconv"
	"strings"
)

// HTTP Status Code Constants
const (
	StatusCodeLength = 3         // Standard length of HTTP status codes (e.g., "200", "404")
	MinStatusCode    = 100       // Minimum valid HTTP status code
	MaxStatusCode    = 599       // Maximum valid HTTP status code
	WildcardChar     = 'X'       // Wildcard character used in status code patterns (e.g., "2XX")
	DefaultResponse  = "default" // Key of the catch-all response
)

// HTTP Method Constants
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
)

// Methods lists the operation keys of a path item in the order they are reported.
var Methods = []string{
	MethodGet, MethodPut, MethodPost, MethodDelete,
	MethodOptions, MethodHead, MethodPatch, MethodTrace,
}

// Wildcard boundary characters for validation
const (
	minWildcardBoundary = '1'
	maxWildcardBoundary = '5'
)

// IsMethod reports whether key names an operation inside a path item.
func IsMethod(key string) bool {
	for _, m := range Methods {
		if m == key {
			return true
		}
	}
	return false
}

// ValidateStatusCode checks if a responses key is valid.
// Valid values are:
//   - "default" for default response
//   - Extension fields starting with "x-"
//   - Wildcard patterns: 1XX, 2XX, 3XX, 4XX, 5XX
//   - Numeric codes: 100-599
func ValidateStatusCode(code string) bool {
	if code == DefaultResponse {
		return true
	}

	if strings.HasPrefix(code, "x-") {
		return true
	}

	if len(code) == StatusCodeLength {
		if isWildcard(code) {
			return true
		}

		if code[0] >= '0' && code[0] <= '9' &&
			code[1] >= '0' && code[1] <= '9' &&
			code[2] >= '0' && code[2] <= '9' {
			statusCode, err := strconv.Atoi(code)
			if err == nil && statusCode >= MinStatusCode && statusCode <= MaxStatusCode {
				return true
			}
		}
	}

	return false
}

// isWildcard reports whether code is one of 1XX..5XX. Lowercase x is accepted.
func isWildcard(code string) bool {
	if len(code) != StatusCodeLength {
		return false
	}
	if strings.ToUpper(code[1:]) != "XX" {
		return false
	}
	return code[0] >= minWildcardBoundary && code[0] <= maxWildcardBoundary
}

// ResponseKeys returns the responses keys that can describe status, most
// specific first: the exact code, its NXX range, then "default".
// An out-of-range status only yields "default".
func ResponseKeys(status int) []string {
	if status < MinStatusCode || status > MaxStatusCode {
		return []string{DefaultResponse}
	}
	exact := strconv.Itoa(status)
	return []string{exact, exact[:1] + string(WildcardChar) + string(WildcardChar), DefaultResponse}
}

// NormalizeResponseKey upper-cases wildcard keys so "2xx" and "2XX" compare equal.
func NormalizeResponseKey(code string) string {
	if isWildcard(code) {
		return strings.ToUpper(code)
	}
	return code
}
