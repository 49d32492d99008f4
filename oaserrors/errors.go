package oaserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrInvalidContract indicates the OpenAPI document cannot be turned into a contract.
	ErrInvalidContract = errors.New("invalid contract")

	// ErrValidation indicates a request or response failed validation.
	ErrValidation = errors.New("validation error")

	// ErrMissingParameter indicates a required parameter or header was absent.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrIllegalValue indicates a value does not have the shape its style or media type requires.
	ErrIllegalValue = errors.New("illegal value")

	// ErrUnsupportedValueFormat indicates a value is encoded in a format the validator cannot read.
	ErrUnsupportedValueFormat = errors.New("unsupported value format")

	// ErrCannotDecodeValue indicates a primitive token could not be decoded at all.
	ErrCannotDecodeValue = errors.New("cannot decode value")

	// ErrInvalidValue indicates a value decoded successfully but failed its schema.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnsupportedMediaType indicates no content analyser is registered for a media type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrOperationNotFound indicates an operation id is not part of the contract.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrCircularReference indicates a circular $ref was detected.
	ErrCircularReference = errors.New("circular reference")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// Kind classifies a ValidationError.
type Kind int

const (
	// KindMissingParameter is a required parameter, header, or body that was not supplied.
	KindMissingParameter Kind = iota + 1
	// KindIllegalValue is a malformed style prefix or a body that cannot be decoded.
	KindIllegalValue
	// KindUnsupportedValueFormat is a value in a format the validator does not read, such as an unknown multipart part type.
	KindUnsupportedValueFormat
	// KindCannotDecodeValue is a primitive token that is neither empty, valid JSON, nor quotable as a JSON string.
	KindCannotDecodeValue
	// KindInvalidValue is a value that decoded but failed schema validation.
	KindInvalidValue
)

var kindNames = map[Kind]string{
	KindMissingParameter:       "missing required parameter",
	KindIllegalValue:           "illegal value",
	KindUnsupportedValueFormat: "unsupported value format",
	KindCannotDecodeValue:      "cannot decode value",
	KindInvalidValue:           "invalid value",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindMissingParameter:
		return ErrMissingParameter
	case KindIllegalValue:
		return ErrIllegalValue
	case KindUnsupportedValueFormat:
		return ErrUnsupportedValueFormat
	case KindCannotDecodeValue:
		return ErrCannotDecodeValue
	case KindInvalidValue:
		return ErrInvalidValue
	default:
		return nil
	}
}

// ContractError represents a structural violation found while building a contract.
// It is raised once at load time and never while validating traffic.
type ContractError struct {
	// Path is the JSON path to the problematic node (e.g., "paths./pets/{id}.get")
	Path string
	// Message describes the violation
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ContractError) Error() string {
	msg := "invalid contract"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ContractError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ContractError) Is(target error) bool {
	return target == ErrInvalidContract
}

// ValidationError represents a failed request or response validation.
// Kind tells callers which part of the pipeline rejected the message.
type ValidationError struct {
	// Kind classifies the failure
	Kind Kind
	// Location is where the value came from: "path", "query", "header", "cookie", "body"
	Location string
	// Parameter is the parameter name, multipart part name, or empty for whole bodies
	Parameter string
	// Message describes the failure
	Message string
	// Cause is the underlying error, such as the schema validator's explanation
	Cause error
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := e.Kind.String()
	if e.Location != "" || e.Parameter != "" {
		msg += " ("
		switch {
		case e.Location != "" && e.Parameter != "":
			msg += e.Location + " " + e.Parameter
		case e.Location != "":
			msg += e.Location
		default:
			msg += e.Parameter
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrValidation, and the sentinel that corresponds to Kind.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(kind Kind, location, parameter, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:      kind,
		Location:  location,
		Parameter: parameter,
		Message:   fmt.Sprintf(format, args...),
	}
}

// MediaTypeError indicates that no content analyser handles a media type.
// This is a contract or configuration gap rather than a malformed message.
type MediaTypeError struct {
	// ContentType is the offending content type as received
	ContentType string
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *MediaTypeError) Error() string {
	msg := "unsupported media type"
	if e.ContentType != "" {
		msg += " " + fmt.Sprintf("%q", e.ContentType)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as MediaTypeError has no underlying cause.
func (e *MediaTypeError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *MediaTypeError) Is(target error) bool {
	return target == ErrUnsupportedMediaType
}

// NotFoundError indicates a lookup for an operation id that the contract does not define.
// It is a caller usage error, distinct from a validation failure.
type NotFoundError struct {
	// OperationID is the id that was looked up
	OperationID string
}

// Error returns a human-readable error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("operation not found: %q", e.OperationID)
}

// Is reports whether target matches this error type.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrOperationNotFound
}

// ParseError represents a failure to parse an OpenAPI document.
// This includes YAML/JSON deserialization errors and structural issues.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a failure to resolve a $ref.
// This includes missing references, remote references, and circular references.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrCircularReference when IsCircular is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	return target == ErrCircularReference && e.IsCircular
}

// ResourceLimitError represents a resource exhaustion condition,
// such as a body larger than the configured maximum.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded (e.g., "body_size")
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// KindOf returns the Kind of the first ValidationError in err's chain,
// or 0 if err does not wrap one.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return 0
}
