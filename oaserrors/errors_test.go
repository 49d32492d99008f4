package oaserrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ContractError{
			Path:    "paths./pets/{id}",
			Message: "ambiguous path",
			Cause:   errors.New("conflicts with /pets/{petId}"),
		}
		assert.Equal(t, "invalid contract at paths./pets/{id}: ambiguous path: conflicts with /pets/{petId}", err.Error())
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		assert.Equal(t, "invalid contract", (&ContractError{}).Error())
	})

	t.Run("Is matches sentinel", func(t *testing.T) {
		var err error = &ContractError{Message: "x"}
		assert.True(t, errors.Is(err, ErrInvalidContract))
		assert.False(t, errors.Is(err, ErrValidation))
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		sentinel error
		message  string
	}{
		{
			name:     "missing parameter",
			err:      &ValidationError{Kind: KindMissingParameter, Location: "path", Parameter: "petId"},
			sentinel: ErrMissingParameter,
			message:  "missing required parameter (path petId)",
		},
		{
			name:     "illegal value with message",
			err:      &ValidationError{Kind: KindIllegalValue, Location: "path", Parameter: "color", Message: "value must start with \".\""},
			sentinel: ErrIllegalValue,
			message:  `illegal value (path color): value must start with "."`,
		},
		{
			name:     "unsupported value format for part",
			err:      &ValidationError{Kind: KindUnsupportedValueFormat, Parameter: "avatar"},
			sentinel: ErrUnsupportedValueFormat,
			message:  "unsupported value format (avatar)",
		},
		{
			name:     "cannot decode",
			err:      &ValidationError{Kind: KindCannotDecodeValue, Location: "query"},
			sentinel: ErrCannotDecodeValue,
			message:  "cannot decode value (query)",
		},
		{
			name:     "invalid value with cause",
			err:      &ValidationError{Kind: KindInvalidValue, Location: "query", Parameter: "limit", Cause: errors.New("must be <= 100")},
			sentinel: ErrInvalidValue,
			message:  "invalid value (query limit): must be <= 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.True(t, errors.Is(tt.err, ErrValidation))
		})
	}

	t.Run("kinds do not cross match", func(t *testing.T) {
		err := &ValidationError{Kind: KindInvalidValue}
		assert.False(t, errors.Is(err, ErrIllegalValue))
		assert.False(t, errors.Is(err, ErrMissingParameter))
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("underlying")
		err := &ValidationError{Kind: KindInvalidValue, Cause: cause}
		assert.ErrorIs(t, err, cause)
	})

	t.Run("NewValidationError formats message", func(t *testing.T) {
		err := NewValidationError(KindIllegalValue, "path", "id", "expected %q prefix", ";id=")
		assert.Equal(t, `expected ";id=" prefix`, err.Message)
		assert.Equal(t, KindIllegalValue, err.Kind)
	})
}

func TestKind(t *testing.T) {
	assert.Equal(t, "invalid value", KindInvalidValue.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("validate: %w", &ValidationError{Kind: KindCannotDecodeValue})
	assert.Equal(t, KindCannotDecodeValue, KindOf(wrapped))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestMediaTypeError(t *testing.T) {
	err := &MediaTypeError{ContentType: "application/xml", Message: "no analyser registered"}
	assert.Equal(t, `unsupported media type "application/xml": no analyser registered`, err.Error())
	assert.True(t, errors.Is(err, ErrUnsupportedMediaType))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Nil(t, err.Unwrap())
}

func TestNotFoundError(t *testing.T) {
	var err error = &NotFoundError{OperationID: "missingOp"}
	assert.Equal(t, `operation not found: "missingOp"`, err.Error())
	assert.True(t, errors.Is(err, ErrOperationNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ParseError{
			Path:    "/path/to/file.yaml",
			Line:    42,
			Column:  10,
			Message: "invalid syntax",
			Cause:   errors.New("underlying error"),
		}
		assert.Equal(t, "parse error in /path/to/file.yaml at line 42, column 10: invalid syntax: underlying error", err.Error())
	})

	t.Run("Error message with line only", func(t *testing.T) {
		assert.Equal(t, "parse error at line 10", (&ParseError{Line: 10}).Error())
	})

	t.Run("Is matches sentinel", func(t *testing.T) {
		assert.True(t, errors.Is(&ParseError{}, ErrParse))
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("plain reference error", func(t *testing.T) {
		err := &ReferenceError{Ref: "other.yaml#/Pet", Message: "remote references are not supported"}
		assert.Equal(t, "reference error: other.yaml#/Pet: remote references are not supported", err.Error())
		assert.True(t, errors.Is(err, ErrReference))
		assert.False(t, errors.Is(err, ErrCircularReference))
	})

	t.Run("circular reference", func(t *testing.T) {
		err := &ReferenceError{Ref: "#/components/parameters/A", IsCircular: true}
		assert.Equal(t, "circular reference: #/components/parameters/A", err.Error())
		assert.True(t, errors.Is(err, ErrReference))
		assert.True(t, errors.Is(err, ErrCircularReference))
	})
}

func TestResourceLimitError(t *testing.T) {
	err := &ResourceLimitError{ResourceType: "body_size", Limit: 1024, Actual: 2048}
	assert.Equal(t, "resource limit exceeded: body_size (limit: 1024, actual: 2048)", err.Error())
	assert.True(t, errors.Is(err, ErrResourceLimit))
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Option: "maxBodySize", Value: -1, Message: "cannot be negative"}
	assert.Equal(t, "configuration error for maxBodySize (value: -1): cannot be negative", err.Error())
	assert.True(t, errors.Is(err, ErrConfig))
}
