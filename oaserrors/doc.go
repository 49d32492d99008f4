// Package oaserrors provides structured error types for the oasguard library.
//
// Import path: github.com/erraggy/oasguard/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to map failures onto protocol responses (400 vs 415 vs 500)
// without parsing messages.
//
// # Error Types
//
//   - [ContractError]: the OpenAPI document cannot become a contract (load time only)
//   - [ValidationError]: a request or response failed; [Kind] says which stage rejected it
//   - [MediaTypeError]: no content analyser is registered for a media type
//   - [NotFoundError]: an operation id is not defined by the contract
//   - [ParseError]: YAML/JSON ingestion failures
//   - [ReferenceError]: $ref resolution failures, remote and circular references
//   - [ResourceLimitError]: a body exceeded the configured maximum size
//   - [ConfigError]: invalid configuration or input options
//
// # Validation Kinds
//
// Each [Kind] has a sentinel so callers can branch with errors.Is:
//
//   - [KindMissingParameter]: [ErrMissingParameter]
//   - [KindIllegalValue]: [ErrIllegalValue]
//   - [KindUnsupportedValueFormat]: [ErrUnsupportedValueFormat]
//   - [KindCannotDecodeValue]: [ErrCannotDecodeValue]
//   - [KindInvalidValue]: [ErrInvalidValue]
//
// Every [ValidationError] also matches [ErrValidation].
//
// # Usage Examples
//
//	req, err := v.ValidateRequest("showPetById", raw, nil, "")
//	switch {
//	case errors.Is(err, oaserrors.ErrInvalidValue):
//	    // decoded fine, rejected by the schema
//	case errors.Is(err, oaserrors.ErrUnsupportedMediaType):
//	    // contract or registry gap
//	case errors.Is(err, oaserrors.ErrValidation):
//	    // any other malformed request
//	}
//
// Extract details with errors.As:
//
//	var ve *oaserrors.ValidationError
//	if errors.As(err, &ve) {
//	    log.Printf("%s %s: %s", ve.Location, ve.Parameter, ve.Kind)
//	}
package oaserrors
