package httpvalidator

import (
	"errors"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/mediatype"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/paramstyle"
)

// Validator validates requests and responses against a contract.
//
// Create a Validator using the New function:
//
//	c, err := contract.Load(ctx, "openapi.yaml")
//	if err != nil {
//	    return err
//	}
//	v, err := httpvalidator.New(c, httpvalidator.WithStrictMode(true))
//
// A Validator holds no mutable state and is safe for concurrent use.
type Validator struct {
	contract   *contract.Contract
	schemas    contract.SchemaRepository
	registry   *mediatype.Registry
	transcoder *paramstyle.Transcoder

	strictMode  bool
	unsupported UnsupportedMediaTypePolicy
	maxBodySize int64
	logger      contract.Logger
}

// New creates a Validator for c.
func New(c *contract.Contract, opts ...Option) (*Validator, error) {
	if c == nil {
		return nil, &oaserrors.ConfigError{Option: "contract", Message: "contract cannot be nil"}
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Validator{
		contract:    c,
		schemas:     c.Schemas(),
		registry:    cfg.registry,
		transcoder:  paramstyle.New(),
		strictMode:  cfg.strictMode,
		unsupported: cfg.unsupported,
		maxBodySize: cfg.maxBodySize,
		logger:      cfg.logger,
	}, nil
}

// Contract returns the contract the validator checks against.
func (v *Validator) Contract() *contract.Contract {
	return v.contract
}

// StrictMode reports whether strict validation is enabled.
func (v *Validator) StrictMode() bool {
	return v.strictMode
}

// check validates value against the schema at ref. An empty ref accepts
// anything. Schema failures become KindInvalidValue wrapping the explanation.
func (v *Validator) check(ref string, value any, location, name string) error {
	if ref == "" {
		return nil
	}
	err := v.schemas.Validate(ref, value)
	if err == nil {
		return nil
	}
	if errors.Is(err, oaserrors.ErrReference) {
		return err
	}
	return &oaserrors.ValidationError{
		Kind:      oaserrors.KindInvalidValue,
		Location:  location,
		Parameter: name,
		Message:   "value does not match schema",
		Cause:     err,
	}
}

// decodedBody is the outcome of body validation.
type decodedBody struct {
	value     any
	present   bool
	mediaType string
}

// body selects the declared media type for contentType, decodes payload with
// the registry, and validates it. content is the declared content map.
func (v *Validator) body(dir mediatype.Direction, content []contract.MediaTypeSchema, required bool, payload []byte, contentType string) (decodedBody, error) {
	if len(payload) == 0 {
		if required {
			return decodedBody{}, oaserrors.NewValidationError(oaserrors.KindMissingParameter, "body", "",
				"%s body is required", dir)
		}
		return decodedBody{}, nil
	}

	if contentType == "" {
		if len(content) == 0 && !v.strictMode {
			return decodedBody{}, nil
		}
		return decodedBody{}, &oaserrors.MediaTypeError{Message: dir.String() + " body has no content type"}
	}
	info, err := mediatype.Of(contentType)
	if err != nil {
		return decodedBody{}, err
	}

	declared, ok := selectMediaType(content, info)
	if !ok {
		if v.strictMode {
			return decodedBody{}, &oaserrors.MediaTypeError{ContentType: contentType, Message: "not declared by the operation"}
		}
		return decodedBody{}, nil
	}

	if _, ok := v.registry.Lookup(info); !ok && v.unsupported == UnsupportedMediaTypePassThrough {
		return decodedBody{value: payload, present: true, mediaType: declared.MediaType}, nil
	}
	analyser, err := v.registry.CreateContentAnalyser(contentType, payload, dir)
	if err != nil {
		return decodedBody{}, err
	}
	value, err := mediatype.Analyse(analyser)
	if err != nil {
		return decodedBody{}, err
	}
	if err := v.check(declared.SchemaRef, value, "body", ""); err != nil {
		return decodedBody{}, err
	}
	return decodedBody{value: value, present: true, mediaType: declared.MediaType}, nil
}

// selectMediaType picks the declared entry for info: an exact type match
// first, then the first declared range that includes it.
func selectMediaType(content []contract.MediaTypeSchema, info mediatype.Info) (contract.MediaTypeSchema, bool) {
	var ranges []contract.MediaTypeSchema
	var rangeInfos []mediatype.Info
	for _, mt := range content {
		declared, err := mediatype.Of(mt.MediaType)
		if err != nil {
			continue
		}
		if declared.FullType() == info.FullType() {
			return mt, true
		}
		ranges = append(ranges, mt)
		rangeInfos = append(rangeInfos, declared)
	}
	for i, declared := range rangeInfos {
		if declared.DoesInclude(info) {
			return ranges[i], true
		}
	}
	return contract.MediaTypeSchema{}, false
}

// fail logs err at Debug and returns it.
func (v *Validator) fail(op *contract.Operation, err error) error {
	attrs := []any{"operation", op.ID}
	var ve *oaserrors.ValidationError
	if errors.As(err, &ve) {
		attrs = append(attrs, "location", ve.Location, "parameter", ve.Parameter, "kind", ve.Kind.String())
	}
	attrs = append(attrs, "error", err.Error())
	v.logger.Debug("validation failed", attrs...)
	return err
}
