package httpvalidator

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/mediatype"
	"github.com/erraggy/oasguard/oaserrors"
)

// RawParameters carries the undecoded parameter values of one request.
type RawParameters struct {
	// Path holds path template placeholder values, already percent-decoded.
	Path map[string]string
	// Query is the parsed query string.
	Query url.Values
	// Header holds request headers. Repeated headers are joined with commas.
	Header http.Header
	// Cookie maps cookie names to values.
	Cookie map[string]string
}

// ValidateRequest validates one request of the operation operationID.
//
// Parameters are checked path first, then query, header and cookie, each in
// declaration order. The first failure ends validation and is returned:
//   - *oaserrors.NotFoundError for an unknown operation id
//   - *oaserrors.ValidationError for a missing, undecodable or invalid value
//   - *oaserrors.MediaTypeError for a body no analyser can read
func (v *Validator) ValidateRequest(operationID string, raw RawParameters, body []byte, contentType string) (*ValidatedRequest, error) {
	op, err := v.contract.Operation(operationID)
	if err != nil {
		return nil, err
	}

	query := op.ParametersIn(contract.LocationQuery)
	params := make(map[contract.Location]map[string]any, len(contract.Locations))
	for _, in := range contract.Locations {
		values := make(map[string]any)
		for _, p := range op.ParametersIn(in) {
			value, present, err := v.parameter(p, raw, query)
			if err != nil {
				return nil, v.fail(op, err)
			}
			if present {
				values[p.Name] = value
			}
		}
		params[in] = values
	}

	result := &ValidatedRequest{operationID: op.ID, params: params}
	if op.RequestBody != nil || len(body) > 0 {
		var content []contract.MediaTypeSchema
		var required bool
		if op.RequestBody != nil {
			content, required = op.RequestBody.Content, op.RequestBody.Required
		}
		decoded, err := v.body(mediatype.Request, content, required, body, contentType)
		if err != nil {
			return nil, v.fail(op, err)
		}
		result.body, result.hasBody, result.mediaType = decoded.value, decoded.present, decoded.mediaType
	}
	return result, nil
}

// parameter locates, decodes and validates p. present is false when p was
// not supplied and is optional.
func (v *Validator) parameter(p *contract.Parameter, raw RawParameters, query []*contract.Parameter) (value any, present bool, err error) {
	if p.In == contract.LocationQuery && p.ContentType == "" {
		value, present, err = v.transcoder.TransformQuery(p, raw.Query, claimedBy(p, query))
	} else {
		var s string
		s, present = lookup(p, raw)
		if present {
			if p.ContentType != "" {
				value, err = v.content(p, s)
			} else {
				value, err = v.transcoder.Transform(p, s)
			}
		}
	}
	if err != nil {
		return nil, false, err
	}
	if !present {
		_, err := v.transcoder.Absent(p)
		return nil, false, err
	}

	if err := v.check(p.SchemaRef, value, string(p.In), p.Name); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// lookup returns the raw value of p from its location.
func lookup(p *contract.Parameter, raw RawParameters) (string, bool) {
	switch p.In {
	case contract.LocationPath:
		s, ok := raw.Path[p.Name]
		return s, ok && s != ""
	case contract.LocationQuery:
		values, ok := raw.Query[p.Name]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	case contract.LocationHeader:
		values := raw.Header.Values(p.Name)
		if len(values) == 0 {
			return "", false
		}
		return strings.Join(values, ","), true
	case contract.LocationCookie:
		s, ok := raw.Cookie[p.Name]
		return s, ok
	default:
		return "", false
	}
}

// content decodes a parameter declared with a media type instead of a schema.
func (v *Validator) content(p *contract.Parameter, raw string) (any, error) {
	analyser, err := v.registry.CreateContentAnalyser(p.ContentType, []byte(raw), mediatype.Request)
	if err != nil {
		return nil, err
	}
	value, err := mediatype.Analyse(analyser)
	if err != nil {
		var ve *oaserrors.ValidationError
		if errors.As(err, &ve) {
			ve.Location, ve.Parameter = string(p.In), p.Name
		}
		return nil, err
	}
	return value, nil
}

// claimedBy reports query keys that belong to a declared query parameter
// other than self, including deepObject name[key] entries.
func claimedBy(self *contract.Parameter, query []*contract.Parameter) func(string) bool {
	return func(key string) bool {
		for _, q := range query {
			if q == self {
				continue
			}
			if key == q.Name || strings.HasPrefix(key, q.Name+"[") {
				return true
			}
		}
		return false
	}
}
