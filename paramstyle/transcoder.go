// Package paramstyle decodes raw parameter strings into JSON-shaped values
// according to OpenAPI serialization styles.
//
// The encoding of a value depends on the parameter's style, its explode flag,
// and whether its schema is an object, an array, or a primitive:
//
// | style      | primitive   | array                  | object                                     |
// |------------|-------------|------------------------|--------------------------------------------|
// | simple     | blue        | blue,black,brown       | R,100,G,200 (exploded: R=100,G=200)        |
// | label      | .blue       | .blue.black.brown      | .R.100.G.200 (exploded: .R=100.G=200)      |
// | matrix     | ;name=blue  | ;name=blue,black       | ;name=R,100,G,200 (exploded: ;R=100;G=200) |
// | form       | blue        | blue,black,brown       | R,100,G,200 (exploded: R=100&G=200)        |
// | deepObject | unsupported | unsupported            | name[R]=100&name[G]=200                    |
//
// Decoding only goes one way. A malformed prefix is reported as
// oaserrors.KindIllegalValue and never corrected.
package paramstyle

import (
	"net/url"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/internal/jsonlit"
	"github.com/erraggy/oasguard/oaserrors"
)

// shape is the schema-driven decoding target.
type shape int

const (
	shapePrimitive shape = iota
	shapeArray
	shapeObject
)

func shapeOf(p *contract.Parameter) shape {
	switch {
	case p.IsObject():
		return shapeObject
	case p.IsArray():
		return shapeArray
	default:
		return shapePrimitive
	}
}

// Transcoder decodes parameter values. It holds no state and is safe for
// concurrent use.
type Transcoder struct{}

// New creates a Transcoder.
func New() *Transcoder {
	return &Transcoder{}
}

// Transform decodes a single raw value of p. Query-only styles read raw as
// the parameter's value: delimited arrays are split on their delimiter and
// deepObject reads raw as a query string.
func (t *Transcoder) Transform(p *contract.Parameter, raw string) (any, error) {
	switch p.Style {
	case contract.StyleSimple, contract.StyleForm, "":
		return t.simple(p, raw)
	case contract.StyleLabel:
		return t.label(p, raw)
	case contract.StyleMatrix:
		return t.matrix(p, raw)
	case contract.StyleSpaceDelimited:
		return t.delimited(p, []string{raw}, " ")
	case contract.StylePipeDelimited:
		return t.delimited(p, []string{raw}, "|")
	case contract.StyleDeepObject:
		query, err := url.ParseQuery(raw)
		if err != nil {
			return nil, withCause(illegal(p, "deepObject value %q is not a query string", raw), err)
		}
		v, _, err := t.deepObject(p, query)
		return v, err
	default:
		return nil, unsupported(p, "style %q is not supported", p.Style)
	}
}

// Resolve decodes raw when present. An absent required parameter fails with
// oaserrors.KindMissingParameter; an absent optional one yields nil.
func (t *Transcoder) Resolve(p *contract.Parameter, raw string, present bool) (any, error) {
	if !present {
		return t.Absent(p)
	}
	return t.Transform(p, raw)
}

// Absent reports the outcome for a parameter with no value: an error when it
// is required, otherwise nil. No schema default is substituted.
func (t *Transcoder) Absent(p *contract.Parameter) (any, error) {
	if p.Required {
		return nil, oaserrors.NewValidationError(oaserrors.KindMissingParameter, string(p.In), p.Name,
			"required %s parameter is missing", p.In)
	}
	return nil, nil
}

// primitive decodes one token. String-typed tokens are kept verbatim.
func (t *Transcoder) primitive(p *contract.Parameter, raw, schemaType string) (any, error) {
	if schemaType == contract.TypeString {
		return raw, nil
	}
	v, err := jsonlit.Decode(raw)
	if err != nil {
		return nil, withCause(
			oaserrors.NewValidationError(oaserrors.KindCannotDecodeValue, string(p.In), p.Name, "cannot decode %q", raw),
			err,
		)
	}
	return v, nil
}

func illegal(p *contract.Parameter, format string, args ...any) *oaserrors.ValidationError {
	return oaserrors.NewValidationError(oaserrors.KindIllegalValue, string(p.In), p.Name, format, args...)
}

func unsupported(p *contract.Parameter, format string, args ...any) *oaserrors.ValidationError {
	return oaserrors.NewValidationError(oaserrors.KindUnsupportedValueFormat, string(p.In), p.Name, format, args...)
}

func withCause(e *oaserrors.ValidationError, cause error) *oaserrors.ValidationError {
	e.Cause = cause
	return e
}
