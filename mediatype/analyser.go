package mediatype

import (
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/segmentio/encoding/json"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/erraggy/oasguard/internal/jsonlit"
	"github.com/erraggy/oasguard/oaserrors"
)

// ContentAnalyser verifies a body. It is the first of two phases.
type ContentAnalyser interface {
	// CheckSyntacticalCorrectness verifies the payload is well formed for its
	// media type and returns the parsed state for Transform.
	CheckSyntacticalCorrectness() (Checked, error)
}

// Checked is a syntactically verified body.
type Checked interface {
	// Transform returns the JSON-shaped value of the body.
	Transform() (any, error)
}

// Value returns a Checked whose Transform yields v. Custom analysers that
// decode fully while checking can return it.
func Value(v any) Checked {
	return checkedValue{v: v}
}

type checkedValue struct {
	v any
}

func (c checkedValue) Transform() (any, error) {
	return c.v, nil
}

// Analyse runs both phases of a.
func Analyse(a ContentAnalyser) (any, error) {
	checked, err := a.CheckSyntacticalCorrectness()
	if err != nil {
		return nil, err
	}
	return checked.Transform()
}

// bodyError builds a validation error located at the message body.
func bodyError(kind oaserrors.Kind, dir Direction, part string, format string, args ...any) *oaserrors.ValidationError {
	e := oaserrors.NewValidationError(kind, "body", part, format, args...)
	e.Message = dir.String() + " " + e.Message
	return e
}

// toUTF8 transcodes data from charset. UTF-8, US-ASCII and an empty charset
// pass through.
func toUTF8(data []byte, charset string) ([]byte, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8", "us-ascii":
		return data, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Bytes(data)
}

// jsonAnalyser decodes the whole payload as one JSON document. Decoding is
// done while checking; the decoded value is the checked state.
type jsonAnalyser struct {
	in Input
}

func (a *jsonAnalyser) CheckSyntacticalCorrectness() (Checked, error) {
	body, err := toUTF8(a.in.Body, a.in.Info.Param("charset"))
	if err != nil {
		e := bodyError(oaserrors.KindUnsupportedValueFormat, a.in.Direction, "", "body charset %q is not supported", a.in.Info.Param("charset"))
		e.Cause = err
		return nil, e
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		e := bodyError(oaserrors.KindIllegalValue, a.in.Direction, "", "body can't be decoded")
		e.Cause = err
		return nil, e
	}
	return checkedValue{v: v}, nil
}

// noopAnalyser passes the payload through as opaque bytes.
type noopAnalyser struct {
	in Input
}

func (a *noopAnalyser) CheckSyntacticalCorrectness() (Checked, error) {
	return checkedValue{v: a.in.Body}, nil
}

// formAnalyser decodes application/x-www-form-urlencoded bodies. Values are
// primitive-decoded; repeated names become arrays.
type formAnalyser struct {
	in Input
}

type checkedForm struct {
	in     Input
	values url.Values
}

func (a *formAnalyser) CheckSyntacticalCorrectness() (Checked, error) {
	body, err := toUTF8(a.in.Body, a.in.Info.Param("charset"))
	if err != nil {
		e := bodyError(oaserrors.KindUnsupportedValueFormat, a.in.Direction, "", "body charset %q is not supported", a.in.Info.Param("charset"))
		e.Cause = err
		return nil, e
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		e := bodyError(oaserrors.KindIllegalValue, a.in.Direction, "", "body can't be decoded")
		e.Cause = err
		return nil, e
	}
	return &checkedForm{in: a.in, values: values}, nil
}

func (c *checkedForm) Transform() (any, error) {
	out := make(map[string]any, len(c.values))
	for _, name := range slices.Sorted(maps.Keys(c.values)) {
		decoded, idx, err := jsonlit.DecodeAll(c.values[name])
		if err != nil {
			e := bodyError(oaserrors.KindCannotDecodeValue, c.in.Direction, name, "field value %q can't be decoded", c.values[name][idx])
			e.Cause = err
			return nil, e
		}
		if len(decoded) == 1 {
			out[name] = decoded[0]
		} else {
			out[name] = decoded
		}
	}
	return out, nil
}
