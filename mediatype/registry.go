package mediatype

import (
	"regexp"
	"slices"
	"strings"

	"github.com/erraggy/oasguard/oaserrors"
)

// Direction tells an analyser which message it is decoding.
type Direction int

// Message directions.
const (
	Request Direction = iota
	Response
)

// String returns "request" or "response".
func (d Direction) String() string {
	if d == Response {
		return "response"
	}
	return "request"
}

// AnalyserKind selects the built-in analyser a registration creates.
type AnalyserKind int

// Analyser kinds.
const (
	KindJSON AnalyserKind = iota + 1
	KindMultipart
	KindForm
	KindNoOp
	// KindCustom registrations create their analyser with Registration.Factory.
	KindCustom
)

var analyserKindNames = map[AnalyserKind]string{
	KindJSON:      "json",
	KindMultipart: "multipart",
	KindForm:      "form",
	KindNoOp:      "noop",
	KindCustom:    "custom",
}

// String returns the kind name.
func (k AnalyserKind) String() string {
	if name, ok := analyserKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Predicate decides whether a registration handles a media type.
type Predicate func(Info) bool

// ExactTypes matches media types whose full type (without parameters) is one
// of types, compared case-insensitively.
func ExactTypes(types ...string) Predicate {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[strings.ToLower(t)] = true
	}
	return func(i Info) bool {
		return set[i.FullType()]
	}
}

// Pattern matches media types whose full type matches re.
func Pattern(re *regexp.Regexp) Predicate {
	return func(i Info) bool {
		return re.MatchString(i.FullType())
	}
}

// AnyOf matches when any of preds matches.
func AnyOf(preds ...Predicate) Predicate {
	return func(i Info) bool {
		for _, p := range preds {
			if p(i) {
				return true
			}
		}
		return false
	}
}

// Input is what an analyser decodes.
type Input struct {
	// ContentType is the header value as received.
	ContentType string
	Info        Info
	Body        []byte
	Direction   Direction
}

// Factory creates a custom analyser.
type Factory func(Input) ContentAnalyser

// Registration pairs a predicate with the analyser it selects.
type Registration struct {
	Name    string
	Kind    AnalyserKind
	Matches Predicate
	// Factory is required for KindCustom and ignored otherwise.
	Factory Factory
}

// Registry holds registrations evaluated in order. It is immutable and safe
// for concurrent use.
type Registry struct {
	registrations []Registration
}

// NewRegistry creates a registry evaluating regs in the given order.
func NewRegistry(regs ...Registration) *Registry {
	return &Registry{registrations: slices.Clone(regs)}
}

var vendorJSON = regexp.MustCompile(`^[^/]+/[^/]+\+json$`)

// DefaultRegistry returns a new registry with the built-in analysers:
//
//   - JSON for application/json, application/hal+json and any +json type
//   - multipart for multipart/form-data
//   - form for application/x-www-form-urlencoded
//   - no-op for application/octet-stream and text/plain
func DefaultRegistry() *Registry {
	return NewRegistry(
		Registration{
			Name:    "json",
			Kind:    KindJSON,
			Matches: AnyOf(ExactTypes("application/json", "application/hal+json"), Pattern(vendorJSON)),
		},
		Registration{
			Name:    "multipart",
			Kind:    KindMultipart,
			Matches: ExactTypes("multipart/form-data"),
		},
		Registration{
			Name:    "form",
			Kind:    KindForm,
			Matches: ExactTypes("application/x-www-form-urlencoded"),
		},
		Registration{
			Name:    "noop",
			Kind:    KindNoOp,
			Matches: ExactTypes("application/octet-stream", "text/plain"),
		},
	)
}

// With returns a new registry that evaluates reg before the existing registrations.
func (r *Registry) With(reg Registration) *Registry {
	regs := make([]Registration, 0, len(r.registrations)+1)
	regs = append(regs, reg)
	regs = append(regs, r.registrations...)
	return &Registry{registrations: regs}
}

// Registrations returns the registrations in evaluation order.
func (r *Registry) Registrations() []Registration {
	return slices.Clone(r.registrations)
}

// Lookup returns the first registration matching info.
func (r *Registry) Lookup(info Info) (Registration, bool) {
	for _, reg := range r.registrations {
		if reg.Matches != nil && reg.Matches(info) {
			return reg, true
		}
	}
	return Registration{}, false
}

// Supports reports whether some registration handles contentType.
func (r *Registry) Supports(contentType string) bool {
	info, err := Of(contentType)
	if err != nil {
		return false
	}
	_, ok := r.Lookup(info)
	return ok
}

// CreateContentAnalyser selects the analyser for contentType. A content type
// that is malformed or matched by no registration yields a
// *oaserrors.MediaTypeError.
func (r *Registry) CreateContentAnalyser(contentType string, body []byte, dir Direction) (ContentAnalyser, error) {
	info, err := Of(contentType)
	if err != nil {
		return nil, err
	}
	reg, ok := r.Lookup(info)
	if !ok {
		return nil, &oaserrors.MediaTypeError{ContentType: contentType, Message: "no content analyser registered"}
	}

	in := Input{ContentType: contentType, Info: info, Body: body, Direction: dir}
	switch reg.Kind {
	case KindJSON:
		return &jsonAnalyser{in: in}, nil
	case KindMultipart:
		return &multipartAnalyser{in: in}, nil
	case KindForm:
		return &formAnalyser{in: in}, nil
	case KindNoOp:
		return &noopAnalyser{in: in}, nil
	case KindCustom:
		if reg.Factory == nil {
			return nil, &oaserrors.ConfigError{Option: "Registration.Factory", Message: "custom registration " + reg.Name + " has no factory"}
		}
		return reg.Factory(in), nil
	default:
		return nil, &oaserrors.ConfigError{Option: "Registration.Kind", Value: int(reg.Kind), Message: "unknown analyser kind"}
	}
}
