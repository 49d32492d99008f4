package schemarepo

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Detail is one leaf failure reported by the schema validator.
type Detail struct {
	// InstanceLocation is the JSON pointer into the validated value ("" for the root)
	InstanceLocation string
	// Message is the validator's description of the failure
	Message string
}

// Violation is the explanation returned when a value does not satisfy a schema.
type Violation struct {
	// Ref is the schema reference that was evaluated
	Ref string
	// Details lists the leaf failures in validator order
	Details []Detail
}

// Error returns a human-readable error message.
func (v *Violation) Error() string {
	if len(v.Details) == 0 {
		return "value does not match schema"
	}
	parts := make([]string, 0, len(v.Details))
	for _, d := range v.Details {
		if d.InstanceLocation == "" {
			parts = append(parts, d.Message)
			continue
		}
		parts = append(parts, d.InstanceLocation+": "+d.Message)
	}
	return strings.Join(parts, "; ")
}

func newViolation(ref string, ve *jsonschema.ValidationError) *Violation {
	v := &Violation{Ref: ref}
	collectLeaves(ve, &v.Details)
	return v
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]Detail) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Detail{InstanceLocation: ve.InstanceLocation, Message: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}
