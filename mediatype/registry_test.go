package mediatype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func TestDefaultRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		contentType string
		kind        AnalyserKind
	}{
		{"application/json", KindJSON},
		{"application/json; charset=utf-8", KindJSON},
		{"application/hal+json", KindJSON},
		{"application/vnd.api+json", KindJSON},
		{"application/problem+json", KindJSON},
		{"multipart/form-data; boundary=x", KindMultipart},
		{"application/x-www-form-urlencoded", KindForm},
		{"application/octet-stream", KindNoOp},
		{"text/plain", KindNoOp},
		{"text/plain; charset=utf-8", KindNoOp},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			reg, ok := r.Lookup(mustOf(t, tt.contentType))
			require.True(t, ok)
			assert.Equal(t, tt.kind, reg.Kind)
			assert.True(t, r.Supports(tt.contentType))
		})
	}

	assert.False(t, r.Supports("image/png"))
	assert.False(t, r.Supports("not a type"))
}

func TestRegistry_CreateContentAnalyser_Unsupported(t *testing.T) {
	r := DefaultRegistry()

	for _, ct := range []string{"image/png", "application/xml", ""} {
		t.Run(ct, func(t *testing.T) {
			a, err := r.CreateContentAnalyser(ct, []byte("x"), Request)
			require.Error(t, err)
			assert.Nil(t, a)
			assert.True(t, errors.Is(err, oaserrors.ErrUnsupportedMediaType))
			assert.False(t, errors.Is(err, oaserrors.ErrValidation))
		})
	}
}

type upperAnalyser struct {
	in Input
}

func (u *upperAnalyser) CheckSyntacticalCorrectness() (Checked, error) {
	if len(u.in.Body) == 0 {
		return nil, oaserrors.NewValidationError(oaserrors.KindIllegalValue, "body", "", "empty csv")
	}
	return Value(string(u.in.Body) + "!"), nil
}

func TestRegistry_Custom(t *testing.T) {
	custom := Registration{
		Name:    "csv",
		Kind:    KindCustom,
		Matches: ExactTypes("text/csv", "application/json"),
		Factory: func(in Input) ContentAnalyser { return &upperAnalyser{in: in} },
	}
	r := DefaultRegistry().With(custom)

	regs := r.Registrations()
	require.Len(t, regs, 5)
	assert.Equal(t, "csv", regs[0].Name)
	assert.Len(t, DefaultRegistry().Registrations(), 4, "With does not modify the receiver")

	for _, ct := range []string{"text/csv", "application/json"} {
		a, err := r.CreateContentAnalyser(ct, []byte("a,b"), Request)
		require.NoError(t, err)
		v, err := Analyse(a)
		require.NoError(t, err)
		assert.Equal(t, "a,b!", v)
	}

	_, err := NewRegistry(Registration{Name: "broken", Kind: KindCustom, Matches: ExactTypes("text/csv")}).
		CreateContentAnalyser("text/csv", nil, Request)
	assert.True(t, errors.Is(err, oaserrors.ErrConfig))
}

func TestRegistry_Pattern(t *testing.T) {
	r := NewRegistry(Registration{Name: "json", Kind: KindJSON, Matches: Pattern(vendorJSON)})
	_, ok := r.Lookup(mustOf(t, "application/vnd.github.v3+json"))
	assert.True(t, ok)
	_, ok = r.Lookup(mustOf(t, "application/json"))
	assert.False(t, ok)
}

func TestDefaultRegistry_Fresh(t *testing.T) {
	assert.NotSame(t, DefaultRegistry(), DefaultRegistry())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "json", KindJSON.String())
	assert.Equal(t, "custom", KindCustom.String())
	assert.Equal(t, "unknown", AnalyserKind(99).String())
	assert.Equal(t, "request", Request.String())
	assert.Equal(t, "response", Response.String())
}
