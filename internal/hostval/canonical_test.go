package hostval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCanonical(t *testing.T, v Value) string {
	t.Helper()
	out, err := MarshalCanonical(v)
	require.NoError(t, err)
	return string(out)
}

func TestMarshalCanonical_Scalars(t *testing.T) {
	assert.Equal(t, "null", mustCanonical(t, Null{}))
	assert.Equal(t, "null", mustCanonical(t, Undefined{}))
	assert.Equal(t, "true", mustCanonical(t, Bool(true)))
	assert.Equal(t, "false", mustCanonical(t, Bool(false)))
	assert.Equal(t, `"hi"`, mustCanonical(t, String("hi")))
}

func TestMarshalCanonical_Numbers(t *testing.T) {
	assert.Equal(t, "1", mustCanonical(t, Number(1.0)), "integral doubles print without a fraction")
	assert.Equal(t, "1.5", mustCanonical(t, Number(1.5)))
	assert.Equal(t, "-0.25", mustCanonical(t, Number(-0.25)))
}

func TestMarshalCanonical_NonFiniteNumberFails(t *testing.T) {
	_, err := MarshalCanonical(Number(math.NaN()))
	assert.Error(t, err)

	_, err = MarshalCanonical(Number(math.Inf(1)))
	assert.Error(t, err)
}

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	obj := Object{
		"b": Number(2),
		"a": Number(1),
		"c": Number(3),
	}
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, mustCanonical(t, obj))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := Object{
		"id":   String("a"),
		"tags": Array{String("x"), Null{}},
		"n":    Number(3),
	}

	first := mustCanonical(t, obj)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, mustCanonical(t, obj))
	}
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	assert.Equal(t, `"a<b&c>d"`, mustCanonical(t, String("a<b&c>d")))
}

func TestMarshalCanonical_ControlCharacters(t *testing.T) {
	assert.Equal(t, `"line\nbreak\ttab\u0001"`, mustCanonical(t, String("line\nbreak\ttab\x01")))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// e + combining acute normalizes to the precomposed form.
	decomposed := String("e\u0301")
	precomposed := String("é")
	assert.Equal(t, mustCanonical(t, precomposed), mustCanonical(t, decomposed))
}
