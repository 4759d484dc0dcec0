package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
)

func TestVecValue_EmptyIsUndeterminedInner(t *testing.T) {
	v := VecValue()
	require.Equal(t, descriptor.Undetermined, v.Type.Inner.Primitive)
}

func TestVecValue_TakesElementTypeFromFirst(t *testing.T) {
	v := VecValue(Bool(true), Bool(false))
	require.Equal(t, descriptor.Bool, v.Type.Inner.Primitive)
	require.Len(t, v.Vec, 2)
}

func TestOption_NoneAndSome(t *testing.T) {
	none := None(descriptor.Simple(descriptor.String))
	require.Nil(t, none.Option)
	require.Equal(t, "none", none.String())

	some := Some(Str("hello"))
	require.NotNil(t, some.Option)
	require.Equal(t, "hello", some.String())
}

func TestDataValue_RoundTripsFields(t *testing.T) {
	ref := descriptor.NewIdentifier("stdlib", nil, "Measurement", "1.0.0")
	d := DataValue(ref, map[string]Raw{"value": Float64(1.5)})

	require.Equal(t, descriptor.Data, d.Type.Primitive)
	require.Equal(t, 1.5, d.Data["value"].Float)
}

func TestRaw_StringFormatsEachPrimitive(t *testing.T) {
	require.Equal(t, "void", Void().String())
	require.Equal(t, "true", Bool(true).String())
	require.Equal(t, "hello", Str("hello").String())
	require.Equal(t, "65", Byte(65).String())
	require.Equal(t, "A", Char('A').String())
	require.Equal(t, "3.5", Float64(3.5).String())
	require.Equal(t, "42", Int(descriptor.I32, 42).String())
	require.Equal(t, "7", Uint(descriptor.U64, 7).String())
}
