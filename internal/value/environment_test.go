package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
)

type stubFunctions map[string]func([]Raw) (Raw, error)

func (s stubFunctions) Lookup(id descriptor.Identifier) (func([]Raw) (Raw, error), bool) {
	fn, ok := s[id.Name]
	return fn, ok
}

func TestEnvironment_ResolveRaw(t *testing.T) {
	env := NewEnvironment(nil)
	v := FromRaw(Int(descriptor.I32, 42))

	got, err := env.Resolve(v)
	require.NoError(t, err)
	require.Equal(t, int64(42), got.Int)
}

func TestEnvironment_ResolveVariable(t *testing.T) {
	env := NewEnvironment(nil)
	env.BindVariable("count", Uint(descriptor.U64, 7))

	got, err := env.Resolve(Variable("count"))
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.Uint)
}

func TestEnvironment_ResolveUnboundVariableErrors(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Resolve(Variable("missing"))
	require.Error(t, err)
}

func TestEnvironment_ResolveContextField(t *testing.T) {
	env := NewEnvironment(nil)
	env.BindContext("engine", map[string]Raw{"tick": Uint(descriptor.U64, 3)})

	got, err := env.Resolve(ContextField("engine", "tick"))
	require.NoError(t, err)
	require.Equal(t, uint64(3), got.Uint)
}

func TestEnvironment_ResolveContextFieldMissingFieldErrors(t *testing.T) {
	env := NewEnvironment(nil)
	env.BindContext("engine", map[string]Raw{})

	_, err := env.Resolve(ContextField("engine", "tick"))
	require.Error(t, err)
}

func TestEnvironment_ResolveFunctionApplication(t *testing.T) {
	id := descriptor.NewIdentifier("stdlib", []string{"ops"}, "add", "1.0.0")
	funcs := stubFunctions{
		"add": func(args []Raw) (Raw, error) {
			return Int(descriptor.I32, args[0].Int+args[1].Int), nil
		},
	}
	env := NewEnvironment(funcs)

	result, err := env.Resolve(Call(id, FromRaw(Int(descriptor.I32, 2)), FromRaw(Int(descriptor.I32, 3))))
	require.NoError(t, err)
	require.Equal(t, int64(5), result.Int)
}

func TestIsConstResolvable(t *testing.T) {
	require.True(t, IsConstResolvable(FromRaw(Int(descriptor.I32, 1))))
	require.True(t, IsConstResolvable(Variable("x")))
	require.False(t, IsConstResolvable(ContextField("engine", "tick")))

	id := descriptor.NewIdentifier("stdlib", nil, "identity", "1.0.0")
	require.False(t, IsConstResolvable(Call(id, ContextField("engine", "tick"))))
	require.True(t, IsConstResolvable(Call(id, Variable("x"))))
}

func TestGenesisEnvironmentBindsInvocationParameters(t *testing.T) {
	env := GenesisEnvironment(nil, map[string]Raw{"n": Uint(descriptor.U64, 10)})

	got, err := env.Resolve(Variable("n"))
	require.NoError(t, err)
	require.Equal(t, uint64(10), got.Uint)
}
