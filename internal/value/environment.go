package value

import (
	"fmt"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
)

// ContextualEnvironment is the scope a Value resolves against at dynamic
// build time: the variables bound in the enclosing treatment instantiation,
// the context records attached to the current track, and the function
// table used to evaluate Call values (spec.md §3 "Values are resolved
// against a ContextualEnvironment at dynamic build").
type ContextualEnvironment struct {
	Variables map[string]Raw
	Contexts  map[string]map[string]Raw
	Functions FunctionTable
}

// FunctionTable resolves a function descriptor identifier to its callable
// implementation, asserted from descriptor.FunctionDescriptor.Call.
type FunctionTable interface {
	Lookup(id descriptor.Identifier) (func([]Raw) (Raw, error), bool)
}

// NewEnvironment constructs an empty ContextualEnvironment ready to accept
// bindings.
func NewEnvironment(functions FunctionTable) *ContextualEnvironment {
	return &ContextualEnvironment{
		Variables: make(map[string]Raw),
		Contexts:  make(map[string]map[string]Raw),
		Functions: functions,
	}
}

// BindVariable records a named value available to Variable references.
func (e *ContextualEnvironment) BindVariable(name string, v Raw) {
	e.Variables[name] = v
}

// BindContext records the field values of a named context available to
// ContextField references.
func (e *ContextualEnvironment) BindContext(name string, fields map[string]Raw) {
	e.Contexts[name] = fields
}

// Resolve evaluates a Value against the environment, producing the raw
// executive value it denotes. Const-variability parameters must resolve
// here without error at static build time (spec.md §3 "Variability");
// Var-variability parameters may additionally reference context fields and
// are resolved once per track at dynamic build.
func (e *ContextualEnvironment) Resolve(v Value) (Raw, error) {
	switch v.Kind {
	case KindRaw:
		return v.Raw, nil
	case KindVariable:
		val, ok := e.Variables[v.Variable]
		if !ok {
			return Raw{}, fmt.Errorf("unresolved variable %q", v.Variable)
		}
		return val, nil
	case KindContext:
		fields, ok := e.Contexts[v.Context]
		if !ok {
			return Raw{}, fmt.Errorf("unresolved context %q", v.Context)
		}
		val, ok := fields[v.Field]
		if !ok {
			return Raw{}, fmt.Errorf("context %q has no field %q", v.Context, v.Field)
		}
		return val, nil
	case KindCall:
		if e.Functions == nil {
			return Raw{}, fmt.Errorf("function application %s has no function table", v.Function)
		}
		fn, ok := e.Functions.Lookup(v.Function)
		if !ok {
			return Raw{}, fmt.Errorf("unresolved function %s", v.Function)
		}
		args := make([]Raw, len(v.Arguments))
		for i, arg := range v.Arguments {
			resolved, err := e.Resolve(arg)
			if err != nil {
				return Raw{}, fmt.Errorf("argument %d of %s: %w", i, v.Function, err)
			}
			args[i] = resolved
		}
		return fn(args)
	default:
		return Raw{}, fmt.Errorf("invalid value kind %q", v.Kind)
	}
}

// IsConstResolvable reports whether v can be resolved without a context —
// i.e. contains no ContextField reference anywhere in its expression tree.
// Used to enforce that Const parameters never depend on track-scoped state
// (spec.md §3 "Const parameters must be resolvable at static build time").
func IsConstResolvable(v Value) bool {
	switch v.Kind {
	case KindContext:
		return false
	case KindCall:
		for _, arg := range v.Arguments {
			if !IsConstResolvable(arg) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// GenesisEnvironment is the root environment constructed at World genesis:
// it carries no track-scoped context bindings, only the top-level variables
// bound from the entrypoint's invocation parameters and the global function
// table (spec.md §4.5 "genesis(entrypoint, params)").
func GenesisEnvironment(functions FunctionTable, params map[string]Raw) *ContextualEnvironment {
	env := NewEnvironment(functions)
	for name, v := range params {
		env.BindVariable(name, v)
	}
	return env
}
