// Package value implements the engine's Value sum type and the resolution
// of values against a ContextualEnvironment at dynamic build time (spec.md
// §3 "Value").
package value

import (
	"fmt"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
)

// Kind tags which alternative of the Value sum type a Value carries.
type Kind string

const (
	KindRaw      Kind = "raw"
	KindVariable Kind = "variable"
	KindContext  Kind = "context"
	KindCall     Kind = "call"
)

// Value is the sum of a raw executive value, a variable reference by name,
// a context field reference, or a function application. Exactly one of the
// Kind-selected fields is populated.
type Value struct {
	Kind Kind

	// KindRaw
	Raw Raw

	// KindVariable
	Variable string

	// KindContext
	Context string
	Field   string

	// KindCall
	Function  descriptor.Identifier
	Arguments []Value
}

// FromRaw constructs a Value wrapping a raw executive value.
func FromRaw(raw Raw) Value { return Value{Kind: KindRaw, Raw: raw} }

// Variable constructs a reference to a named value in the enclosing scope.
func Variable(name string) Value { return Value{Kind: KindVariable, Variable: name} }

// ContextField constructs a reference to a context field: ctx[field].
func ContextField(context, field string) Value {
	return Value{Kind: KindContext, Context: context, Field: field}
}

// Call constructs a pure function application over argument values.
func Call(fn descriptor.Identifier, args ...Value) Value {
	return Value{Kind: KindCall, Function: fn, Arguments: args}
}

func (v Value) String() string {
	switch v.Kind {
	case KindRaw:
		return v.Raw.String()
	case KindVariable:
		return "$" + v.Variable
	case KindContext:
		return fmt.Sprintf("%s[%s]", v.Context, v.Field)
	case KindCall:
		return fmt.Sprintf("%s(...)", v.Function.String())
	default:
		return "<invalid value>"
	}
}
