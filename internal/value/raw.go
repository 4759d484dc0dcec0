package value

import (
	"fmt"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
)

// Raw is a concrete executive value matching one of descriptor.DataType's
// closed set. Exactly one field is meaningful, selected by Type.Primitive.
type Raw struct {
	Type   descriptor.DataType
	Int    int64
	Uint   uint64
	Float  float64
	Bool   bool
	Byte   byte
	Char   rune
	Str    string
	Vec    []Raw
	Option *Raw
	Data   map[string]Raw
}

// Void is the unit value.
func Void() Raw { return Raw{Type: descriptor.Simple(descriptor.Void)} }

// Int constructs a signed integer raw value of the given width primitive.
func Int(p descriptor.Primitive, v int64) Raw { return Raw{Type: descriptor.Simple(p), Int: v} }

// Uint constructs an unsigned integer raw value of the given width primitive.
func Uint(p descriptor.Primitive, v uint64) Raw { return Raw{Type: descriptor.Simple(p), Uint: v} }

// Float32 constructs an F32 raw value.
func Float32(v float32) Raw { return Raw{Type: descriptor.Simple(descriptor.F32), Float: float64(v)} }

// Float64 constructs an F64 raw value.
func Float64(v float64) Raw { return Raw{Type: descriptor.Simple(descriptor.F64), Float: v} }

// Bool constructs a Bool raw value.
func Bool(v bool) Raw { return Raw{Type: descriptor.Simple(descriptor.Bool), Bool: v} }

// Byte constructs a Byte raw value.
func Byte(v byte) Raw { return Raw{Type: descriptor.Simple(descriptor.Byte), Byte: v} }

// Char constructs a Char raw value.
func Char(v rune) Raw { return Raw{Type: descriptor.Simple(descriptor.Char), Char: v} }

// Str constructs a String raw value.
func Str(v string) Raw { return Raw{Type: descriptor.Simple(descriptor.String), Str: v} }

// VecValue constructs a Vec<T> raw value. The element type is taken from the
// first element when present, otherwise Undetermined (spec.md §3's
// Undetermined wildcard covers empty containers).
func VecValue(elems ...Raw) Raw {
	inner := descriptor.UndeterminedType()
	if len(elems) > 0 {
		inner = elems[0].Type
	}
	return Raw{Type: descriptor.VecOf(inner), Vec: append([]Raw(nil), elems...)}
}

// None constructs an empty Option<T> raw value.
func None(inner descriptor.DataType) Raw {
	return Raw{Type: descriptor.OptionOf(inner)}
}

// Some constructs a populated Option<T> raw value.
func Some(v Raw) Raw {
	return Raw{Type: descriptor.OptionOf(v.Type), Option: &v}
}

// DataValue constructs a Data(ref) raw value from its field values.
func DataValue(ref descriptor.Identifier, fields map[string]Raw) Raw {
	return Raw{Type: descriptor.DataRef(ref), Data: fields}
}

func (r Raw) String() string {
	switch r.Type.Primitive {
	case descriptor.Void:
		return "void"
	case descriptor.Bool:
		return fmt.Sprintf("%t", r.Bool)
	case descriptor.Byte:
		return fmt.Sprintf("%d", r.Byte)
	case descriptor.Char:
		return string(r.Char)
	case descriptor.String:
		return r.Str
	case descriptor.F32, descriptor.F64:
		return fmt.Sprintf("%g", r.Float)
	case descriptor.Vec:
		return fmt.Sprintf("%v", r.Vec)
	case descriptor.Option:
		if r.Option == nil {
			return "none"
		}
		return r.Option.String()
	case descriptor.Data:
		return fmt.Sprintf("%v", r.Data)
	default:
		switch {
		case isSigned(r.Type.Primitive):
			return fmt.Sprintf("%d", r.Int)
		case isUnsigned(r.Type.Primitive):
			return fmt.Sprintf("%d", r.Uint)
		}
		return "<undetermined>"
	}
}

func isSigned(p descriptor.Primitive) bool {
	switch p {
	case descriptor.I8, descriptor.I16, descriptor.I32, descriptor.I64, descriptor.I128:
		return true
	default:
		return false
	}
}

func isUnsigned(p descriptor.Primitive) bool {
	switch p {
	case descriptor.U8, descriptor.U16, descriptor.U32, descriptor.U64, descriptor.U128:
		return true
	default:
		return false
	}
}
