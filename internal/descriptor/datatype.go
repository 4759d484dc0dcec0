package descriptor

import "fmt"

// Primitive enumerates the closed set of base data types (spec.md §3).
type Primitive string

const (
	Void   Primitive = "void"
	I8     Primitive = "i8"
	I16    Primitive = "i16"
	I32    Primitive = "i32"
	I64    Primitive = "i64"
	I128   Primitive = "i128"
	U8     Primitive = "u8"
	U16    Primitive = "u16"
	U32    Primitive = "u32"
	U64    Primitive = "u64"
	U128   Primitive = "u128"
	F32    Primitive = "f32"
	F64    Primitive = "f64"
	Bool   Primitive = "bool"
	Byte   Primitive = "byte"
	Char   Primitive = "char"
	String Primitive = "string"

	// Vec and Option wrap an Inner type; Data refers to a registered data
	// descriptor by identifier; Undetermined is the wildcard used for empty
	// containers and matches any type during equality checks.
	Vec          Primitive = "vec"
	Option       Primitive = "option"
	Data         Primitive = "data"
	Undetermined Primitive = "undetermined"
)

// DataType is the closed set described in spec.md §3. Vec and Option carry
// an Inner type; Data carries a Ref to a registered data descriptor.
type DataType struct {
	Primitive Primitive
	Inner     *DataType
	Ref       *Identifier
}

// Simple constructs a DataType for a non-parametric primitive.
func Simple(p Primitive) DataType {
	return DataType{Primitive: p}
}

// VecOf constructs a Vec<T> data type.
func VecOf(inner DataType) DataType {
	return DataType{Primitive: Vec, Inner: &inner}
}

// OptionOf constructs an Option<T> data type.
func OptionOf(inner DataType) DataType {
	return DataType{Primitive: Option, Inner: &inner}
}

// DataRef constructs a Data(ref) data type.
func DataRef(ref Identifier) DataType {
	return DataType{Primitive: Data, Ref: &ref}
}

// UndeterminedType is the wildcard data type matching anything.
func UndeterminedType() DataType {
	return DataType{Primitive: Undetermined}
}

// Equal implements spec.md §3's equality rule: Undetermined matches any
// type on either side; otherwise comparison is structural.
func (d DataType) Equal(other DataType) bool {
	if d.Primitive == Undetermined || other.Primitive == Undetermined {
		return true
	}
	if d.Primitive != other.Primitive {
		return false
	}
	switch d.Primitive {
	case Vec, Option:
		if d.Inner == nil || other.Inner == nil {
			return d.Inner == other.Inner
		}
		return d.Inner.Equal(*other.Inner)
	case Data:
		if d.Ref == nil || other.Ref == nil {
			return d.Ref == other.Ref
		}
		return d.Ref.Equal(*other.Ref)
	default:
		return true
	}
}

func (d DataType) String() string {
	switch d.Primitive {
	case Vec:
		return fmt.Sprintf("Vec<%s>", d.Inner)
	case Option:
		return fmt.Sprintf("Option<%s>", d.Inner)
	case Data:
		if d.Ref != nil {
			return fmt.Sprintf("Data(%s)", d.Ref.String())
		}
		return "Data(?)"
	default:
		return string(d.Primitive)
	}
}

// Flow distinguishes block (≤1 value per track) from stream (ordered,
// closure-terminated sequence) connections.
type Flow string

const (
	FlowBlock  Flow = "block"
	FlowStream Flow = "stream"
)

// Variability marks whether a parameter must resolve at static build time.
type Variability string

const (
	Const Variability = "const"
	Var   Variability = "var"
)
