package fixture

import (
	"fmt"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
)

// literalToRaw coerces a YAML-decoded scalar into a value.Raw of the
// declared parameter type: the destination shape is already known from the
// descriptor, so this dispatches on it directly instead of inferring a type
// from the decoded Go value.
func literalToRaw(dt descriptor.DataType, literal interface{}) (value.Raw, error) {
	switch dt.Primitive {
	case descriptor.Void:
		return value.Void(), nil
	case descriptor.Bool:
		b, ok := literal.(bool)
		if !ok {
			return value.Raw{}, fmt.Errorf("expected bool, got %T", literal)
		}
		return value.Bool(b), nil
	case descriptor.String:
		s, ok := literal.(string)
		if !ok {
			return value.Raw{}, fmt.Errorf("expected string, got %T", literal)
		}
		return value.Str(s), nil
	case descriptor.Byte:
		n, err := literalToInt(literal)
		if err != nil {
			return value.Raw{}, err
		}
		return value.Byte(byte(n)), nil
	case descriptor.Char:
		s, ok := literal.(string)
		if !ok || len(s) == 0 {
			return value.Raw{}, fmt.Errorf("expected single-character string, got %v", literal)
		}
		return value.Char([]rune(s)[0]), nil
	case descriptor.I8, descriptor.I16, descriptor.I32, descriptor.I64, descriptor.I128:
		n, err := literalToInt(literal)
		if err != nil {
			return value.Raw{}, err
		}
		return value.Int(dt.Primitive, n), nil
	case descriptor.U8, descriptor.U16, descriptor.U32, descriptor.U64, descriptor.U128:
		n, err := literalToInt(literal)
		if err != nil {
			return value.Raw{}, err
		}
		return value.Uint(dt.Primitive, uint64(n)), nil
	case descriptor.F32:
		f, err := literalToFloat(literal)
		if err != nil {
			return value.Raw{}, err
		}
		return value.Float32(float32(f)), nil
	case descriptor.F64:
		f, err := literalToFloat(literal)
		if err != nil {
			return value.Raw{}, err
		}
		return value.Float64(f), nil
	default:
		return value.Raw{}, fmt.Errorf("parameter type %s is not constructible from a fixture literal", dt)
	}
}

func literalToInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func literalToFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
