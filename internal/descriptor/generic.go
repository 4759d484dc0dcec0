package descriptor

// Trait is a capability a generic's concrete substitution must provide
// (equality, ordering, arithmetic, display, serialize, bounded, float, …).
type Trait string

const (
	TraitEquality   Trait = "equality"
	TraitOrdering   Trait = "ordering"
	TraitArithmetic Trait = "arithmetic"
	TraitDisplay    Trait = "display"
	TraitSerialize  Trait = "serialize"
	TraitBounded    Trait = "bounded"
	TraitFloat      Trait = "float"
)

// Generic is a named type variable plus the traits any concrete
// substitution must satisfy (spec.md §3).
type Generic struct {
	Name   string
	Traits []Trait
}

// Satisfies reports whether the candidate data type provides every trait
// this generic requires. Undetermined satisfies nothing but is itself
// allowed to flow through unresolved (spec.md §9 "Generic resolution").
func (g Generic) Satisfies(dt DataType) bool {
	if dt.Primitive == Undetermined {
		return true
	}
	provided := traitsOf(dt)
	for _, required := range g.Traits {
		if !containsTrait(provided, required) {
			return false
		}
	}
	return true
}

func containsTrait(set []Trait, t Trait) bool {
	for _, candidate := range set {
		if candidate == t {
			return true
		}
	}
	return false
}

// traitsOf returns the traits a primitive data type natively provides.
// Data(ref) types are assumed to provide equality and display only, since
// their full trait set lives on the registered data descriptor and is out
// of scope for this closed enumeration.
func traitsOf(dt DataType) []Trait {
	switch dt.Primitive {
	case I8, I16, I32, I64, I128, U8, U16, U32, U64, U128:
		return []Trait{TraitEquality, TraitOrdering, TraitArithmetic, TraitDisplay, TraitSerialize, TraitBounded}
	case F32, F64:
		return []Trait{TraitEquality, TraitOrdering, TraitArithmetic, TraitDisplay, TraitSerialize, TraitFloat}
	case Bool:
		return []Trait{TraitEquality, TraitDisplay, TraitSerialize}
	case Byte:
		return []Trait{TraitEquality, TraitOrdering, TraitDisplay, TraitSerialize, TraitBounded}
	case Char, String:
		return []Trait{TraitEquality, TraitOrdering, TraitDisplay, TraitSerialize}
	case Vec:
		return []Trait{TraitEquality, TraitSerialize}
	case Option:
		return []Trait{TraitEquality, TraitSerialize}
	case Data:
		return []Trait{TraitEquality, TraitDisplay}
	default:
		return nil
	}
}

// GenericBindings maps generic names to the concrete data type substituted
// for them during dynamic build (spec.md §4.4 "Dynamic build" step 2).
type GenericBindings map[string]DataType

// Resolve substitutes t's generic placeholder (identified by matching a
// Data ref whose package is the sentinel "$generic") using bindings, or
// returns t unchanged if it carries no generic reference.
func (b GenericBindings) Resolve(t DataType) DataType {
	if t.Primitive == Data && t.Ref != nil && t.Ref.Package == genericPackage {
		if resolved, ok := b[t.Ref.Name]; ok {
			return resolved
		}
		return t
	}
	if t.Inner != nil {
		resolved := b.Resolve(*t.Inner)
		t.Inner = &resolved
	}
	return t
}

const genericPackage = "$generic"

// GenericRef constructs the sentinel DataType used to mark an
// as-yet-unresolved generic named name inside a descriptor's signatures.
func GenericRef(name string) DataType {
	id := NewIdentifier(genericPackage, nil, name, "")
	return DataRef(id)
}
