package descriptor

// ContextDescriptor is a named, typed record of values attached to a
// track, declared by a model's source and consumed downstream via
// ctx[field] expressions (spec.md §3 "Context").
type ContextDescriptor struct {
	Identifier  Identifier
	Fields      map[string]DataType
	Description string
}

// Field looks up the described type of a field, reporting whether it
// exists on this context.
func (c ContextDescriptor) Field(name string) (DataType, bool) {
	dt, ok := c.Fields[name]
	return dt, ok
}
