package descriptor

// Parameter describes a named, typed input to a model or treatment,
// carrying its variability and an optional default raw value.
type Parameter struct {
	Name        string
	Variability Variability
	Type        DataType
	Default     interface{}
	HasDefault  bool
	Attributes  map[string]string
}

// Required reports whether callers must supply a value (no default).
func (p Parameter) Required() bool {
	return !p.HasDefault
}

// IO describes an input or output port on a treatment: name, type, flow,
// and attributes (e.g. whether the output is optional, spec.md §9's open
// question resolution).
type IO struct {
	Name       string
	Type       DataType
	Flow       Flow
	Optional   bool
	Attributes map[string]string
}
