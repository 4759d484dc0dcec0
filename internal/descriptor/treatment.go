package descriptor

// ModelSlot names a required model collaborator a treatment needs bound at
// instantiation time, by local slot name and the model descriptor it must
// be compatible with (spec.md §3 "required model slots").
type ModelSlot struct {
	Name  string
	Model Identifier
}

// SourceFrom names the source that triggers a treatment's dynamic build:
// which source, of which model slot, drives it (spec.md §3 "source_from").
type SourceFrom struct {
	ModelSlot string
	Source    string
}

// TreatmentDescriptor is the immutable metadata for a computational node:
// identifier, generics, parameters, inputs/outputs, required model slots,
// consumed contexts, triggering source, and build mode.
//
// Constructor carries the compiled constructor when Build == BuildCompiled;
// opaque here, type-asserted by the builder to its own TreatmentConstructor
// type. Source treatments (Build == BuildSource) carry no payload, and the
// builder produces no tasks for them. Designed treatments likewise carry no
// payload: the builder looks up the nested design in its design.Registry by
// this descriptor's Identifier.
type TreatmentDescriptor struct {
	ID           Identifier
	Generics     []Generic
	Params       []Parameter
	Inputs       []IO
	Outputs      []IO
	ModelSlots   []ModelSlot
	ContextsUsed []Identifier
	TriggeredBy  *SourceFrom
	Build        BuildMode
	Constructor  any
	Short        string
	Long         string
}

func (t TreatmentDescriptor) Identifier() Identifier   { return t.ID }
func (t TreatmentDescriptor) ShortDescription() string { return t.Short }
func (t TreatmentDescriptor) LongDescription() string  { return t.Long }
func (t TreatmentDescriptor) Parameters() []Parameter  { return t.Params }
func (t TreatmentDescriptor) Mode() BuildMode          { return t.Build }

// Input looks up a declared input port by name.
func (t TreatmentDescriptor) Input(name string) (IO, bool) {
	for _, in := range t.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return IO{}, false
}

// Output looks up a declared output port by name.
func (t TreatmentDescriptor) Output(name string) (IO, bool) {
	for _, out := range t.Outputs {
		if out.Name == name {
			return out, true
		}
	}
	return IO{}, false
}

// RequiredInputs returns every declared input (spec.md §4.2 invariant 4
// requires each to be fed at least once).
func (t TreatmentDescriptor) RequiredInputs() []IO {
	return t.Inputs
}

var (
	_ Identified    = TreatmentDescriptor{}
	_ Documented    = TreatmentDescriptor{}
	_ Parameterised = TreatmentDescriptor{}
	_ Buildable     = TreatmentDescriptor{}
)

// FunctionDescriptor describes a pure function over values, used inside
// Var parameter expressions (spec.md §4.2 invariant 6) and context/value
// resolution.
type FunctionDescriptor struct {
	ID      Identifier
	Params  []Parameter
	Returns DataType
	Call    any // opaque; value.FunctionTable.Lookup supplies the func([]value.Raw) (value.Raw, error) values resolve with
	Short   string
	Long    string
}

func (f FunctionDescriptor) Identifier() Identifier   { return f.ID }
func (f FunctionDescriptor) ShortDescription() string { return f.Short }
func (f FunctionDescriptor) LongDescription() string  { return f.Long }
func (f FunctionDescriptor) Parameters() []Parameter  { return f.Params }

var (
	_ Identified    = FunctionDescriptor{}
	_ Documented    = FunctionDescriptor{}
	_ Parameterised = FunctionDescriptor{}
)

// DataDescriptor describes a registered composite data structure
// referenced by DataType{Primitive: Data}.
type DataDescriptor struct {
	ID     Identifier
	Fields map[string]DataType
	Short  string
	Long   string
}

func (d DataDescriptor) Identifier() Identifier   { return d.ID }
func (d DataDescriptor) ShortDescription() string { return d.Short }
func (d DataDescriptor) LongDescription() string  { return d.Long }

var (
	_ Identified = DataDescriptor{}
	_ Documented = DataDescriptor{}
)
