package descriptor

// SourceDescriptor names a trigger a model exposes: the set of contexts it
// produces for the track it creates, plus the outputs it drives directly
// (spec.md §3 "Model descriptor").
type SourceDescriptor struct {
	Name     string
	Contexts []ContextDescriptor
	Outputs  []IO
}

// ModelDescriptor is the immutable metadata for a long-lived stateful
// collaborator: identifier, parameters, named sources, and build mode.
//
// Constructor carries the compiled constructor when Build == BuildCompiled;
// it is an opaque value the builder type-asserts to its own
// ModelConstructor type (see internal/builder). A Designed model needs no
// extra payload here: the builder builds it as a placeholder instance
// carrying this descriptor's source names and the resolved parameters; no
// nested design is looked up for it.
type ModelDescriptor struct {
	ID          Identifier
	Params      []Parameter
	Sources     map[string]SourceDescriptor
	Build       BuildMode
	Constructor any
	Short       string
	Long        string
}

func (m ModelDescriptor) Identifier() Identifier   { return m.ID }
func (m ModelDescriptor) ShortDescription() string { return m.Short }
func (m ModelDescriptor) LongDescription() string  { return m.Long }
func (m ModelDescriptor) Parameters() []Parameter  { return m.Params }
func (m ModelDescriptor) Mode() BuildMode          { return m.Build }

// Source looks up a named source, reporting whether the model exposes it.
func (m ModelDescriptor) Source(name string) (SourceDescriptor, bool) {
	s, ok := m.Sources[name]
	return s, ok
}

var (
	_ Identified     = ModelDescriptor{}
	_ Documented     = ModelDescriptor{}
	_ Parameterised  = ModelDescriptor{}
	_ Buildable      = ModelDescriptor{}
)
