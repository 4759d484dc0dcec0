package descriptor

// Identified is implemented by every descriptor kind to expose its
// identifier (spec.md §4.1).
type Identified interface {
	Identifier() Identifier
}

// Documented exposes short/long description text. Every descriptor kind
// carries documentation fields even when authors leave them empty.
type Documented interface {
	ShortDescription() string
	LongDescription() string
}

// Parameterised exposes the parameter set declared by a model or
// treatment descriptor.
type Parameterised interface {
	Parameters() []Parameter
}

// BuildMode tags the construction strategy a model or treatment
// descriptor uses (spec.md §3 "build mode").
type BuildMode string

const (
	BuildCompiled BuildMode = "compiled"
	BuildDesigned BuildMode = "designed"
	BuildSource   BuildMode = "source"
)

// Buildable is implemented by descriptors the builder can construct: it
// exposes the build mode tag the builder switches on to choose a
// construction strategy (spec.md §4.1 "Buildable<M>"). Go has no direct
// equivalent of the original's Buildable<M> generic parameter, so the
// concrete constructor payload travels as an opaque value the builder
// type-asserts once it knows which M it needs.
type Buildable interface {
	Mode() BuildMode
}
