// Package builder implements the two-phase build: a static CheckBuild /
// StaticBuild pass that validates and instantiates models once per
// closure, and a DynamicBuild pass run once per track at source invocation
// (spec.md §4.4 "Builder").
package builder

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/transmission"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// BuildId identifies one dynamic-build instantiation of a treatment within
// a track (spec.md §4.4 "Allocate a fresh BuildId").
type BuildId int

// ModelInstance is the runtime contract a compiled or designed model
// fulfils once built: the concrete Go type the builder type-asserts out of
// a ModelDescriptor.Constructor (spec.md §4.1's Buildable<M>, resolved the
// Go way per internal/descriptor's package doc).
type ModelInstance interface {
	Identifier() descriptor.Identifier
	// SetID records the build id the world assigned this instance at
	// registration, called immediately after RegisterModel and before
	// Initialize (spec.md §6 Model contract's "set_id(ModelId)"). A model
	// that invokes its own sources stores this id to pass to
	// WorldHandle.InvokeSource.
	SetID(buildID int)
	// Initialize runs once, after parameters are set, before any source of
	// this model can be invoked.
	Initialize(ctx context.Context) error
	// Sources returns the names of the sources this model exposes.
	Sources() []string
	// Continuous returns the model's long-lived background tasks, started
	// once at world liveness and run for the lifetime of live() (spec.md
	// §4.5 "drain the continuous futures into the executor"). A model that
	// stores the WorldHandle it received from its ModelConstructor can call
	// back into InvokeSource from within one of these tasks. Models with no
	// background activity return nil.
	Continuous(ctx context.Context) []Task
	// Shutdown releases resources held by the model; called once as the
	// world ends (spec.md §6 Model contract's "shutdown()").
	Shutdown(ctx context.Context) error
}

// ModelConstructor builds a fresh ModelInstance for a Compiled model
// descriptor. Registered as the opaque ModelDescriptor.Constructor value.
type ModelConstructor func(world WorldHandle, params map[string]value.Raw) (ModelInstance, error)

// WorldHandle is the narrow slice of world state a model needs at
// construction time: registering itself and looking up sibling models by
// the build id RegisterModel returned. The full scheduler lives in internal/world; this interface
// exists so builder does not import it (layering runs builder -> world,
// never the reverse).
type WorldHandle interface {
	RegisterModel(m ModelInstance) int
	Model(buildID int) (ModelInstance, bool)
	// InvokeSource triggers the named source of the model identified by
	// buildID, dynamically building and running the fresh track it roots
	// (spec.md §4.5's "the world calls the author's callback with the
	// freshly built Outputs, receives back a list of futures, and registers
	// them under a new track id"). It blocks until every task of that track
	// has completed.
	InvokeSource(ctx context.Context, buildID int, sourceName string, params map[string]value.Raw) error
}

// Task is one cooperative unit of work a treatment's Prepare returns. The
// world schedules it to completion as part of its track's JoinAll (spec.md
// §4.5 "the world wraps them in a single JoinAll per track").
type Task func(ctx context.Context) mdlerrors.ResultStatus

// TreatmentInstance is the runtime contract a compiled treatment fulfils:
// given its wired inputs/outputs, bound models, and resolved parameters, it
// produces the cooperative tasks implementing its behaviour (spec.md §4.4
// step 4, "prepare(inputs, outputs) -> Vec<Future>").
type TreatmentInstance interface {
	Prepare(ctx context.Context, io TreatmentIO) ([]Task, error)
}

// TreatmentConstructor builds a fresh TreatmentInstance for a Compiled
// treatment descriptor. Registered as the opaque
// TreatmentDescriptor.Constructor value.
type TreatmentConstructor func() TreatmentInstance

// TreatmentIO bundles everything a TreatmentInstance.Prepare needs: its
// wired input/output transmission handles, its bound model instances, and
// its resolved parameter values.
type TreatmentIO struct {
	Inputs  map[string]*transmission.Input
	Outputs map[string]transmission.Sink
	Models  map[string]ModelInstance
	Params  map[string]value.Raw
}
