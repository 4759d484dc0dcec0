package builder

import (
	"context"
	"fmt"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/design"
	"github.com/kestrelflow/melodium-engine/internal/transmission"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// DynamicBuildResult collects every cooperative task produced while
// instantiating a treatment design for one track, plus the inputs still
// waiting to be fed by an enclosing scope's give_next continuation
// (spec.md §4.4 step 5, "FeedingInputs").
type DynamicBuildResult struct {
	PreparedTasks []Task
	FeedingInputs map[string][]*transmission.Input
}

func newDynamicBuildResult() *DynamicBuildResult {
	return &DynamicBuildResult{FeedingInputs: make(map[string][]*transmission.Input)}
}

// Dynamic carries the per-call state threaded through a depth-first
// DynamicBuild: the collection of static descriptors, the registry of
// Designed treatment bodies, a monotonic BuildId allocator, and the
// function table values resolve against.
type Dynamic struct {
	Collection *descriptor.Collection
	Registry   *design.Registry
	Functions  value.FunctionTable

	nextID BuildId
}

// NewDynamic constructs a Dynamic builder context.
func NewDynamic(collection *descriptor.Collection, registry *design.Registry, functions value.FunctionTable) *Dynamic {
	return &Dynamic{Collection: collection, Registry: registry, Functions: functions}
}

// AllocateBuildId hands out a fresh, monotonically increasing BuildId
// (spec.md §4.4 step 1).
func (b *Dynamic) AllocateBuildId() BuildId {
	id := b.nextID
	b.nextID++
	return id
}

// Build performs the depth-first instantiation of d for one track: it
// allocates a BuildId, recurses into every inner treatment instantiation,
// allocates and wires the connection channels, and finally calls the
// treatment's Prepare to collect its cooperative tasks (spec.md §4.4
// "Dynamic build (per track, at source invocation)"). boundary supplies the
// already-wired self-side inputs/outputs for a nested design; pass a zero
// TreatmentIO for a top-level entrypoint, whose self outputs are left
// without a consumer (an inner output feeding only them becomes a
// BlindOutput) and whose self inputs feed inner treatments from an Output
// nothing sends on or closes; neither case is reported as an error.
func (b *Dynamic) Build(ctx context.Context, d *design.TreatmentDesign, models map[string]ModelInstance, env *value.ContextualEnvironment, boundary TreatmentIO) (BuildId, *DynamicBuildResult, error) {
	id := b.AllocateBuildId()
	result := newDynamicBuildResult()

	inputs, outputs, err := b.wire(d, boundary)
	if err != nil {
		return id, result, err
	}

	for name, inst := range d.Treatments {
		innerModels := make(map[string]ModelInstance, len(inst.ModelBindings))
		for slot, localModel := range inst.ModelBindings {
			if m, ok := models[localModel]; ok {
				innerModels[slot] = m
			}
		}

		resolvedParams := make(map[string]value.Raw, len(inst.Params))
		for pname, v := range inst.Params {
			r, err := env.Resolve(v)
			if err != nil {
				return id, result, fmt.Errorf("treatment %s parameter %q: %w", name, pname, err)
			}
			resolvedParams[pname] = r
		}

		innerBoundary := TreatmentIO{
			Inputs:  filterInputs(inputs, name),
			Outputs: filterOutputs(outputs, name),
			Models:  innerModels,
			Params:  resolvedParams,
		}

		tasks, err := b.buildTreatment(ctx, inst.Descriptor, innerModels, env, innerBoundary, result)
		if err != nil {
			return id, result, fmt.Errorf("treatment %s: %w", name, err)
		}
		result.PreparedTasks = append(result.PreparedTasks, tasks...)
	}

	return id, result, nil
}

// buildTreatment dispatches on build mode: a Compiled treatment is
// constructed directly and asked to Prepare; a Designed treatment recurses
// into its registered design graph; a Source treatment produces no tasks,
// and nothing else builds it either: the world's InvokeSource builds the
// whole entrypoint design, in which a Source treatment contributes nothing.
func (b *Dynamic) buildTreatment(ctx context.Context, td *descriptor.TreatmentDescriptor, models map[string]ModelInstance, env *value.ContextualEnvironment, io TreatmentIO, result *DynamicBuildResult) ([]Task, error) {
	switch td.Mode() {
	case descriptor.BuildCompiled:
		ctor, ok := td.Constructor.(TreatmentConstructor)
		if !ok {
			return nil, fmt.Errorf("treatment %s has no compiled constructor wired", td.ID)
		}
		instance := ctor()
		return instance.Prepare(ctx, io)
	case descriptor.BuildDesigned:
		nested, ok := b.Registry.Treatment(td.ID)
		if !ok {
			return nil, mdlerrors.NewLogicError(mdlerrors.NoTreatment, td.ID.String(), nil, nil)
		}
		_, nestedResult, err := b.Build(ctx, nested, models, env, io)
		if err != nil {
			return nil, err
		}
		for k, v := range nestedResult.FeedingInputs {
			result.FeedingInputs[k] = append(result.FeedingInputs[k], v...)
		}
		return nestedResult.PreparedTasks, nil
	case descriptor.BuildSource:
		return nil, nil
	default:
		return nil, fmt.Errorf("treatment %s has unsupported build mode %s", td.ID, td.Mode())
	}
}

// wire allocates a channel for every connection in d and installs the
// corresponding Output/Input into per-treatment-local maps keyed by local
// name. Multiple outputs feeding the same input fan in (each gets its own
// Connect call against the same Input); a single output feeding multiple
// inputs fans out (spec.md §4.4 step 3).
func (b *Dynamic) wire(d *design.TreatmentDesign, boundary TreatmentIO) (map[string]*transmission.Input, map[string]transmission.Sink, error) {
	inputs := make(map[string]*transmission.Input)  // key "local.port"
	outputs := make(map[string]transmission.Sink)   // key "local.port"

	ensureInput := func(ref, port string) *transmission.Input {
		key := ref + "." + port
		if in, ok := inputs[key]; ok {
			return in
		}
		io, _ := d.Treatments[ref].Descriptor.Input(port)
		in := transmission.NewInput(io.Type, io.Flow)
		inputs[key] = in
		return in
	}

	ensureOutput := func(ref, port string) *transmission.Output {
		key := ref + "." + port
		if out, ok := outputs[key]; ok {
			if o, isOutput := out.(*transmission.Output); isOutput {
				return o
			}
		}
		io, _ := d.Treatments[ref].Descriptor.Output(port)
		out := transmission.NewOutput(io.Type, io.Flow)
		outputs[key] = out
		return out
	}

	for _, c := range d.Connections {
		var out *transmission.Output
		if c.Output.Self {
			boundaryOut, ok := boundary.Outputs[c.Output.Port]
			if ok {
				if o, isOutput := boundaryOut.(*transmission.Output); isOutput {
					out = o
				}
			}
			if out == nil {
				selfIO, _ := d.Descriptor.Input(c.Output.Port)
				out = transmission.NewOutput(selfIO.Type, selfIO.Flow)
			}
		} else {
			out = ensureOutput(c.Output.Ref, c.Output.Port)
		}

		if c.Input.Self {
			if in, ok := boundary.Inputs[c.Input.Port]; ok {
				transmission.Connect(out, in)
			}
			continue
		}

		in := ensureInput(c.Input.Ref, c.Input.Port)
		transmission.Connect(out, in)
	}

	// Every declared output left unconnected becomes a BlindOutput so the
	// treatment never has to special-case an absent downstream (spec.md
	// §4.3 "A BlindOutput is used for unconnected outputs").
	for name, inst := range d.Treatments {
		for _, o := range inst.Descriptor.Outputs {
			key := name + "." + o.Name
			existing, ok := outputs[key]
			if eo, isOutput := existing.(*transmission.Output); !ok || (isOutput && !eo.Connected()) {
				outputs[key] = transmission.NewBlindOutput(o.Type, o.Flow)
			}
		}
	}

	return inputs, outputs, nil
}

func filterInputs(all map[string]*transmission.Input, prefix string) map[string]*transmission.Input {
	out := make(map[string]*transmission.Input)
	plen := len(prefix) + 1
	for key, v := range all {
		if len(key) > plen && key[:plen] == prefix+"." {
			out[key[plen:]] = v
		}
	}
	return out
}

func filterOutputs(all map[string]transmission.Sink, prefix string) map[string]transmission.Sink {
	out := make(map[string]transmission.Sink)
	plen := len(prefix) + 1
	for key, v := range all {
		if len(key) > plen && key[:plen] == prefix+"." {
			out[key[plen:]] = v
		}
	}
	return out
}
