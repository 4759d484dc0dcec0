package builder

import (
	"context"
	"fmt"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/design"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// StaticBuildResult is the outcome of statically building one model entry:
// either it produced a live ModelInstance (Compiled or Designed), or — when
// static-building a nested treatment design ahead of dynamic build — it
// produced a BuildId for later reference (spec.md §4.4 "StaticBuildResult:
// Model(Arc<dyn Model>) | Build(BuildId)").
type StaticBuildResult struct {
	Model   ModelInstance
	Build   BuildId
	IsBuild bool
}

// designedModelInstance is the ModelInstance implementation used for
// Designed models: descriptors whose behaviour is declared entirely by
// resolved parameter values rather than a compiled constructor (spec.md §3
// "Design (Model): descriptor + resolved parameter values").
type designedModelInstance struct {
	id      descriptor.Identifier
	params  map[string]value.Raw
	sources []string
}

func (m *designedModelInstance) Identifier() descriptor.Identifier { return m.id }
func (m *designedModelInstance) SetID(int)                         {}
func (m *designedModelInstance) Initialize(context.Context) error  { return nil }
func (m *designedModelInstance) Sources() []string                 { return m.sources }
func (m *designedModelInstance) Continuous(context.Context) []Task { return nil }
func (m *designedModelInstance) Shutdown(context.Context) error    { return nil }

// StaticBuild builds every model instantiation appearing in the given
// treatment design's Models map, resolving Const parameters against a
// GenesisEnvironment (spec.md §4.4 "Static build (models)").
func StaticBuild(ctx context.Context, world WorldHandle, functions value.FunctionTable, d *design.TreatmentDesign) (map[string]ModelInstance, *mdlerrors.LogicErrors) {
	errs := &mdlerrors.LogicErrors{}
	built := make(map[string]ModelInstance, len(d.Models))

	for name, inst := range d.Models {
		instance, err := buildModel(ctx, world, functions, inst.Model)
		if err != nil {
			errs.Add(mdlerrors.NewLogicError(mdlerrors.PanicDuringBuild, inst.Model.Descriptor.ID.String(),
				&mdlerrors.DesignRef{Treatment: d.Descriptor.ID.String(), LocalName: name}, err))
			continue
		}
		built[name] = instance
	}

	return built, errs
}

func buildModel(ctx context.Context, world WorldHandle, functions value.FunctionTable, m design.ModelDesign) (ModelInstance, error) {
	env := value.GenesisEnvironment(functions, nil)
	resolved := make(map[string]value.Raw, len(m.Params))
	for name, v := range m.Params {
		r, err := env.Resolve(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		resolved[name] = r
	}

	sourceNames := make([]string, 0, len(m.Descriptor.Sources))
	for name := range m.Descriptor.Sources {
		sourceNames = append(sourceNames, name)
	}

	switch m.Descriptor.Mode() {
	case descriptor.BuildCompiled:
		ctor, ok := m.Descriptor.Constructor.(ModelConstructor)
		if !ok {
			return nil, fmt.Errorf("model %s has no compiled constructor wired", m.Descriptor.ID)
		}
		instance, err := ctor(world, resolved)
		if err != nil {
			return nil, err
		}
		id := world.RegisterModel(instance)
		instance.SetID(id)
		if err := instance.Initialize(ctx); err != nil {
			return nil, err
		}
		return instance, nil
	case descriptor.BuildDesigned:
		instance := &designedModelInstance{id: m.Descriptor.ID, params: resolved, sources: sourceNames}
		id := world.RegisterModel(instance)
		instance.SetID(id)
		return instance, nil
	default:
		return nil, fmt.Errorf("model %s has unsupported build mode %s", m.Descriptor.ID, m.Descriptor.Mode())
	}
}
