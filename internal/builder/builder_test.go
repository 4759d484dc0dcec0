package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/design"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

func id(name string) descriptor.Identifier {
	return descriptor.NewIdentifier("test", nil, name, "")
}

func streamIO(name string, dt descriptor.DataType) descriptor.IO {
	return descriptor.IO{Name: name, Type: dt, Flow: descriptor.FlowStream}
}

func intType() descriptor.DataType { return descriptor.Simple(descriptor.I32) }

// passthrough is a trivial compiled treatment: it copies every batch from
// its single "in" input to its single "out" output, one task.
type passthrough struct{}

func (passthrough) Prepare(ctx context.Context, io TreatmentIO) ([]Task, error) {
	in := io.Inputs["in"]
	out := io.Outputs["out"]
	task := func(ctx context.Context) mdlerrors.ResultStatus {
		for {
			batch, err := in.ReceiveBatch(ctx)
			if err != nil {
				out.Close()
				return mdlerrors.Ok()
			}
			if len(batch) == 0 {
				out.Close()
				return mdlerrors.Ok()
			}
			if err := out.SendBatch(ctx, batch); err != nil {
				return mdlerrors.Ok()
			}
		}
	}
	return []Task{task}, nil
}

func passthroughDescriptor() *descriptor.TreatmentDescriptor {
	return &descriptor.TreatmentDescriptor{
		ID:      id("passthrough"),
		Inputs:  []descriptor.IO{streamIO("in", intType())},
		Outputs: []descriptor.IO{streamIO("out", intType())},
		Build:   descriptor.BuildCompiled,
		Constructor: TreatmentConstructor(func() TreatmentInstance {
			return passthrough{}
		}),
	}
}

func hostDescriptor() *descriptor.TreatmentDescriptor {
	return &descriptor.TreatmentDescriptor{
		ID:      id("host"),
		Inputs:  []descriptor.IO{streamIO("in", intType())},
		Outputs: []descriptor.IO{streamIO("out", intType())},
		Build:   descriptor.BuildDesigned,
	}
}

func buildHostDesign() *design.TreatmentDesign {
	d := design.NewTreatmentDesign(hostDescriptor())
	_ = d.AddTreatment(design.TreatmentInstantiation{
		LocalName:  "inner",
		Descriptor: passthroughDescriptor(),
		Params:     map[string]value.Value{},
	})
	d.Connect(design.Connection{
		Output: design.SelfEndpoint("in"),
		Input:  design.TreatmentEndpoint("inner", "in"),
	})
	d.Connect(design.Connection{
		Output: design.TreatmentEndpoint("inner", "out"),
		Input:  design.SelfEndpoint("out"),
	})
	return d
}

func TestCheck_WellFormedDesignProducesOrderedSteps(t *testing.T) {
	collection := descriptor.NewCollection()
	d := buildHostDesign()

	result := Check(collection, d)

	require.True(t, result.Errors.Empty())
	require.Len(t, result.Steps, 1)
	require.Equal(t, id("passthrough"), result.Steps[0].Identifier)
	require.True(t, result.Build.FedInputs["inner.in"])
}

func TestCheck_CyclicDesignReportsError(t *testing.T) {
	collection := descriptor.NewCollection()
	host := hostDescriptor()
	d := design.NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(design.TreatmentInstantiation{
		LocalName:  "a",
		Descriptor: passthroughDescriptor(),
	}))
	require.NoError(t, d.AddTreatment(design.TreatmentInstantiation{
		LocalName:  "b",
		Descriptor: passthroughDescriptor(),
	}))
	d.Connect(design.Connection{Output: design.TreatmentEndpoint("a", "out"), Input: design.TreatmentEndpoint("b", "in")})
	d.Connect(design.Connection{Output: design.TreatmentEndpoint("b", "out"), Input: design.TreatmentEndpoint("a", "in")})

	result := Check(collection, d)

	require.False(t, result.Errors.Empty())
}

type fakeWorld struct {
	models []ModelInstance
}

func (w *fakeWorld) RegisterModel(m ModelInstance) int {
	w.models = append(w.models, m)
	return len(w.models) - 1
}

func (w *fakeWorld) Model(buildID int) (ModelInstance, bool) {
	if buildID < 0 || buildID >= len(w.models) {
		return nil, false
	}
	return w.models[buildID], true
}

func (w *fakeWorld) InvokeSource(ctx context.Context, buildID int, sourceName string, params map[string]value.Raw) error {
	return nil
}

type counterModel struct {
	id descriptor.Identifier
}

func (m *counterModel) Identifier() descriptor.Identifier { return m.id }
func (m *counterModel) SetID(int)                          {}
func (m *counterModel) Initialize(context.Context) error  { return nil }
func (m *counterModel) Sources() []string                { return []string{"ready"} }
func (m *counterModel) Continuous(context.Context) []Task { return nil }
func (m *counterModel) Shutdown(context.Context) error    { return nil }

func counterModelDescriptor() *descriptor.ModelDescriptor {
	return &descriptor.ModelDescriptor{
		ID:    id("counter"),
		Build: descriptor.BuildCompiled,
		Constructor: ModelConstructor(func(world WorldHandle, params map[string]value.Raw) (ModelInstance, error) {
			return &counterModel{id: id("counter")}, nil
		}),
	}
}

func TestStaticBuild_CompiledModelRegistersWithWorld(t *testing.T) {
	host := hostDescriptor()
	d := design.NewTreatmentDesign(host)
	require.NoError(t, d.AddModel(design.ModelInstantiation{
		LocalName: "m",
		Model:     design.ModelDesign{Descriptor: counterModelDescriptor(), Params: map[string]value.Value{}},
	}))

	world := &fakeWorld{}
	built, errs := StaticBuild(context.Background(), world, nil, d)

	require.True(t, errs.Empty())
	require.Len(t, world.models, 1)
	require.Equal(t, id("counter"), built["m"].Identifier())
}

func designedModelDescriptor() *descriptor.ModelDescriptor {
	return &descriptor.ModelDescriptor{
		ID:    id("designed-model"),
		Build: descriptor.BuildDesigned,
	}
}

func TestStaticBuild_DesignedModelProducesPlaceholderInstance(t *testing.T) {
	host := hostDescriptor()
	d := design.NewTreatmentDesign(host)
	require.NoError(t, d.AddModel(design.ModelInstantiation{
		LocalName: "m",
		Model:     design.ModelDesign{Descriptor: designedModelDescriptor(), Params: map[string]value.Value{}},
	}))

	world := &fakeWorld{}
	built, errs := StaticBuild(context.Background(), world, nil, d)

	require.True(t, errs.Empty())
	require.Equal(t, []string{}, built["m"].Sources())
}

func TestDynamicBuild_PreparesTaskForWiredInnerTreatment(t *testing.T) {
	collection := descriptor.NewCollection()
	registry := design.NewRegistry()

	d := buildHostDesign()

	b := NewDynamic(collection, registry, nil)
	env := value.GenesisEnvironment(nil, nil)

	_, result, err := b.Build(context.Background(), d, nil, env, TreatmentIO{})
	require.NoError(t, err)
	require.Len(t, result.PreparedTasks, 1)
}
