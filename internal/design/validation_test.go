package design

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
)

func id(name string) descriptor.Identifier {
	return descriptor.NewIdentifier("test", nil, name, "1.0.0")
}

func streamOut(name string, dt descriptor.DataType) descriptor.IO {
	return descriptor.IO{Name: name, Type: dt, Flow: descriptor.FlowStream}
}

func streamIn(name string, dt descriptor.DataType) descriptor.IO {
	return descriptor.IO{Name: name, Type: dt, Flow: descriptor.FlowStream}
}

func TestTreatmentDesign_AddRejectsDuplicateLocalNames(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	d := NewTreatmentDesign(host)

	modelDesc := &descriptor.ModelDescriptor{ID: id("M")}
	require.NoError(t, d.AddModel(ModelInstantiation{LocalName: "x", Model: ModelDesign{Descriptor: modelDesc}}))

	innerDesc := &descriptor.TreatmentDescriptor{ID: id("Inner")}
	err := d.AddTreatment(TreatmentInstantiation{LocalName: "x", Descriptor: innerDesc})
	require.Error(t, err)
}

func TestTreatmentDesign_Validate_WellFormedProducesNoErrors(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{
		ID:      id("Host"),
		Inputs:  []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
		Outputs: []descriptor.IO{streamOut("out", descriptor.Simple(descriptor.U64))},
	}
	inner := &descriptor.TreatmentDescriptor{
		ID:      id("Inner"),
		Inputs:  []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
		Outputs: []descriptor.IO{streamOut("out", descriptor.Simple(descriptor.U64))},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "inner", Descriptor: inner, Params: map[string]value.Value{}}))
	d.Connect(Connection{Output: SelfEndpoint("in"), Input: TreatmentEndpoint("inner", "in")})
	d.Connect(Connection{Output: TreatmentEndpoint("inner", "out"), Input: SelfEndpoint("out")})

	errs := d.Validate(nil)
	require.True(t, errs.Empty(), errs.Error())
}

func TestTreatmentDesign_Validate_FlagsUnconnectedRequiredInput(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	inner := &descriptor.TreatmentDescriptor{
		ID:     id("Inner"),
		Inputs: []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "inner", Descriptor: inner}))

	errs := d.Validate(nil)
	require.False(t, errs.Empty())
}

func TestTreatmentDesign_Validate_FlagsTypeMismatch(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{
		ID:     id("Host"),
		Inputs: []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.String))},
	}
	inner := &descriptor.TreatmentDescriptor{
		ID:     id("Inner"),
		Inputs: []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "inner", Descriptor: inner}))
	d.Connect(Connection{Output: SelfEndpoint("in"), Input: TreatmentEndpoint("inner", "in")})

	errs := d.Validate(nil)
	require.False(t, errs.Empty())
}

func TestTreatmentDesign_Validate_FlagsUnsatisfiedModelSlot(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	modelID := id("Engine")
	inner := &descriptor.TreatmentDescriptor{
		ID:         id("Inner"),
		ModelSlots: []descriptor.ModelSlot{{Name: "engine", Model: modelID}},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "inner", Descriptor: inner}))

	errs := d.Validate(nil)
	require.False(t, errs.Empty())
}

func TestTreatmentDesign_Validate_AcceptsSatisfiedModelSlot(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	modelID := id("Engine")
	modelDesc := &descriptor.ModelDescriptor{ID: modelID}
	inner := &descriptor.TreatmentDescriptor{
		ID:         id("Inner"),
		ModelSlots: []descriptor.ModelSlot{{Name: "engine", Model: modelID}},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddModel(ModelInstantiation{LocalName: "eng", Model: ModelDesign{Descriptor: modelDesc}}))
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{
		LocalName:     "inner",
		Descriptor:    inner,
		ModelBindings: map[string]string{"engine": "eng"},
	}))

	errs := d.Validate(nil)
	require.True(t, errs.Empty(), errs.Error())
}

func TestTreatmentDesign_Validate_FlagsUnbrokenStreamCycle(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	a := &descriptor.TreatmentDescriptor{
		ID:      id("A"),
		Inputs:  []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
		Outputs: []descriptor.IO{streamOut("out", descriptor.Simple(descriptor.U64))},
	}
	b := &descriptor.TreatmentDescriptor{
		ID:      id("B"),
		Inputs:  []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
		Outputs: []descriptor.IO{streamOut("out", descriptor.Simple(descriptor.U64))},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "a", Descriptor: a}))
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "b", Descriptor: b}))
	d.Connect(Connection{Output: TreatmentEndpoint("a", "out"), Input: TreatmentEndpoint("b", "in")})
	d.Connect(Connection{Output: TreatmentEndpoint("b", "out"), Input: TreatmentEndpoint("a", "in")})

	errs := d.Validate(nil)
	require.False(t, errs.Empty())
}

func TestTreatmentDesign_Validate_AllowsCycleBrokenByBlock(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	a := &descriptor.TreatmentDescriptor{
		ID:      id("A"),
		Inputs:  []descriptor.IO{{Name: "in", Type: descriptor.Simple(descriptor.U64), Flow: descriptor.FlowBlock}},
		Outputs: []descriptor.IO{streamOut("out", descriptor.Simple(descriptor.U64))},
	}
	b := &descriptor.TreatmentDescriptor{
		ID:      id("B"),
		Inputs:  []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
		Outputs: []descriptor.IO{{Name: "out", Type: descriptor.Simple(descriptor.U64), Flow: descriptor.FlowBlock}},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "a", Descriptor: a}))
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "b", Descriptor: b}))
	d.Connect(Connection{Output: TreatmentEndpoint("a", "out"), Input: TreatmentEndpoint("b", "in")})
	d.Connect(Connection{Output: TreatmentEndpoint("b", "out"), Input: TreatmentEndpoint("a", "in")})

	errs := d.Validate(nil)
	require.True(t, errs.Empty(), errs.Error())
}

// TestTreatmentDesign_Validate_FlagsStreamCycleApproachedByBlockEdge checks
// that a Block edge feeding into a cycle from outside it does not suppress
// CycleNotBrokenByBlock for an all-stream cycle reached further downstream
// (only a Block edge that is itself part of the cycle may break it).
func TestTreatmentDesign_Validate_FlagsStreamCycleApproachedByBlockEdge(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	entry := &descriptor.TreatmentDescriptor{
		ID:      id("Entry"),
		Outputs: []descriptor.IO{{Name: "out", Type: descriptor.Simple(descriptor.U64), Flow: descriptor.FlowBlock}},
	}
	a := &descriptor.TreatmentDescriptor{
		ID: id("A"),
		Inputs: []descriptor.IO{
			{Name: "in", Type: descriptor.Simple(descriptor.U64), Flow: descriptor.FlowBlock},
			streamIn("loop_in", descriptor.Simple(descriptor.U64)),
		},
		Outputs: []descriptor.IO{streamOut("out", descriptor.Simple(descriptor.U64))},
	}
	b := &descriptor.TreatmentDescriptor{
		ID:      id("B"),
		Inputs:  []descriptor.IO{streamIn("in", descriptor.Simple(descriptor.U64))},
		Outputs: []descriptor.IO{streamOut("out", descriptor.Simple(descriptor.U64))},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "entry", Descriptor: entry}))
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "a", Descriptor: a}))
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "b", Descriptor: b}))

	d.Connect(Connection{Output: TreatmentEndpoint("entry", "out"), Input: TreatmentEndpoint("a", "in")})
	d.Connect(Connection{Output: TreatmentEndpoint("a", "out"), Input: TreatmentEndpoint("b", "in")})
	d.Connect(Connection{Output: TreatmentEndpoint("b", "out"), Input: TreatmentEndpoint("a", "loop_in")})

	errs := d.Validate(nil)
	require.False(t, errs.Empty(), "an all-stream A<->B cycle must be reported even though a Block edge feeds A from outside the cycle")
}

func TestTreatmentDesign_Validate_FlagsUnsetRequiredParameter(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	inner := &descriptor.TreatmentDescriptor{
		ID: id("Inner"),
		Params: []descriptor.Parameter{
			{Name: "count", Variability: descriptor.Const, Type: descriptor.Simple(descriptor.U64)},
		},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{LocalName: "inner", Descriptor: inner}))

	errs := d.Validate(nil)
	require.False(t, errs.Empty())
}

func TestTreatmentDesign_Validate_FlagsConstParameterFedByContext(t *testing.T) {
	host := &descriptor.TreatmentDescriptor{ID: id("Host")}
	inner := &descriptor.TreatmentDescriptor{
		ID: id("Inner"),
		Params: []descriptor.Parameter{
			{Name: "count", Variability: descriptor.Const, Type: descriptor.Simple(descriptor.U64)},
		},
	}

	d := NewTreatmentDesign(host)
	require.NoError(t, d.AddTreatment(TreatmentInstantiation{
		LocalName:  "inner",
		Descriptor: inner,
		Params:     map[string]value.Value{"count": value.ContextField("engine", "tick")},
	}))

	errs := d.Validate(nil)
	require.False(t, errs.Empty())
}
