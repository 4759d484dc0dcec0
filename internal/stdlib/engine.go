// Package stdlib provides a small illustrative set of compiled models and
// treatments — just enough to make the engine's own end-to-end scenarios
// runnable without depending on an external treatment library (spec.md §1
// keeps "the standard library of treatments" out of scope as a contract
// concern, but a contract needs at least one conforming implementation).
package stdlib

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/builder"
	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// EngineID identifies the built-in engine model.
var EngineID = descriptor.NewIdentifier("std", []string{"engine"}, "Engine", "")

// ReadySourceName is the single source Engine exposes: it fires exactly
// once, as soon as the world goes live (grounded on
// libs/std-mel/src/engine.rs's "ready source is triggered at startup when
// engine is ready to process").
const ReadySourceName = "ready"

// engineModel is the compiled model backing EngineDescriptor. It fires its
// "ready" source exactly once from its continuous task.
type engineModel struct {
	world   builder.WorldHandle
	buildID int
}

func (m *engineModel) Identifier() descriptor.Identifier { return EngineID }
func (m *engineModel) SetID(id int)                       { m.buildID = id }
func (m *engineModel) Initialize(context.Context) error   { return nil }
func (m *engineModel) Sources() []string                 { return []string{ReadySourceName} }
func (m *engineModel) Shutdown(context.Context) error     { return nil }

func (m *engineModel) Continuous(ctx context.Context) []builder.Task {
	return []builder.Task{m.fireReady}
}

func (m *engineModel) fireReady(ctx context.Context) mdlerrors.ResultStatus {
	if err := m.world.InvokeSource(ctx, m.buildID, ReadySourceName, nil); err != nil {
		return mdlerrors.Errored(err)
	}
	return mdlerrors.Ok()
}

// readyTreatment is the compiled treatment bound to Engine's "ready"
// source: it sends a single void block on its "trigger" output then closes
// it.
type readyTreatment struct{}

func (readyTreatment) Prepare(ctx context.Context, io builder.TreatmentIO) ([]builder.Task, error) {
	trigger := io.Outputs["trigger"]
	task := func(ctx context.Context) mdlerrors.ResultStatus {
		if err := trigger.Send(ctx, value.Void()); err != nil {
			return mdlerrors.Errored(err)
		}
		trigger.Close()
		return mdlerrors.Ok()
	}
	return []builder.Task{task}, nil
}

// EngineDescriptor describes the built-in Engine model.
func EngineDescriptor() *descriptor.ModelDescriptor {
	return &descriptor.ModelDescriptor{
		ID: EngineID,
		Sources: map[string]descriptor.SourceDescriptor{
			ReadySourceName: {
				Name:    ReadySourceName,
				Outputs: []descriptor.IO{{Name: "trigger", Type: descriptor.Simple(descriptor.Void), Flow: descriptor.FlowBlock}},
			},
		},
		Build: descriptor.BuildCompiled,
		Constructor: builder.ModelConstructor(func(world builder.WorldHandle, params map[string]value.Raw) (builder.ModelInstance, error) {
			return &engineModel{world: world}, nil
		}),
		Short: "Provides interactions with the engine.",
		Long:  "The ready source fires once, at startup, when the engine is ready to process.",
	}
}

// ReadyTreatmentID identifies the compiled treatment triggered by Engine's
// ready source.
var ReadyTreatmentID = descriptor.NewIdentifier("std", []string{"engine"}, "Ready", "")

// ReadyTreatmentDescriptor describes the treatment invoked whenever a
// ready-bound engine model fires its source. modelSlot names the local
// model slot a design binds to an Engine instantiation.
func ReadyTreatmentDescriptor(modelSlot string) *descriptor.TreatmentDescriptor {
	return &descriptor.TreatmentDescriptor{
		ID:         ReadyTreatmentID,
		Outputs:    []descriptor.IO{{Name: "trigger", Type: descriptor.Simple(descriptor.Void), Flow: descriptor.FlowBlock}},
		ModelSlots: []descriptor.ModelSlot{{Name: modelSlot, Model: EngineID}},
		TriggeredBy: &descriptor.SourceFrom{
			ModelSlot: modelSlot,
			Source:    ReadySourceName,
		},
		Build: descriptor.BuildCompiled,
		Constructor: builder.TreatmentConstructor(func() builder.TreatmentInstance {
			return readyTreatment{}
		}),
		Short: "Emits a single void block once the engine is ready.",
	}
}
