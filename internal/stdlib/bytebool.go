package stdlib

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/builder"
	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// AcceptRejectID identifies the built-in accept/reject treatment.
var AcceptRejectID = descriptor.NewIdentifier("std", []string{"conv"}, "AcceptReject", "")

// acceptRejectTreatment classifies each incoming byte vector: a single-byte
// vector is converted to a bool on "accept" (nonzero is true), anything
// else is forwarded untouched on "reject" (grounded on
// libs/conv-mel/src/bool.rs's to_void/to_byte check!-guarded conversion
// loops).
type acceptRejectTreatment struct{}

func (acceptRejectTreatment) Prepare(ctx context.Context, io builder.TreatmentIO) ([]builder.Task, error) {
	in := io.Inputs["value"]
	accept := io.Outputs["accept"]
	reject := io.Outputs["reject"]

	task := func(ctx context.Context) mdlerrors.ResultStatus {
		for {
			v, err := in.Receive(ctx)
			if err != nil {
				break
			}
			if len(v.Vec) == 1 {
				b := value.Bool(v.Vec[0].Byte != 0)
				if err := accept.Send(ctx, b); err != nil {
					break
				}
				continue
			}
			if err := reject.Send(ctx, v); err != nil {
				break
			}
		}
		accept.Close()
		reject.Close()
		return mdlerrors.Ok()
	}
	return []builder.Task{task}, nil
}

// AcceptRejectDescriptor describes the built-in accept/reject treatment.
func AcceptRejectDescriptor() *descriptor.TreatmentDescriptor {
	byteVec := descriptor.VecOf(descriptor.Simple(descriptor.Byte))
	return &descriptor.TreatmentDescriptor{
		ID: AcceptRejectID,
		Inputs: []descriptor.IO{
			{Name: "value", Type: byteVec, Flow: descriptor.FlowStream},
		},
		Outputs: []descriptor.IO{
			{Name: "accept", Type: descriptor.Simple(descriptor.Bool), Flow: descriptor.FlowStream},
			{Name: "reject", Type: byteVec, Flow: descriptor.FlowStream},
		},
		Build: descriptor.BuildCompiled,
		Constructor: builder.TreatmentConstructor(func() builder.TreatmentInstance {
			return acceptRejectTreatment{}
		}),
		Short: "Splits single-byte vectors into booleans, forwarding the rest.",
	}
}
