package stdlib

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/builder"
	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// FitID identifies the built-in fit treatment.
var FitID = descriptor.NewIdentifier("std", []string{"ops"}, "Fit", "")

// fitTreatment reshapes a flat stream into a stream of vectors whose
// lengths follow a single Block<Vec<u64>> pattern, received once up front
// (grounded on libs/std-mel/src/ops/vec/block.rs's generic Block<T>
// treatments, which consume a block parameter alongside a stream input).
type fitTreatment struct{}

func (fitTreatment) Prepare(ctx context.Context, io builder.TreatmentIO) ([]builder.Task, error) {
	values := io.Inputs["value"]
	pattern := io.Inputs["pattern"]
	out := io.Outputs["vectors"]

	task := func(ctx context.Context) mdlerrors.ResultStatus {
		lengths, err := pattern.Receive(ctx)
		if err != nil {
			out.Close()
			return mdlerrors.Ok()
		}
		for _, lengthRaw := range lengths.Vec {
			n := int(lengthRaw.Uint)
			chunk := make([]value.Raw, 0, n)
			for len(chunk) < n {
				v, err := values.Receive(ctx)
				if err != nil {
					break
				}
				chunk = append(chunk, v)
			}
			if err := out.Send(ctx, value.VecValue(chunk...)); err != nil {
				break
			}
		}
		out.Close()
		return mdlerrors.Ok()
	}
	return []builder.Task{task}, nil
}

// FitDescriptor describes the built-in fit treatment: a flat stream plus a
// block of chunk lengths produces a stream of vectors.
func FitDescriptor() *descriptor.TreatmentDescriptor {
	element := descriptor.UndeterminedType()
	return &descriptor.TreatmentDescriptor{
		ID: FitID,
		Inputs: []descriptor.IO{
			{Name: "value", Type: element, Flow: descriptor.FlowStream},
			{Name: "pattern", Type: descriptor.VecOf(descriptor.Simple(descriptor.U64)), Flow: descriptor.FlowBlock},
		},
		Outputs: []descriptor.IO{
			{Name: "vectors", Type: descriptor.VecOf(element), Flow: descriptor.FlowStream},
		},
		Build: descriptor.BuildCompiled,
		Constructor: builder.TreatmentConstructor(func() builder.TreatmentInstance {
			return fitTreatment{}
		}),
		Short: "Splits a stream into vectors of the given lengths.",
	}
}

// PatternID identifies the built-in pattern treatment.
var PatternID = descriptor.NewIdentifier("std", []string{"ops"}, "Pattern", "")

// patternTreatment is fit's inverse companion: it reduces a stream of
// vectors to a stream of same-shaped void vectors, letting a caller recover
// the chunk-length stencil that produced them without keeping the original
// contents around (same Block<T> shape-mapping idiom as fitTreatment).
type patternTreatment struct{}

func (patternTreatment) Prepare(ctx context.Context, io builder.TreatmentIO) ([]builder.Task, error) {
	in := io.Inputs["value"]
	out := io.Outputs["shape"]

	task := func(ctx context.Context) mdlerrors.ResultStatus {
		for {
			v, err := in.Receive(ctx)
			if err != nil {
				break
			}
			voids := make([]value.Raw, len(v.Vec))
			for i := range voids {
				voids[i] = value.Void()
			}
			if err := out.Send(ctx, value.VecValue(voids...)); err != nil {
				break
			}
		}
		out.Close()
		return mdlerrors.Ok()
	}
	return []builder.Task{task}, nil
}

// PatternDescriptor describes the built-in pattern treatment.
func PatternDescriptor() *descriptor.TreatmentDescriptor {
	element := descriptor.UndeterminedType()
	return &descriptor.TreatmentDescriptor{
		ID: PatternID,
		Inputs: []descriptor.IO{
			{Name: "value", Type: descriptor.VecOf(element), Flow: descriptor.FlowStream},
		},
		Outputs: []descriptor.IO{
			{Name: "shape", Type: descriptor.VecOf(descriptor.Simple(descriptor.Void)), Flow: descriptor.FlowStream},
		},
		Build: descriptor.BuildCompiled,
		Constructor: builder.TreatmentConstructor(func() builder.TreatmentInstance {
			return patternTreatment{}
		}),
		Short: "Reduces a stream of vectors to their void-filled shape.",
	}
}
