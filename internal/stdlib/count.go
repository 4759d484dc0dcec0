package stdlib

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/builder"
	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
	mdlerrors "github.com/kestrelflow/melodium-engine/pkg/errors"
)

// CountID identifies the built-in void-count treatment.
var CountID = descriptor.NewIdentifier("std", []string{"ops"}, "Count", "")

// countTreatment drains its "value" stream input, emitting every value
// unchanged on "echo" while tallying how many were received, then sends the
// final tally as a single block on "count" (grounded on the
// recv_many/send_many draining idiom used throughout
// libs/std-mel/src/ops/vec's stream treatments).
type countTreatment struct{}

func (countTreatment) Prepare(ctx context.Context, io builder.TreatmentIO) ([]builder.Task, error) {
	in := io.Inputs["value"]
	echo := io.Outputs["echo"]
	count := io.Outputs["count"]

	task := func(ctx context.Context) mdlerrors.ResultStatus {
		var tally uint64
		for {
			batch, err := in.ReceiveBatch(ctx)
			if err != nil || len(batch) == 0 {
				break
			}
			tally += uint64(len(batch))
			if err := echo.SendBatch(ctx, batch); err != nil {
				break
			}
		}
		echo.Close()
		if err := count.Send(ctx, value.Uint(descriptor.U128, tally)); err != nil {
			count.Close()
			return mdlerrors.Errored(err)
		}
		count.Close()
		return mdlerrors.Ok()
	}
	return []builder.Task{task}, nil
}

// CountDescriptor describes the built-in void-count treatment: it accepts
// any Stream<Undetermined>, echoes it back out unmodified, and sends the
// final tally as a single block on "count" once the stream ends. The
// Undetermined wildcard (spec.md §3) lets "value" connect to any element
// type; the declared "value"/"echo" types are not narrowed.
func CountDescriptor() *descriptor.TreatmentDescriptor {
	element := descriptor.UndeterminedType()
	return &descriptor.TreatmentDescriptor{
		ID: CountID,
		Inputs: []descriptor.IO{
			{Name: "value", Type: element, Flow: descriptor.FlowStream},
		},
		Outputs: []descriptor.IO{
			{Name: "echo", Type: element, Flow: descriptor.FlowStream},
			{Name: "count", Type: descriptor.Simple(descriptor.U128), Flow: descriptor.FlowBlock},
		},
		Build: descriptor.BuildCompiled,
		Constructor: builder.TreatmentConstructor(func() builder.TreatmentInstance {
			return countTreatment{}
		}),
		Short: "Counts a stream while passing it through unchanged.",
	}
}
