package transmission

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
)

// Output is the treatment-facing producer handle: it accepts values typed
// to its described type and honours back pressure by awaiting the
// underlying channel via its SendTransmitter (spec.md §4.3 "An Output is
// the treatment-facing producer").
type Output struct {
	Type        descriptor.DataType
	Flow        descriptor.Flow
	transmitter *SendTransmitter
}

// NewOutput constructs an Output fanning out to the given raw channels.
func NewOutput(dt descriptor.DataType, flow descriptor.Flow, channels ...*rawChannel) *Output {
	return &Output{Type: dt, Flow: flow, transmitter: newSendTransmitter(channels...)}
}

// Send delivers one value, blocking for back pressure. Returns
// ErrEverythingClosed once the fan-out list is empty: after Close, or once
// every pending send has been cut short by ctx.
func (o *Output) Send(ctx context.Context, v value.Raw) error {
	return o.transmitter.SendOne(ctx, v)
}

// SendBatch delivers an ordered vector of values as a single coalesced
// send.
func (o *Output) SendBatch(ctx context.Context, vs []value.Raw) error {
	return o.transmitter.SendMany(ctx, Batch(vs))
}

// Close drains pending batches and signals EOF to every connected
// receiver; closing every upstream output of an input causes its
// subsequent receives to report ErrEverythingClosed.
func (o *Output) Close() {
	o.transmitter.Close()
}

// Connected reports whether at least one downstream input is still live.
func (o *Output) Connected() bool {
	return o.transmitter.Len() > 0
}

// BlindOutput is used for unconnected outputs: it accepts and silently
// discards every value, so a treatment never needs to branch on whether an
// optional output is wired up (spec.md §4.3 "A BlindOutput is used for
// unconnected outputs; it accepts and discards").
type BlindOutput struct {
	Type descriptor.DataType
	Flow descriptor.Flow
}

// NewBlindOutput constructs a discarding output of the given type/flow.
func NewBlindOutput(dt descriptor.DataType, flow descriptor.Flow) *BlindOutput {
	return &BlindOutput{Type: dt, Flow: flow}
}

// Send discards v and always succeeds.
func (o *BlindOutput) Send(context.Context, value.Raw) error { return nil }

// SendBatch discards vs and always succeeds.
func (o *BlindOutput) SendBatch(context.Context, []value.Raw) error { return nil }

// Close is a no-op; a BlindOutput has no downstream to signal.
func (o *BlindOutput) Close() {}
