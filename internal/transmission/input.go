package transmission

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
)

// Sink is implemented by both Output and BlindOutput, letting builder code
// treat connected and unconnected outputs uniformly.
type Sink interface {
	Send(ctx context.Context, v value.Raw) error
	SendBatch(ctx context.Context, vs []value.Raw) error
	Close()
}

var (
	_ Sink = (*Output)(nil)
	_ Sink = (*BlindOutput)(nil)
)

// Input is the treatment-facing consumer handle, wrapping a
// RecvTransmitter with the described type/flow of the declared port.
type Input struct {
	Type        descriptor.DataType
	Flow        descriptor.Flow
	transmitter *RecvTransmitter
}

// NewInput constructs an Input reading from a freshly created channel.
// Connect wires that same channel to an Output's fan-out list.
func NewInput(dt descriptor.DataType, flow descriptor.Flow) *Input {
	return &Input{Type: dt, Flow: flow, transmitter: newRecvTransmitter(newRawChannel())}
}

// Connect wires out's fan-out list to in's underlying channel, so values
// sent on out become visible to in.
func Connect(out *Output, in *Input) {
	out.transmitter.AddReceiver(in.transmitter.ch)
}

// Receive returns the next value, or ErrEverythingClosed once every
// upstream output feeding this input has closed and the local buffer has
// drained.
func (i *Input) Receive(ctx context.Context) (value.Raw, error) {
	return i.transmitter.ReceiveOne(ctx)
}

// ReceiveBatch returns every value currently pending, per RecvTransmitter's
// batch semantics.
func (i *Input) ReceiveBatch(ctx context.Context) ([]value.Raw, error) {
	return i.transmitter.ReceiveMultiple(ctx)
}

// Closed reports whether this input has seen EverythingClosed.
func (i *Input) Closed() bool {
	return i.transmitter.Closed()
}
