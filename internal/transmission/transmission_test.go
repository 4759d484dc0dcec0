package transmission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kestrelflow/melodium-engine/internal/descriptor"
	"github.com/kestrelflow/melodium-engine/internal/value"
)

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestOutputInput_SingleValueRoundTrips(t *testing.T) {
	ctx := testCtx(t)
	out := NewOutput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	in := NewInput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	Connect(out, in)

	go func() {
		require.NoError(t, out.Send(ctx, value.Uint(descriptor.U64, 42)))
		out.Close()
	}()

	got, err := in.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Uint)

	_, err = in.Receive(ctx)
	require.ErrorIs(t, err, ErrEverythingClosed)
}

func TestOutput_FanOutDeliversToEveryInput(t *testing.T) {
	ctx := testCtx(t)
	out := NewOutput(descriptor.Simple(descriptor.Bool), descriptor.FlowStream)
	a := NewInput(descriptor.Simple(descriptor.Bool), descriptor.FlowStream)
	b := NewInput(descriptor.Simple(descriptor.Bool), descriptor.FlowStream)
	Connect(out, a)
	Connect(out, b)

	go func() {
		require.NoError(t, out.Send(ctx, value.Bool(true)))
		out.Close()
	}()

	gotA, err := a.Receive(ctx)
	require.NoError(t, err)
	require.True(t, gotA.Bool)

	gotB, err := b.Receive(ctx)
	require.NoError(t, err)
	require.True(t, gotB.Bool)
}

func TestInput_ReceiveBatchDrainsCoalescedSend(t *testing.T) {
	ctx := testCtx(t)
	out := NewOutput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	in := NewInput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	Connect(out, in)

	go func() {
		require.NoError(t, out.SendBatch(ctx, []value.Raw{
			value.Uint(descriptor.U64, 1),
			value.Uint(descriptor.U64, 2),
			value.Uint(descriptor.U64, 3),
		}))
		out.Close()
	}()

	batch, err := in.ReceiveBatch(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	require.Equal(t, uint64(1), batch[0].Uint)
	require.Equal(t, uint64(3), batch[2].Uint)
}

func TestSendTransmitter_SendAfterCloseReportsEverythingClosed(t *testing.T) {
	ctx := testCtx(t)
	out := NewOutput(descriptor.Simple(descriptor.Bool), descriptor.FlowStream)
	in := NewInput(descriptor.Simple(descriptor.Bool), descriptor.FlowStream)
	Connect(out, in)

	// Send one value, then close the Output, which empties its fan-out
	// list: the value already sent is still received, and a further Send
	// reports ErrEverythingClosed.
	require.NoError(t, out.Send(ctx, value.Bool(false)))
	out.Close()

	_, err := in.Receive(ctx)
	require.NoError(t, err)

	err = out.Send(ctx, value.Bool(true))
	require.ErrorIs(t, err, ErrEverythingClosed)
}

func TestBlindOutput_AcceptsAndDiscards(t *testing.T) {
	ctx := testCtx(t)
	o := NewBlindOutput(descriptor.Simple(descriptor.String), descriptor.FlowBlock)

	require.NoError(t, o.Send(ctx, value.Str("ignored")))
	require.NoError(t, o.SendBatch(ctx, []value.Raw{value.Str("a"), value.Str("b")}))
	o.Close() // must not panic
}

// TestFanIn_ClosesOnlyAfterEverySenderCloses reproduces spec.md §4.4 step 3's
// "Multiple outputs feeding the same input: fan-in by adding multiple
// senders" and §4.3's "closing all upstream outputs of an input closes that
// input": with two independent Outputs feeding one Input, closing the first
// must neither signal EverythingClosed to the consumer nor panic the second
// Output's subsequent Send; the Input only closes once both Outputs have.
func TestFanIn_ClosesOnlyAfterEverySenderCloses(t *testing.T) {
	ctx := testCtx(t)
	in := NewInput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	a := NewOutput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	b := NewOutput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	Connect(a, in)
	Connect(b, in)

	require.NoError(t, a.Send(ctx, value.Uint(descriptor.U64, 1)))
	a.Close()

	got, err := in.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.Uint)

	// b is still live: sending on it must not panic despite a's channel-side
	// sender having already closed.
	require.NoError(t, b.Send(ctx, value.Uint(descriptor.U64, 2)))
	got, err = in.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.Uint)

	b.Close()

	_, err = in.Receive(ctx)
	require.ErrorIs(t, err, ErrEverythingClosed)
}

func TestOutput_ConnectedReflectsFanOutWidth(t *testing.T) {
	out := NewOutput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	require.False(t, out.Connected())

	in := NewInput(descriptor.Simple(descriptor.U64), descriptor.FlowStream)
	Connect(out, in)
	require.True(t, out.Connected())
}
