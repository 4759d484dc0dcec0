package transmission

import (
	"context"

	"github.com/kestrelflow/melodium-engine/internal/value"
)

// RecvTransmitter owns a raw receiver and a lazily filled local buffer.
// ReceiveOne returns the next element, pulling and buffering a fresh batch
// from the channel when the buffer runs dry; ReceiveMultiple returns
// whatever is currently pending (buffered plus, if empty, one freshly
// pulled batch) and clears the buffer (spec.md §4.3).
type RecvTransmitter struct {
	ch     *rawChannel
	buffer []value.Raw
	closed bool
}

func newRecvTransmitter(ch *rawChannel) *RecvTransmitter {
	return &RecvTransmitter{ch: ch}
}

func (t *RecvTransmitter) fill(ctx context.Context) error {
	if len(t.buffer) > 0 || t.closed {
		return nil
	}
	batch, ok, err := t.ch.recv(ctx)
	if err != nil {
		return err
	}
	if !ok {
		t.closed = true
		return nil
	}
	t.buffer = append(t.buffer, []value.Raw(batch)...)
	return nil
}

// ReceiveOne returns the next queued value, pulling a new batch if the
// local buffer is empty. Returns ErrEverythingClosed once the channel has
// closed and the buffer has fully drained.
func (t *RecvTransmitter) ReceiveOne(ctx context.Context) (value.Raw, error) {
	if err := t.fill(ctx); err != nil {
		return value.Raw{}, err
	}
	if len(t.buffer) == 0 {
		return value.Raw{}, ErrEverythingClosed
	}
	v := t.buffer[0]
	t.buffer = t.buffer[1:]
	return v, nil
}

// ReceiveMultiple returns every value currently pending — the buffered
// remainder, topped up by one freshly pulled batch if the buffer is empty —
// and clears the buffer. Returns ErrEverythingClosed once closed and drained.
func (t *RecvTransmitter) ReceiveMultiple(ctx context.Context) ([]value.Raw, error) {
	if err := t.fill(ctx); err != nil {
		return nil, err
	}
	if len(t.buffer) == 0 {
		return nil, ErrEverythingClosed
	}
	out := t.buffer
	t.buffer = nil
	return out, nil
}

// Closed reports whether the upstream channel has signalled EOF and the
// local buffer has fully drained.
func (t *RecvTransmitter) Closed() bool {
	return t.closed && len(t.buffer) == 0
}
