package transmission

import (
	"context"
	"sync"

	"github.com/kestrelflow/melodium-engine/internal/value"
)

// rawSender is the producer-facing handle on one rawChannel.
type rawSender struct {
	ch     *rawChannel
	closed bool
}

func (s *rawSender) send(ctx context.Context, b Batch) bool {
	if s.closed {
		return false
	}
	return s.ch.send(ctx, b)
}

func (s *rawSender) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.ch.closeSend()
}

// SendTransmitter owns a fan-out list of raw senders, one per connected
// downstream input. send_many forwards a batch to every live sender;
// send_one adapts a single value into a one-element batch (spec.md §4.3).
type SendTransmitter struct {
	mu      sync.Mutex
	senders []*rawSender
}

// NewSendTransmitter constructs a transmitter fanning out to the given raw
// channels.
func newSendTransmitter(channels ...*rawChannel) *SendTransmitter {
	senders := make([]*rawSender, len(channels))
	for i, ch := range channels {
		ch.attachSender()
		senders[i] = &rawSender{ch: ch}
	}
	return &SendTransmitter{senders: senders}
}

// AddReceiver grows the fan-out list with a newly connected downstream
// channel. Used when a treatment gains an additional connected input after
// construction (e.g. an inner treatment's output feeding two inputs), and
// when a second, independent Output connects into the same Input for fan-in
// (spec.md §4.4 step 3 "Multiple outputs feeding the same input: fan-in by
// adding multiple senders"). attachSender registers this new sender against
// the shared channel so it only closes once every attached sender has.
func (t *SendTransmitter) AddReceiver(ch *rawChannel) {
	ch.attachSender()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.senders = append(t.senders, &rawSender{ch: ch})
}

// SendMany forwards the batch to every live downstream sender, blocking on
// each in turn. A sender whose send is cut short by ctx is dropped from the
// fan-out list; once the list is empty (after that, or after Close),
// SendMany reports ErrEverythingClosed so the caller can stop producing.
// An Input cannot close its end, so a receiver that stops reading is not
// detected: the send to it blocks until ctx is done.
func (t *SendTransmitter) SendMany(ctx context.Context, b Batch) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.senders) == 0 {
		return ErrEverythingClosed
	}

	live := t.senders[:0]
	for _, s := range t.senders {
		if s.send(ctx, b) {
			live = append(live, s)
		}
	}
	t.senders = live

	if len(t.senders) == 0 {
		return ErrEverythingClosed
	}
	return nil
}

// SendOne adapts a single value into a one-element batch and forwards it
// (spec.md §4.3 "send_one(v) adapts to send_many(vec![v])").
func (t *SendTransmitter) SendOne(ctx context.Context, v value.Raw) error {
	return t.SendMany(ctx, Batch{v})
}

// Close closes every live downstream sender, draining pending batches and
// signalling EOF to their receivers.
func (t *SendTransmitter) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.senders {
		s.close()
	}
	t.senders = nil
}

// Len reports how many downstream senders are still live. Used by tests
// and by Output.Connected.
func (t *SendTransmitter) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.senders)
}
