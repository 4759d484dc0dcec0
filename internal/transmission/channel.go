// Package transmission implements the typed channel layer treatments use
// to move values between tracks: bounded single-producer single-channel
// queues fanned out by a SendTransmitter and drained through a
// RecvTransmitter, plus the Output/BlindOutput/Input façades treatments see
// (spec.md §4.3 "Transmission layer").
package transmission

import (
	"context"
	"sync"

	"github.com/kestrelflow/melodium-engine/internal/value"
)

// Batch is an ordered vector of raw values a producer coalesces into a
// single send, so fast producers don't pay a channel round trip per value.
type Batch []value.Raw

// rawChannel is the consumer-owned primitive underlying every connection: a
// buffered channel of capacity one batch (spec.md §4.3 "capacity 1 batch"),
// fed by one or more rawSenders. Fan-in (spec.md §4.4 step 3, §9 "N senders
// into one receiver") attaches several rawSenders to the same rawChannel, so
// the channel tracks how many senders are still live and only closes once
// the last of them closes (spec.md §4.3 "closing all upstream outputs of an
// input closes that input").
type rawChannel struct {
	data chan Batch

	mu          sync.Mutex
	senderCount int
	closed      bool
}

func newRawChannel() *rawChannel {
	return &rawChannel{data: make(chan Batch, 1)}
}

// attachSender registers one more live sender against this channel. Called
// whenever a rawSender is created to wrap this channel, whether at
// SendTransmitter construction or via AddReceiver.
func (c *rawChannel) attachSender() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.senderCount++
}

// send delivers a batch, blocking until the receiver accepts it (back
// pressure) or ctx is cancelled.
func (c *rawChannel) send(ctx context.Context, b Batch) bool {
	select {
	case c.data <- b:
		return true
	case <-ctx.Done():
		return false
	}
}

// closeSend releases one attached sender's hold on the channel. Only the
// last remaining sender actually closes the underlying channel and signals
// EOF to the receiver; earlier closers just decrement the count, so a
// multi-producer fan-in never panics on a send from a still-live sibling
// sender and never signals EOF while a sibling is still producing.
func (c *rawChannel) closeSend() {
	c.mu.Lock()
	c.senderCount--
	shouldClose := c.senderCount <= 0 && !c.closed
	if shouldClose {
		c.closed = true
	}
	c.mu.Unlock()

	if shouldClose {
		close(c.data)
	}
}

// recv returns the next batch, whether the channel still has data coming,
// and whether the wait was cancelled by ctx.
func (c *rawChannel) recv(ctx context.Context) (Batch, bool, error) {
	select {
	case b, ok := <-c.data:
		return b, ok, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
