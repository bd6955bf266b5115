// Package looptransport implements a deterministic, in-memory
// framelink.Transport, in the style of a net.Pipe-based loopback test
// harness, adapted to the abstract Transport shape: nonblocking
// availability/read, blocking write, and an explicit manually-advanced
// clock so reception timeouts are reproducible in tests without real
// sleeps.
package looptransport

import (
	"sync"
)

// Transport is a single-ended, single-buffered framelink.Transport backed
// by an in-memory queue. Two Transports can be cross-wired with Pipe to
// simulate a point-to-point link, or used singly to feed canned bytes to an
// Engine under test.
type Transport struct {
	mu       sync.Mutex
	queue    []byte
	now      uint64
	autoTick uint64

	peer *Transport // set by Pipe; WriteAll appends to the peer's queue
}

// New returns a Transport with an empty queue and a clock starting at 0.
func New() *Transport {
	return &Transport{}
}

// Pipe cross-wires a and b so writes to one arrive in the other's queue,
// simulating a point-to-point serial link.
func Pipe() (a, b *Transport) {
	a, b = New(), New()
	a.peer = b
	b.peer = a
	return a, b
}

// Available implements framelink.Transport.
func (t *Transport) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// ReadByte implements framelink.Transport.
func (t *Transport) ReadByte() (byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return 0, false
	}
	b := t.queue[0]
	t.queue = t.queue[1:]
	return b, true
}

// WriteAll implements framelink.Transport. If this Transport was created via
// Pipe, bytes are appended to the peer's queue; otherwise they are appended
// to this Transport's own queue (useful for feeding canned bytes directly).
func (t *Transport) WriteAll(p []byte) error {
	dst := t
	if t.peer != nil {
		dst = t.peer
	}
	dst.mu.Lock()
	defer dst.mu.Unlock()
	dst.queue = append(dst.queue, append([]byte(nil), p...)...)
	return nil
}

// Feed appends bytes directly to this Transport's own read queue, bypassing
// any Pipe peer — for constructing exact noisy/corrupted byte streams in
// tests.
func (t *Transport) Feed(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, p...)
}

// Drain removes and returns every byte currently queued on this Transport,
// for inspecting exactly what a WriteAll call emitted in a test.
func (t *Transport) Drain() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.queue
	t.queue = nil
	return out
}

// NowMicros implements framelink.Transport. Each call advances the clock by
// the configured auto-tick (zero by default), so a caller that busy-polls
// NowMicros in a tight loop — exactly what Engine.Receive does while
// waiting for a byte — sees time pass without a real sleep.
func (t *Transport) NowMicros() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now
	t.now += t.autoTick
	return now
}

// Advance moves the Transport's clock forward by d microseconds, so tests
// can deterministically trigger inter-byte timeouts without real sleeps.
func (t *Transport) Advance(d uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now += d
}

// SetAutoTick configures how many microseconds NowMicros advances the clock
// by on each call. Use a nonzero tick to let a busy-poll timeout loop run to
// completion deterministically in a test.
func (t *Transport) SetAutoTick(d uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoTick = d
}
