package match

import (
	"context"
	"sync"
	"time"
)

// DefaultWaitTimeout bounds AwaitTurn when the caller does not pick a
// timeout of its own.
const DefaultWaitTimeout = 30 * time.Second

// WaitOutcome is the low-level result of a synchronizer wait.
type WaitOutcome int

const (
	WaitAdvanced WaitOutcome = iota
	WaitTimedOut
	WaitClosed
)

// turnSynchronizer couples a monotonic generation counter with a
// broadcast channel. Every accepted move bumps the generation and
// replaces the channel, waking all current waiters at once. Waiters
// that arrive with a stale generation return immediately, so a wakeup
// between two calls is never lost.
type turnSynchronizer struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
	notify chan struct{}
}

func newTurnSynchronizer() *turnSynchronizer {
	return &turnSynchronizer{notify: make(chan struct{})}
}

func (t *turnSynchronizer) generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// advance bumps the generation and wakes every waiter.
func (t *turnSynchronizer) advance() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if !t.closed {
		close(t.notify)
		t.notify = make(chan struct{})
	}
	return t.gen
}

// shut wakes all waiters permanently. Used when the session reaches a
// terminal state or is evicted; later waits return WaitClosed at once.
func (t *turnSynchronizer) shut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.notify)
}

// wait blocks until the generation exceeds since, the timeout elapses
// or the synchronizer shuts down. The generation check and channel
// capture happen under one lock acquisition, so an advance that races
// with a new waiter is observed either by the check or by the channel.
func (t *turnSynchronizer) wait(ctx context.Context, since uint64, max time.Duration) (uint64, WaitOutcome) {
	if max <= 0 {
		max = DefaultWaitTimeout
	}
	timer := time.NewTimer(max)
	defer timer.Stop()

	for {
		t.mu.Lock()
		if t.gen > since {
			gen := t.gen
			t.mu.Unlock()
			return gen, WaitAdvanced
		}
		if t.closed {
			gen := t.gen
			t.mu.Unlock()
			return gen, WaitClosed
		}
		ch := t.notify
		t.mu.Unlock()

		select {
		case <-ch:
		case <-timer.C:
			return t.generation(), WaitTimedOut
		case <-ctx.Done():
			return t.generation(), WaitTimedOut
		}
	}
}
