package reactor

import (
	"sync"
	"sync/atomic"
)

// Token is a readiness token: a future owned by some external event
// source (an I/O poller, a signal handler) and checked by the reactor
// on every poll rather than pushed through a completion queue.
type Token struct {
	mu    sync.Mutex
	val   any
	err   error
	ready atomic.Bool
}

// NewToken creates an unsignalled token.
func NewToken() *Token {
	return &Token{}
}

// Signal marks the token ready with the given result. First call wins.
func (t *Token) Signal(v any, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ready.Load() {
		return
	}
	t.val = v
	t.err = err
	t.ready.Store(true)
}

// Ready reports whether the token has been signalled.
func (t *Token) Ready() bool {
	return t.ready.Load()
}

// Result returns the signalled value or failure.
func (t *Token) Result() (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.val, t.err
}
