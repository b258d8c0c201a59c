package reactor

import (
	"sync"
	"sync/atomic"
)

// Promise is a one-shot asynchronous value completed from any thread.
// It must be awaited on the reactor that created it; completion then
// reaches the owning worker through that reactor's queue.
type Promise struct {
	r    *Reactor
	mu   sync.Mutex
	val  any
	err  error
	done atomic.Bool
}

// NewPromise creates an incomplete promise bound to r.
func (r *Reactor) NewPromise() *Promise {
	return &Promise{r: r}
}

// Complete resolves the promise. The first call wins; later calls are
// no-ops. Safe from any thread.
func (p *Promise) Complete(v any, err error) {
	p.mu.Lock()
	if p.done.Load() {
		p.mu.Unlock()
		return
	}
	p.val = v
	p.err = err
	p.done.Store(true)
	p.mu.Unlock()

	p.r.completed(p)
}

// Ready reports whether the promise has been completed.
func (p *Promise) Ready() bool {
	return p.done.Load()
}

// Result returns the resolved value or failure.
func (p *Promise) Result() (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.val, p.err
}
