package reactor

import (
	"sync"
	"time"

	"github.com/amilajack/corona"
)

type registration struct {
	fut   corona.Future
	waker corona.Waker
}

// Reactor is an in-process reactor: it drives promises, timers and
// polled readiness tokens to completion and delivers one-shot wake
// notifications during Poll.
//
// Completions may originate on any thread; they are queued under a lock
// and the owning worker drains them on its own goroutine, so wakers
// never race with the worker loop.
type Reactor struct {
	mu     sync.Mutex
	regs   map[corona.Future]corona.Waker
	queue  []corona.Waker
	polled []registration
	wake   chan struct{}
	closed bool
}

// New creates an empty reactor.
func New() *Reactor {
	return &Reactor{
		regs: make(map[corona.Future]corona.Waker),
		wake: make(chan struct{}, 1),
	}
}

var _ corona.Reactor = (*Reactor)(nil)
var _ corona.TimerReactor = (*Reactor)(nil)

// Register records interest in f. Already-ready futures get their wake
// queued immediately; promises created by this reactor are notified on
// completion; anything else is treated as a readiness token and checked
// on every poll.
func (r *Reactor) Register(f corona.Future, w corona.Waker) {
	r.mu.Lock()
	switch {
	case r.closed:
		// Late registration during teardown: deliver the wake so the
		// owner is not parked forever; the worker fails the wait.
		r.queue = append(r.queue, w)
	case f.Ready():
		r.queue = append(r.queue, w)
	default:
		if p, ok := f.(*Promise); ok && p.r == r {
			r.regs[f] = w
		} else {
			r.polled = append(r.polled, registration{fut: f, waker: w})
		}
	}
	r.mu.Unlock()
	r.signal()
}

// Poll delivers pending wakes on the calling goroutine and returns the
// number delivered.
func (r *Reactor) Poll() int {
	r.mu.Lock()
	ready := r.queue
	r.queue = nil
	if len(r.polled) > 0 {
		kept := r.polled[:0]
		for _, reg := range r.polled {
			if reg.fut.Ready() {
				ready = append(ready, reg.waker)
			} else {
				kept = append(kept, reg)
			}
		}
		r.polled = kept
	}
	r.mu.Unlock()

	for _, w := range ready {
		w.Wake()
	}
	return len(ready)
}

// WakeChan is signalled when new completions arrive.
func (r *Reactor) WakeChan() <-chan struct{} {
	return r.wake
}

// PendingPolled reports whether any readiness tokens are outstanding.
// An idle worker uses this to decide between parking indefinitely and
// parking with a short poll interval.
func (r *Reactor) PendingPolled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.polled) > 0
}

// Shutdown drops every outstanding registration and stops accepting
// new ones. Queued wakes still deliver; the worker fails the
// corresponding waits itself.
func (r *Reactor) Shutdown() {
	r.mu.Lock()
	r.closed = true
	for f, w := range r.regs {
		r.queue = append(r.queue, w)
		delete(r.regs, f)
	}
	for _, reg := range r.polled {
		r.queue = append(r.queue, reg.waker)
	}
	r.polled = nil
	r.mu.Unlock()
	r.signal()
}

// After returns a future completing once d has elapsed.
func (r *Reactor) After(d time.Duration) corona.Future {
	p := r.NewPromise()
	time.AfterFunc(d, func() {
		p.Complete(nil, nil)
	})
	return p
}

func (r *Reactor) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// completed moves a registered future's waker onto the delivery queue.
// Runs on whichever thread completed the value.
func (r *Reactor) completed(f corona.Future) {
	r.mu.Lock()
	w, ok := r.regs[f]
	if ok {
		delete(r.regs, f)
		r.queue = append(r.queue, w)
	}
	r.mu.Unlock()
	if ok {
		r.signal()
	}
}
