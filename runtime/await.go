package runtime

import (
	"time"

	"github.com/amilajack/corona"
	"github.com/amilajack/corona/coro"
	"github.com/amilajack/corona/errors"
	"github.com/amilajack/corona/sched"
)

// Await is a coroutine's capability to suspend. Every coroutine body
// receives exactly one, valid only inside that body, on that
// coroutine's worker. Holding it proves the caller is a coroutine, so
// suspension points need no runtime detection.
type Await struct {
	ctx *coro.Context
	w   *sched.Worker
}

// ID returns the coroutine's identity.
func (a *Await) ID() uint64 { return a.ctx.ID() }

// Worker returns the worker the coroutine is pinned to.
func (a *Await) Worker() *sched.Worker { return a.w }

// Future suspends the coroutine until f completes and returns its
// value or failure. The worker runs other coroutines in the meantime.
// A wait interrupted by reactor shutdown fails with a reactor-gone
// error.
func (a *Await) Future(f corona.Future) (any, error) {
	if err := a.ctx.Slot().BeginWait(f); err != nil {
		return nil, err
	}
	a.ctx.Suspend()
	return a.ctx.Slot().TakeResult()
}

// Yield reschedules the coroutine behind everything currently runnable
// on its worker. Implemented as a wait on an already-ready future, so
// it costs one trip through the run queue, nothing more.
func (a *Await) Yield() error {
	_, err := a.Future(readyFuture{})
	return err
}

// Sleep suspends the coroutine for at least d. It requires the
// worker's reactor to carry the timer capability; without it Sleep
// fails rather than blocking the worker.
func (a *Await) Sleep(d time.Duration) error {
	tr, ok := a.w.Reactor().(corona.TimerReactor)
	if !ok {
		return errors.Unsupported(errors.PhaseWait, "reactor has no timer capability")
	}
	_, err := a.Future(tr.After(d))
	return err
}

// readyFuture is complete from birth. Registering it queues the wake
// immediately, which is exactly a yield.
type readyFuture struct{}

func (readyFuture) Ready() bool          { return true }
func (readyFuture) Result() (any, error) { return nil, nil }

// chanFuture completes when its channel closes. It carries no value;
// it is a pure signal delivered through the polled registration path.
type chanFuture struct {
	ch <-chan struct{}
}

func (f chanFuture) Ready() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

func (f chanFuture) Result() (any, error) { return nil, nil }
