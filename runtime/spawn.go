package runtime

import (
	"context"

	"github.com/amilajack/corona/coro"
	"github.com/amilajack/corona/errors"
	"github.com/amilajack/corona/sched"
)

// Spawn creates a coroutine running task and returns its handle. The
// task receives the coroutine's Await capability; its return value is
// what joiners get.
//
// Lazy spawns (the default) enqueue the child runnable and return at
// once. Eager spawns return only after the child reached its first
// suspension point: a spawn from a plain goroutine blocks that
// goroutine; a spawn from a coroutine onto its own worker runs the
// child by direct switch; a spawn from a coroutine onto another worker
// suspends the caller until the child first pauses over there.
func Spawn[T any](b *Builder, task func(*Await) T) (*Handle[T], error) {
	if b == nil {
		b = NewBuilder()
	}
	pool := b.pool
	if pool == nil {
		pool = sched.Default()
	}
	if pool.Closed() {
		return nil, errors.Closed(errors.PhaseSpawn, "pool")
	}
	w := b.worker
	if w == nil {
		w = pool.Pick()
	}

	s := &joinState{
		pool:        pool,
		done:        make(chan struct{}),
		cleanup:     b.cleanup,
		panicPolicy: b.panicPolicy,
	}

	// The child's Await is assigned below, before any path can resume
	// the context; the entry closure only reads it once resumed.
	var aw *Await
	ctx, err := coro.New(pool.NextID(), b.stackSize, func() any {
		return task(aw)
	})
	if err != nil {
		return nil, err
	}
	s.ctx = ctx
	aw = &Await{ctx: ctx, w: w}
	t := sched.NewTask(ctx, s.onOutcome)

	caller := b.from
	switch {
	case !b.eager:
		if err := w.Submit(t, false, nil); err != nil {
			return nil, err
		}

	case caller == nil:
		first := make(chan struct{})
		if err := w.Submit(t, true, func() { close(first) }); err != nil {
			return nil, err
		}
		<-first

	case caller.w == w:
		if err := w.RunInline(t); err != nil {
			return nil, err
		}

	default:
		first := make(chan struct{})
		if err := w.Submit(t, true, func() { close(first) }); err != nil {
			return nil, err
		}
		if _, err := caller.Future(chanFuture{ch: first}); err != nil {
			return nil, err
		}
	}
	return &Handle[T]{s: s}, nil
}

// Run spawns a root coroutine on p and blocks until it finishes,
// returning its result. The entry point for synchronous callers.
func Run[T any](p *sched.Pool, task func(*Await) T) (T, error) {
	h, err := Spawn(NewBuilder().Pool(p), task)
	if err != nil {
		var zero T
		return zero, err
	}
	return h.Wait(context.Background())
}
