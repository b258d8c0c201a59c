package sched

import (
	"github.com/amilajack/corona/coro"
	"github.com/amilajack/corona/errors"
)

// Task couples a coroutine context with the hook that observes its
// terminal outcome. A task is also the context's waker: the reactor
// hands the identical task object back on every completion, so waiting
// costs no allocation per suspension point.
type Task struct {
	ctx       *coro.Context
	onOutcome func(coro.Outcome)
	w         *Worker
}

// NewTask wraps ctx. onOutcome, if non-nil, runs on the owning worker's
// goroutine once the context reaches a terminal state.
func NewTask(ctx *coro.Context, onOutcome func(coro.Outcome)) *Task {
	return &Task{ctx: ctx, onOutcome: onOutcome}
}

// Context returns the wrapped context.
func (t *Task) Context() *coro.Context { return t.ctx }

// Worker returns the worker the task was adopted by, nil before
// submission.
func (t *Task) Worker() *Worker { return t.w }

// Wake is the reactor's one-shot completion notification. It runs on
// the owning worker's goroutine, during that worker's poll, which is
// what licenses the lock-free slot flip below.
func (t *Task) Wake() {
	ctx := t.ctx
	w := t.w

	slot := ctx.Slot()
	if fut := slot.Pending(); fut != nil {
		if fut.Ready() {
			slot.MarkReady()
		} else {
			// Flushed by reactor shutdown before the value completed.
			slot.Fail(errors.ReactorGone(ctx.ID()))
		}
	}
	delete(w.waiting, ctx)
	w.nwaiting.Store(int64(len(w.waiting)))

	if err := ctx.MakeRunnable(); err != nil {
		// A wake for a terminal context is a scheduler defect.
		panic(err)
	}
	w.enqueue(t)
}
