package sched

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/amilajack/corona"
	"github.com/amilajack/corona/coro"
	"github.com/amilajack/corona/errors"
)

// pollInterval is the park timeout used while readiness tokens are
// outstanding; those are discovered by polling, not pushed.
const pollInterval = 500 * time.Microsecond

// maxDrainRounds bounds the shutdown drain so a coroutine that ignores
// failed waits cannot wedge teardown forever.
const maxDrainRounds = 4096

// Stats is a point-in-time view of one worker's counters.
type Stats struct {
	Spawned   uint64
	Resumes   uint64
	Completed uint64
	Panicked  uint64
	Runnable  int
	Waiting   int
}

type submission struct {
	task         *Task
	onFirstPause func()
	eager        bool
}

// Worker owns one cooperative run loop. Every context adopted by a
// worker runs on that worker's goroutine for its entire life; there is
// no migration and no preemption.
//
// Fields under "loop state" are owned by the loop goroutine exclusively.
// Cross-thread traffic (submissions, reactor completions) arrives
// through the inbox and the reactor's queue.
type Worker struct {
	reactor corona.Reactor
	log     *zap.Logger
	reg     *Registry

	// loop state
	queue   []*Task
	waiting map[*coro.Context]*Task
	current *Task

	mu    sync.Mutex
	inbox []submission

	wakeCh  chan struct{}
	done    chan struct{}
	closing atomic.Bool

	spawned   atomic.Uint64
	resumes   atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
	runnable  atomic.Int64
	nwaiting  atomic.Int64

	id         int
	lockThread bool
}

func newWorker(id int, r corona.Reactor, log *zap.Logger, reg *Registry, lockThread bool) *Worker {
	return &Worker{
		id:         id,
		reactor:    r,
		log:        log,
		reg:        reg,
		waiting:    make(map[*coro.Context]*Task),
		wakeCh:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		lockThread: lockThread,
	}
}

// ID returns the worker's index within its pool.
func (w *Worker) ID() int { return w.id }

// Reactor returns the worker's reactor.
func (w *Worker) Reactor() corona.Reactor { return w.reactor }

// Stats returns the worker's current counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Spawned:   w.spawned.Load(),
		Resumes:   w.resumes.Load(),
		Completed: w.completed.Load(),
		Panicked:  w.panicked.Load(),
		Runnable:  int(w.runnable.Load()),
		Waiting:   int(w.nwaiting.Load()),
	}
}

// Submit hands a task to the worker. Eager submissions are resumed to
// their first suspension point before anything else on the worker;
// onFirstPause, if non-nil, is invoked right after that first resume
// returns. Lazy submissions are merely enqueued runnable.
func (w *Worker) Submit(t *Task, eager bool, onFirstPause func()) error {
	if w.closing.Load() {
		return errors.Closed(errors.PhaseSpawn, "worker")
	}
	w.mu.Lock()
	w.inbox = append(w.inbox, submission{task: t, eager: eager, onFirstPause: onFirstPause})
	w.mu.Unlock()
	w.signal()
	return nil
}

// RunInline adopts and immediately resumes t on the calling goroutine.
// The caller must already be executing on w's goroutine, inside a
// coroutine w is running: this is the eager-spawn path for children
// spawned from a coroutine on their own worker, where the parent's
// execution pauses until the child first suspends.
func (w *Worker) RunInline(t *Task) error {
	if w.closing.Load() {
		return errors.Closed(errors.PhaseSpawn, "worker")
	}
	w.adopt(t)
	if err := t.ctx.MakeRunnable(); err != nil {
		return err
	}
	w.resume(t)
	return nil
}

func (w *Worker) start() {
	go w.run()
}

func (w *Worker) run() {
	if w.lockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	defer close(w.done)

	w.log.Debug("worker started", zap.Int("worker", w.id))

	for !w.closing.Load() {
		w.drainInbox()
		w.runBatch()
		w.reactor.Poll()

		if w.closing.Load() {
			break
		}
		if len(w.queue) == 0 && !w.inboxPending() {
			w.park()
		}
	}

	w.drainForShutdown()
	w.log.Debug("worker stopped", zap.Int("worker", w.id))
}

// park blocks the idle worker until a submission, a reactor completion
// or a close request arrives. While readiness tokens are outstanding
// the park uses a short timeout, since token completion is discovered
// by polling.
func (w *Worker) park() {
	type polled interface{ PendingPolled() bool }
	if p, ok := w.reactor.(polled); ok && p.PendingPolled() {
		select {
		case <-w.wakeCh:
		case <-w.reactor.WakeChan():
		case <-time.After(pollInterval):
		}
		return
	}
	select {
	case <-w.wakeCh:
	case <-w.reactor.WakeChan():
	}
}

func (w *Worker) signal() {
	select {
	case w.wakeCh <- struct{}{}:
	default:
	}
}

func (w *Worker) inboxPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.inbox) > 0
}

func (w *Worker) drainInbox() {
	w.mu.Lock()
	subs := w.inbox
	w.inbox = nil
	w.mu.Unlock()

	for _, s := range subs {
		w.adopt(s.task)
		if err := s.task.ctx.MakeRunnable(); err != nil {
			panic(err)
		}
		if s.eager {
			w.resume(s.task)
			if s.onFirstPause != nil {
				s.onFirstPause()
			}
			continue
		}
		w.enqueue(s.task)
		if s.onFirstPause != nil {
			s.onFirstPause()
		}
	}
}

func (w *Worker) adopt(t *Task) {
	t.w = w
	w.spawned.Add(1)
	if w.reg != nil {
		w.reg.add(t.ctx, w.id)
	}
	w.log.Debug("coroutine adopted",
		zap.Int("worker", w.id),
		zap.Uint64("coroutine", t.ctx.ID()))
}

func (w *Worker) enqueue(t *Task) {
	w.queue = append(w.queue, t)
	w.runnable.Store(int64(len(w.queue)))
}

// runBatch resumes each task that was runnable at entry exactly once.
// Tasks that become runnable during the batch (yields, freshly woken
// waits) go to the back of the queue and run in the next batch: the
// round-robin fairness bound.
func (w *Worker) runBatch() {
	n := len(w.queue)
	for i := 0; i < n; i++ {
		t := w.queue[0]
		w.queue = w.queue[1:]
		w.runnable.Store(int64(len(w.queue)))
		w.resume(t)
	}
}

func (w *Worker) resume(t *Task) {
	prev := w.current
	w.current = t
	out, err := t.ctx.Resume()
	w.current = prev
	if err != nil {
		// Resuming a non-runnable context is a scheduler defect;
		// abort loudly rather than corrupt the loop.
		panic(err)
	}
	w.resumes.Add(1)
	w.processOutcome(t, out)
}

func (w *Worker) processOutcome(t *Task, out coro.Outcome) {
	ctx := t.ctx
	switch out {
	case coro.OutcomeSuspended:
		fut := ctx.Slot().Pending()
		if fut == nil {
			panic(errors.InvalidState(errors.PhaseSuspend, ctx.ID(),
				ctx.Slot().State().String(), "pending"))
		}
		w.waiting[ctx] = t
		w.nwaiting.Store(int64(len(w.waiting)))
		w.reactor.Register(fut, t)

	case coro.OutcomeCompleted, coro.OutcomePanicked:
		panicked := out == coro.OutcomePanicked
		if panicked {
			w.panicked.Add(1)
			w.log.Debug("coroutine panicked",
				zap.Int("worker", w.id),
				zap.Uint64("coroutine", ctx.ID()),
				zap.Error(ctx.PanicErr()))
		} else {
			w.completed.Add(1)
		}
		w.nwaiting.Store(int64(len(w.waiting)))
		if w.reg != nil {
			w.reg.remove(ctx, w.id, panicked)
		}
		if t.onOutcome != nil {
			t.onOutcome(out)
		}
	}
}

// close initiates teardown and returns the channel closed once the
// loop has drained.
func (w *Worker) close() <-chan struct{} {
	if w.closing.CompareAndSwap(false, true) {
		w.signal()
	}
	return w.done
}

// drainForShutdown fails every outstanding wait and runs the loop until
// all adopted coroutines reach a terminal state, within a bounded
// number of rounds.
func (w *Worker) drainForShutdown() {
	w.reactor.Shutdown()
	for rounds := 0; rounds < maxDrainRounds; rounds++ {
		w.drainInbox()
		w.runBatch()
		w.reactor.Poll()
		if len(w.queue) == 0 && len(w.waiting) == 0 && !w.inboxPending() {
			return
		}
	}
	w.log.Error("shutdown drain exceeded bound, abandoning coroutines",
		zap.Int("worker", w.id),
		zap.Int("runnable", len(w.queue)),
		zap.Int("waiting", len(w.waiting)))
}
