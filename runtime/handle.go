package runtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/amilajack/corona/coro"
	"github.com/amilajack/corona/errors"
	"github.com/amilajack/corona/sched"
)

// joinState is the untyped core behind a handle: terminal result
// storage, the join-once accounting and the policy hooks. It is shared
// between the spawning side, the worker's terminal callback and any
// number of would-be joiners; the mutex arbitrates, the done channel
// publishes.
type joinState struct {
	ctx  *coro.Context
	pool *sched.Pool
	done chan struct{}

	mu       sync.Mutex
	val      any
	err      error
	joined   bool
	observed bool

	cleanup     CleanupPolicy
	panicPolicy PanicPolicy
}

// onOutcome runs on the owning worker's goroutine when the coroutine
// reaches a terminal state. It fixes the join result, publishes
// completion and applies the cleanup policy if nobody was watching.
func (s *joinState) onOutcome(out coro.Outcome) {
	var val any
	var err error
	switch out {
	case coro.OutcomeCompleted:
		val = s.ctx.Result()
	case coro.OutcomePanicked:
		pe := s.ctx.PanicErr()
		if s.panicPolicy == PanicLogAndDrop {
			s.pool.Log().Error("coroutine panicked, payload dropped by policy",
				zap.Uint64("coroutine", s.ctx.ID()),
				zap.String("panic", pe.DebugString()))
			err = errors.PanicDropped(s.ctx.ID())
		} else {
			err = pe
		}
	}

	// The detach decision must land before done closes: a joiner
	// arriving after completion has to find the result already
	// consumed, not win a race against the policy.
	s.mu.Lock()
	s.val, s.err = val, err
	observed := s.observed
	detached := !observed && s.cleanup == CleanupDetach
	if detached {
		s.joined = true
		s.val, s.err = nil, nil
	}
	s.mu.Unlock()
	close(s.done)

	switch {
	case detached:
		_ = s.ctx.MarkDetached()
		s.pool.Log().Debug("coroutine detached, result dropped",
			zap.Uint64("coroutine", s.ctx.ID()))
	case !observed && s.cleanup == CleanupAbort && out == coro.OutcomePanicked:
		s.pool.AbortHandler()(s.ctx.PanicErr())
	}
}

func (s *joinState) terminal() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// doneFuture completes when its coroutine terminates. The value
// travels through the handle, not the future, so join-once accounting
// stays in one place.
type doneFuture struct {
	s *joinState
}

func (f *doneFuture) Ready() bool          { return f.s.terminal() }
func (f *doneFuture) Result() (any, error) { return nil, nil }

// Handle is the joinable reference to a spawned coroutine. The result
// can be observed exactly once, by Join (from a coroutine) or Wait
// (from a plain goroutine); any later observation fails as already
// joined.
type Handle[T any] struct {
	s *joinState
}

// ID returns the coroutine's identity.
func (h *Handle[T]) ID() uint64 { return h.s.ctx.ID() }

// State returns the coroutine's current lifecycle state.
func (h *Handle[T]) State() coro.State { return h.s.ctx.State() }

// Done returns a channel closed once the coroutine is terminal. It
// signals completion only; the result still goes through Join or Wait.
func (h *Handle[T]) Done() <-chan struct{} { return h.s.done }

// Join suspends the calling coroutine until the target terminates and
// returns its value. A panicked target joins as the captured
// *errors.PanicError (or a panic-dropped error under that policy).
func (h *Handle[T]) Join(aw *Await) (T, error) {
	var zero T
	s := h.s
	if aw.ctx == s.ctx {
		return zero, errors.New(errors.PhaseJoin, errors.KindInvalidState).
			Coroutine(s.ctx.ID()).
			Detail("coroutine cannot join itself").
			Build()
	}

	s.mu.Lock()
	if s.joined {
		s.mu.Unlock()
		return zero, errors.AlreadyJoined(s.ctx.ID())
	}
	s.observed = true
	s.mu.Unlock()

	if _, err := aw.Future(&doneFuture{s: s}); err != nil {
		return zero, err
	}
	return h.take()
}

// Wait blocks the calling goroutine until the target terminates or ctx
// expires. It must not be called from a coroutine: blocking there
// stalls the whole worker. Use Join instead.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	s := h.s

	s.mu.Lock()
	if s.joined {
		s.mu.Unlock()
		return zero, errors.AlreadyJoined(s.ctx.ID())
	}
	s.observed = true
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-ctx.Done():
		return zero, errors.New(errors.PhaseJoin, errors.KindClosed).
			Coroutine(s.ctx.ID()).
			Detail("wait abandoned before the coroutine terminated").
			Cause(ctx.Err()).
			Build()
	}
	return h.take()
}

func (h *Handle[T]) take() (T, error) {
	var zero T
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joined {
		return zero, errors.AlreadyJoined(s.ctx.ID())
	}
	s.joined = true
	if s.err != nil {
		return zero, s.err
	}
	v, _ := s.val.(T)
	return v, nil
}

var _ reconciler = (*Handle[int])(nil)
