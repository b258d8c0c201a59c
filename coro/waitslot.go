package coro

import (
	"github.com/amilajack/corona"
	"github.com/amilajack/corona/errors"
)

// SlotState is the wait slot's own small state machine.
type SlotState uint8

const (
	SlotEmpty SlotState = iota
	SlotPending
	SlotReady
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotPending:
		return "pending"
	case SlotReady:
		return "ready"
	default:
		return "unknown"
	}
}

// WaitSlot parks the reference to the asynchronous value its owning
// coroutine is currently awaiting. There is exactly one slot per
// context, embedded in it, and it is reused across every suspension
// point in the coroutine's life: no allocation per wait.
//
// The slot holds a non-owning reference; the awaited value's lifetime
// is governed by whoever created it, and the value must stay reachable
// for the duration of the wait.
//
// Concurrency discipline: every mutation happens on the owning worker's
// goroutine. The coroutine side touches the slot only while Running;
// the reactor side flips Pending to Ready during the worker's own poll.
// That single-writer-per-phase rule substitutes for a lock.
type WaitSlot struct {
	fut   corona.Future
	err   error
	owner uint64
	state SlotState
}

// State returns the slot's current state.
func (s *WaitSlot) State() SlotState { return s.state }

// BeginWait parks a reference to f and transitions the slot to pending.
// The slot must be empty; anything else is a protocol misuse surfaced
// as AlreadyWaitingError.
func (s *WaitSlot) BeginWait(f corona.Future) error {
	if s.state != SlotEmpty {
		return errors.AlreadyWaiting(s.owner)
	}
	s.fut = f
	s.state = SlotPending
	return nil
}

// Pending returns the awaited future, or nil when the slot is not
// pending.
func (s *WaitSlot) Pending() corona.Future {
	if s.state != SlotPending {
		return nil
	}
	return s.fut
}

// MarkReady records that the awaited value completed and the owner may
// run again. Calling it on a non-pending slot is a runtime defect and
// aborts loudly rather than corrupt scheduler state.
func (s *WaitSlot) MarkReady() {
	if s.state != SlotPending {
		panic(errors.InvalidState(errors.PhaseWait, s.owner, s.state.String(), "pending"))
	}
	s.state = SlotReady
}

// Fail completes the wait with err instead of a value. Used when the
// reactor shuts down under an in-flight wait.
func (s *WaitSlot) Fail(err error) {
	if s.state != SlotPending {
		panic(errors.InvalidState(errors.PhaseWait, s.owner, s.state.String(), "pending"))
	}
	s.err = err
	s.state = SlotReady
}

// TakeResult hands the completed value (or its failure) to the owning
// coroutine and returns the slot to empty, ready for the next wait.
func (s *WaitSlot) TakeResult() (any, error) {
	if s.state != SlotReady {
		panic(errors.InvalidState(errors.PhaseWait, s.owner, s.state.String(), "ready"))
	}
	fut, err := s.fut, s.err
	s.fut = nil
	s.err = nil
	s.state = SlotEmpty
	if err != nil {
		return nil, err
	}
	return fut.Result()
}
