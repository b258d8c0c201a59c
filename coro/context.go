package coro

import (
	"sync/atomic"

	"github.com/amilajack/corona/coro/internal/switchctx"
	"github.com/amilajack/corona/errors"
)

// Stack size limits. Sizes follow the original protected fixed-size
// stack rules: a positive multiple of the page size, within sane bounds.
const (
	PageSize         = 4096
	MinStackSize     = PageSize
	MaxStackSize     = 1 << 30
	DefaultStackSize = 128 * 1024
)

// Context is the stackful execution record of one coroutine: its stack,
// its lifecycle state, its wait slot and the panic capture storage.
//
// A context belongs to exactly one worker for its entire life. All
// methods except State are only legal on that worker's goroutine.
type Context struct {
	sw        *switchctx.Switcher
	yield     func()
	result    any
	panicErr  *errors.PanicError
	id        uint64
	stackSize int
	slot      WaitSlot
	state     atomic.Uint32
}

// New allocates a context for entry. The stack size must be a positive
// multiple of the page size within [MinStackSize, MaxStackSize]; zero
// selects DefaultStackSize. Invalid sizes fail with an allocation
// error, mirroring a failed stack reservation.
//
// The entry closure does not run until the first Resume.
func New(id uint64, stackSize int, entry func() any) (*Context, error) {
	if stackSize == 0 {
		stackSize = DefaultStackSize
	}
	switch {
	case stackSize < MinStackSize:
		return nil, errors.AllocationFailed(stackSize, "below minimum stack size")
	case stackSize > MaxStackSize:
		return nil, errors.AllocationFailed(stackSize, "above maximum stack size")
	case stackSize%PageSize != 0:
		return nil, errors.AllocationFailed(stackSize, "not a multiple of the page size")
	}

	c := &Context{
		id:        id,
		stackSize: stackSize,
	}
	c.slot.owner = id
	c.sw = switchctx.New(func(yield func()) {
		c.yield = yield
		c.result = entry()
	})
	c.state.Store(uint32(StateCreated))
	return c, nil
}

// ID returns the context's identity, unique per live coroutine.
func (c *Context) ID() uint64 { return c.id }

// StackSize returns the reserved stack size.
func (c *Context) StackSize() int { return c.stackSize }

// State returns the current lifecycle state. Safe from any goroutine.
func (c *Context) State() State {
	return State(c.state.Load())
}

func (c *Context) setState(s State) {
	c.state.Store(uint32(s))
}

// Slot returns the context's embedded wait slot.
func (c *Context) Slot() *WaitSlot { return &c.slot }

// MakeRunnable enqueue-transitions the context: Created or Suspended
// become Runnable. Terminal states are sticky and reject the edge.
func (c *Context) MakeRunnable() error {
	switch c.State() {
	case StateCreated, StateSuspended:
		c.setState(StateRunnable)
		return nil
	default:
		return errors.InvalidState(errors.PhaseResume, c.id, c.State().String(), "created or suspended")
	}
}

// Resume switches execution onto the coroutine's stack until it
// suspends or terminates. Only legal in Runnable; anything else is a
// programming error in the scheduler.
func (c *Context) Resume() (Outcome, error) {
	if c.State() != StateRunnable {
		return 0, errors.InvalidState(errors.PhaseResume, c.id, c.State().String(), "runnable")
	}
	c.setState(StateRunning)
	done, panicked, pval, pstack := c.sw.Resume()
	switch {
	case !done:
		c.setState(StateSuspended)
		return OutcomeSuspended, nil
	case panicked:
		c.panicErr = errors.NewPanicWithStack(c.id, pval, pstack)
		c.setState(StatePanicked)
		return OutcomePanicked, nil
	default:
		c.setState(StateCompleted)
		return OutcomeCompleted, nil
	}
}

// Suspend transfers control back to the resumer. Called from inside the
// coroutine's own execution, only while Running.
func (c *Context) Suspend() {
	if c.State() != StateRunning {
		panic(errors.InvalidState(errors.PhaseSuspend, c.id, c.State().String(), "running"))
	}
	c.yield()
}

// Result returns the entry closure's return value. Only meaningful in
// StateCompleted.
func (c *Context) Result() any { return c.result }

// PanicErr returns the captured panic. Only meaningful in StatePanicked.
func (c *Context) PanicErr() *errors.PanicError { return c.panicErr }

// MarkDetached forgets a terminal context. The edge exists only out of
// Completed or Panicked.
func (c *Context) MarkDetached() error {
	switch c.State() {
	case StateCompleted, StatePanicked:
		c.setState(StateDetached)
		return nil
	default:
		return errors.InvalidState(errors.PhaseJoin, c.id, c.State().String(), "completed or panicked")
	}
}
