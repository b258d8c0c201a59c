package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the coroutine lifecycle the error occurred
type Phase string

const (
	PhaseSpawn    Phase = "spawn"    // context creation
	PhaseResume   Phase = "resume"   // scheduling a context onto a worker
	PhaseSuspend  Phase = "suspend"  // switching out of a running context
	PhaseWait     Phase = "wait"     // awaiting an asynchronous value
	PhaseJoin     Phase = "join"     // observing a handle's result
	PhaseScope    Phase = "scope"    // scoped spawn reconciliation
	PhaseShutdown Phase = "shutdown" // pool or reactor teardown
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation     Kind = "allocation"
	KindInvalidState   Kind = "invalid_state"
	KindAlreadyWaiting Kind = "already_waiting"
	KindAlreadyJoined  Kind = "already_joined"
	KindPanicked       Kind = "panicked"
	KindPanicDropped   Kind = "panic_dropped"
	KindReactorGone    Kind = "reactor_gone"
	KindNotCoroutine   Kind = "not_coroutine"
	KindUnsupported    Kind = "unsupported"
	KindClosed         Kind = "closed"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Detail    string
	Coroutine uint64
	State     string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Coroutine != 0 {
		fmt.Fprintf(&b, " coroutine %d", e.Coroutine)
	}

	if e.State != "" {
		b.WriteString(" in state ")
		b.WriteString(e.State)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two structured errors
// match when their Phase and Kind agree.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Coroutine sets the id of the coroutine involved
func (b *Builder) Coroutine(id uint64) *Builder {
	b.err.Coroutine = id
	return b
}

// State sets the lifecycle state the coroutine was in
func (b *Builder) State(s string) *Builder {
	b.err.State = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AllocationFailed creates a stack reservation failure error
func AllocationFailed(size int, reason string) *Error {
	return &Error{
		Phase:  PhaseSpawn,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("cannot reserve %d byte stack: %s", size, reason),
		Value:  size,
	}
}

// InvalidState creates a state machine misuse error. These indicate a
// runtime bug, not a recoverable condition.
func InvalidState(phase Phase, id uint64, got, want string) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindInvalidState,
		Coroutine: id,
		State:     got,
		Detail:    fmt.Sprintf("requires state %s", want),
	}
}

// AlreadyWaiting creates a wait slot protocol misuse error
func AlreadyWaiting(id uint64) *Error {
	return &Error{
		Phase:     PhaseWait,
		Kind:      KindAlreadyWaiting,
		Coroutine: id,
		Detail:    "wait slot is not empty",
	}
}

// AlreadyJoined creates a double-join error
func AlreadyJoined(id uint64) *Error {
	return &Error{
		Phase:     PhaseJoin,
		Kind:      KindAlreadyJoined,
		Coroutine: id,
		Detail:    "handle result was already taken",
	}
}

// ReactorGone reports that the reactor shut down before a wait resolved
func ReactorGone(id uint64) *Error {
	return &Error{
		Phase:     PhaseWait,
		Kind:      KindReactorGone,
		Coroutine: id,
		Detail:    "reactor shut down before the awaited value completed",
	}
}

// NotCoroutine reports an operation that is only legal inside a coroutine
func NotCoroutine(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotCoroutine,
		Detail: fmt.Sprintf("%s outside of a coroutine", what),
	}
}

// Unsupported creates an unsupported capability error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed reports an operation on a closed pool or worker
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// PanicDropped reports a panic payload discarded under the log_and_drop
// policy. The payload itself went to the log, not to the joiner.
func PanicDropped(id uint64) *Error {
	return &Error{
		Phase:     PhaseJoin,
		Kind:      KindPanicDropped,
		Coroutine: id,
		Detail:    "panic payload was logged and dropped by policy",
	}
}
