package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError carries a panic captured at a coroutine boundary. The
// original payload and the stack at the point of the panic are
// preserved so the joiner loses no information.
type PanicError struct {
	value     any
	stack     []byte
	coroutine uint64
}

// NewPanic captures the current stack together with the recovered value.
// Call it from the deferred recover at the coroutine boundary.
func NewPanic(id uint64, v any) *PanicError {
	return &PanicError{
		value:     v,
		stack:     debug.Stack(),
		coroutine: id,
	}
}

// NewPanicWithStack wraps a payload together with a stack captured
// earlier, at the coroutine side of the switch boundary.
func NewPanicWithStack(id uint64, v any, stack []byte) *PanicError {
	return &PanicError{
		value:     v,
		stack:     stack,
		coroutine: id,
	}
}

// Value returns the original panic payload.
func (p *PanicError) Value() any { return p.value }

// Coroutine returns the id of the coroutine that panicked.
func (p *PanicError) Coroutine() uint64 { return p.coroutine }

func (p *PanicError) Error() string {
	return fmt.Sprintf("coroutine %d panicked: %v", p.coroutine, p.value)
}

// ErrorWithStack formats the payload together with the captured stack.
func (p *PanicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

// Unwrap exposes the payload when it is itself an error.
func (p *PanicError) Unwrap() error {
	err, ok := p.value.(error)
	if !ok {
		return nil
	}
	return err
}

// DebugString walks the wrapped error chain, printing captured stacks
// where available. Cycles in the chain are detected and skipped.
func (p *PanicError) DebugString() string {
	var sb strings.Builder
	seen := make(map[error]bool)

	var unwrap func(error)
	unwrap = func(e error) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true

		if pe, ok := e.(*PanicError); ok {
			sb.WriteString(pe.ErrorWithStack())
		} else {
			sb.WriteString(e.Error())
		}

		if unwrapper, ok := e.(interface{ Unwrap() []error }); ok {
			for _, ue := range unwrapper.Unwrap() {
				unwrap(ue)
			}
		} else if ue := errors.Unwrap(e); ue != nil {
			unwrap(ue)
		}
	}

	unwrap(p)
	return sb.String()
}

// AsPanic extracts a captured panic from an error chain.
func AsPanic(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
