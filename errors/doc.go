// Package errors provides structured error types for the corona runtime.
//
// Errors are categorized by Phase (where in the coroutine lifecycle the
// error occurred) and Kind (error category). The Error type includes the
// coroutine id, the lifecycle state involved and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResume, errors.KindInvalidState).
//		Coroutine(id).
//		State("completed").
//		Detail("resume requires state runnable").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AllocationFailed(size, "not a page multiple")
//	err := errors.AlreadyJoined(id)
//
// All errors implement the standard error interface and support
// errors.Is/As; two structured errors match when Phase and Kind agree.
//
// Panics captured at a coroutine boundary are represented by PanicError,
// which preserves the original payload and the stack at the point of the
// panic. Invariant violations inside the runtime itself (state machine or
// wait slot misuse) are defects and surface loudly; user-code panics are
// recoverable data delivered to the joiner.
package errors
