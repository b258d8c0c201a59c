// Package coro implements the coroutine execution engine: stackful
// contexts, the lifecycle state machine and the allocation-free wait
// slot protocol.
//
// # Lifecycle
//
// A Context moves through Created, Runnable, Running, Suspended and
// finally Completed or Panicked. Resume is only legal in Runnable and
// Suspend only while Running; misuse of either is a scheduler defect,
// not a recoverable condition.
//
// # Waiting
//
// Each context embeds exactly one WaitSlot, reused across every
// suspension point in the coroutine's life. The coroutine parks a
// reference to the awaited value in the slot (BeginWait), suspends, and
// after being resumed collects the value with TakeResult. The reactor
// side flips the slot from pending to ready during the owning worker's
// poll, which also makes the context runnable again.
//
// # Panic containment
//
// Panics in the entry closure are recovered on the coroutine's side of
// the switch boundary and stored in the context; they never unwind into
// the worker's stack. The captured payload travels to the joiner.
//
// This package is mechanism only. Scheduling lives in sched and the
// public spawn/join surface in runtime.
package coro
