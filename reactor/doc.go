// Package reactor provides the in-process reactor implementation used
// by workers, tests and the demo binary.
//
// The scheduling core only consumes the corona.Reactor contract; this
// package is the host side of that contract, the way a runtime ships
// reference implementations of its collaborator interfaces.
//
// Three kinds of asynchronous value are supported, a closed set that
// keeps the runtime's waiting path allocation-free:
//
//   - Promise: a one-shot value completed from any thread, delivered
//     through the owning reactor's completion queue. Await a promise on
//     the reactor that created it.
//   - Timers: After(d) completes a promise when the duration elapses.
//   - Token: a readiness token owned by an external event source and
//     checked on every poll (the I/O-readiness style of future).
//
// Completions queue under a lock and deliver during Poll on the owning
// worker's goroutine, preserving the single-writer discipline on wait
// slots. An idle worker parks on WakeChan until a completion arrives.
//
// Recorder wraps a reactor for tests that assert on the registration
// traffic itself.
package reactor
