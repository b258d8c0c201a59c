// Package corona provides a user-space stackful coroutine runtime for Go.
//
// A coroutine is a suspendable unit of execution written in ordinary
// synchronous style: when it needs an asynchronous value it suspends
// without blocking its worker, and the worker runs other coroutines or
// reactor work in the meantime.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct
// responsibilities:
//
//	corona/          Root package with the Future, Waker and Reactor
//	                 collaborator interfaces
//	├── runtime/     High-level API: Builder, Spawn, Handle, Await, Scope
//	├── sched/       Worker run loops and worker pools
//	├── coro/        Coroutine contexts, wait slots and the lifecycle
//	                 state machine
//	├── reactor/     In-process reactor: promises, timers, readiness
//	                 tokens
//	├── stream/      Blocking-style I/O adapters over async chunk sources
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Spawn a coroutine on the default pool and wait for its result:
//
//	b := runtime.NewBuilder(nil)
//	h, err := runtime.Spawn(b, func(aw *runtime.Await) int {
//	    v, _ := aw.Future(someFuture)
//	    return v.(int) * 2
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := h.Wait(context.Background())
//
// # Scheduling Model
//
// Each worker owns one cooperative run loop. Within a worker exactly one
// coroutine executes at any instant; there is no preemption. A coroutine
// runs until it suspends or terminates. A coroutine created on a worker
// never migrates to another worker. Multiple workers are fully
// independent; there is no work stealing.
//
// # Thread Safety
//
// Handles are safe for concurrent use. A coroutine's context and wait
// slot are only ever touched by its own worker; cross-thread completions
// are handed off through the reactor's queue and the worker's wake
// channel.
package corona
