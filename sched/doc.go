// Package sched schedules coroutines onto workers.
//
// # Workers
//
// A Worker owns one cooperative run loop: it pops a runnable context,
// resumes it until the context suspends or terminates, and between
// batches drives its reactor, turning completed asynchronous values
// into ready wait slots and their owners back into runnable contexts.
// Within a worker exactly one coroutine executes at any instant.
//
// Fairness is round-robin: every context runnable at the start of a
// batch is resumed once before any context is resumed a second time. A
// coroutine that suspends immediately goes to the back of the queue
// rather than being retried in a tight loop.
//
// # Affinity
//
// A coroutine adopted by a worker resumes on that worker for its whole
// life. Cross-thread traffic reaches the loop through two thread-safe
// doors only: the submission inbox and the reactor's completion queue.
// Everything else the loop owns outright, which is what makes the wait
// slot protocol lock-free.
//
// # Pools
//
// A Pool holds N fully independent workers; there is no work stealing
// (deliberately: many-to-many scheduling is a non-goal). Default()
// lazily builds the process-wide pool. Close drains every worker:
// reactors shut down, outstanding waits fail with a reactor-gone error,
// and coroutines run to a terminal state under a bounded drain.
package sched
