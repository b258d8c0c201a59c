// Package runtime is the public face of the coroutine runtime: spawn
// configuration, joinable handles, the suspension capability and
// lifetime scopes.
//
// # Spawning
//
// A Builder names where a coroutine runs (pool, worker), how large its
// stack is, whether the spawn is eager or lazy, and what happens to
// results nobody joins. Spawn is generic over the task's result type;
// the handle it returns carries that type back to exactly one joiner.
//
//	h, err := runtime.Spawn(runtime.NewBuilder().Eager(), func(aw *runtime.Await) int {
//	    v, _ := aw.Future(someFuture)
//	    return v.(int) * 2
//	})
//
// # Awaiting
//
// The Await capability is how a coroutine suspends: Future parks it on
// an asynchronous value, Yield reschedules it behind its peers, Sleep
// uses the reactor's timer capability. Code between suspension points
// is plain synchronous Go.
//
// # Scopes
//
// Scoped bounds child lifetimes by the enclosing call: every coroutine
// spawned through the scope is terminal before Scoped returns, which
// makes borrowing the caller's locals safe. Failures aggregate into
// Scoped's error.
package runtime
