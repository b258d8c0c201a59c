package runtime

import (
	"github.com/amilajack/corona/sched"
)

// Builder accumulates spawn configuration. The zero builder spawns a
// lazy coroutine with the default stack on the default pool's next
// round-robin worker, leaking unjoined results and propagating panics.
//
// A builder is plain configuration: it may be reused across spawns and
// is not safe for concurrent mutation.
type Builder struct {
	pool        *sched.Pool
	worker      *sched.Worker
	from        *Await
	offload     *sched.Pool
	stackSize   int
	eager       bool
	cleanup     CleanupPolicy
	panicPolicy PanicPolicy
}

// NewBuilder returns a builder with all defaults.
func NewBuilder() *Builder {
	return &Builder{}
}

// Pool places spawns on p instead of the process-wide default pool.
func (b *Builder) Pool(p *sched.Pool) *Builder {
	b.pool = p
	return b
}

// Worker pins spawns to w instead of picking round-robin. The
// coroutine keeps that affinity for life.
func (b *Builder) Worker(w *sched.Worker) *Builder {
	b.worker = w
	return b
}

// From declares the coroutine the spawn call is executing inside.
// Required for eager spawns made from a coroutine: it selects between
// the direct-switch path (same worker) and the suspend-until-first-pause
// path (different worker). Lazy spawns ignore it.
func (b *Builder) From(aw *Await) *Builder {
	b.from = aw
	return b
}

// StackSize requests an explicit stack reservation. Zero selects the
// default; invalid sizes fail the spawn with an allocation error.
func (b *Builder) StackSize(n int) *Builder {
	b.stackSize = n
	return b
}

// Eager makes Spawn return only once the child has run to its first
// suspension point (or terminated). The default is lazy: the child is
// merely enqueued runnable.
func (b *Builder) Eager() *Builder {
	b.eager = true
	return b
}

// Cleanup sets the policy for results whose handle is never joined.
func (b *Builder) Cleanup(p CleanupPolicy) *Builder {
	b.cleanup = p
	return b
}

// PanicPolicy sets how captured panics reach joiners.
func (b *Builder) PanicPolicy(p PanicPolicy) *Builder {
	b.panicPolicy = p
	return b
}

// Offload records a pool intended for blocking work spilled out of
// coroutines. The runtime attaches no behavior to it yet; it is
// configuration carried for callers that route blocking sections
// themselves.
func (b *Builder) Offload(p *sched.Pool) *Builder {
	b.offload = p
	return b
}

// OffloadPool returns the configured offload pool, nil if unset.
func (b *Builder) OffloadPool() *sched.Pool { return b.offload }
