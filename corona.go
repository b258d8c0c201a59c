package corona

import "time"

// Future is an asynchronous value driven to completion by a Reactor.
type Future interface {
	// Ready reports whether the value has completed.
	Ready() bool
	// Result returns the completed value or its failure. It is only
	// meaningful once the Waker registered for this future has fired.
	Result() (any, error)
}

// Waker receives the one-shot notification that a registered future
// completed. Wake is invoked on the goroutine that polls the reactor,
// never concurrently with the owning worker's loop.
type Waker interface {
	Wake()
}

// Reactor drives futures to completion on behalf of a worker. Each
// worker owns exactly one reactor; completions originating on other
// threads must be queued internally and delivered during Poll.
type Reactor interface {
	// Register records interest in f. w.Wake is invoked exactly once,
	// during a later Poll, when f completes. Registering an already
	// completed future queues the wake immediately.
	Register(f Future, w Waker)

	// Poll delivers pending completion notifications on the calling
	// goroutine and returns the number delivered.
	Poll() int

	// WakeChan is signalled when new completions arrive, letting an
	// idle worker park until there is reactor work.
	WakeChan() <-chan struct{}

	// Shutdown fails every outstanding registration with a reactor-gone
	// error so parked coroutines finish instead of leaking.
	Shutdown()
}

// TimerReactor is an optional reactor capability for time-based waits.
type TimerReactor interface {
	// After returns a future that completes once d has elapsed.
	After(d time.Duration) Future
}
