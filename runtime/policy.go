package runtime

// CleanupPolicy decides what happens to a coroutine's result when its
// handle was never observed by the time the coroutine terminates.
type CleanupPolicy uint8

const (
	// CleanupLeak keeps the result (or panic payload) until a join
	// arrives, however late. The default.
	CleanupLeak CleanupPolicy = iota
	// CleanupAbort invokes the pool's abort handler when the coroutine
	// panicked with nobody joining. The default handler logs the panic
	// at Fatal, terminating the process.
	CleanupAbort
	// CleanupDetach drops the result, debug-logs it, and marks the
	// context detached. Later joins fail as already joined.
	CleanupDetach
)

func (p CleanupPolicy) String() string {
	switch p {
	case CleanupLeak:
		return "leak"
	case CleanupAbort:
		return "abort"
	case CleanupDetach:
		return "detach"
	default:
		return "unknown"
	}
}

// PanicPolicy decides how a captured panic reaches joiners.
type PanicPolicy uint8

const (
	// PanicPropagate delivers the captured payload as the join error.
	// The default.
	PanicPropagate PanicPolicy = iota
	// PanicLogAndDrop logs the payload when the coroutine terminates;
	// joins get a panic-dropped error without the payload.
	PanicLogAndDrop
)

func (p PanicPolicy) String() string {
	switch p {
	case PanicPropagate:
		return "propagate"
	case PanicLogAndDrop:
		return "log_and_drop"
	default:
		return "unknown"
	}
}
