package coro

// State is a coroutine's lifecycle state.
//
// The legal edges are:
//
//	Created   --enqueue-->  Runnable
//	Runnable  --pick-->     Running
//	Running   --suspend-->  Suspended   (wait slot set to pending)
//	Suspended --slot ready--> Runnable
//	Running   --return-->   Completed
//	Running   --panic-->    Panicked
//	Completed | Panicked --forget--> Detached
//
// Completed, Panicked and Detached are terminal: a context in one of
// those states never re-enters Runnable.
type State uint32

const (
	StateCreated State = iota
	StateRunnable
	StateRunning
	StateSuspended
	StateCompleted
	StatePanicked
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunnable:
		return "runnable"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateCompleted:
		return "completed"
	case StatePanicked:
		return "panicked"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StatePanicked || s == StateDetached
}

// Outcome is the result of resuming a context once.
type Outcome uint8

const (
	OutcomeSuspended Outcome = iota
	OutcomeCompleted
	OutcomePanicked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuspended:
		return "suspended"
	case OutcomeCompleted:
		return "completed"
	case OutcomePanicked:
		return "panicked"
	default:
		return "unknown"
	}
}
