package reactor

import (
	"sync"
	"time"

	"github.com/amilajack/corona"
)

// Registration is one recorded Register call.
type Registration struct {
	Future corona.Future
	Waker  corona.Waker
}

// Recorder wraps a reactor and records every registration that passes
// through it. Tests use it to verify the runtime's allocation-free
// waiting discipline: across N waits of one coroutine the same waker
// must be handed over every time, never a fresh object per suspension.
type Recorder struct {
	Inner *Reactor

	mu   sync.Mutex
	regs []Registration
}

// NewRecorder wraps a fresh reactor.
func NewRecorder() *Recorder {
	return &Recorder{Inner: New()}
}

var _ corona.Reactor = (*Recorder)(nil)
var _ corona.TimerReactor = (*Recorder)(nil)

func (r *Recorder) Register(f corona.Future, w corona.Waker) {
	r.mu.Lock()
	r.regs = append(r.regs, Registration{Future: f, Waker: w})
	r.mu.Unlock()
	r.Inner.Register(f, w)
}

func (r *Recorder) Poll() int                   { return r.Inner.Poll() }
func (r *Recorder) WakeChan() <-chan struct{}   { return r.Inner.WakeChan() }
func (r *Recorder) Shutdown()                   { r.Inner.Shutdown() }
func (r *Recorder) PendingPolled() bool         { return r.Inner.PendingPolled() }
func (r *Recorder) After(d time.Duration) corona.Future { return r.Inner.After(d) }

// Registrations returns a copy of the recorded Register calls.
func (r *Recorder) Registrations() []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Registration, len(r.regs))
	copy(out, r.regs)
	return out
}

// DistinctWakers counts the unique waker objects seen.
func (r *Recorder) DistinctWakers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[corona.Waker]struct{}, len(r.regs))
	for _, reg := range r.regs {
		seen[reg.Waker] = struct{}{}
	}
	return len(seen)
}
