package reactor

import (
	"testing"
	"time"
)

type countWaker struct {
	n int
}

func (w *countWaker) Wake() { w.n++ }

func TestPromiseCompleteAfterRegister(t *testing.T) {
	r := New()
	p := r.NewPromise()
	w := &countWaker{}

	r.Register(p, w)
	if n := r.Poll(); n != 0 {
		t.Fatalf("Poll before completion delivered %d wakes", n)
	}

	p.Complete(7, nil)
	if n := r.Poll(); n != 1 {
		t.Fatalf("Poll delivered %d wakes, want 1", n)
	}
	if w.n != 1 {
		t.Fatalf("waker fired %d times, want 1", w.n)
	}

	// One-shot: nothing further.
	if n := r.Poll(); n != 0 {
		t.Fatalf("second Poll delivered %d wakes", n)
	}

	v, err := p.Result()
	if v != 7 || err != nil {
		t.Fatalf("Result = %v, %v", v, err)
	}
}

func TestPromiseCompleteBeforeRegister(t *testing.T) {
	r := New()
	p := r.NewPromise()
	p.Complete("early", nil)

	w := &countWaker{}
	r.Register(p, w)
	if n := r.Poll(); n != 1 || w.n != 1 {
		t.Fatalf("delivered=%d fired=%d, want 1/1", n, w.n)
	}
}

func TestPromiseCompleteFirstWins(t *testing.T) {
	r := New()
	p := r.NewPromise()
	p.Complete(1, nil)
	p.Complete(2, nil)

	v, _ := p.Result()
	if v != 1 {
		t.Fatalf("Result = %v, want first completion", v)
	}
}

func TestWakeChanSignalledOnCompletion(t *testing.T) {
	r := New()
	p := r.NewPromise()
	w := &countWaker{}
	r.Register(p, w)

	// Drain any registration-time signal.
	select {
	case <-r.WakeChan():
	default:
	}

	go p.Complete(nil, nil)

	select {
	case <-r.WakeChan():
	case <-time.After(time.Second):
		t.Fatal("wake channel never signalled")
	}
	if n := r.Poll(); n != 1 {
		t.Fatalf("Poll delivered %d", n)
	}
}

func TestTokenIsPolled(t *testing.T) {
	r := New()
	tok := NewToken()
	w := &countWaker{}

	r.Register(tok, w)
	if !r.PendingPolled() {
		t.Fatal("token registration should be tracked as polled work")
	}
	if n := r.Poll(); n != 0 {
		t.Fatalf("unsignalled token delivered %d wakes", n)
	}

	tok.Signal(byte(1), nil)
	if n := r.Poll(); n != 1 || w.n != 1 {
		t.Fatalf("delivered=%d fired=%d, want 1/1", n, w.n)
	}
	if r.PendingPolled() {
		t.Fatal("delivered token must leave the polled set")
	}
}

func TestAfterCompletes(t *testing.T) {
	r := New()
	f := r.After(5 * time.Millisecond)
	w := &countWaker{}
	r.Register(f, w)

	deadline := time.Now().Add(2 * time.Second)
	for w.n == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timer never fired")
		}
		select {
		case <-r.WakeChan():
		case <-time.After(10 * time.Millisecond):
		}
		r.Poll()
	}
}

func TestShutdownFlushesRegistrations(t *testing.T) {
	r := New()
	p := r.NewPromise()
	tok := NewToken()
	w1, w2 := &countWaker{}, &countWaker{}
	r.Register(p, w1)
	r.Register(tok, w2)

	r.Shutdown()
	if n := r.Poll(); n != 2 {
		t.Fatalf("Poll after shutdown delivered %d wakes, want 2", n)
	}

	// Registrations after shutdown wake immediately so the owner can
	// fail the wait instead of parking forever.
	w3 := &countWaker{}
	r.Register(r.NewPromise(), w3)
	if n := r.Poll(); n != 1 || w3.n != 1 {
		t.Fatalf("late registration: delivered=%d fired=%d", n, w3.n)
	}
}

func TestRecorderTracksRegistrations(t *testing.T) {
	rec := NewRecorder()
	p := rec.Inner.NewPromise()
	w := &countWaker{}

	p.Complete(nil, nil)
	rec.Register(p, w)
	rec.Register(p, w)

	regs := rec.Registrations()
	if len(regs) != 2 {
		t.Fatalf("recorded %d registrations, want 2", len(regs))
	}
	if rec.DistinctWakers() != 1 {
		t.Fatalf("distinct wakers = %d, want 1", rec.DistinctWakers())
	}
}
