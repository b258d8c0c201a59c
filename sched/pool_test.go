package sched

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/amilajack/corona/coro"
	"github.com/amilajack/corona/errors"
	"github.com/amilajack/corona/reactor"
)

func TestMain(m *testing.M) {
	code := m.Run()
	if code == 0 {
		// Drain the process-wide pool, if a test created it, so the
		// leak check observes a quiet process.
		if defaultPool != nil {
			ctx, cancel := testContext()
			if err := defaultPool.Close(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "closing default pool:", err)
				code = 1
			}
			cancel()
		}
		if err := goleak.Find(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			code = 1
		}
	}
	os.Exit(code)
}

func testContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func TestPoolPickRoundRobin(t *testing.T) {
	p := NewPool(WithWorkers(3))
	defer closePool(t, p)

	if p.NumWorkers() != 3 {
		t.Fatalf("workers = %d", p.NumWorkers())
	}
	seen := make(map[int]int)
	for i := 0; i < 9; i++ {
		seen[p.Pick().ID()]++
	}
	for id := 0; id < 3; id++ {
		if seen[id] != 3 {
			t.Fatalf("worker %d picked %d times, want 3: %v", id, seen[id], seen)
		}
	}
}

func TestPoolNextIDUnique(t *testing.T) {
	p := NewPool()
	defer closePool(t, p)

	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id := p.NextID()
		if id == 0 || seen[id] {
			t.Fatalf("duplicate or zero id %d", id)
		}
		seen[id] = true
	}
}

func TestPoolCloseTwice(t *testing.T) {
	p := NewPool()
	closePool(t, p)
	if !p.Closed() {
		t.Fatal("pool not marked closed")
	}

	ctx, cancel := testContext()
	defer cancel()
	err := p.Close(ctx)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseShutdown, Kind: errors.KindClosed}) {
		t.Fatalf("second close = %v, want closed", err)
	}
}

// TestCloseFailsOutstandingWaits checks the shutdown contract: a
// coroutine parked on a wait that never completes is resumed with a
// reactor-gone failure during drain instead of leaking.
func TestCloseFailsOutstandingWaits(t *testing.T) {
	p := NewPool()
	w := p.Worker(0)
	r := w.Reactor().(*reactor.Reactor)

	never := r.NewPromise()
	var c *coro.Context
	c, err := coro.New(p.NextID(), 0, func() any {
		_ = c.Slot().BeginWait(never)
		c.Suspend()
		_, err := c.Slot().TakeResult()
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	outc := make(chan coro.Outcome, 1)
	if err := w.Submit(NewTask(c, func(o coro.Outcome) { outc <- o }), false, nil); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for c.State() != coro.StateSuspended {
		if time.Now().After(deadline) {
			t.Fatal("coroutine never suspended")
		}
		time.Sleep(time.Millisecond)
	}

	closePool(t, p)

	select {
	case o := <-outc:
		if o != coro.OutcomeCompleted {
			t.Fatalf("outcome = %s", o)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wait was not failed during drain")
	}
	werr, ok := c.Result().(error)
	if !ok || !stderrors.Is(werr, &errors.Error{Phase: errors.PhaseWait, Kind: errors.KindReactorGone}) {
		t.Fatalf("result = %v, want reactor-gone", c.Result())
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) OnCoroutineEvent(e Event) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

func (o *recordingObserver) snapshot() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.events...)
}

func TestRegistryObservesLifecycle(t *testing.T) {
	p := NewPool()
	defer closePool(t, p)
	w := p.Worker(0)

	obs := &recordingObserver{}
	p.Registry().Subscribe(obs)
	defer p.Registry().Unsubscribe(obs)

	ok, err := coro.New(p.NextID(), 0, func() any { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if out := waitOutcome(t, w, ok); out != coro.OutcomeCompleted {
		t.Fatalf("outcome = %s", out)
	}
	bad, err := coro.New(p.NextID(), 0, func() any { panic("boom") })
	if err != nil {
		t.Fatal(err)
	}
	if out := waitOutcome(t, w, bad); out != coro.OutcomePanicked {
		t.Fatalf("outcome = %s", out)
	}

	events := obs.snapshot()
	if len(events) != 4 {
		t.Fatalf("events = %v", events)
	}
	want := []struct {
		typ EventType
		id  uint64
	}{
		{EventSpawned, ok.ID()},
		{EventCompleted, ok.ID()},
		{EventSpawned, bad.ID()},
		{EventPanicked, bad.ID()},
	}
	for i, e := range events {
		if e.Type != want[i].typ || e.ID != want[i].id || e.Worker != 0 {
			t.Fatalf("event %d = %+v, want %+v", i, e, want[i])
		}
	}
	if p.Registry().Len() != 0 {
		t.Fatalf("registry still tracks %d coroutines", p.Registry().Len())
	}
}

func TestRegistrySnapshotWhileSuspended(t *testing.T) {
	p := NewPool()
	defer closePool(t, p)
	w := p.Worker(0)
	r := w.Reactor().(*reactor.Reactor)

	gate := r.NewPromise()
	var c *coro.Context
	c, err := coro.New(p.NextID(), 0, func() any {
		_ = c.Slot().BeginWait(gate)
		c.Suspend()
		_, _ = c.Slot().TakeResult()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	fin := make(chan struct{})
	if err := w.Submit(NewTask(c, func(coro.Outcome) { close(fin) }), false, nil); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for c.State() != coro.StateSuspended {
		if time.Now().After(deadline) {
			t.Fatal("coroutine never suspended")
		}
		time.Sleep(time.Millisecond)
	}

	snap := p.Registry().Snapshot()
	if len(snap) != 1 || snap[0].ID != c.ID() || snap[0].State != coro.StateSuspended {
		t.Fatalf("snapshot = %+v", snap)
	}

	gate.Complete(nil, nil)
	select {
	case <-fin:
	case <-time.After(5 * time.Second):
		t.Fatal("coroutine never finished")
	}
}

func TestDefaultPoolSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Fatal("Default returned distinct pools")
	}
	if a.NumWorkers() != 1 {
		t.Fatalf("default pool workers = %d", a.NumWorkers())
	}
	// Deliberately not closed: the default pool belongs to the process.
}
