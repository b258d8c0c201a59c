package sched

import (
	"sort"
	"sync"

	"github.com/amilajack/corona/coro"
)

// EventType classifies coroutine lifecycle notifications.
type EventType uint8

const (
	EventSpawned EventType = iota
	EventCompleted
	EventPanicked
)

// Event is one coroutine lifecycle notification.
type Event struct {
	Type   EventType
	ID     uint64
	Worker int
}

// Observer receives coroutine lifecycle events. Callbacks run on worker
// goroutines and must not block.
type Observer interface {
	OnCoroutineEvent(Event)
}

// Info is a point-in-time view of one live or recently terminal
// coroutine.
type Info struct {
	ID     uint64
	Worker int
	State  coro.State
}

// Registry tracks the live coroutines of a pool and fans lifecycle
// events out to observers. Stats displays and the TUI monitor read it;
// the scheduler itself never depends on its contents.
type Registry struct {
	mu        sync.RWMutex
	entries   map[uint64]*entry
	observers []Observer
}

type entry struct {
	ctx    *coro.Context
	worker int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[uint64]*entry),
	}
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of tracked coroutines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns the tracked coroutines ordered by id.
func (r *Registry) Snapshot() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.entries))
	for id, e := range r.entries {
		out = append(out, Info{ID: id, Worker: e.worker, State: e.ctx.State()})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) add(ctx *coro.Context, worker int) {
	r.mu.Lock()
	r.entries[ctx.ID()] = &entry{ctx: ctx, worker: worker}
	r.mu.Unlock()

	r.notify(Event{Type: EventSpawned, ID: ctx.ID(), Worker: worker})
}

func (r *Registry) remove(ctx *coro.Context, worker int, panicked bool) {
	r.mu.Lock()
	delete(r.entries, ctx.ID())
	r.mu.Unlock()

	typ := EventCompleted
	if panicked {
		typ = EventPanicked
	}
	r.notify(Event{Type: typ, ID: ctx.ID(), Worker: worker})
}

func (r *Registry) notify(e Event) {
	r.mu.RLock()
	obs := r.observers
	r.mu.RUnlock()
	for _, o := range obs {
		o.OnCoroutineEvent(e)
	}
}
