package sched

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/amilajack/corona"
	"github.com/amilajack/corona/errors"
	"github.com/amilajack/corona/reactor"
)

type config struct {
	log            *zap.Logger
	reactorFactory func() corona.Reactor
	abort          func(*errors.PanicError)
	workers        int
	lockThread     bool
}

// Option configures a pool.
type Option func(*config)

// WithWorkers sets the number of independent workers. Default is 1.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the pool's logger. Default is the no-op package
// logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLockOSThread pins each worker goroutine to its own OS thread.
func WithLockOSThread() Option {
	return func(c *config) { c.lockThread = true }
}

// WithReactorFactory supplies the reactor for each worker. Default
// builds the in-process reactor.
func WithReactorFactory(f func() corona.Reactor) Option {
	return func(c *config) {
		if f != nil {
			c.reactorFactory = f
		}
	}
}

// WithAbortHandler overrides the handler invoked when a coroutine
// panics without ever being joined under the abort cleanup policy.
// The default handler logs the captured panic at Fatal, terminating
// the process.
func WithAbortHandler(f func(*errors.PanicError)) Option {
	return func(c *config) {
		if f != nil {
			c.abort = f
		}
	}
}

// Pool owns a set of fully independent workers. There is no work
// stealing between them; a coroutine placed on a worker stays there.
type Pool struct {
	workers []*Worker
	reg     *Registry
	log     *zap.Logger
	abort   func(*errors.PanicError)
	rr      atomic.Uint64
	ids     atomic.Uint64
	closed  atomic.Bool
}

// NewPool creates and starts a pool.
func NewPool(opts ...Option) *Pool {
	cfg := config{
		workers:        1,
		log:            Logger(),
		reactorFactory: func() corona.Reactor { return reactor.New() },
	}
	for _, o := range opts {
		o(&cfg)
	}

	p := &Pool{
		reg: NewRegistry(),
		log: cfg.log,
	}
	if cfg.abort != nil {
		p.abort = cfg.abort
	} else {
		p.abort = func(pe *errors.PanicError) {
			p.log.Fatal("unjoined coroutine panicked under abort policy",
				zap.Uint64("coroutine", pe.Coroutine()),
				zap.String("panic", pe.DebugString()))
		}
	}

	p.workers = make([]*Worker, cfg.workers)
	for i := range p.workers {
		p.workers[i] = newWorker(i, cfg.reactorFactory(), cfg.log, p.reg, cfg.lockThread)
		p.workers[i].start()
	}
	p.log.Debug("pool started", zap.Int("workers", cfg.workers))
	return p
}

// NumWorkers returns the worker count.
func (p *Pool) NumWorkers() int { return len(p.workers) }

// Worker returns worker i.
func (p *Pool) Worker(i int) *Worker { return p.workers[i] }

// Pick chooses a worker round-robin for a new coroutine.
func (p *Pool) Pick() *Worker {
	n := p.rr.Add(1)
	return p.workers[(n-1)%uint64(len(p.workers))]
}

// NextID issues a fresh coroutine id, unique within the pool.
func (p *Pool) NextID() uint64 { return p.ids.Add(1) }

// Registry returns the pool's coroutine registry.
func (p *Pool) Registry() *Registry { return p.reg }

// Log returns the pool's logger.
func (p *Pool) Log() *zap.Logger { return p.log }

// AbortHandler returns the configured abort-policy handler.
func (p *Pool) AbortHandler() func(*errors.PanicError) { return p.abort }

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool { return p.closed.Load() }

// Close tears the pool down: each worker's reactor shuts down, failing
// outstanding waits with a reactor-gone error, and each worker drains
// its coroutines to a terminal state. Waits at most until ctx expires
// per worker; errors aggregate.
func (p *Pool) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return errors.Closed(errors.PhaseShutdown, "pool")
	}

	dones := make([]<-chan struct{}, len(p.workers))
	for i, w := range p.workers {
		dones[i] = w.close()
	}

	var err error
	for i, done := range dones {
		select {
		case <-done:
		case <-ctx.Done():
			err = multierr.Append(err,
				errors.New(errors.PhaseShutdown, errors.KindClosed).
					Detail("worker %d did not drain before deadline", i).
					Cause(ctx.Err()).
					Build())
		}
	}
	p.log.Debug("pool closed", zap.Error(err))
	return err
}

var (
	defaultPool *Pool
	defaultOnce sync.Once
)

// Default returns the process-wide pool, creating it with one worker on
// first use. The process owns its lifetime; call Close on it only when
// no more coroutines will ever be spawned.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = NewPool()
	})
	return defaultPool
}
