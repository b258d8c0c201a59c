package stream

import (
	"sync"

	"github.com/amilajack/corona"
	"github.com/amilajack/corona/errors"
	"github.com/amilajack/corona/reactor"
)

// Pipe is an in-memory chunk conduit: any goroutine pushes on one end,
// a coroutine drains the other through a Reader (or fills it through a
// Writer). It implements both Source and Sink.
//
// The pipe buffers without bound; backpressure, when needed, belongs
// to the producer.
type Pipe struct {
	r *reactor.Reactor

	mu      sync.Mutex
	chunks  [][]byte
	waiters []*reactor.Promise
	err     error
	closed  bool
}

// NewPipe creates a pipe whose chunk futures belong to r. The reading
// coroutine must live on the worker that polls r.
func NewPipe(r *reactor.Reactor) *Pipe {
	return &Pipe{r: r}
}

// Push appends a chunk, waking the reader if it is parked on one.
// Fails once the pipe is closed.
func (p *Pipe) Push(chunk []byte) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.Closed(errors.PhaseWait, "pipe")
	}
	var wake *reactor.Promise
	if len(p.waiters) > 0 {
		wake = p.waiters[0]
		p.waiters = p.waiters[1:]
	} else {
		p.chunks = append(p.chunks, chunk)
	}
	p.mu.Unlock()

	if wake != nil {
		wake.Complete(chunk, nil)
	}
	return nil
}

// Close marks the end of the stream. Buffered chunks still drain;
// after them the reader sees end of stream.
func (p *Pipe) Close() error {
	p.closeWith(nil)
	return nil
}

// CloseWithError ends the stream with err: parked and future reads
// fail with it once the buffer drains.
func (p *Pipe) CloseWithError(err error) {
	p.closeWith(err)
}

func (p *Pipe) closeWith(err error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.err = err
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	for _, w := range waiters {
		w.Complete(nil, err)
	}
}

// Next returns the future for the next chunk. Part of the Source
// contract.
func (p *Pipe) Next() corona.Future {
	pr := p.r.NewPromise()
	p.mu.Lock()
	switch {
	case len(p.chunks) > 0:
		chunk := p.chunks[0]
		p.chunks = p.chunks[1:]
		p.mu.Unlock()
		pr.Complete(chunk, nil)
	case p.closed:
		err := p.err
		p.mu.Unlock()
		pr.Complete(nil, err)
	default:
		p.waiters = append(p.waiters, pr)
		p.mu.Unlock()
	}
	return pr
}

// Write accepts a chunk immediately. Part of the Sink contract.
func (p *Pipe) Write(chunk []byte) corona.Future {
	pr := p.r.NewPromise()
	pr.Complete(len(chunk), p.Push(chunk))
	return pr
}

var (
	_ Source = (*Pipe)(nil)
	_ Sink   = (*Pipe)(nil)
)
