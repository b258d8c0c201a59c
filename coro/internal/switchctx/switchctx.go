// Package switchctx provides the stack-switch capability the coroutine
// engine is built on. It rides the Go runtime's coroutine support
// (runtime.newcoro / runtime.coroswitch), which switches between
// execution contexts without parking the carrying thread.
//
// A panic inside the body is recovered here, on the coroutine's own
// side of the switch, so it can never unwind across the switch into the
// resumer's stack.
package switchctx

import (
	"runtime/debug"
	"unsafe"
)

var _ unsafe.Pointer

// coroutine is the runtime's opaque coroutine record.
type coroutine struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coroutine)) *coroutine

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coroutine)

// Switcher owns one switchable execution context.
//
// All fields are only touched from the goroutine chain performing the
// switches; the runtime guarantees the two sides never run concurrently.
type Switcher struct {
	c        *coroutine
	pval     any
	pstack   []byte
	done     bool
	panicked bool
}

// New prepares a context that will run body. The body does not start
// until the first Resume. The yield function handed to the body
// transfers control back to the most recent resumer; it must only be
// called from inside the body.
func New(body func(yield func())) *Switcher {
	s := &Switcher{}
	s.c = newcoro(func(c *coroutine) {
		defer func() {
			if !s.done {
				if p := recover(); p != nil {
					s.panicked = true
					s.pval = p
					s.pstack = debug.Stack()
				}
				s.done = true
			}
		}()
		body(func() { coroswitch(s.c) })
	})
	return s
}

// Resume transfers control into the context until it yields or its body
// returns. When panicked is true, pval holds the recovered payload and
// pstack the stack captured at the panic site.
func (s *Switcher) Resume() (done, panicked bool, pval any, pstack []byte) {
	coroswitch(s.c)
	return s.done, s.panicked, s.pval, s.pstack
}

// Done reports whether the body has finished.
func (s *Switcher) Done() bool { return s.done }
