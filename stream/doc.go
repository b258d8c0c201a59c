// Package stream adapts asynchronous chunk producers to blocking-style
// readers and writers usable inside coroutines.
//
// A Source hands out one future per chunk; a Reader suspends the
// calling coroutine on each of them and presents the familiar
// io.Reader surface over the reassembled bytes. Writer is the mirror
// image over a Sink. Pipe is the in-memory implementation of both
// ends, fed from any goroutine, used by tests and the demo workload.
//
// All Reader and Writer methods must run inside the coroutine whose
// Await they were built with.
package stream
