package stream

import (
	"io"

	"github.com/amilajack/corona"
	"github.com/amilajack/corona/runtime"
)

// Source produces chunks asynchronously. Next returns a future that
// completes with the next []byte chunk; a nil or empty chunk with a
// nil error marks the end of the stream.
type Source interface {
	Next() corona.Future
}

// Sink consumes chunks asynchronously. Write returns a future that
// completes once the chunk has been accepted; the chunk must not be
// mutated until then.
type Sink interface {
	Write(chunk []byte) corona.Future
}

// Reader presents io.Reader over a Source, suspending the coroutine
// once per chunk. Not safe for use outside its coroutine.
type Reader struct {
	aw  *runtime.Await
	src Source
	buf []byte
	err error
}

// NewReader builds a reader draining src inside aw's coroutine.
func NewReader(aw *runtime.Await, src Source) *Reader {
	return &Reader{aw: aw, src: src}
}

// Read fills p from the current chunk, suspending for the next chunk
// when the buffer runs dry. Returns io.EOF after the source ends.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		v, err := r.aw.Future(r.src.Next())
		if err != nil {
			r.err = err
			return 0, err
		}
		chunk, _ := v.([]byte)
		if len(chunk) == 0 {
			r.err = io.EOF
			return 0, io.EOF
		}
		r.buf = chunk
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// Writer presents io.Writer over a Sink, suspending the coroutine
// until each chunk is accepted. Not safe for use outside its
// coroutine.
type Writer struct {
	aw   *runtime.Await
	sink Sink
}

// NewWriter builds a writer feeding sink inside aw's coroutine.
func NewWriter(aw *runtime.Await, sink Sink) *Writer {
	return &Writer{aw: aw, sink: sink}
}

// Write hands p to the sink and suspends until it is accepted. The
// sink owns a copy; p may be reused once Write returns.
func (w *Writer) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	if _, err := w.aw.Future(w.sink.Write(chunk)); err != nil {
		return 0, err
	}
	return len(p), nil
}

var (
	_ io.Reader = (*Reader)(nil)
	_ io.Writer = (*Writer)(nil)
)
