package stream

import (
	"context"
	stderrors "errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/amilajack/corona/reactor"
	"github.com/amilajack/corona/runtime"
	"github.com/amilajack/corona/sched"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pipeFixture is a pool, its first worker's reactor and a pipe bound
// to it; coroutines in these tests are pinned to that worker.
type pipeFixture struct {
	pool *sched.Pool
	pipe *Pipe
}

func newPipeFixture(t *testing.T) *pipeFixture {
	t.Helper()
	p := sched.NewPool()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		require.NoError(t, p.Close(ctx))
	})
	r := p.Worker(0).Reactor().(*reactor.Reactor)
	return &pipeFixture{pool: p, pipe: NewPipe(r)}
}

func (f *pipeFixture) builder() *runtime.Builder {
	return runtime.NewBuilder().Pool(f.pool).Worker(f.pool.Worker(0))
}

func TestReaderReassemblesChunks(t *testing.T) {
	f := newPipeFixture(t)

	go func() {
		_ = f.pipe.Push([]byte("hello "))
		_ = f.pipe.Push([]byte("streaming "))
		_ = f.pipe.Push([]byte("world"))
		_ = f.pipe.Close()
	}()

	h, err := runtime.Spawn(f.builder(), func(aw *runtime.Await) any {
		data, err := io.ReadAll(NewReader(aw, f.pipe))
		if err != nil {
			return err
		}
		return string(data)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v, err := h.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "hello streaming world", v)
}

func TestReaderParksUntilProducerCatchesUp(t *testing.T) {
	f := newPipeFixture(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = f.pipe.Push([]byte("late"))
		_ = f.pipe.Close()
	}()

	h, err := runtime.Spawn(f.builder(), func(aw *runtime.Await) any {
		data, err := io.ReadAll(NewReader(aw, f.pipe))
		if err != nil {
			return err
		}
		return string(data)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v, err := h.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "late", v)
}

func TestReaderSmallBufferStraddlesChunks(t *testing.T) {
	f := newPipeFixture(t)

	_ = f.pipe.Push([]byte("abcdef"))
	_ = f.pipe.Close()

	h, err := runtime.Spawn(f.builder(), func(aw *runtime.Await) any {
		r := NewReader(aw, f.pipe)
		var out []byte
		buf := make([]byte, 4)
		for {
			n, err := r.Read(buf)
			out = append(out, buf[:n]...)
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
		}
		// EOF is sticky.
		if _, err := r.Read(buf); err != io.EOF {
			return err
		}
		return string(out)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v, err := h.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "abcdef", v)
}

func TestReaderPropagatesProducerError(t *testing.T) {
	f := newPipeFixture(t)
	boom := stderrors.New("upstream failed")

	_ = f.pipe.Push([]byte("partial"))
	f.pipe.CloseWithError(boom)

	h, err := runtime.Spawn(f.builder(), func(aw *runtime.Await) any {
		data, err := io.ReadAll(NewReader(aw, f.pipe))
		if len(data) != len("partial") {
			return stderrors.New("buffered chunk lost")
		}
		return err
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v, err := h.Wait(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, v.(error), boom)
}

func TestWriterRoundTrip(t *testing.T) {
	f := newPipeFixture(t)

	h, err := runtime.Spawn(f.builder(), func(aw *runtime.Await) any {
		w := NewWriter(aw, f.pipe)
		for _, s := range []string{"alpha ", "beta"} {
			if _, err := w.Write([]byte(s)); err != nil {
				return err
			}
		}
		_ = f.pipe.Close()

		data, err := io.ReadAll(NewReader(aw, f.pipe))
		if err != nil {
			return err
		}
		return string(data)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v, err := h.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "alpha beta", v)
}

func TestPushAfterCloseFails(t *testing.T) {
	f := newPipeFixture(t)
	_ = f.pipe.Close()
	require.Error(t, f.pipe.Push([]byte("too late")))
}
