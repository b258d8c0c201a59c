package runtime

import (
	stderrors "errors"

	"go.uber.org/multierr"

	"github.com/amilajack/corona/errors"
)

// reconciler is a scoped child awaiting reconciliation, erased of its
// result type.
type reconciler interface {
	reconcile(aw *Await) error
}

// Scope tracks coroutines whose lifetime is bounded by a Scoped call.
// It belongs to the coroutine that opened it: spawn through it only
// from that coroutine's body.
type Scope struct {
	aw       *Await
	children []reconciler
}

// Await returns the owning coroutine's capability, for children
// spawned with an explicit builder.
func (sc *Scope) Await() *Await { return sc.aw }

// Go spawns a child running task inside the scope, lazily, on the
// owner's worker. Same-worker children never run in parallel with the
// owner, so locals captured by task need no synchronization. The
// child's returned error surfaces from Scoped.
func (sc *Scope) Go(task func(*Await) error) error {
	_, err := SpawnScoped[error](sc, nil, task)
	return err
}

// SpawnScoped spawns a typed child inside sc. A nil builder places the
// child on the owner's worker, lazily. An explicit builder is honored
// as-is except that the spawn is attributed to the scope's owner;
// placing a scoped child on another worker makes it run in parallel
// with the owner, and its captures must cope.
//
// The handle may be joined inside the scope body; children still
// unjoined when the body ends are joined by Scoped itself.
func SpawnScoped[T any](sc *Scope, b *Builder, task func(*Await) T) (*Handle[T], error) {
	if b == nil {
		b = NewBuilder().Worker(sc.aw.w)
	}
	b.From(sc.aw)
	h, err := Spawn(b, task)
	if err != nil {
		return nil, err
	}
	sc.children = append(sc.children, h)
	return h, nil
}

// Scoped runs fn with a fresh scope and returns only after every child
// spawned through it is terminal, so locals of the caller borrowed by
// children remain valid for the children's whole life. Child failures
// (panics under propagation, errors returned by Go children) aggregate
// into the returned error. Children are reconciled even when fn itself
// panics.
func Scoped(aw *Await, fn func(*Scope)) error {
	sc := &Scope{aw: aw}
	finished := false
	defer func() {
		if !finished {
			_ = sc.reconcile()
		}
	}()
	fn(sc)
	finished = true
	return sc.reconcile()
}

func (sc *Scope) reconcile() error {
	var err error
	for _, c := range sc.children {
		err = multierr.Append(err, c.reconcile(sc.aw))
	}
	sc.children = nil
	return err
}

// reconcile joins the child unless somebody already did.
func (h *Handle[T]) reconcile(aw *Await) error {
	v, err := h.Join(aw)
	if err != nil {
		if stderrors.Is(err, &errors.Error{Phase: errors.PhaseJoin, Kind: errors.KindAlreadyJoined}) {
			return nil
		}
		return err
	}
	if e, ok := any(v).(error); ok {
		return e
	}
	return nil
}
