package futurecore

import (
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/futurecore/core"
	"github.com/joeycumines/futurecore/internal/guard"
	"github.com/joeycumines/futurecore/try"
)

// Promise is the producing side of a Promise/Future pair. Create one
// with [NewPromise], retrieve its paired Future exactly once with
// [Promise.GetFuture], then settle it with [Promise.SetTry] or
// [Promise.SetError].
//
// If a Promise is closed without ever being satisfied, its Future
// resolves to [ErrBrokenPromise] — the same contract the underlying
// Core enforces via DetachPromise.
type Promise[T any] struct {
	core      *core.Core[T]
	guard     *guard.Guard
	retrieved atomic.Bool
	satisfied atomic.Bool
	closed    atomic.Bool
}

// NewPromise creates an unsatisfied Promise.
func NewPromise[T any](opts ...core.Option) *Promise[T] {
	c := core.New[T](opts...)
	p := &Promise[T]{core: c}
	p.guard = guard.New(c.DetachPromise)
	runtime.SetFinalizer(p, (*Promise[T]).Close)
	return p
}

// GetFuture returns the Future paired with this Promise. It may be
// called exactly once; subsequent calls return
// [ErrPromiseAlreadyRetrieved].
func (p *Promise[T]) GetFuture() (*Future[T], error) {
	if p.closed.Load() {
		return nil, ErrNoState
	}
	if !p.retrieved.CompareAndSwap(false, true) {
		return nil, wrapf("GetFuture", ErrPromiseAlreadyRetrieved)
	}
	return newFutureFromCore(p.core), nil
}

// SetTry satisfies the Promise with t. Returns
// [ErrPromiseAlreadySatisfied] if the Promise has already been
// satisfied by a prior SetTry/SetValue/SetError, and [ErrNoState] if
// the Promise has already been closed.
func (p *Promise[T]) SetTry(t try.Try[T]) error {
	if p.closed.Load() {
		return ErrNoState
	}
	if !p.satisfied.CompareAndSwap(false, true) {
		return wrapf("SetTry", ErrPromiseAlreadySatisfied)
	}
	p.core.SetResult(t)
	return nil
}

// SetValue satisfies the Promise with a successful value.
func (p *Promise[T]) SetValue(v T) error {
	return p.SetTry(try.NewValue(v))
}

// SetError satisfies the Promise with a failure.
func (p *Promise[T]) SetError(err error) error {
	return p.SetTry(try.NewError[T](err))
}

// OnInterrupt registers h as the handler invoked if the Future side
// calls [Future.Raise] before this Promise is satisfied. If an interrupt
// has already arrived, h runs immediately.
func (p *Promise[T]) OnInterrupt(h func(error)) {
	p.core.SetInterruptHandler(h)
}

// Close releases this Promise's attach unit on the underlying Core. If
// the Promise was never satisfied, the paired Future resolves to
// ErrBrokenPromise as a side effect. Idempotent.
func (p *Promise[T]) Close() {
	p.closed.Store(true)
	runtime.SetFinalizer(p, nil)
	p.satisfied.Store(true)
	p.guard.Close()
}
