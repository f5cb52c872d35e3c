// Package futurecore implements a future/promise concurrency
// primitive: [Promise] produces a single result, [Future] consumes it,
// and continuations can be chained ([Then], [ThenValue])
// and dispatched through a pluggable [github.com/joeycumines/futurecore/executor.Executor].
//
// The hard part — a lock-protected, mostly lock-free finite state
// machine coordinating result arrival, callback registration, and
// consumer activation, plus an interrupt side-channel from consumer to
// producer — lives in [github.com/joeycumines/futurecore/core]. Future
// and Promise are thin handles managing that Core's lifetime.
//
// # Error taxonomy
//
// Two kinds of error surface from this package:
//
//   - Surfaced errors (ErrNoState, ErrPromiseAlreadyRetrieved,
//     ErrPromiseAlreadySatisfied, ErrFutureNotReady): recoverable
//     misuse of the handles, returned as ordinary Go errors.
//   - Fatal logic errors: contract violations internal to the Core
//     (a second SetResult, a second SetCallback, GetTry on a Core with
//     no result) panic, because the broken invariant cannot be
//     recovered from. See [github.com/joeycumines/futurecore/core] for
//     where these originate.
package futurecore

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/futurecore/core"
	"github.com/joeycumines/futurecore/executor"
	"github.com/joeycumines/futurecore/internal/guard"
	"github.com/joeycumines/futurecore/try"
)

// Future is the consuming side of a Promise/Future pair. A Future
// either comes from [Promise.GetFuture] or is constructed directly
// from an already-known value/error via [NewFuture]/[NewFutureError].
//
// A Future must be closed exactly once, via [Future.Close], once the
// caller is done with it — this runs the Core's detach-on-drop
// contract. A finalizer is registered as a safety net for callers that
// forget, but relying on it delays cleanup until the next GC cycle, so
// calling Close explicitly is strongly preferred.
type Future[T any] struct {
	core   *core.Core[T]
	guard  *guard.Guard
	once   sync.Once
	cached try.Try[T]
	closed atomic.Bool
}

// NewFuture returns an already-resolved Future wrapping v.
func NewFuture[T any](v T) *Future[T] {
	return newFutureFromTry(try.NewValue(v))
}

// NewFutureError returns an already-rejected Future wrapping err.
func NewFutureError[T any](err error) *Future[T] {
	return newFutureFromTry(try.NewError[T](err))
}

func newFutureFromTry[T any](t try.Try[T]) *Future[T] {
	return newFutureFromCore(core.NewReady(t))
}

func newFutureFromCore[T any](c *core.Core[T]) *Future[T] {
	f := &Future[T]{core: c}
	f.guard = guard.New(c.DetachFuture)
	runtime.SetFinalizer(f, (*Future[T]).Close)
	return f
}

// Close detaches the Future from its Core, per the Future-side drop
// contract: force the Core active (so a pending dispatch still fires)
// then release this handle's attach unit. Idempotent; safe to call
// more than once.
func (f *Future[T]) Close() {
	f.closed.Store(true)
	runtime.SetFinalizer(f, nil)
	f.guard.Close()
}

// Value returns the Future's result if it has settled, or
// [ErrFutureNotReady] otherwise. Does not block — use [Future.Get] to
// wait. The first call consumes the Core's result slot; subsequent
// calls return the cached value, so Value is safe to call repeatedly.
func (f *Future[T]) Value() (T, error) {
	var zero T
	if f.closed.Load() {
		return zero, ErrNoState
	}
	if !f.core.Ready() {
		return zero, ErrFutureNotReady
	}
	f.once.Do(func() {
		f.cached = f.core.GetTry()
	})
	return f.cached.Value()
}

// Get blocks until the Future settles or ctx is done, whichever comes
// first. Unlike Value, Get installs a callback on the Core, so it must
// not be combined with Then/ThenValue on the same Future.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if f.closed.Load() {
		return zero, ErrNoState
	}
	result := make(chan try.Try[T], 1)
	f.core.SetCallback(ctx, func(t try.Try[T]) { result <- t })
	select {
	case t := <-result:
		return t.Value()
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Raise delivers an interrupt (cancellation-like signal) upstream to
// the Promise side, which observes it via [Promise.OnInterrupt]. Best
// effort: the signal is dropped if the Promise has already produced a
// result, and a second Raise on the same Future has no effect.
func (f *Future[T]) Raise(err error) { f.core.Raise(err) }

// GetExecutor returns the executor currently bound to this Future's
// Core, or nil.
func (f *Future[T]) GetExecutor() executor.Executor { return f.core.GetExecutor() }

// SetExecutor binds e as the executor continuations dispatch through.
func (f *Future[T]) SetExecutor(e executor.Executor) { f.core.SetExecutor(e, -1) }

// Then and ThenValue, which chain a continuation producing a
// differently-typed result, are package-level functions rather than
// methods: Go methods cannot introduce additional type parameters
// beyond the receiver's. See then.go.
