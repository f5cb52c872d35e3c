package futurecore

import (
	"context"

	"github.com/joeycumines/futurecore/try"
)

// Then chains a continuation onto f: once f settles, fn runs with the
// settled Try[T] and the Future it returns becomes the source for the
// returned Future's result. An error result on f is forwarded to the
// chained Future directly, without invoking fn. If fn itself returns a
// non-nil error instead of a Future, that error becomes the chained
// Future's result.
//
// Then consumes f: it installs a callback on f's Core, so f must not
// also be passed to Get, and f should not be Closed by the caller
// afterward (ownership of its attach unit transfers to the chain).
// The chained Future inherits f's executor, and an interrupt raised on
// the chained Future flows upstream to f's producer.
func Then[T, U any](f *Future[T], fn func(try.Try[T]) (*Future[U], error)) *Future[U] {
	p := NewPromise[U]()
	child, _ := p.GetFuture()
	child.SetExecutor(f.GetExecutor())
	child.core.SetInterruptHandler(f.core.Raise)

	f.core.SetCallback(context.Background(), func(t try.Try[T]) {
		if t.HasError() {
			settle(p, try.NewError[U](t.Err()))
			return
		}
		next, err := fn(t)
		if err != nil {
			settle(p, try.NewError[U](err))
			return
		}
		forward(next, p)
	})

	return child
}

// ThenValue is Then's simpler sibling for continuations that cannot
// fail on their own terms: fn's returned value becomes the chained
// Future's value directly, with no intervening Promise rejection path.
// Unlike Then, fn always runs, including on an error result — the
// settled Try is fn's to inspect.
func ThenValue[T, U any](f *Future[T], fn func(try.Try[T]) U) *Future[U] {
	p := NewPromise[U]()
	child, _ := p.GetFuture()
	child.SetExecutor(f.GetExecutor())
	child.core.SetInterruptHandler(f.core.Raise)

	f.core.SetCallback(context.Background(), func(t try.Try[T]) {
		settle(p, try.NewValue(fn(t)))
	})

	return child
}

// forward wires src's eventual result into p, consuming src.
func forward[U any](src *Future[U], p *Promise[U]) {
	src.core.SetCallback(context.Background(), func(u try.Try[U]) {
		settle(p, u)
	})
}

// settle satisfies p and releases its attach unit; the chain holds no
// further interest in the promise side once the result is in.
func settle[U any](p *Promise[U], t try.Try[U]) {
	_ = p.SetTry(t)
	p.Close()
}
