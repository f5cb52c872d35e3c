package futurecore

import (
	"errors"
	"testing"

	"github.com/joeycumines/futurecore/try"
)

func mustValue[T any](t *testing.T, tr try.Try[T]) T {
	t.Helper()
	v, err := tr.Value()
	if err != nil {
		t.Fatalf("Try carried error %v, want a value", err)
	}
	return v
}

// TestThenValueFulfilledFirst chains onto a Promise satisfied before
// its Future was even retrieved.
func TestThenValueFulfilledFirst(t *testing.T) {
	p := NewPromise[int]()
	defer p.Close()
	if err := p.SetTry(try.NewValue(1)); err != nil {
		t.Fatalf("SetTry failed: %v", err)
	}
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	chained := ThenValue(f, func(tr try.Try[int]) int {
		return mustValue(t, tr) + 1
	})
	defer chained.Close()

	v, err := chained.Value()
	if err != nil || v != 2 {
		t.Fatalf("chained Value() = (%d, %v), want (2, nil)", v, err)
	}
}

// TestThenValueCallbackFirst installs the continuation before the
// Promise is satisfied.
func TestThenValueCallbackFirst(t *testing.T) {
	p := NewPromise[int]()
	defer p.Close()
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	chained := ThenValue(f, func(tr try.Try[int]) int {
		return mustValue(t, tr) * 3
	})
	defer chained.Close()

	if _, err := chained.Value(); !errors.Is(err, ErrFutureNotReady) {
		t.Fatalf("chained Value() before satisfaction = %v, want ErrFutureNotReady", err)
	}

	if err := p.SetTry(try.NewValue(4)); err != nil {
		t.Fatalf("SetTry failed: %v", err)
	}

	v, err := chained.Value()
	if err != nil || v != 12 {
		t.Fatalf("chained Value() = (%d, %v), want (12, nil)", v, err)
	}
}

func TestThenChainsThroughIntermediateFuture(t *testing.T) {
	p := NewPromise[int]()
	defer p.Close()
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	chained := Then(f, func(tr try.Try[int]) (*Future[string], error) {
		if mustValue(t, tr) != 5 {
			return nil, errors.New("unexpected input")
		}
		return NewFuture("five"), nil
	})
	defer chained.Close()

	if err := p.SetValue(5); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	v, err := chained.Value()
	if err != nil || v != "five" {
		t.Fatalf("chained Value() = (%q, %v), want (\"five\", nil)", v, err)
	}
}

// TestThenForwardsErrorWithoutInvokingContinuation: an error result on
// the source bypasses fn entirely.
func TestThenForwardsErrorWithoutInvokingContinuation(t *testing.T) {
	errBoom := errors.New("boom")
	p := NewPromise[int]()
	defer p.Close()
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	invoked := false
	chained := Then(f, func(try.Try[int]) (*Future[string], error) {
		invoked = true
		return NewFuture("unreachable"), nil
	})
	defer chained.Close()

	if err := p.SetError(errBoom); err != nil {
		t.Fatalf("SetError failed: %v", err)
	}

	if invoked {
		t.Fatal("continuation ran despite an error result")
	}
	if _, err := chained.Value(); !errors.Is(err, errBoom) {
		t.Fatalf("chained Value() error = %v, want %v", err, errBoom)
	}
}

func TestThenContinuationErrorBecomesResult(t *testing.T) {
	errReject := errors.New("rejected by continuation")
	p := NewPromise[int]()
	defer p.Close()
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	chained := Then(f, func(try.Try[int]) (*Future[string], error) {
		return nil, errReject
	})
	defer chained.Close()

	if err := p.SetValue(1); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if _, err := chained.Value(); !errors.Is(err, errReject) {
		t.Fatalf("chained Value() error = %v, want %v", err, errReject)
	}
}

func TestThenValueObservesErrorTry(t *testing.T) {
	errBoom := errors.New("boom")
	p := NewPromise[int]()
	defer p.Close()
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	// Unlike Then, ThenValue hands the settled Try to fn even on error.
	chained := ThenValue(f, func(tr try.Try[int]) bool {
		return tr.HasError()
	})
	defer chained.Close()

	if err := p.SetError(errBoom); err != nil {
		t.Fatalf("SetError failed: %v", err)
	}

	v, err := chained.Value()
	if err != nil || v != true {
		t.Fatalf("chained Value() = (%v, %v), want (true, nil)", v, err)
	}
}

func TestThenInheritsExecutor(t *testing.T) {
	p := NewPromise[int]()
	defer p.Close()
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	exec := newRecordingExecutor()
	f.SetExecutor(exec)

	chained := ThenValue(f, func(tr try.Try[int]) int {
		return mustValue(t, tr) + 1
	})
	defer chained.Close()

	if chained.GetExecutor() != exec {
		t.Fatal("chained Future did not inherit the source's executor")
	}

	if err := p.SetValue(1); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if exec.count() == 0 {
		t.Fatal("no dispatch went through the inherited executor")
	}

	v, err := chained.Value()
	if err != nil || v != 2 {
		t.Fatalf("chained Value() = (%d, %v), want (2, nil)", v, err)
	}
}

// TestThenPropagatesInterruptUpstream: raising on the chained Future
// reaches the original producer's interrupt handler.
func TestThenPropagatesInterruptUpstream(t *testing.T) {
	p := NewPromise[int]()
	defer p.Close()
	f, err := p.GetFuture()
	if err != nil {
		t.Fatalf("GetFuture failed: %v", err)
	}

	var got error
	p.OnInterrupt(func(err error) { got = err })

	chained := ThenValue(f, func(tr try.Try[int]) int {
		v, _ := tr.Value()
		return v
	})
	defer chained.Close()

	errCancel := errors.New("consumer gave up")
	chained.Raise(errCancel)

	if !errors.Is(got, errCancel) {
		t.Fatalf("upstream handler observed %v, want %v", got, errCancel)
	}
}
