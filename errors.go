package futurecore

import (
	"errors"
	"fmt"

	"github.com/joeycumines/futurecore/core"
)

// Sentinel errors surfaced to callers of Future/Promise. These are
// recoverable misuse signals, distinct from the fatal logic-error
// panics core.Core raises when an internal invariant (e.g. "result
// written exactly once") is violated — see the package doc for the
// taxonomy.
var (
	// ErrNoState is returned by any Future or Promise method called
	// after the handle has already been Closed.
	ErrNoState = errors.New("futurecore: no state (handle already closed)")

	// ErrPromiseAlreadyRetrieved is returned by a second call to
	// Promise.GetFuture.
	ErrPromiseAlreadyRetrieved = errors.New("futurecore: promise already retrieved")

	// ErrPromiseAlreadySatisfied is returned by SetTry/SetError on a
	// Promise that has already been satisfied.
	ErrPromiseAlreadySatisfied = errors.New("futurecore: promise already satisfied")

	// ErrFutureNotReady is returned by Future.Value when the Future
	// has not yet settled.
	ErrFutureNotReady = errors.New("futurecore: future not ready")

	// ErrBrokenPromise is returned as a Future's result when its
	// Promise was closed without ever being satisfied.
	ErrBrokenPromise = core.ErrBrokenPromise
)

// wrapf is a small convenience mirroring the teacher's WrapError
// helper: attach context to a sentinel without losing errors.Is/As
// compatibility.
func wrapf(format string, sentinel error, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}
