// Package guard provides a scoped release-on-exit helper, used to
// guarantee cleanup runs on both normal return and panic unwind.
package guard

import "sync/atomic"

// Guard runs a cleanup function exactly once, on Close. Intended to be
// paired with defer so the cleanup fires on every exit path, including
// a panicking one.
type Guard struct {
	fired atomic.Bool
	fn    func()
}

// New returns a Guard wrapping fn. fn is not invoked until Close.
func New(fn func()) *Guard {
	return &Guard{fn: fn}
}

// Close invokes the wrapped function if it has not already run.
// Safe to call more than once or from a deferred panic-recovery path;
// only the first call has effect.
func (g *Guard) Close() {
	if g.fired.CompareAndSwap(false, true) {
		g.fn()
	}
}
