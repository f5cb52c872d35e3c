// Package fsm implements an atomic state cell with guarded,
// CAS-like transitions that run an action under the lock plus an
// optional second action after the lock is released.
//
// It generalizes the state-machine pattern the eventloop package uses
// for its LoopState/FastState pair to an arbitrary integer-backed
// state enum, so it can be reused for core.Core's five-state FSM.
package fsm

import (
	"sync/atomic"

	"github.com/joeycumines/futurecore/internal/spinlock"
)

// FSM is an atomic state cell of type S, guarded by an internal
// spinlock for the (rare) transition path. Reads never take the lock.
//
// Zero value starts in the zero value of S; use New to start
// elsewhere.
type FSM[S ~int32] struct {
	lock  spinlock.SpinLock
	state atomic.Int32
}

// New returns an FSM initialized to start.
func New[S ~int32](start S) *FSM[S] {
	f := &FSM[S]{}
	f.state.Store(int32(start))
	return f
}

// Load returns the current state with acquire semantics, taking no
// lock.
func (f *FSM[S]) Load() S {
	return S(f.state.Load())
}

// UpdateState attempts to transition from old to new. If the
// currently observed state is not old, it returns false without
// running protected. Otherwise protected runs while the lock is held,
// the new state is stored, the lock is released, and true is
// returned.
//
// protected may be nil.
func (f *FSM[S]) UpdateState(old, new S, protected func()) bool {
	return f.UpdateState2(old, new, protected, nil)
}

// UpdateState2 is UpdateState, plus an additional action "after" that
// runs once the lock has been released, but only if the transition
// happened. This is how core.Core runs a callback dispatch (which must
// never happen while a spinlock is held) immediately following the
// state bump that authorizes it.
//
// Both protected and after may be nil.
func (f *FSM[S]) UpdateState2(old, new S, protected func(), after func()) bool {
	f.lock.Lock()
	if S(f.state.Load()) != old {
		f.lock.Unlock()
		return false
	}
	if protected != nil {
		protected()
	}
	f.state.Store(int32(new))
	f.lock.Unlock()
	if after != nil {
		after()
	}
	return true
}
