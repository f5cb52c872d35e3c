// Package spinlock provides a tiny mutual-exclusion primitive intended
// for sub-microsecond critical sections, such as the state, interrupt,
// and executor-binding locks inside core.Core.
package spinlock

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
)

// maxActiveSpin bounds how long Lock busy-spins before falling back to
// sleeping. Matches the original MicroSpinLock's MAX_ACTIVE_SPIN.
const maxActiveSpin = 4000

// sleepQuantum is how long Lock sleeps once it gives up spinning,
// mirroring the 500us nanosleep the original Sleeper used.
const sleepQuantum = 500 * time.Microsecond

// SpinLock is a single-word lock, safe to embed by value. It is cheap
// in the uncontended case (one CAS) and is never meant to guard
// anything heavier than a handful of field writes.
//
// Zero value is unlocked and ready to use.
type SpinLock struct {
	_      cpu.CacheLinePad
	locked atomic.Bool
	_      cpu.CacheLinePad
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if it was acquired.
func (s *SpinLock) TryLock() bool {
	return s.locked.CompareAndSwap(false, true)
}

// Lock acquires the lock, spinning with a CPU relax hint for up to
// maxActiveSpin iterations before falling back to sleeping for
// sleepQuantum per attempt.
func (s *SpinLock) Lock() {
	if s.TryLock() {
		return
	}
	spins := 0
	for !s.TryLock() {
		if spins < maxActiveSpin {
			spins++
			runtime.Gosched()
			continue
		}
		time.Sleep(sleepQuantum)
	}
}

// Unlock releases the lock. Unlocking an already-unlocked SpinLock is a
// programmer error and panics, matching the original's debug assertion.
func (s *SpinLock) Unlock() {
	if !s.locked.CompareAndSwap(true, false) {
		panic("spinlock: unlock of unlocked lock")
	}
}
