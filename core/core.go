// Package core implements the shared state machine at the heart of
// futurecore: a single-shot rendezvous between a result producer and a
// result consumer, with the result+callback handoff dispatched through
// a pluggable executor, and an upstream interrupt side-channel.
//
// Core is the hard part of futurecore; Future and Promise (see the
// root package) are thin refcounted handles over it.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/futurecore/executor"
	"github.com/joeycumines/futurecore/internal/fsm"
	"github.com/joeycumines/futurecore/internal/guard"
	"github.com/joeycumines/futurecore/internal/spinlock"
	"github.com/joeycumines/futurecore/try"
)

// ErrBrokenPromise is the error a Core synthesizes as its result when
// a Promise is dropped without ever being satisfied.
var ErrBrokenPromise = errors.New("futurecore: broken promise")

// state is Core's five-value FSM, in the order described by spec.md
// §4.G: Start -> {OnlyResult, OnlyCallback} -> Armed -> Done.
type state int32

const (
	stateStart state = iota
	stateOnlyResult
	stateOnlyCallback
	stateArmed
	stateDone
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "Start"
	case stateOnlyResult:
		return "OnlyResult"
	case stateOnlyCallback:
		return "OnlyCallback"
	case stateArmed:
		return "Armed"
	case stateDone:
		return "Done"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Core is the shared state machine co-owned by at most one Future and
// one Promise handle. All exported methods are safe to call from any
// goroutine; see spec.md §5 for the intended Future-thread/
// Promise-thread split.
type Core[T any] struct {
	fsm *fsm.FSM[state]

	// callback and result are written exactly once under fsm's lock
	// (by set_callback and set_result respectively) and read exactly
	// once, unprotected, by do_callback after the Armed->Done
	// transition has committed under that same lock — the lock
	// release/acquire pair is what makes the unprotected read safe.
	callback func(try.Try[T])
	result   try.Try[T]

	attach atomic.Int32
	active atomic.Bool

	executorLock spinlock.SpinLock
	executor     executor.Executor
	priority     int

	ctx context.Context

	interruptLock       spinlock.SpinLock
	interrupt           error
	interruptHandler    func(error)
	interruptHandlerSet atomic.Bool

	logger Logger
}

// New creates an empty Core with attach count 2 (one for the Promise
// that constructs it, one for the Future it will yield) and state
// Start.
func New[T any](opts ...Option) *Core[T] {
	cfg := resolveOptions(opts)
	c := &Core[T]{
		fsm:    fsm.New(stateStart),
		logger: cfg.logger,
	}
	c.attach.Store(2)
	c.active.Store(true)
	c.executor = cfg.executor
	c.priority = cfg.priority
	return c
}

// NewReady creates a Core pre-populated with t, attach count 1, state
// OnlyResult. This backs Future's immediate-value constructor: there
// is no Promise, so there is only the one attach unit for the Future
// itself.
func NewReady[T any](t try.Try[T], opts ...Option) *Core[T] {
	cfg := resolveOptions(opts)
	c := &Core[T]{
		fsm:    fsm.New(stateOnlyResult),
		result: t,
		logger: cfg.logger,
	}
	c.attach.Store(1)
	c.active.Store(true)
	c.executor = cfg.executor
	c.priority = cfg.priority
	return c
}

// SetCallback installs f as the Core's one-shot consumer of the
// eventual Try[T]. Valid only from Start or OnlyResult; calling it
// again (from OnlyCallback, Armed, or Done) is a fatal logic error,
// since the callback slot may be written exactly once.
//
// ctx is captured as the Core's request-context snapshot and restored
// around f's invocation in do_callback.
func (c *Core[T]) SetCallback(ctx context.Context, f func(try.Try[T])) {
	c.ctx = ctx
	for {
		cur := c.fsm.Load()
		switch cur {
		case stateStart:
			if c.fsm.UpdateState(stateStart, stateOnlyCallback, func() {
				c.callback = f
			}) {
				c.traceTransition("SetCallback", stateStart, stateOnlyCallback)
				return
			}
		case stateOnlyResult:
			armed := c.fsm.UpdateState(stateOnlyResult, stateArmed, func() {
				c.callback = f
			})
			if armed {
				c.traceTransition("SetCallback", stateOnlyResult, stateArmed)
				c.maybeCallback()
				return
			}
		default:
			panic("futurecore: SetCallback called more than once on the same Core")
		}
	}
}

// SetResult installs t as the Core's one-shot result. Valid only from
// Start or OnlyCallback; calling it again is a fatal logic error, for
// the same reason as SetCallback.
func (c *Core[T]) SetResult(t try.Try[T]) {
	for {
		cur := c.fsm.Load()
		switch cur {
		case stateStart:
			if c.fsm.UpdateState(stateStart, stateOnlyResult, func() {
				c.result = t
			}) {
				c.traceTransition("SetResult", stateStart, stateOnlyResult)
				return
			}
		case stateOnlyCallback:
			armed := c.fsm.UpdateState(stateOnlyCallback, stateArmed, func() {
				c.result = t
			})
			if armed {
				c.traceTransition("SetResult", stateOnlyCallback, stateArmed)
				c.maybeCallback()
				return
			}
		default:
			panic("futurecore: SetResult called more than once on the same Core")
		}
	}
}

// maybeCallback dispatches the callback if the Core is Armed and
// active. It is a no-op otherwise — either the Core is missing one of
// its two inputs, already Done, or deactivated (in which case Activate
// will call it again later).
func (c *Core[T]) maybeCallback() {
	if c.fsm.Load() != stateArmed {
		return
	}
	if !c.active.Load() {
		return
	}
	if c.fsm.UpdateState2(stateArmed, stateDone, nil, c.doCallback) {
		c.traceTransition("maybeCallback", stateArmed, stateDone)
	}
}

// traceTransition emits a debug-level trace of a committed FSM
// transition. All call sites gate on IsEnabled via this helper, so the
// default no-op logger costs a single interface call.
func (c *Core[T]) traceTransition(op string, from, to state) {
	if c.logger.IsEnabled(LevelDebug) {
		c.logger.Log(LogEntry{
			Level:   LevelDebug,
			Message: fmt.Sprintf("futurecore: %s: %v -> %v", op, from, to),
		})
	}
}

// doCallback runs the installed callback with the installed result,
// via the bound executor (or inline, if none is bound). It is always
// invoked unprotected by any of Core's locks.
func (c *Core[T]) doCallback() {
	c.executorLock.Lock()
	exec := c.executor
	priority := c.priority
	c.executorLock.Unlock()

	// Keep the Core attached for the duration of the dispatch, even if
	// the executor defers running the callback arbitrarily. The guard
	// travels with the work so the detach happens after the callback,
	// on every exit path including a panicking one.
	c.attach.Add(1)
	g := guard.New(c.DetachOne)

	ctx := c.ctx
	cb := c.callback
	c.callback = nil
	res := c.result
	c.result = try.Try[T]{}

	run := func() {
		defer g.Close()
		defer func() {
			if r := recover(); r != nil {
				if c.logger.IsEnabled(LevelWarn) {
					c.logger.Log(LogEntry{
						Level:   LevelWarn,
						Message: "futurecore: recovered panic from dispatched callback",
						Err:     fmt.Errorf("%v", r),
					})
				}
				panic(r)
			}
		}()
		// Request-context capture/restore is intentionally opaque: the
		// only thing Core itself does with the snapshot is surface
		// that it had already expired by dispatch time.
		if ctx != nil && ctx.Err() != nil && c.logger.IsEnabled(LevelDebug) {
			c.logger.Log(LogEntry{
				Level:   LevelDebug,
				Message: "futurecore: captured context was already done at dispatch time",
				Err:     ctx.Err(),
			})
		}
		cb(res)
	}

	switch {
	case exec == nil:
		run()
	case exec.NumPriorities() > 1:
		if pe, ok := exec.(executor.PriorityExecutor); ok {
			pe.AddWithPriority(run, priority)
		} else {
			exec.Add(run)
		}
	default:
		exec.Add(run)
	}
}

// Raise records an interrupt (cancellation-like signal), unless a
// result is already present (first-writer-wins: a Promise that has
// already finished has nothing to interrupt) or an interrupt has
// already been recorded. If a handler is currently registered, it is
// invoked synchronously, under the interrupt lock.
func (c *Core[T]) Raise(err error) {
	c.interruptLock.Lock()
	defer c.interruptLock.Unlock()
	if c.interrupt != nil {
		return
	}
	if c.HasResult() {
		return
	}
	c.interrupt = err
	if c.interruptHandlerSet.Load() {
		c.interruptHandler(err)
	}
}

// SetInterruptHandler registers h to be called if/when an interrupt is
// raised. If an interrupt has already arrived, h is invoked
// immediately (synchronously, under the interrupt lock) and is not
// stored. If a result is already present, the call is a no-op — there
// is nothing left to interrupt.
func (c *Core[T]) SetInterruptHandler(h func(error)) {
	c.interruptLock.Lock()
	defer c.interruptLock.Unlock()
	if c.HasResult() {
		return
	}
	if c.interrupt != nil {
		h(c.interrupt)
		return
	}
	c.interruptHandler = h
	c.interruptHandlerSet.Store(true)
}

// GetInterruptHandler returns the currently stored interrupt handler,
// or nil if none is set. Read under the interrupt lock.
func (c *Core[T]) GetInterruptHandler() func(error) {
	if !c.interruptHandlerSet.Load() {
		return nil
	}
	c.interruptLock.Lock()
	defer c.interruptLock.Unlock()
	if !c.interruptHandlerSet.Load() {
		return nil
	}
	return c.interruptHandler
}

// SetExecutor binds e (and its priority hint) as the executor the
// Core's callback will eventually be dispatched through.
func (c *Core[T]) SetExecutor(e executor.Executor, priority int) {
	c.executorLock.Lock()
	defer c.executorLock.Unlock()
	c.executor = e
	c.priority = priority
}

// GetExecutor returns the currently bound executor, or nil.
func (c *Core[T]) GetExecutor() executor.Executor {
	c.executorLock.Lock()
	defer c.executorLock.Unlock()
	return c.executor
}

// IsActive reports whether reaching Armed currently triggers dispatch.
func (c *Core[T]) IsActive() bool { return c.active.Load() }

// Deactivate suppresses dispatch on reaching Armed, until a subsequent
// Activate call. Used when a handle is being transferred and a
// pending Armed result should not fire prematurely.
func (c *Core[T]) Deactivate() { c.active.Store(false) }

// Activate re-enables dispatch and runs maybeCallback, so a dispatch
// deferred by an earlier Deactivate completes.
func (c *Core[T]) Activate() {
	c.active.Store(true)
	c.maybeCallback()
}

// HasResult reports whether the result slot is populated: the Core is
// in state OnlyResult, Armed, or Done.
func (c *Core[T]) HasResult() bool {
	switch c.fsm.Load() {
	case stateOnlyResult, stateArmed, stateDone:
		return true
	default:
		return false
	}
}

// Ready is an alias of HasResult.
func (c *Core[T]) Ready() bool { return c.HasResult() }

// GetTry consumes and returns the result slot. Calling it on a Core
// that is not Ready is a fatal logic error.
func (c *Core[T]) GetTry() try.Try[T] {
	if !c.Ready() {
		panic("futurecore: GetTry called on a Core with no result")
	}
	t := c.result
	c.result = try.Try[T]{}
	return t
}

// DetachOne decrements the attach count by one. At zero, the Core's
// remaining state is released; there is nothing further to do in Go
// beyond letting the garbage collector reclaim it, but the decrement
// itself must still happen exactly once per handle so attach reaches
// zero deterministically (observable via testing hooks, and required
// by the spec's "attach count reaches 0 at most once" invariant).
func (c *Core[T]) DetachOne() {
	c.attach.Add(-1)
}

// DetachFuture implements the Future side's drop contract: force
// active true (so a pending Armed dispatches even if the Future had
// deactivated the Core) then DetachOne.
func (c *Core[T]) DetachFuture() {
	c.Activate()
	c.DetachOne()
}

// DetachPromise implements the Promise side's drop contract: if no
// result has been set yet, inject ErrBrokenPromise through the normal
// SetResult path (so any installed callback observes it as a routine
// failure) before DetachOne. The caller must guarantee DetachPromise
// is never run concurrently with SetResult.
func (c *Core[T]) DetachPromise() {
	if !c.HasResult() {
		c.SetResult(try.NewError[T](ErrBrokenPromise))
	}
	c.DetachOne()
}

// AttachCount returns the current attach count, for diagnostics and
// tests. It is not part of the stable contract beyond the invariant
// that it reaches 0 exactly once.
func (c *Core[T]) AttachCount() int32 { return c.attach.Load() }
