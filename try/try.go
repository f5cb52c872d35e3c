// Package try provides Try[T], a tagged union carrying either a
// success value, a failure, or nothing at all — the opaque result
// type core.Core hands off between a Promise and a Future.
package try

import "errors"

// ErrEmpty is returned by [Try.Value] and [Try.Err] when the Try was
// never populated with either a value or an error.
var ErrEmpty = errors.New("try: uninitialized Try")

// ErrHasValue is returned by [Try.Err] when called on a Try holding a
// success value rather than an error.
var ErrHasValue = errors.New("try: Err called on a Try holding a value")

// kind distinguishes the three states a Try can be in.
type kind uint8

const (
	kindEmpty kind = iota
	kindValue
	kindError
)

// Try is a tagged union of {Value(T), Error(error), Empty}. The zero
// value is Empty.
type Try[T any] struct {
	kind  kind
	value T
	err   error
}

// New returns an Empty Try.
func New[T any]() Try[T] {
	return Try[T]{}
}

// NewValue returns a Try holding a success value.
func NewValue[T any](v T) Try[T] {
	return Try[T]{kind: kindValue, value: v}
}

// NewError returns a Try holding a failure.
func NewError[T any](err error) Try[T] {
	return Try[T]{kind: kindError, err: err}
}

// HasValue reports whether the Try holds a success value.
func (t Try[T]) HasValue() bool { return t.kind == kindValue }

// HasError reports whether the Try holds a failure.
func (t Try[T]) HasError() bool { return t.kind == kindError }

// Value extracts the success value. If the Try holds an error, that
// error is returned. If the Try is Empty, [ErrEmpty] is returned.
func (t Try[T]) Value() (T, error) {
	switch t.kind {
	case kindValue:
		return t.value, nil
	case kindError:
		var zero T
		return zero, t.err
	default:
		var zero T
		return zero, ErrEmpty
	}
}

// Err extracts the failure. Calling Err on a Try holding a value
// returns [ErrHasValue]; calling it on an Empty Try returns
// [ErrEmpty]. This mirrors the original get_error, which likewise
// synthesizes a distinct error for each non-error case rather than
// collapsing them into one.
func (t Try[T]) Err() error {
	switch t.kind {
	case kindError:
		return t.err
	case kindValue:
		return ErrHasValue
	default:
		return ErrEmpty
	}
}
