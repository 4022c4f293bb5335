package decode

import (
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/validation"
)

// Result holds either the decoded value or the validation failure, never
// both. Build it with Ok or Err.
type Result[T any] struct {
	value   T
	failure validation.Failure
	ok      bool
}

// Ok wraps a successfully decoded value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Err wraps a validation failure. An empty failure cannot describe a
// rejection and panics with an InvariantError.
func Err[T any](failure validation.Failure) Result[T] {
	if len(failure) == 0 {
		panic(&formstate.InvariantError{Reason: "decode error result without issues"})
	}
	return Result[T]{failure: failure}
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool {
	return r.ok
}

// Value returns the decoded value when the result is Ok.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.ok
}

// Failure returns the validation failure when the result is Err.
func (r Result[T]) Failure() (validation.Failure, bool) {
	if r.ok {
		return nil, false
	}
	return r.failure, true
}

// Unwrap returns the pair form: the value, or the failure as an error.
func (r Result[T]) Unwrap() (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, r.failure
}
