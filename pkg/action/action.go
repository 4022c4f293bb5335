package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/formstate"
)

var (
	// ErrPersisterMissing is returned by New when no persister is supplied.
	ErrPersisterMissing = errors.New("action: persister is required")
	// ErrInvalidatorMissing is returned by New when tags are configured but
	// nothing can invalidate them.
	ErrInvalidatorMissing = errors.New("action: tags configured without an invalidator")
	// ErrSuccessMessageType is returned by New when WithSuccessMessageFunc
	// was instantiated with a type other than the action's value type.
	ErrSuccessMessageType = errors.New("action: success message func does not match the action value type")
)

// Handler is a form submission handler. The returned error is reserved for
// fatal conditions; every outcome a user should see is a State.
type Handler interface {
	Submit(ctx context.Context, previous formstate.State, fields decode.Fields) (formstate.State, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, previous formstate.State, fields decode.Fields) (formstate.State, error)

func (f HandlerFunc) Submit(ctx context.Context, previous formstate.State, fields decode.Fields) (formstate.State, error) {
	return f(ctx, previous, fields)
}

// Persister performs the side effect of a submission with the decoded value.
// Returning a validation.Failure reports field level rejections.
type Persister[T any] interface {
	Execute(ctx context.Context, value T) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc[T any] func(ctx context.Context, value T) error

func (f PersisterFunc[T]) Execute(ctx context.Context, value T) error {
	return f(ctx, value)
}

// Invalidator drops cached artefacts carrying a tag.
type Invalidator interface {
	Invalidate(ctx context.Context, tag string)
}

// InvalidatorFunc adapts a function to Invalidator.
type InvalidatorFunc func(ctx context.Context, tag string)

func (f InvalidatorFunc) Invalidate(ctx context.Context, tag string) {
	f(ctx, tag)
}

// PersistenceError wraps a persister failure with the action that hit it. It
// is logged and never returned to callers.
type PersistenceError struct {
	Action string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("action: %s: persist: %v", e.Action, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
