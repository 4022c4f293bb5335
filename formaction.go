// Package formaction turns form submissions into one of three outcomes:
// nothing submitted yet, success with a message, or failure with messages
// keyed by field path. The subpackages hold the pieces; this package
// re-exports the types most callers need and offers constructors that wire
// them together.
package formaction

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formaction/pkg/action"
	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/schema"
)

// State is the outcome of a submission.
type State = formstate.State

// Errors maps field paths to messages. The empty path holds the form level
// message.
type Errors = formstate.Errors

// Fields is a raw submission in wire order.
type Fields = decode.Fields

// Schema declares the fields a form accepts.
type Schema = schema.Schema

// Handler submits fields and returns the next state.
type Handler = action.Handler

// Option configures an action.
type Option = action.Option

// Default returns the state of a form nothing was submitted to.
func Default() State {
	return formstate.DefaultState()
}

// Success returns a success state carrying message.
func Success(message string) State {
	return formstate.SuccessState(message)
}

// Fail returns a fail state carrying errs.
func Fail(errs Errors) State {
	return formstate.FailState(errs)
}

// LoadSchemas parses every JSON or YAML schema document in fsys.
func LoadSchemas(fsys fs.FS) (*schema.Store, error) {
	return schema.LoadFS(fsys)
}

// NewAction wires s and persist into a submission handler. persist receives
// the decoded value only when the submission validates.
func NewAction[T any](s *Schema, persist func(ctx context.Context, in T) error, opts ...Option) (*action.Action[T], error) {
	var p action.Persister[T]
	if persist != nil {
		p = action.PersisterFunc[T](persist)
	}
	return action.New[T](s, p, opts...)
}
