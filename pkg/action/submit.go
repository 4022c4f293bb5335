package action

import (
	"context"
	"errors"

	"github.com/inconshreveable/log15"

	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/schema"
	"github.com/goliatone/go-formaction/pkg/validation"
)

// Action decodes a submission against a schema, persists the decoded value
// and reports the outcome as a State. It holds no mutable state and is safe
// for concurrent use when its collaborators are.
type Action[T any] struct {
	name           string
	schema         *schema.Schema
	persist        Persister[T]
	tags           []string
	invalidator    Invalidator
	successMessage func(any) string
	failureMessage string
	logger         log15.Logger
	decodeOptions  []decode.Option
	resolver       decode.MessageResolver
}

var _ Handler = (*Action[struct{}])(nil)

// New wires an Action. A nil schema fails with decode.ErrSchemaMissing so the
// mistake surfaces at startup rather than on the first submission.
func New[T any](s *schema.Schema, persist Persister[T], opts ...Option) (*Action[T], error) {
	if s == nil {
		return nil, decode.ErrSchemaMissing
	}
	if persist == nil {
		return nil, ErrPersisterMissing
	}
	if err := s.Prepare(); err != nil {
		return nil, err
	}

	cfg := settings{
		name:           s.Name,
		failureMessage: DefaultFailureMessage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(cfg.tags) > 0 && cfg.invalidator == nil {
		return nil, ErrInvalidatorMissing
	}
	if cfg.successAccepts != nil && !cfg.successAccepts((*T)(nil)) {
		return nil, ErrSuccessMessageType
	}
	if cfg.successMessage == nil {
		cfg.successMessage = func(any) string { return DefaultSuccessMessage }
	}
	if cfg.logger == nil {
		cfg.logger = log15.New("module", "action")
	}

	return &Action[T]{
		name:           cfg.name,
		schema:         s,
		persist:        persist,
		tags:           append([]string(nil), cfg.tags...),
		invalidator:    cfg.invalidator,
		successMessage: cfg.successMessage,
		failureMessage: cfg.failureMessage,
		logger:         cfg.logger.New("action", cfg.name),
		decodeOptions:  cfg.decodeOptions,
		resolver:       cfg.resolver,
	}, nil
}

// Name returns the action name used in logs.
func (a *Action[T]) Name() string {
	return a.name
}

// Schema returns the schema submissions are decoded against.
func (a *Action[T]) Schema() *schema.Schema {
	return a.schema
}

// Tags returns the tags invalidated after a successful submission.
func (a *Action[T]) Tags() []string {
	return append([]string(nil), a.tags...)
}

// Submit runs one submission. previous is returned untouched, together with
// the context error, when ctx is cancelled before an outcome is known.
func (a *Action[T]) Submit(ctx context.Context, previous formstate.State, fields decode.Fields) (formstate.State, error) {
	if err := ctx.Err(); err != nil {
		return previous, err
	}

	result, err := decode.Decode[T](fields, a.schema, a.decodeOptions...)
	if err != nil {
		return previous, err
	}

	value, ok := result.Value()
	if !ok {
		failure, _ := result.Failure()
		a.logger.Debug("submission rejected", "paths", failure.Paths())
		return a.checked(formstate.FailState(validation.Project(failure)))
	}

	if err := a.persist.Execute(ctx, value); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return previous, ctxErr
		}
		if failure, ok := asFailure(err); ok {
			a.logger.Debug("submission rejected by persister", "paths", failure.Paths())
			return a.checked(formstate.FailState(validation.Project(a.resolveAll(failure))))
		}
		a.logger.Error("submission failed", "err", &PersistenceError{Action: a.name, Err: err})
		return a.checked(formstate.FailState(formstate.Errors{formstate.FormLevelKey: a.resolve(a.failureMessage)}))
	}

	for _, tag := range a.tags {
		a.invalidator.Invalidate(ctx, tag)
	}
	a.logger.Info("submission succeeded", "tags", len(a.tags))
	return a.checked(formstate.SuccessState(a.resolve(a.successMessage(value))))
}

func (a *Action[T]) checked(state formstate.State) (formstate.State, error) {
	if err := formstate.Validate(state); err != nil {
		return nil, err
	}
	return state, nil
}

func (a *Action[T]) resolve(message string) string {
	if a.resolver == nil {
		return message
	}
	return a.resolver.Resolve(message)
}

func (a *Action[T]) resolveAll(failure validation.Failure) validation.Failure {
	if a.resolver == nil {
		return failure
	}
	out := make(validation.Failure, len(failure))
	for i, issue := range failure {
		out[i] = validation.Issue{Path: issue.Path, Message: a.resolver.Resolve(issue.Message)}
	}
	return out
}

func asFailure(err error) (validation.Failure, bool) {
	var failure validation.Failure
	if errors.As(err, &failure) && len(failure) > 0 {
		return failure, true
	}
	var ptr *validation.Failure
	if errors.As(err, &ptr) && ptr != nil && len(*ptr) > 0 {
		return *ptr, true
	}
	return nil, false
}
