package prompt

import (
	"context"
	"io"

	"github.com/goliatone/go-formaction/pkg/action"
	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/schema"
)

// Session drives a form in the terminal: collect, submit, print, and ask
// again while the submission fails.
type Session struct {
	Driver  PromptDriver
	Handler action.Handler
	Schema  *schema.Schema
	Out     io.Writer
	// Theme defaults to DefaultTheme.
	Theme Theme
	// Attempts caps the number of submissions. Zero means one attempt.
	Attempts int
}

// Run returns the last state produced by the handler. The previous state of
// each submission is the outcome of the one before it.
func (s Session) Run(ctx context.Context) (formstate.State, error) {
	attempts := s.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	theme := s.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme
	}

	state := formstate.DefaultState()
	var last decode.Fields
	for i := 0; i < attempts; i++ {
		opts := []CollectOption{WithDefaults(last)}
		if fail, ok := state.(formstate.Fail); ok {
			opts = append(opts, WithFieldErrors(fail.Errors))
		}
		fields, err := Collect(ctx, s.Driver, s.Schema, opts...)
		if err != nil {
			return state, err
		}

		next, err := s.Handler.Submit(ctx, state, fields)
		if err != nil {
			return state, err
		}
		state, last = next, fields

		if err := theme.Print(s.Out, state); err != nil {
			return state, err
		}
		if state.Tag() != formstate.TagFail {
			break
		}
	}
	return state, nil
}
