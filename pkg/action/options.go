package action

import (
	"strings"

	"github.com/inconshreveable/log15"

	"github.com/goliatone/go-formaction/pkg/decode"
)

const (
	// DefaultSuccessMessage is used when no success message is configured.
	DefaultSuccessMessage = "Success"
	// DefaultFailureMessage is reported under the form level key when the
	// persister fails.
	DefaultFailureMessage = "Something went wrong. Please try again."
)

// Option configures an Action.
type Option func(*settings)

type settings struct {
	name           string
	tags           []string
	invalidator    Invalidator
	successMessage func(any) string
	successAccepts func(any) bool
	failureMessage string
	logger         log15.Logger
	decodeOptions  []decode.Option
	resolver       decode.MessageResolver
}

// WithName sets the name used in logs. Defaults to the schema name.
func WithName(name string) Option {
	return func(s *settings) {
		if name = strings.TrimSpace(name); name != "" {
			s.name = name
		}
	}
}

// WithTags lists the cache tags invalidated, in order, after a successful
// side effect.
func WithTags(tags ...string) Option {
	return func(s *settings) {
		for _, tag := range tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				s.tags = append(s.tags, tag)
			}
		}
	}
}

// WithInvalidator sets the collaborator that invalidates tags.
func WithInvalidator(inv Invalidator) Option {
	return func(s *settings) {
		s.invalidator = inv
	}
}

// WithSuccessMessage sets a fixed success message.
func WithSuccessMessage(message string) Option {
	return func(s *settings) {
		s.successMessage = func(any) string { return message }
		s.successAccepts = nil
	}
}

// WithSuccessMessageFunc derives the success message from the decoded value.
// New fails with ErrSuccessMessageType unless T is the action's value type.
func WithSuccessMessageFunc[T any](fn func(T) string) Option {
	return func(s *settings) {
		if fn == nil {
			return
		}
		s.successMessage = func(v any) string {
			typed, _ := v.(T)
			return fn(typed)
		}
		s.successAccepts = func(ptr any) bool {
			_, ok := ptr.(*T)
			return ok
		}
	}
}

// WithFailureMessage sets the generic message shown when the persister fails.
func WithFailureMessage(message string) Option {
	return func(s *settings) {
		if message = strings.TrimSpace(message); message != "" {
			s.failureMessage = message
		}
	}
}

// WithLogger sets the logger. Persister failures are logged at error level.
func WithLogger(logger log15.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDecodeOptions forwards options to decode.Decode.
func WithDecodeOptions(opts ...decode.Option) Option {
	return func(s *settings) {
		s.decodeOptions = append(s.decodeOptions, opts...)
	}
}

// WithMessageResolver resolves every user facing message through r: decode
// issues, persister rejections, and the success and failure messages.
func WithMessageResolver(r decode.MessageResolver) Option {
	return func(s *settings) {
		if r == nil {
			return
		}
		s.resolver = r
		s.decodeOptions = append(s.decodeOptions, decode.WithMessageResolver(r))
	}
}
