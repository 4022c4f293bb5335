package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/schema"
)

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrDriverMissing is returned when no driver is supplied.
	ErrDriverMissing = errors.New("prompt: driver is required")
)

// CollectOption configures Collect.
type CollectOption func(*collectConfig)

type collectConfig struct {
	defaults decode.Fields
	errors   map[string]string
}

// WithDefaults pre-fills prompts with earlier answers. Password prompts are
// never pre-filled.
func WithDefaults(fields decode.Fields) CollectOption {
	return func(c *collectConfig) {
		c.defaults = fields
	}
}

// WithFieldErrors shows the message for a field as prompt help, so a retry
// explains what was wrong with the last answer.
func WithFieldErrors(errs map[string]string) CollectOption {
	return func(c *collectConfig) {
		c.errors = errs
	}
}

// Collect asks one question per schema field, in schema order, and returns
// the answers as submitted fields. Booleans are asked as confirmations, oneOf
// rules become a selection and the password widget hides input.
func Collect(ctx context.Context, driver PromptDriver, s *schema.Schema, opts ...CollectOption) (decode.Fields, error) {
	if s == nil {
		return nil, decode.ErrSchemaMissing
	}
	if driver == nil {
		return nil, ErrDriverMissing
	}
	var cfg collectConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	fields := make(decode.Fields, 0, len(s.Fields))
	for _, field := range s.Fields {
		value, err := ask(ctx, driver, field, cfg)
		if err != nil {
			return nil, fmt.Errorf("prompt: %s: %w", field.Name, err)
		}
		fields = append(fields, decode.Pair{Name: field.Name, Value: value})
	}
	return fields, nil
}

func ask(ctx context.Context, driver PromptDriver, field schema.Field, cfg collectConfig) (string, error) {
	message := field.DisplayName()
	if field.Optional {
		message += " (optional)"
	}
	help := cfg.errors[field.Name]
	current, _ := cfg.defaults.Get(field.Name)

	if field.Type == schema.TypeBool {
		ok, err := driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Help:    help,
			Default: current == "true" || current == "on",
		})
		if err != nil {
			return "", err
		}
		if ok {
			return "true", nil
		}
		return "false", nil
	}

	if options := choices(field); len(options) > 0 {
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, current),
			Help:         help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) {
			return "", fmt.Errorf("selection %d out of range", idx)
		}
		return options[idx], nil
	}

	switch field.Widget {
	case "password":
		return driver.Password(ctx, InputConfig{Message: message, Help: help})
	case "textarea":
		return driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help, Default: current})
	default:
		return driver.Input(ctx, InputConfig{Message: message, Help: help, Default: current})
	}
}

func choices(field schema.Field) []string {
	for _, rule := range field.Rules {
		if rule.Kind == schema.RuleOneOf && len(rule.Values) > 0 {
			return rule.Values
		}
	}
	return nil
}
