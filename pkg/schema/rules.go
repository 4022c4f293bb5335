package schema

import (
	"fmt"
	"strings"
)

// Rule kinds. The names follow the OpenAPI keywords they map from.
const (
	RuleRequired  = "required"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
	RuleEmail     = "email"
	RuleOneOf     = "oneOf"
	RuleMatches   = "matches"
	RuleMin       = "min"
	RuleMax       = "max"
)

// Rule is a single constraint with the message reported when it fails.
// Value carries the scalar parameter (length, bound, expression, or the name
// of the field to match); Values carries the allowed set for oneOf.
type Rule struct {
	Kind    string   `json:"kind" yaml:"kind"`
	Value   string   `json:"value,omitempty" yaml:"value,omitempty"`
	Values  []string `json:"values,omitempty" yaml:"values,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Numeric reports whether the rule applies to the coerced number rather than
// the raw string.
func (r Rule) Numeric() bool {
	return r.Kind == RuleMin || r.Kind == RuleMax
}

// MessageFor returns the configured message or a generic one naming field.
func (r Rule) MessageFor(field Field) string {
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return msg
	}
	name := field.DisplayName()
	switch r.Kind {
	case RuleRequired:
		return fmt.Sprintf("%s is required.", name)
	case RuleMinLength:
		return fmt.Sprintf("%s must be at least %s characters.", name, r.Value)
	case RuleMaxLength:
		return fmt.Sprintf("%s must be at most %s characters.", name, r.Value)
	case RulePattern:
		return fmt.Sprintf("%s has an invalid format.", name)
	case RuleEmail:
		return fmt.Sprintf("%s must be a valid email address.", name)
	case RuleOneOf:
		return fmt.Sprintf("%s must be one of: %s.", name, strings.Join(r.Values, ", "))
	case RuleMatches:
		return fmt.Sprintf("%s must match %s.", name, r.Value)
	case RuleMin:
		return fmt.Sprintf("%s must be at least %s.", name, r.Value)
	case RuleMax:
		return fmt.Sprintf("%s must be at most %s.", name, r.Value)
	default:
		return fmt.Sprintf("%s is invalid.", name)
	}
}

// MissingMessage is reported for an absent, non-optional field.
func (f Field) MissingMessage() string {
	if msg := strings.TrimSpace(f.RequiredMessage); msg != "" {
		return msg
	}
	return "Required"
}

// CoercionMessage is reported when a value does not parse as the field type.
func (f Field) CoercionMessage() string {
	if msg := strings.TrimSpace(f.TypeMessage); msg != "" {
		return msg
	}
	switch f.Type {
	case TypeInt:
		return "Expected integer"
	case TypeFloat:
		return "Expected number"
	case TypeBool:
		return "Expected boolean"
	default:
		return "Expected string"
	}
}
