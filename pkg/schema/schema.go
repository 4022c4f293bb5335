package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Type is the primitive type a submitted value is coerced into.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
)

// Field declares one expected input. Rules run in declaration order and each
// violated rule contributes one issue, so the first rule listed is the message
// users see when several fail.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Type  Type   `json:"type,omitempty" yaml:"type,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Widget is a presentation hint ("password", "textarea", "email").
	Widget string `json:"widget,omitempty" yaml:"widget,omitempty"`
	// Optional fields may be absent or empty; their rules are skipped then.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
	// Trim removes surrounding whitespace before rules run.
	Trim bool `json:"trim,omitempty" yaml:"trim,omitempty"`
	// Sanitize names a markup policy applied before rules run ("strict" or "ugc").
	Sanitize string `json:"sanitize,omitempty" yaml:"sanitize,omitempty"`
	// RequiredMessage is reported when a non-optional field is absent.
	RequiredMessage string `json:"requiredMessage,omitempty" yaml:"requiredMessage,omitempty"`
	// TypeMessage is reported when the value cannot be coerced to Type.
	TypeMessage string `json:"typeMessage,omitempty" yaml:"typeMessage,omitempty"`
	Rules       []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// DisplayName returns the label, falling back to the field name.
func (f Field) DisplayName() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// Schema is the declarative description a form submission is decoded against.
// Schemas are read-only once built; Prepare compiles patterns exactly once.
type Schema struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`

	once     sync.Once
	err      error
	patterns map[string]*regexp.Regexp
}

// New builds a schema and verifies it. Use it instead of a struct literal to
// surface configuration problems at wiring time.
func New(name string, fields ...Field) (*Schema, error) {
	s := &Schema{Name: strings.TrimSpace(name), Fields: fields}
	if err := s.Prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New for package level schema declarations.
func MustNew(name string, fields ...Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Names lists field names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.Name)
	}
	return out
}

// Prepare validates the schema and compiles its patterns. It is safe to call
// repeatedly and from several goroutines; the first result is cached.
func (s *Schema) Prepare() error {
	if s == nil {
		return errors.New("schema: nil schema")
	}
	s.once.Do(func() {
		s.patterns, s.err = s.check()
	})
	return s.err
}

// Pattern returns the compiled expression for a pattern rule. Prepare must
// have succeeded.
func (s *Schema) Pattern(expr string) *regexp.Regexp {
	return s.patterns[expr]
}

func (s *Schema) check() (map[string]*regexp.Regexp, error) {
	var problems []string
	patterns := make(map[string]*regexp.Regexp)
	seen := make(map[string]struct{}, len(s.Fields))

	if len(s.Fields) == 0 {
		problems = append(problems, "schema declares no fields")
	}

	for idx, field := range s.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("field %d has an empty name", idx))
			continue
		}
		if _, dup := seen[name]; dup {
			problems = append(problems, fmt.Sprintf("field %q is declared twice", name))
		}
		seen[name] = struct{}{}

		switch field.Type {
		case "", TypeString, TypeInt, TypeFloat, TypeBool:
		default:
			problems = append(problems, fmt.Sprintf("field %q has unknown type %q", name, field.Type))
		}
		if field.Sanitize != "" {
			if _, ok := policyFor(field.Sanitize); !ok {
				problems = append(problems, fmt.Sprintf("field %q has unknown sanitize policy %q", name, field.Sanitize))
			}
		}

		for _, rule := range field.Rules {
			if err := checkRule(rule, field, s.Fields); err != nil {
				problems = append(problems, fmt.Sprintf("field %q: %v", name, err))
				continue
			}
			if rule.Kind == RulePattern {
				re, err := regexp.Compile(rule.Value)
				if err != nil {
					problems = append(problems, fmt.Sprintf("field %q: pattern %q: %v", name, rule.Value, err))
					continue
				}
				patterns[rule.Value] = re
			}
		}
	}

	if len(problems) > 0 {
		return nil, &InvalidError{Schema: s.Name, Problems: problems}
	}
	return patterns, nil
}

func checkRule(rule Rule, field Field, fields []Field) error {
	switch rule.Kind {
	case RuleRequired, RuleEmail:
		return nil
	case RuleMinLength, RuleMaxLength:
		n, err := strconv.Atoi(rule.Value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s needs a non-negative integer value, got %q", rule.Kind, rule.Value)
		}
		return nil
	case RuleMin, RuleMax:
		if field.Type != TypeInt && field.Type != TypeFloat {
			return fmt.Errorf("%s only applies to int or float fields", rule.Kind)
		}
		if _, err := strconv.ParseFloat(rule.Value, 64); err != nil {
			return fmt.Errorf("%s needs a numeric value, got %q", rule.Kind, rule.Value)
		}
		return nil
	case RulePattern:
		if rule.Value == "" {
			return errors.New("pattern needs an expression")
		}
		return nil
	case RuleOneOf:
		if len(rule.Values) == 0 {
			return errors.New("oneOf needs at least one value")
		}
		return nil
	case RuleMatches:
		for _, other := range fields {
			if other.Name == rule.Value && other.Name != field.Name {
				return nil
			}
		}
		return fmt.Errorf("matches refers to unknown field %q", rule.Value)
	default:
		return fmt.Errorf("unknown rule %q", rule.Kind)
	}
}

// InvalidError lists every problem found in a schema declaration.
type InvalidError struct {
	Schema   string
	Problems []string
}

func (e *InvalidError) Error() string {
	name := e.Schema
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("schema: %s is invalid: %s", name, strings.Join(e.Problems, "; "))
}
