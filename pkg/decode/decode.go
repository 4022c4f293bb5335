package decode

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"

	"github.com/goliatone/go-formaction/pkg/schema"
	"github.com/goliatone/go-formaction/pkg/validation"
)

// ErrSchemaMissing is returned when Decode is called without a schema. It is
// a configuration error and is never turned into a user facing state.
var ErrSchemaMissing = errors.New("decode: schema is required")

// TagName is the struct tag used when decoding into typed values.
const TagName = "form"

// MessageResolver maps a configured message (often a message ID) to the text
// shown to users.
type MessageResolver interface {
	Resolve(message string) string
}

// MessageResolverFunc adapts a function to MessageResolver.
type MessageResolverFunc func(message string) string

func (f MessageResolverFunc) Resolve(message string) string { return f(message) }

// Option configures Decode.
type Option func(*options)

type options struct {
	resolver MessageResolver
}

// WithMessageResolver routes every issue message through r.
func WithMessageResolver(r MessageResolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

func (o options) message(msg string) string {
	if o.resolver == nil {
		return msg
	}
	return o.resolver.Resolve(msg)
}

// Decode validates fields against s and decodes the result into T using the
// "form" struct tag (T may also be map[string]any). Every violated rule is
// reported in a single pass. The returned error is reserved for programming
// mistakes: a nil schema (ErrSchemaMissing), an invalid schema, or a T that
// cannot hold the schema's fields.
func Decode[T any](fields Fields, s *schema.Schema, opts ...Option) (Result[T], error) {
	if s == nil {
		return Result[T]{}, ErrSchemaMissing
	}
	if err := s.Prepare(); err != nil {
		return Result[T]{}, fmt.Errorf("decode: %w", err)
	}

	var cfg options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	values, failure := evaluate(fields.Flatten(), s, cfg)
	if len(failure) > 0 {
		return Err[T](failure), nil
	}

	var out T
	if err := into(values, &out); err != nil {
		return Result[T]{}, fmt.Errorf("decode: schema %q into %T: %w", s.Name, out, err)
	}
	return Ok(out), nil
}

func into(values map[string]any, target any) error {
	if m, ok := target.(*map[string]any); ok {
		*m = values
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		TagName:     TagName,
		ErrorUnused: true,
		ZeroFields:  true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

func evaluate(flat map[string]string, s *schema.Schema, cfg options) (map[string]any, validation.Failure) {
	values := make(map[string]any, len(s.Fields))
	var failure validation.Failure

	for _, field := range s.Fields {
		raw, present := flat[field.Name]
		if !present {
			switch {
			case field.Type == schema.TypeBool:
				// Unchecked checkboxes are not submitted at all.
				values[field.Name] = false
			case !field.Optional:
				failure.Add(field.Name, cfg.message(field.MissingMessage()))
			}
			continue
		}

		value := field.Normalize(raw)
		if value == "" && field.Optional {
			continue
		}

		for _, rule := range field.Rules {
			if rule.Numeric() {
				continue
			}
			if !checkString(rule, value, flat, s) {
				failure.Add(field.Name, cfg.message(rule.MessageFor(field)))
			}
		}

		typed, number, err := coerce(field.Type, value)
		if err != nil {
			failure.Add(field.Name, cfg.message(field.CoercionMessage()))
			continue
		}
		for _, rule := range field.Rules {
			if rule.Numeric() && !checkNumber(rule, number) {
				failure.Add(field.Name, cfg.message(rule.MessageFor(field)))
			}
		}
		values[field.Name] = typed
	}

	return values, failure
}

func checkString(rule schema.Rule, value string, flat map[string]string, s *schema.Schema) bool {
	switch rule.Kind {
	case schema.RuleRequired:
		return value != ""
	case schema.RuleMinLength:
		n, _ := strconv.Atoi(rule.Value)
		return utf8.RuneCountInString(value) >= n
	case schema.RuleMaxLength:
		n, _ := strconv.Atoi(rule.Value)
		return utf8.RuneCountInString(value) <= n
	case schema.RulePattern:
		re := s.Pattern(rule.Value)
		return re != nil && re.MatchString(value)
	case schema.RuleEmail:
		return isEmail(value)
	case schema.RuleOneOf:
		for _, allowed := range rule.Values {
			if value == allowed {
				return true
			}
		}
		return false
	case schema.RuleMatches:
		other, ok := s.Field(rule.Value)
		if !ok {
			return false
		}
		return value == other.Normalize(flat[other.Name])
	default:
		return true
	}
}

func checkNumber(rule schema.Rule, number float64) bool {
	bound, err := strconv.ParseFloat(rule.Value, 64)
	if err != nil {
		return false
	}
	switch rule.Kind {
	case schema.RuleMin:
		return number >= bound
	case schema.RuleMax:
		return number <= bound
	default:
		return true
	}
}

// coerce converts value to the field type. The float64 return mirrors the
// numeric value for min/max checks.
func coerce(t schema.Type, value string) (any, float64, error) {
	switch t {
	case schema.TypeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, 0, err
		}
		return n, float64(n), nil
	case schema.TypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, 0, err
		}
		return f, f, nil
	case schema.TypeBool:
		b, err := parseBool(value)
		if err != nil {
			return nil, 0, err
		}
		return b, 0, nil
	default:
		return value, 0, nil
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("decode: %q is not a boolean", value)
	}
}

func isEmail(value string) bool {
	if value == "" || strings.ContainsAny(value, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Address == value && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".")
}
