package view

import (
	"github.com/goliatone/go-formaction/pkg/decode"
	"github.com/goliatone/go-formaction/pkg/formstate"
	"github.com/goliatone/go-formaction/pkg/schema"
)

// Field is one input of a rendered form.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Value    string   `json:"value,omitempty"`
	Error    string   `json:"error,omitempty"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// Form is the view model of a schema in a given state.
type Form struct {
	Action    string  `json:"action"`
	Submit    string  `json:"submit"`
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	FormError string  `json:"form_error,omitempty"`
	Fields    []Field `json:"fields"`
}

// Page is the data handed to a page template.
type Page struct {
	Lang    string `json:"lang"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	Admins  any    `json:"admins,omitempty"`
	Form    Form   `json:"form"`
}

// NewForm builds the form view of s. Submitted values are echoed back, except
// for password inputs and after a successful submission.
func NewForm(s *schema.Schema, state formstate.State, values decode.Fields) Form {
	form := Form{}
	if state == nil {
		state = formstate.DefaultState()
	}
	formstate.Match(state, formstate.NewCases(
		func(formstate.Default) {
			form.Status = string(formstate.TagDefault)
		},
		func(st formstate.Success) {
			form.Status = string(formstate.TagSuccess)
			form.Message = st.Message
			values = nil
		},
		func(f formstate.Fail) {
			form.Status = string(formstate.TagFail)
			form.FormError, _ = f.Errors.Form()
		},
	))

	var errs formstate.Errors
	if fail, ok := state.(formstate.Fail); ok {
		errs = fail.Errors
	}

	if s == nil {
		return form
	}
	for _, field := range s.Fields {
		out := Field{
			Name:     field.Name,
			Label:    field.DisplayName(),
			Type:     inputType(field),
			Required: !field.Optional,
			Options:  options(field),
		}
		if out.Type != "password" {
			out.Value, _ = values.Get(field.Name)
		}
		out.Error, _ = errs.Field(field.Name)
		form.Fields = append(form.Fields, out)
	}
	return form
}

func inputType(field schema.Field) string {
	switch {
	case field.Type == schema.TypeBool:
		return "checkbox"
	case field.Type == schema.TypeInt || field.Type == schema.TypeFloat:
		return "number"
	case field.Widget != "":
		return field.Widget
	default:
		for _, rule := range field.Rules {
			if rule.Kind == schema.RuleEmail {
				return "email"
			}
		}
		return "text"
	}
}

func options(field schema.Field) []string {
	for _, rule := range field.Rules {
		if rule.Kind == schema.RuleOneOf {
			return rule.Values
		}
	}
	return nil
}
