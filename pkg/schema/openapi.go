package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	// messagesExtensionKey maps rule kinds to messages on a property, e.g.
	// x-formaction-messages: {required: "Admin username is required."}.
	messagesExtensionKey = "x-formaction-messages"
	// orderExtensionKey lists property names in display order on the request
	// body schema. Properties not listed follow in alphabetical order.
	orderExtensionKey = "x-formaction-order"
)

var errOperationNotFound = errors.New("schema: operation not found in OpenAPI document")

// FromOpenAPI builds a Schema from the request body of operationID in an
// OpenAPI 3 document. Form encoded bodies are preferred over JSON ones.
func FromOpenAPI(ctx context.Context, raw []byte, operationID string) (*Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: OpenAPI document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load OpenAPI document: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return nil, fmt.Errorf("%w: %q", errOperationNotFound, operationID)
	}

	body := requestSchema(op.RequestBody)
	if body == nil {
		return nil, fmt.Errorf("schema: operation %q has no request body schema", operationID)
	}

	return New(operationID, convertProperties(body)...)
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "multipart/form-data", "application/json"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func convertProperties(body *openapi3.Schema) []Field {
	required := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		required[name] = struct{}{}
	}

	fields := make([]Field, 0, len(body.Properties))
	for _, name := range propertyOrder(body) {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, isRequired := required[name]
		fields = append(fields, convertProperty(name, ref.Value, isRequired))
	}
	return fields
}

func propertyOrder(body *openapi3.Schema) []string {
	names := make([]string, 0, len(body.Properties))
	listed := make(map[string]struct{})
	if raw, ok := body.Extensions[orderExtensionKey].([]any); ok {
		for _, entry := range raw {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if _, exists := body.Properties[name]; !exists {
				continue
			}
			if _, dup := listed[name]; dup {
				continue
			}
			listed[name] = struct{}{}
			names = append(names, name)
		}
	}

	var rest []string
	for name := range body.Properties {
		if _, ok := listed[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func convertProperty(name string, src *openapi3.Schema, required bool) Field {
	messages := extensionMessages(src.Extensions)
	field := Field{
		Name:     name,
		Type:     fieldType(src.Type),
		Label:    src.Title,
		Optional: !required,
		Trim:     true,
	}
	if src.Format == "password" {
		field.Widget = "password"
	}
	if msg, ok := messages["type"]; ok {
		field.TypeMessage = msg
	}
	if msg, ok := messages[RuleRequired]; ok {
		field.RequiredMessage = msg
	}

	add := func(kind, value string) {
		field.Rules = append(field.Rules, Rule{Kind: kind, Value: value, Message: messages[kind]})
	}

	if required && field.Type == TypeString {
		add(RuleRequired, "")
	}
	if src.MinLength > 0 {
		add(RuleMinLength, strconv.FormatUint(src.MinLength, 10))
	}
	if src.MaxLength != nil {
		add(RuleMaxLength, strconv.FormatUint(*src.MaxLength, 10))
	}
	if src.Pattern != "" {
		add(RulePattern, src.Pattern)
	}
	if src.Format == "email" {
		add(RuleEmail, "")
	}
	if len(src.Enum) > 0 {
		values := make([]string, 0, len(src.Enum))
		for _, v := range src.Enum {
			values = append(values, fmt.Sprint(v))
		}
		field.Rules = append(field.Rules, Rule{Kind: RuleOneOf, Values: values, Message: messages[RuleOneOf]})
	}
	if field.Type == TypeInt || field.Type == TypeFloat {
		if src.Min != nil {
			add(RuleMin, strconv.FormatFloat(*src.Min, 'f', -1, 64))
		}
		if src.Max != nil {
			add(RuleMax, strconv.FormatFloat(*src.Max, 'f', -1, 64))
		}
	}
	if target, ok := src.Extensions["x-formaction-matches"].(string); ok && target != "" {
		add(RuleMatches, target)
	}
	return field
}

func fieldType(types *openapi3.Types) Type {
	if types == nil {
		return TypeString
	}
	for _, t := range types.Slice() {
		switch t {
		case openapi3.TypeInteger:
			return TypeInt
		case openapi3.TypeNumber:
			return TypeFloat
		case openapi3.TypeBoolean:
			return TypeBool
		case openapi3.TypeString:
			return TypeString
		}
	}
	return TypeString
}

func extensionMessages(ext map[string]any) map[string]string {
	raw, ok := ext[messagesExtensionKey].(map[string]any)
	if !ok || len(raw) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(raw))
	for kind, value := range raw {
		if msg, ok := value.(string); ok {
			out[strings.TrimSpace(kind)] = msg
		}
	}
	return out
}
