package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-dctmd/pkg/model"
)

// Schema is the compiled structural validator of a model tree.
type Schema struct {
	root  *model.Node
	shape *openapi3.Schema
}

// FromModel compiles a single model tree.
func FromModel(root *model.Node) *Schema {
	return &Schema{root: root, shape: compile(root)}
}

// FromSections compiles a set of sections into one object keyed by section
// id, the shape of a persisted examination.
func FromSections(sections []model.Section) *Schema {
	children := make([]model.Child, 0, len(sections))
	for _, section := range sections {
		children = append(children, model.Field(section.ID, section.Root))
	}
	return FromModel(model.Group(children...))
}

// OpenAPI exposes the compiled openapi3 schema.
func (s *Schema) OpenAPI() *openapi3.Schema { return s.shape }

// MarshalJSON renders the compiled schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.shape)
}

// Defaults builds the default value tree of the model.
func (s *Schema) Defaults() map[string]any {
	out, _ := model.Defaults(s.root).(map[string]any)
	if out == nil {
		return map[string]any{}
	}
	return out
}

// Validate shape-checks value against the compiled schema, reporting every
// mismatch at once.
func (s *Schema) Validate(value any) error {
	normalized, err := normalize(value)
	if err != nil {
		return &ValidationError{Issues: []Issue{{Message: err.Error()}}}
	}
	if err := s.shape.VisitJSON(normalized, openapi3.MultiErrors()); err != nil {
		return &ValidationError{Issues: issuesFromError(err)}
	}
	return nil
}

// Coerce returns a JSON-normalised copy of value with leaf values converted
// to their model types where the conversion is lossless: numeric strings
// become numbers, "true"/"false" become booleans, blank answers become nil
// and a lone string becomes a one-element checkbox selection. Keys the model
// does not know are kept untouched.
func (s *Schema) Coerce(value any) any {
	normalized, err := normalize(value)
	if err != nil {
		return value
	}
	return coerce(s.root, normalized)
}

func compile(node *model.Node) *openapi3.Schema {
	if node == nil {
		return openapi3.NewSchema()
	}
	switch node.Kind {
	case model.KindGroup:
		obj := openapi3.NewObjectSchema()
		for _, child := range node.Children {
			obj.WithProperty(child.Key, compile(child.Node))
		}
		return obj
	case model.KindYesNo, model.KindEnum:
		return openapi3.NewStringSchema().WithEnum(stringsToAny(node.Options)...).WithNullable()
	case model.KindMeasurement:
		return openapi3.NewFloat64Schema().WithNullable()
	case model.KindCheckboxGroup:
		items := openapi3.NewStringSchema().WithEnum(stringsToAny(node.Options)...)
		return openapi3.NewArraySchema().WithItems(items).WithNullable()
	case model.KindFlag:
		return openapi3.NewBoolSchema().WithNullable()
	default:
		return openapi3.NewStringSchema().WithNullable()
	}
}

func coerce(node *model.Node, value any) any {
	if node == nil {
		return value
	}
	switch node.Kind {
	case model.KindGroup:
		obj, ok := value.(map[string]any)
		if !ok {
			return value
		}
		out := make(map[string]any, len(obj))
		for key, child := range obj {
			if childNode, known := node.Child(key); known {
				out[key] = coerce(childNode, child)
				continue
			}
			out[key] = child
		}
		return out
	case model.KindMeasurement:
		if str, ok := value.(string); ok {
			trimmed := strings.TrimSpace(str)
			if trimmed == "" {
				return nil
			}
			if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return parsed
			}
		}
		return value
	case model.KindFlag:
		if str, ok := value.(string); ok {
			if parsed, err := strconv.ParseBool(strings.TrimSpace(str)); err == nil {
				return parsed
			}
			if strings.TrimSpace(str) == "" {
				return nil
			}
		}
		return value
	case model.KindYesNo:
		if b, ok := value.(bool); ok {
			if b {
				return model.AnswerYes
			}
			return model.AnswerNo
		}
		return blankToNil(value)
	case model.KindEnum, model.KindText:
		return blankToNil(value)
	case model.KindCheckboxGroup:
		if str, ok := value.(string); ok {
			if strings.TrimSpace(str) == "" {
				return []any{}
			}
			return []any{str}
		}
		return value
	default:
		return value
	}
}

func blankToNil(value any) any {
	if str, ok := value.(string); ok && strings.TrimSpace(str) == "" {
		return nil
	}
	return value
}

func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("schema: normalise value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("schema: normalise value: %w", err)
	}
	return out, nil
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
