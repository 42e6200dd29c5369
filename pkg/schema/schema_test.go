package schema_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-dctmd/pkg/model"
	"github.com/goliatone/go-dctmd/pkg/schema"
)

func sections() []model.Section {
	return []model.Section{
		{ID: "e3", Root: model.Group(model.Field("pattern", model.Enum([]string{"straight", "corrected"}, model.Required())))},
		{ID: "e4", Root: model.Group(model.Field("maxUnassisted", model.Group(
			model.Field("measurement", model.Measurement(model.Required(), model.Min(0), model.Max(100))),
			model.Field("refused", model.Flag()),
			model.Field("pain", model.YesNo()),
			model.Field("location", model.CheckboxGroup([]string{"tmj", "masseter"})),
		)))},
	}
}

func TestValidateAcceptsDefaultsAndAnswers(t *testing.T) {
	t.Parallel()

	s := schema.FromSections(sections())
	if err := s.Validate(s.Defaults()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	value := map[string]any{
		"e3": map[string]any{"pattern": "straight"},
		"e4": map[string]any{"maxUnassisted": map[string]any{
			"measurement": 250,
			"refused":     true,
			"pain":        "yes",
			"location":    []string{"tmj"},
		}},
		"unknownSection": map[string]any{"kept": true},
	}
	if err := s.Validate(value); err != nil {
		t.Fatalf("value should validate (ranges are not structural): %v", err)
	}
}

func TestValidateReportsEveryIssue(t *testing.T) {
	t.Parallel()

	s := schema.FromSections(sections())
	err := s.Validate(map[string]any{
		"e3": map[string]any{"pattern": 42},
		"e4": map[string]any{"maxUnassisted": map[string]any{
			"pain":     "maybe",
			"location": []string{"ear"},
		}},
	})
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		got = append(got, issue.Path)
	}
	want := []string{"e3.pattern", "e4.maxUnassisted.pain", "e4.maxUnassisted.location.0"}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("issue paths mismatch (-want +got):\n%s", diff)
	}
	if !schema.IsValidationError(err) || !strings.HasPrefix(err.Error(), "schema: ") {
		t.Fatalf("unexpected error form: %v", err)
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	s := schema.FromSections(sections())
	got := s.Coerce(map[string]any{
		"e3": map[string]any{"pattern": ""},
		"e4": map[string]any{"maxUnassisted": map[string]any{
			"measurement": " 42 ",
			"refused":     "true",
			"pain":        false,
			"location":    "tmj",
			"legacy":      "kept",
		}},
	})
	want := map[string]any{
		"e3": map[string]any{"pattern": nil},
		"e4": map[string]any{"maxUnassisted": map[string]any{
			"measurement": 42.0,
			"refused":     true,
			"pain":        "no",
			"location":    []any{"tmj"},
			"legacy":      "kept",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("coerce mismatch (-want +got):\n%s", diff)
	}
	if err := s.Validate(got); err != nil {
		t.Fatalf("coerced value should validate: %v", err)
	}
}

func TestMarshalJSONExposesShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(schema.FromSections(sections()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["type"] != "object" {
		t.Fatalf("expected object schema, got %v", doc["type"])
	}
	props, _ := doc["properties"].(map[string]any)
	if _, ok := props["e4"]; !ok {
		t.Fatalf("expected e4 property in %v", props)
	}
}
