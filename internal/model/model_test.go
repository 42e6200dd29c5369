package model

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateSectionRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	section := Section{ID: "e3", Root: Group(
		Field("pattern", Enum([]string{"straight"})),
		Field("pattern", YesNo()),
	)}
	err := ValidateSection(section)
	if err == nil || !strings.Contains(err.Error(), "duplicate child key") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestValidateSectionChecksEnableWhenSibling(t *testing.T) {
	t.Parallel()

	section := Section{ID: "e2", Root: Group(
		Field("direction", Enum([]string{"right", "left", "na"})),
		Field("mm", Measurement(EnableWhen("missing", OpNotEquals, "na"))),
	)}
	if err := ValidateSection(section); err == nil {
		t.Fatalf("expected unknown sibling error")
	}

	section.Root.Children[1].Node.EnableWhen.Field = "direction"
	if err := ValidateSection(section); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSectionRejectsInvertedBounds(t *testing.T) {
	t.Parallel()

	section := Section{ID: "e4", Root: Group(Field("m", Measurement(Min(10), Max(5))))}
	if err := ValidateSection(section); err == nil {
		t.Fatalf("expected bounds error")
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	root := Group(
		Field("measurement", Measurement()),
		Field("refused", Flag()),
		Field("location", CheckboxGroup([]string{"a"})),
		Field("tooth", Enum([]string{"U11", "U21"}, Default("U11"))),
	)
	want := map[string]any{
		"measurement": nil,
		"refused":     false,
		"location":    []string{},
		"tooth":       "U11",
	}
	if diff := cmp.Diff(want, Defaults(root)); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatKeepsOrder(t *testing.T) {
	t.Parallel()

	group := Repeat(AxisSide, []string{"right", "left"}, func(string) *Node { return YesNo() })
	if diff := cmp.Diff([]string{"right", "left"}, group.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	for _, child := range group.Children {
		if child.Axis != AxisSide {
			t.Fatalf("expected side axis on %q, got %q", child.Key, child.Axis)
		}
	}
}

func TestDefaultLabeler(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"e4.maxUnassisted.familiarHeadache": "Familiar headache",
		"tmjLateralPole":                    "TMJ lateral pole",
		"anamnesis.sq.SQ1":                  "SQ1",
		"sqReviewedAt":                      "SQ reviewed at",
		"e9":                                "E9",
		"whileOpening_reduction":            "While opening reduction",
		"mm":                                "mm",
		"":                                  "",
	}
	for key, want := range cases {
		if got := DefaultLabeler(key); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestValidateSectionChecksAxisValues(t *testing.T) {
	t.Parallel()

	section := Section{ID: "e9", Root: Group(
		AxisField(AxisSide, "middle", Group(Field("pain", YesNo()))),
	)}
	if err := ValidateSection(section); err == nil {
		t.Fatalf("expected invalid side error")
	}
}
