package examination_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/examination"
	"github.com/goliatone/go-dctmd/pkg/instance"
	"github.com/goliatone/go-dctmd/pkg/steps"
)

func TestDefaultCatalogCompiles(t *testing.T) {
	t.Parallel()

	c, err := examination.New()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if diff := cmp.Diff(examination.SectionIDs, c.SectionIDs()); diff != "" {
		t.Fatalf("section ids mismatch (-want +got):\n%s", diff)
	}
	if err := c.Schema().Validate(c.Defaults()); err != nil {
		t.Fatalf("defaults must satisfy the schema: %v", err)
	}
	if _, ok := c.Screening(examination.StepAnamnesisSQ); !ok {
		t.Fatalf("expected screening rule on %s", examination.StepAnamnesisSQ)
	}
}

func TestStepResolution(t *testing.T) {
	t.Parallel()

	c := examination.Default()
	resolve := func(id string) []instance.Instance {
		t.Helper()
		def, err := c.Steps().Get(id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		return c.Steps().Resolve(def, c.Index())
	}

	if got := len(resolve("e4-maxUnassisted-interview")); got != 40 {
		t.Fatalf("interview instances: got %d, want 40", got)
	}
	if got := len(resolve("e9-right")); got != 34 {
		t.Fatalf("e9-right instances: got %d, want 34", got)
	}

	measurement := resolve("e4-maxUnassisted-measurement")
	var paths []string
	for _, inst := range measurement {
		paths = append(paths, inst.Key())
	}
	want := []string{"e4.maxUnassisted.measurement", "e4.maxUnassisted.terminated", "e4.maxUnassisted.refused"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("measurement paths mismatch (-want +got):\n%s", diff)
	}

	for _, inst := range resolve("e10-left") {
		if inst.Context.Side != anatomy.SideLeft {
			t.Fatalf("e10-left resolved %s", inst.Key())
		}
	}
}

func TestStepKindsFollowNamingConvention(t *testing.T) {
	t.Parallel()

	kinds := map[string]steps.Kind{}
	for _, def := range examination.Default().Steps().Steps() {
		kinds[def.ID] = def.Kind
	}
	want := map[string]steps.Kind{
		"anamnesis-sq":                 steps.KindScreening,
		"e1-pain-location":             steps.KindField,
		"e1-headache-location":         steps.KindField,
		"e2-reference-tooth":           steps.KindField,
		"e2-incisal":                   steps.KindField,
		"e2-midline":                   steps.KindField,
		"e3-pattern":                   steps.KindField,
		"e4-painFree":                  steps.KindField,
		"e4-maxUnassisted-measurement": steps.KindField,
		"e4-maxUnassisted-interview":   steps.KindInterview,
		"e4-maxAssisted-measurement":   steps.KindField,
		"e4-maxAssisted-interview":     steps.KindInterview,
		"e5-lateralRight-measurement":  steps.KindField,
		"e5-lateralRight-interview":    steps.KindInterview,
		"e5-lateralLeft-measurement":   steps.KindField,
		"e5-lateralLeft-interview":     steps.KindInterview,
		"e5-protrusive-measurement":    steps.KindField,
		"e5-protrusive-interview":      steps.KindInterview,
		"e6-noises":                    steps.KindField,
		"e7-noises":                    steps.KindField,
		"e8-locking":                   steps.KindField,
		"e9-right":                     steps.KindPalpation,
		"e9-left":                      steps.KindPalpation,
		"e10-right":                    steps.KindPalpation,
		"e10-left":                     steps.KindPalpation,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("step kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestRenameMovementValueMigration(t *testing.T) {
	t.Parallel()

	migrations := examination.Migrations()
	if len(migrations)+1 != examination.CurrentModelVersion {
		t.Fatalf("version %d does not match %d migrations", examination.CurrentModelVersion, len(migrations))
	}

	in := map[string]any{
		"e4": map[string]any{
			"maxUnassisted": map[string]any{"value": 41.0, "refused": false},
		},
		"e3": map[string]any{"pattern": "straight"},
	}
	got := migrations[0](in)
	want := map[string]any{
		"e4": map[string]any{
			"maxUnassisted": map[string]any{"measurement": 41.0, "refused": false},
		},
		"e3": map[string]any{"pattern": "straight"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("migration mismatch (-want +got):\n%s", diff)
	}
	if _, ok := in["e4"].(map[string]any)["maxUnassisted"].(map[string]any)["value"]; !ok {
		t.Fatalf("migration mutated its input")
	}
}
