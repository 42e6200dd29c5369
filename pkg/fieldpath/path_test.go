package fieldpath_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dctmd/pkg/fieldpath"
)

func TestCompanionPaths(t *testing.T) {
	t.Parallel()

	measurement := fieldpath.Parse("e4.maxUnassisted.measurement")
	cases := map[string]struct {
		got  fieldpath.Path
		want string
	}{
		"refused":          {measurement.Refused(), "e4.maxUnassisted.refused"},
		"terminated":       {measurement.Terminated(), "e4.maxUnassisted.terminated"},
		"interviewRefused": {fieldpath.Parse("e4.maxUnassisted.right.tmj.pain").InterviewRefused(), "e4.maxUnassisted.interviewRefused"},
		"sideRefused":      {fieldpath.Parse("e9.left.masseterBody.pain").SideRefused(), "e9.left.refused"},
	}
	for name, tc := range cases {
		if tc.got.String() != tc.want {
			t.Fatalf("%s: got %q want %q", name, tc.got.String(), tc.want)
		}
	}
}

func TestParseDropsEmptySegments(t *testing.T) {
	t.Parallel()

	got := fieldpath.Parse(" e2..horizontalOverjet. ").Segments()
	if diff := cmp.Diff([]string{"e2", "horizontalOverjet"}, got); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestHasPrefixIsSegmentWise(t *testing.T) {
	t.Parallel()

	p := fieldpath.Parse("e4.maxUnassisted.right.tmj.pain")
	if !p.HasPrefix(fieldpath.Parse("e4.maxUnassisted")) {
		t.Fatalf("expected prefix match")
	}
	if p.HasPrefix(fieldpath.Parse("e4.maxUnass")) {
		t.Fatalf("partial segment must not match")
	}
	if !p.Equal(fieldpath.New("e4", "maxUnassisted", "right", "tmj", "pain")) {
		t.Fatalf("expected equal paths")
	}
}

func TestFlattenExpandRoundTrip(t *testing.T) {
	t.Parallel()

	tree := map[string]any{
		"e4": map[string]any{
			"maxUnassisted": map[string]any{
				"measurement": 42.0,
				"refused":     false,
			},
		},
		"e3": map[string]any{"pattern": "straight"},
	}

	flat := fieldpath.Flatten(tree)
	wantFlat := map[string]any{
		"e4.maxUnassisted.measurement": 42.0,
		"e4.maxUnassisted.refused":     false,
		"e3.pattern":                   "straight",
	}
	if diff := cmp.Diff(wantFlat, flat); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tree, fieldpath.Expand(flat)); diff != "" {
		t.Fatalf("expand mismatch (-want +got):\n%s", diff)
	}

	value, ok := fieldpath.Lookup(tree, fieldpath.Parse("e4.maxUnassisted.measurement"))
	if !ok || value != 42.0 {
		t.Fatalf("lookup got %v, %v", value, ok)
	}
}
