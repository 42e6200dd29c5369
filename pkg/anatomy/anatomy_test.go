package anatomy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
)

func TestApplicableQuestionsByMode(t *testing.T) {
	t.Parallel()

	temporalis, _ := anatomy.SiteTemporalisAnterior.Config()
	tmj, _ := anatomy.SiteTMJLateralPole.Config()

	cases := []struct {
		name string
		mode anatomy.PalpationMode
		cfg  anatomy.SiteConfig
		want []anatomy.PainType
	}{
		{"basic temporalis", anatomy.PalpationModeBasic, temporalis, []anatomy.PainType{"pain", "familiarPain", "familiarHeadache"}},
		{"basic tmj", anatomy.PalpationModeBasic, tmj, []anatomy.PainType{"pain", "familiarPain"}},
		{"standard tmj", anatomy.PalpationModeStandard, tmj, []anatomy.PainType{"pain", "familiarPain", "referredPain"}},
		{"extended tmj", anatomy.PalpationModeExtended, tmj, []anatomy.PainType{"pain", "familiarPain", "referredPain"}},
		{"extended temporalis", anatomy.PalpationModeExtended, temporalis, []anatomy.PainType{"pain", "familiarPain", "familiarHeadache", "referredPain", "spreadingPain"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, tc.mode.ApplicableQuestions(tc.cfg)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestRegionConfigMergesSites(t *testing.T) {
	t.Parallel()

	got := anatomy.RegionConfig(anatomy.RegionTemporalis)
	want := anatomy.SiteConfig{Region: anatomy.RegionTemporalis, HasHeadache: true, HasSpreading: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("region config mismatch (-want +got):\n%s", diff)
	}
	if anatomy.RegionConfig(anatomy.RegionTMJ).HasSpreading {
		t.Fatalf("tmj must not support spreading pain")
	}
}

func TestParseModes(t *testing.T) {
	t.Parallel()

	mode, err := anatomy.ParsePalpationMode("")
	if err != nil || mode != anatomy.DefaultPalpationMode {
		t.Fatalf("empty mode: got %q, %v", mode, err)
	}
	if _, err := anatomy.ParsePalpationMode("thorough"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	detail, err := anatomy.ParseSiteDetailMode("grouped")
	if err != nil || detail != anatomy.SiteDetailGrouped {
		t.Fatalf("grouped: got %q, %v", detail, err)
	}
}

func TestInterviewRegions(t *testing.T) {
	t.Parallel()

	if len(anatomy.InterviewRegions(false)) != 5 {
		t.Fatalf("base regions should have 5 entries")
	}
	if !anatomy.RegionTemporalis.HasHeadache() || anatomy.RegionTMJ.HasHeadache() {
		t.Fatalf("unexpected headache capability")
	}
	if len(anatomy.InterviewRegions(true)) <= len(anatomy.InterviewRegions(false)) {
		t.Fatalf("all regions must extend the base set")
	}
}
