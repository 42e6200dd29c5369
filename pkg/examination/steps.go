package examination

import (
	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/steps"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

// StepAnamnesisSQ is the screening questionnaire step.
const StepAnamnesisSQ = "anamnesis-sq"

// SQScreening is the screening rule of the anamnesis step.
var SQScreening = validation.Screening{
	Gates: func() []fieldpath.Path {
		out := make([]fieldpath.Path, 0, len(sqGates))
		for _, entry := range sqGates {
			out = append(out, fieldpath.New(SectionAnamnesis, "sq", entry.gate))
		}
		return out
	}(),
	ReviewedAt: fieldpath.New(SectionAnamnesis, "sqReviewedAt"),
}

// SectionSteps returns the step tables of every section, with
// section-relative paths.
func SectionSteps() []steps.SectionSteps {
	return []steps.SectionSteps{
		{Section: SectionAnamnesis, Steps: []steps.Definition{
			steps.Explicit(StepAnamnesisSQ, steps.KindScreening, sqPaths()),
		}},
		{Section: SectionE1, Steps: []steps.Definition{
			steps.Explicit("e1-pain-location", steps.KindField, sidePaths("painLocation")),
			steps.Explicit("e1-headache-location", steps.KindField, sidePaths("headacheLocation")),
		}},
		{Section: SectionE2, Steps: []steps.Definition{
			steps.Explicit("e2-reference-tooth", steps.KindField, []string{"referenceTooth"}),
			steps.Explicit("e2-incisal", steps.KindField, []string{"horizontalOverjet", "verticalOverlap"}),
			steps.Explicit("e2-midline", steps.KindField, []string{"midlineDeviation.direction", "midlineDeviation.mm"}),
		}},
		{Section: SectionE3, Steps: []steps.Definition{
			steps.Explicit("e3-pattern", steps.KindField, []string{"pattern"}),
		}},
		{Section: SectionE4, Steps: append(
			[]steps.Definition{
				steps.Explicit("e4-painFree", steps.KindField,
					[]string{"painFree.measurement", "painFree.refused"},
					steps.WithRefusal("painFree.refused")),
			},
			append(movementSteps(SectionE4, MovementMaxUnassisted, true), movementSteps(SectionE4, MovementMaxAssisted, true)...)...,
		)},
		{Section: SectionE5, Steps: append(append(
			movementSteps(SectionE5, MovementLateralRight, false),
			movementSteps(SectionE5, MovementLateralLeft, false)...),
			movementSteps(SectionE5, MovementProtrusive, false)...,
		)},
		{Section: SectionE6, Steps: []steps.Definition{
			steps.Wildcard("e6-noises", steps.KindField, SectionE6),
		}},
		{Section: SectionE7, Steps: []steps.Definition{
			steps.Wildcard("e7-noises", steps.KindField, SectionE7),
		}},
		{Section: SectionE8, Steps: []steps.Definition{
			steps.Wildcard("e8-locking", steps.KindField, SectionE8),
		}},
		{Section: SectionE9, Steps: palpationSteps(SectionE9)},
		{Section: SectionE10, Steps: palpationSteps(SectionE10)},
	}
}

// movementSteps returns the measurement step and its paired interview step.
func movementSteps(section, movement string, terminated bool) []steps.Definition {
	measurementID := section + "-" + movement + "-measurement"
	interviewID := section + "-" + movement + "-interview"
	paths := []string{movement + ".measurement"}
	if terminated {
		paths = append(paths, movement+".terminated")
	}
	paths = append(paths, movement+".refused")
	return []steps.Definition{
		steps.Explicit(measurementID, steps.KindField, paths,
			steps.WithRefusal(movement+".refused"), steps.PairedWith(interviewID)),
		steps.Wildcard(interviewID, steps.KindInterview, movement,
			steps.WithRefusal(movement+".interviewRefused")),
	}
}

func palpationSteps(section string) []steps.Definition {
	out := make([]steps.Definition, 0, len(anatomy.Sides))
	for _, side := range anatomy.Sides {
		out = append(out, steps.Wildcard(section+"-"+string(side), steps.KindPalpation, string(side),
			steps.WithRefusal(string(side)+".refused")))
	}
	return out
}

func sidePaths(group string) []string {
	out := make([]string, 0, len(anatomy.Sides))
	for _, side := range anatomy.Sides {
		out = append(out, group+"."+string(side))
	}
	return out
}

func sqPaths() []string {
	var out []string
	for _, entry := range sqGates {
		out = append(out, "sq."+entry.gate)
		for _, follow := range entry.followUps {
			out = append(out, "sq."+follow.key)
		}
	}
	return append(out, "sqReviewedAt")
}
