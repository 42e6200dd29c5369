package examination

import (
	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/model"
)

// Section ids in presentation order.
const (
	SectionAnamnesis = "anamnesis"
	SectionE1        = "e1"
	SectionE2        = "e2"
	SectionE3        = "e3"
	SectionE4        = "e4"
	SectionE5        = "e5"
	SectionE6        = "e6"
	SectionE7        = "e7"
	SectionE8        = "e8"
	SectionE9        = "e9"
	SectionE10       = "e10"
)

// SectionIDs lists every section id in presentation order.
var SectionIDs = []string{
	SectionAnamnesis,
	SectionE1, SectionE2, SectionE3, SectionE4, SectionE5,
	SectionE6, SectionE7, SectionE8, SectionE9, SectionE10,
}

// Movement group keys.
const (
	MovementPainFree      = "painFree"
	MovementMaxUnassisted = "maxUnassisted"
	MovementMaxAssisted   = "maxAssisted"
	MovementLateralRight  = "lateralRight"
	MovementLateralLeft   = "lateralLeft"
	MovementProtrusive    = "protrusive"
)

const unitMM = "mm"

// Sections builds the models of every section.
func Sections() []model.Section {
	return []model.Section{
		{ID: SectionAnamnesis, Root: anamnesis()},
		{ID: SectionE1, Root: e1()},
		{ID: SectionE2, Root: e2()},
		{ID: SectionE3, Root: e3()},
		{ID: SectionE4, Root: e4()},
		{ID: SectionE5, Root: e5()},
		{ID: SectionE6, Root: e6()},
		{ID: SectionE7, Root: e7()},
		{ID: SectionE8, Root: e8()},
		{ID: SectionE9, Root: palpation(anatomy.E9Sites)},
		{ID: SectionE10, Root: palpation(anatomy.SupplementalSites)},
	}
}

// Screening gates of the symptom questionnaire and the follow-ups each one
// enables.
var sqGates = []struct {
	gate      string
	followUps []sqFollowUp
}{
	{gate: "SQ1", followUps: []sqFollowUp{
		{key: "SQ2", node: onsetMonths},
		{key: "SQ3", node: painPattern},
		{key: "SQ4", node: yesNoRequired},
	}},
	{gate: "SQ5", followUps: []sqFollowUp{
		{key: "SQ6", node: onsetMonths},
		{key: "SQ7", node: yesNoRequired},
	}},
	{gate: "SQ8"},
	{gate: "SQ9", followUps: []sqFollowUp{
		{key: "SQ10", node: yesNoRequired},
		{key: "SQ11", node: yesNoRequired},
		{key: "SQ12", node: yesNoRequired},
	}},
	{gate: "SQ13", followUps: []sqFollowUp{
		{key: "SQ14", node: yesNoRequired},
	}},
}

type sqFollowUp struct {
	key  string
	node func(...model.LeafOption) *model.Node
}

func onsetMonths(opts ...model.LeafOption) *model.Node {
	return model.Measurement(append([]model.LeafOption{model.Required(), model.Min(0), model.Max(600), model.Unit("months")}, opts...)...)
}

func painPattern(opts ...model.LeafOption) *model.Node {
	return model.Enum([]string{"none", "intermittent", "continuous"}, append([]model.LeafOption{model.Required()}, opts...)...)
}

func yesNoRequired(opts ...model.LeafOption) *model.Node {
	return model.YesNo(append([]model.LeafOption{model.Required()}, opts...)...)
}

func anamnesis() *model.Node {
	var sq []model.Child
	for _, entry := range sqGates {
		sq = append(sq, model.Field(entry.gate, yesNoRequired()))
		for _, follow := range entry.followUps {
			sq = append(sq, model.Field(follow.key, follow.node(model.EnableWhen(entry.gate, model.OpEquals, model.AnswerYes))))
		}
	}
	return model.Group(
		model.Field("sq", model.Group(sq...)),
		model.Field("sqReviewedAt", model.Text()),
	)
}

var (
	painLocations     = []string{"temporalis", "masseter", "tmj", "otherMast", "nonMast", "none"}
	headacheLocations = []string{"temporalis", "other", "none"}
)

func e1() *model.Node {
	return model.Group(
		model.Field("painLocation", model.Repeat(model.AxisSide, anatomy.Sides, func(anatomy.Side) *model.Node {
			return model.CheckboxGroup(painLocations, model.Required())
		})),
		model.Field("headacheLocation", model.Repeat(model.AxisSide, anatomy.Sides, func(anatomy.Side) *model.Node {
			return model.CheckboxGroup(headacheLocations, model.Required())
		})),
	)
}

func e2() *model.Node {
	return model.Group(
		model.Field("referenceTooth", model.Enum([]string{"us8", "us9", "other"}, model.Required())),
		model.Field("horizontalOverjet", model.Measurement(model.Required(), model.Min(-20), model.Max(20), model.Unit(unitMM))),
		model.Field("verticalOverlap", model.Measurement(model.Required(), model.Min(-10), model.Max(20), model.Unit(unitMM))),
		model.Field("midlineDeviation", model.Group(
			model.Field("direction", model.Enum([]string{"right", "left", "na"}, model.Required())),
			model.Field("mm", model.Measurement(model.Required(), model.Max(20), model.Unit(unitMM),
				model.EnableWhen("direction", model.OpNotEquals, "na"))),
		)),
	)
}

func e3() *model.Node {
	return model.Group(
		model.Field("pattern", model.Enum(
			[]string{"straight", "correctedDeviation", "uncorrectedRight", "uncorrectedLeft"},
			model.Required(),
		)),
	)
}

// interview templates the pain questions of a movement over side, region
// and pain type.
func interview() *model.Node {
	return model.Repeat(model.AxisSide, anatomy.Sides, func(anatomy.Side) *model.Node {
		return model.Repeat(model.AxisRegion, anatomy.AllRegions, func(region anatomy.Region) *model.Node {
			return model.Group(model.Expand(model.AxisPainType, region.InterviewPainTypes(), func(pt anatomy.PainType) *model.Node {
				if pt == anatomy.PainTypePain {
					return model.YesNo()
				}
				return model.YesNo(model.EnableWhen(string(anatomy.PainTypePain), model.OpEquals, model.AnswerYes))
			})...)
		})
	})
}

type movementOptions struct {
	max        float64
	terminated bool
	interview  bool
}

func movement(opts movementOptions) *model.Node {
	children := []model.Child{
		model.Field("measurement", model.Measurement(model.Required(), model.Max(opts.max), model.Unit(unitMM))),
	}
	if opts.terminated {
		children = append(children, model.Field("terminated", model.Flag()))
	}
	children = append(children, model.Field("refused", model.Flag()))
	if opts.interview {
		children = append(children,
			model.Field("interviewRefused", model.Flag()),
			model.Field("interview", interview()),
		)
	}
	return model.Group(children...)
}

func e4() *model.Node {
	return model.Group(
		model.Field(MovementPainFree, movement(movementOptions{max: 90})),
		model.Field(MovementMaxUnassisted, movement(movementOptions{max: 90, terminated: true, interview: true})),
		model.Field(MovementMaxAssisted, movement(movementOptions{max: 90, terminated: true, interview: true})),
	)
}

func e5() *model.Node {
	return model.Group(
		model.Field(MovementLateralRight, movement(movementOptions{max: 30, interview: true})),
		model.Field(MovementLateralLeft, movement(movementOptions{max: 30, interview: true})),
		model.Field(MovementProtrusive, movement(movementOptions{max: 30, interview: true})),
	)
}

// noise builds one click/crepitus group with the given observation keys.
// Clicks also ask whether the click was painful once the patient reports it.
func noise(observations []string, click bool) *model.Node {
	children := make([]model.Child, 0, len(observations)+1)
	for _, key := range observations {
		children = append(children, model.Field(key, yesNoRequired()))
	}
	if click {
		children = append(children, model.Field("painWithClick",
			yesNoRequired(model.EnableWhen("patient", model.OpEquals, model.AnswerYes))))
	}
	return model.Group(children...)
}

func e6() *model.Node {
	observations := []string{"open", "close", "patient"}
	return model.Repeat(model.AxisSide, anatomy.Sides, func(anatomy.Side) *model.Node {
		return model.Group(
			model.Field("click", noise(observations, true)),
			model.Field("crepitus", noise(observations, false)),
		)
	})
}

func e7() *model.Node {
	observations := []string{"examiner", "patient"}
	return model.Repeat(model.AxisSide, anatomy.Sides, func(anatomy.Side) *model.Node {
		return model.Group(
			model.Field("click", noise(observations, true)),
			model.Field("crepitus", noise(observations, false)),
		)
	})
}

func e8() *model.Node {
	return model.Repeat(model.AxisSide, anatomy.Sides, func(anatomy.Side) *model.Node {
		return model.Group(
			model.Field("whileOpening", yesNoRequired()),
			model.Field("whileOpeningReduction", yesNoRequired(model.EnableWhen("whileOpening", model.OpEquals, model.AnswerYes))),
			model.Field("wideOpen", yesNoRequired()),
			model.Field("wideOpenReduction", yesNoRequired(model.EnableWhen("wideOpen", model.OpEquals, model.AnswerYes))),
		)
	})
}

// palpation templates {side}.{site}.{painType} with a per-side refusal flag.
func palpation(sites []anatomy.Site) *model.Node {
	return model.Repeat(model.AxisSide, anatomy.Sides, func(anatomy.Side) *model.Node {
		children := []model.Child{model.Field("refused", model.Flag())}
		children = append(children, model.Expand(model.AxisSite, sites, func(site anatomy.Site) *model.Node {
			return model.Group(model.Expand(model.AxisPainType, site.PalpationPainTypes(), func(pt anatomy.PainType) *model.Node {
				if pt == anatomy.PainTypePain {
					return model.YesNo()
				}
				return model.YesNo(model.EnableWhen(string(anatomy.PainTypePain), model.OpEquals, model.AnswerYes))
			})...)
		})...)
		return model.Group(children...)
	})
}
