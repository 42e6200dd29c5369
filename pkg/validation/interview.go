package validation

import (
	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/instance"
)

// IncompleteRegion reports the unanswered pain-interview questions of one
// region on one side.
type IncompleteRegion struct {
	Region                  anatomy.Region `json:"region"`
	Side                    anatomy.Side   `json:"side"`
	MissingPain             bool           `json:"missingPain"`
	MissingFamiliarPain     bool           `json:"missingFamiliarPain"`
	MissingFamiliarHeadache bool           `json:"missingFamiliarHeadache"`
	// Paths are the offending leaves, in question order.
	Paths []string `json:"paths,omitempty"`
}

// InterviewResult is the outcome of ValidateInterviewCompletion.
type InterviewResult struct {
	Valid             bool               `json:"valid"`
	IncompleteRegions []IncompleteRegion `json:"incompleteRegions,omitempty"`
}

// FieldErrors converts incomplete regions into per-leaf errors.
func (r InterviewResult) FieldErrors() []FieldError {
	var out []FieldError
	for _, region := range r.IncompleteRegions {
		out = append(out, pathErrors(region.Paths)...)
	}
	return out
}

type groupKey struct {
	region anatomy.Region
	site   anatomy.Site
	side   anatomy.Side
}

// answers maps a pain type to the leaf paths answering it. Per-site groups
// hold one path per type; grouped palpation regions hold one per site.
type answers map[anatomy.PainType][]fieldpath.Path

type grouping struct {
	order  []groupKey
	groups map[groupKey]answers
}

func (g *grouping) add(key groupKey, inst instance.Instance) {
	if g.groups == nil {
		g.groups = make(map[groupKey]answers)
	}
	slot, ok := g.groups[key]
	if !ok {
		slot = make(answers)
		g.groups[key] = slot
		g.order = append(g.order, key)
	}
	slot[inst.Context.PainType] = append(slot[inst.Context.PainType], inst.Path)
}

// ValidateInterviewCompletion checks that every in-scope (region, side)
// pair has its pain question answered, and its familiar-pain and
// familiar-headache follow-ups answered when pain is "yes". A true
// interviewRefused flag exempts the whole interview.
func ValidateInterviewCompletion(instances []instance.Instance, get fieldpath.Getter, ctx Context) InterviewResult {
	scope := ctx.regions()
	refused := refusalCache{get: get, locate: fieldpath.Path.InterviewRefused}

	var g grouping
	for _, inst := range instances {
		if !instance.IsInterviewQuestion(inst) || !scope[inst.Context.Region] {
			continue
		}
		if refused.check(inst.Path) {
			continue
		}
		g.add(groupKey{region: inst.Context.Region, side: inst.Context.Side}, inst)
	}

	result := InterviewResult{Valid: true}
	for _, key := range g.order {
		slot := g.groups[key]
		entry := IncompleteRegion{Region: key.region, Side: key.side}
		pain, ok := slot.answer(anatomy.PainTypePain, get)
		if !ok {
			continue
		}
		switch {
		case pain.missing:
			entry.MissingPain = true
			entry.Paths = append(entry.Paths, pain.empty...)
		case pain.yes:
			if fp, ok := slot.answer(anatomy.PainTypeFamiliarPain, get); ok && fp.missing {
				entry.MissingFamiliarPain = true
				entry.Paths = append(entry.Paths, fp.empty...)
			}
			if key.region.HasHeadache() {
				if fh, ok := slot.answer(anatomy.PainTypeFamiliarHeadache, get); ok && fh.missing {
					entry.MissingFamiliarHeadache = true
					entry.Paths = append(entry.Paths, fh.empty...)
				}
			}
		}
		if len(entry.Paths) > 0 {
			result.IncompleteRegions = append(result.IncompleteRegions, entry)
		}
	}
	result.Valid = len(result.IncompleteRegions) == 0
	return result
}

// answer is the aggregated state of one question over its leaf paths:
// "yes" when any leaf is yes, otherwise "no" when any leaf is no,
// otherwise missing.
type answer struct {
	yes     bool
	missing bool
	empty   []string
}

func (a answers) answer(painType anatomy.PainType, get fieldpath.Getter) (answer, bool) {
	paths, ok := a[painType]
	if !ok || len(paths) == 0 {
		return answer{}, false
	}
	var out answer
	answered := false
	for _, path := range paths {
		value := get.At(path)
		switch {
		case isYes(value):
			out.yes = true
			answered = true
		case isNo(value):
			answered = true
		case isEmpty(value):
			out.empty = append(out.empty, path.String())
		default:
			answered = true
		}
	}
	out.missing = !answered
	return out, true
}

// refusalCache memoises refusal flag lookups keyed by the flag path.
type refusalCache struct {
	get    fieldpath.Getter
	locate func(fieldpath.Path) fieldpath.Path
	seen   map[string]bool
}

func (c *refusalCache) check(path fieldpath.Path) bool {
	flag := c.locate(path)
	key := flag.String()
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if refused, ok := c.seen[key]; ok {
		return refused
	}
	refused := isTrue(c.get.At(flag))
	c.seen[key] = refused
	return refused
}

func pathErrors(paths []string) []FieldError {
	out := make([]FieldError, 0, len(paths))
	for _, raw := range paths {
		path := fieldpath.Parse(raw)
		out = append(out, missingError(path, path.Leaf()))
	}
	return out
}
