package instance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
)

var (
	// ErrUnknownPath is returned when a path is not part of the compiled set.
	ErrUnknownPath = errors.New("instance: unknown path")
	// ErrDuplicatePath is returned when two instances share a path.
	ErrDuplicatePath = errors.New("instance: duplicate path")
)

// Index is a read-only relation over instances with per-column lookups.
// Every query returns rows in projection order.
type Index struct {
	rows      []Instance
	byPath    map[string]int
	bySection map[string][]int
	bySide    map[anatomy.Side][]int
	byRegion  map[anatomy.Region][]int
	bySite    map[anatomy.Site][]int
	byPain    map[anatomy.PainType][]int
	byRender  map[RenderType][]int
}

// NewIndex builds an index. Paths must be globally unique.
func NewIndex(instances []Instance) (*Index, error) {
	ix := &Index{
		rows:      append([]Instance(nil), instances...),
		byPath:    make(map[string]int, len(instances)),
		bySection: make(map[string][]int),
		bySide:    make(map[anatomy.Side][]int),
		byRegion:  make(map[anatomy.Region][]int),
		bySite:    make(map[anatomy.Site][]int),
		byPain:    make(map[anatomy.PainType][]int),
		byRender:  make(map[RenderType][]int),
	}
	for idx, inst := range ix.rows {
		key := inst.Key()
		if _, dup := ix.byPath[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, key)
		}
		ix.byPath[key] = idx
		ix.bySection[inst.Section] = append(ix.bySection[inst.Section], idx)
		ix.byRender[inst.RenderType] = append(ix.byRender[inst.RenderType], idx)
		if side := inst.Context.Side; side != "" {
			ix.bySide[side] = append(ix.bySide[side], idx)
		}
		if region := inst.Context.Region; region != "" {
			ix.byRegion[region] = append(ix.byRegion[region], idx)
		}
		if site := inst.Context.Site; site != "" {
			ix.bySite[site] = append(ix.bySite[site], idx)
		}
		if pain := inst.Context.PainType; pain != "" {
			ix.byPain[pain] = append(ix.byPain[pain], idx)
		}
	}
	return ix, nil
}

// MustIndex is NewIndex that panics on error.
func MustIndex(instances []Instance) *Index {
	ix, err := NewIndex(instances)
	if err != nil {
		panic(err)
	}
	return ix
}

// All returns every row.
func (ix *Index) All() []Instance {
	return append([]Instance(nil), ix.rows...)
}

// Len reports the row count.
func (ix *Index) Len() int { return len(ix.rows) }

// Has reports whether path is compiled.
func (ix *Index) Has(path string) bool {
	_, ok := ix.byPath[path]
	return ok
}

// Get returns the instance at path or ErrUnknownPath.
func (ix *Index) Get(path string) (Instance, error) {
	idx, ok := ix.byPath[path]
	if !ok {
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownPath, path)
	}
	return ix.rows[idx], nil
}

// MustGet returns the instance at path and panics when it does not exist,
// so typos in hand-written paths fail fast.
func (ix *Index) MustGet(path string) Instance {
	inst, err := ix.Get(path)
	if err != nil {
		panic(err)
	}
	return inst
}

// BySection returns the rows of one section.
func (ix *Index) BySection(sectionID string) []Instance {
	return ix.pick(ix.bySection[sectionID])
}

// ByPrefix returns rows whose path starts with prefix, segment-wise.
func (ix *Index) ByPrefix(prefix string) []Instance {
	p := fieldpath.Parse(prefix)
	return ix.Filter(func(inst Instance) bool { return inst.Path.HasPrefix(p) })
}

// BySide returns rows templated for side.
func (ix *Index) BySide(side anatomy.Side) []Instance { return ix.pick(ix.bySide[side]) }

// ByRegion returns rows tagged with region.
func (ix *Index) ByRegion(region anatomy.Region) []Instance { return ix.pick(ix.byRegion[region]) }

// BySite returns rows tagged with site.
func (ix *Index) BySite(site anatomy.Site) []Instance { return ix.pick(ix.bySite[site]) }

// ByPainType returns rows tagged with painType.
func (ix *Index) ByPainType(painType anatomy.PainType) []Instance {
	return ix.pick(ix.byPain[painType])
}

// ByRenderType returns rows rendered as renderType.
func (ix *Index) ByRenderType(renderType RenderType) []Instance {
	return ix.pick(ix.byRender[renderType])
}

// ByContext returns rows whose context matches every non-empty filter field.
func (ix *Index) ByContext(filter Context) []Instance {
	candidates := ix.narrowest(filter)
	if candidates == nil {
		return ix.Filter(func(inst Instance) bool { return inst.Context.Matches(filter) })
	}
	var out []Instance
	for _, idx := range candidates {
		if ix.rows[idx].Context.Matches(filter) {
			out = append(out, ix.rows[idx])
		}
	}
	return out
}

// Measurements returns all measurement rows.
func (ix *Index) Measurements() []Instance { return ix.ByRenderType(RenderMeasurement) }

// YesNoQuestions returns all yes/no rows.
func (ix *Index) YesNoQuestions() []Instance { return ix.ByRenderType(RenderYesNo) }

// InterviewQuestions returns region/side pain questions of movement
// interviews (tagged with region and pain type but not with a site).
func (ix *Index) InterviewQuestions() []Instance {
	return ix.Filter(IsInterviewQuestion)
}

// IsInterviewQuestion reports whether inst belongs to a movement interview.
func IsInterviewQuestion(inst Instance) bool {
	ctx := inst.Context
	return ctx.Region != "" && ctx.PainType != "" && ctx.Side != "" && ctx.Site == ""
}

// Glob returns rows whose path matches a doublestar pattern. Patterns may
// use '.' or '/' between segments, e.g. "e9.*.temporalis*.pain" or
// "e4/**/familiarPain".
func (ix *Index) Glob(pattern string) ([]Instance, error) {
	normalized := pattern
	if !strings.Contains(normalized, "/") {
		normalized = strings.ReplaceAll(normalized, fieldpath.Separator, "/")
	}
	if !doublestar.ValidatePattern(normalized) {
		return nil, fmt.Errorf("instance: invalid glob pattern %q", pattern)
	}
	return ix.Filter(func(inst Instance) bool {
		return doublestar.MatchUnvalidated(normalized, inst.Path.Slash())
	}), nil
}

// Filter returns rows satisfying keep.
func (ix *Index) Filter(keep func(Instance) bool) []Instance {
	var out []Instance
	for _, inst := range ix.rows {
		if keep(inst) {
			out = append(out, inst)
		}
	}
	return out
}

// Sections lists section ids in first-seen order.
func (ix *Index) Sections() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, inst := range ix.rows {
		if _, ok := seen[inst.Section]; ok {
			continue
		}
		seen[inst.Section] = struct{}{}
		out = append(out, inst.Section)
	}
	return out
}

func (ix *Index) pick(indices []int) []Instance {
	if len(indices) == 0 {
		return nil
	}
	out := make([]Instance, 0, len(indices))
	for _, idx := range indices {
		out = append(out, ix.rows[idx])
	}
	return out
}

func (ix *Index) narrowest(filter Context) []int {
	var best []int
	found := false
	consider := func(candidates []int, set bool) {
		if !set {
			return
		}
		if !found || len(candidates) < len(best) {
			best = candidates
			found = true
		}
	}
	consider(ix.bySide[filter.Side], filter.Side != "")
	consider(ix.byRegion[filter.Region], filter.Region != "")
	consider(ix.bySite[filter.Site], filter.Site != "")
	consider(ix.byPain[filter.PainType], filter.PainType != "")
	if found && best == nil {
		return []int{}
	}
	return best
}
