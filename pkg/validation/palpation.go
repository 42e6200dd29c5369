package validation

import (
	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/instance"
)

// IncompletePalpationSite reports the unanswered palpation questions of one
// site (detailed mode) or one palpation region (grouped mode) on one side.
type IncompletePalpationSite struct {
	Site                    anatomy.Site   `json:"site,omitempty"`
	Region                  anatomy.Region `json:"region"`
	Side                    anatomy.Side   `json:"side"`
	Grouped                 bool           `json:"grouped,omitempty"`
	MissingPain             bool           `json:"missingPain"`
	MissingFamiliarPain     bool           `json:"missingFamiliarPain"`
	MissingFamiliarHeadache bool           `json:"missingFamiliarHeadache"`
	MissingReferredPain     bool           `json:"missingReferredPain"`
	MissingSpreadingPain    bool           `json:"missingSpreadingPain"`
	Paths                   []string       `json:"paths,omitempty"`
}

// PalpationResult is the outcome of ValidatePalpationCompletion.
type PalpationResult struct {
	Valid           bool                      `json:"valid"`
	IncompleteSites []IncompletePalpationSite `json:"incompleteSites,omitempty"`
}

// FieldErrors converts incomplete sites into per-leaf errors.
func (r PalpationResult) FieldErrors() []FieldError {
	var out []FieldError
	for _, site := range r.IncompleteSites {
		out = append(out, pathErrors(site.Paths)...)
	}
	return out
}

func (s *IncompletePalpationSite) mark(painType anatomy.PainType) {
	switch painType {
	case anatomy.PainTypePain:
		s.MissingPain = true
	case anatomy.PainTypeFamiliarPain:
		s.MissingFamiliarPain = true
	case anatomy.PainTypeFamiliarHeadache:
		s.MissingFamiliarHeadache = true
	case anatomy.PainTypeReferredPain:
		s.MissingReferredPain = true
	case anatomy.PainTypeSpreadingPain:
		s.MissingSpreadingPain = true
	}
}

// ValidatePalpationCompletion checks palpation answers per site, or per
// palpation region in grouped detail mode. The palpation mode and the
// site's capabilities decide which questions apply; pain is always
// required and the remaining applicable questions are required once pain
// is "yes". A true {side}.refused flag exempts the side. Grouped mode only
// covers the palpation regions; sites elsewhere are skipped.
func ValidatePalpationCompletion(instances []instance.Instance, get fieldpath.Getter, ctx Context) PalpationResult {
	mode := ctx.palpationMode()
	grouped := ctx.grouped()
	refused := refusalCache{get: get, locate: fieldpath.Path.SideRefused}

	var g grouping
	for _, inst := range instances {
		site := inst.Context.Site
		if site == "" || inst.Context.Side == "" || inst.Context.PainType == "" {
			continue
		}
		if refused.check(inst.Path) {
			continue
		}
		key := groupKey{site: site, region: site.Region(), side: inst.Context.Side}
		if grouped {
			if !key.region.IsPalpationRegion() {
				continue
			}
			key.site = ""
		}
		g.add(key, inst)
	}

	result := PalpationResult{Valid: true}
	for _, key := range g.order {
		slot := g.groups[key]
		cfg := anatomy.RegionConfig(key.region)
		if key.site != "" {
			cfg, _ = key.site.Config()
		}
		entry := IncompletePalpationSite{Site: key.site, Region: key.region, Side: key.side, Grouped: grouped}

		pain, ok := slot.answer(anatomy.PainTypePain, get)
		if !ok {
			continue
		}
		switch {
		case pain.missing:
			entry.mark(anatomy.PainTypePain)
			entry.Paths = append(entry.Paths, pain.empty...)
		case pain.yes:
			for _, question := range mode.ApplicableQuestions(cfg) {
				if question == anatomy.PainTypePain {
					continue
				}
				if a, ok := slot.answer(question, get); ok && a.missing {
					entry.mark(question)
					entry.Paths = append(entry.Paths, a.empty...)
				}
			}
		}
		if len(entry.Paths) > 0 {
			result.IncompleteSites = append(result.IncompleteSites, entry)
		}
	}
	result.Valid = len(result.IncompleteSites) == 0
	return result
}
