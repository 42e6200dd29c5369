package anatomy

import "fmt"

// Site is a palpation site.
type Site string

const (
	SiteTemporalisPosterior  Site = "temporalisPosterior"
	SiteTemporalisMiddle     Site = "temporalisMiddle"
	SiteTemporalisAnterior   Site = "temporalisAnterior"
	SiteMasseterOrigin       Site = "masseterOrigin"
	SiteMasseterBody         Site = "masseterBody"
	SiteMasseterInsertion    Site = "masseterInsertion"
	SiteTMJLateralPole       Site = "tmjLateralPole"
	SiteTMJAroundLateralPole Site = "tmjAroundLateralPole"

	SitePosteriorMandibular Site = "posteriorMandibular"
	SiteSubmandibular       Site = "submandibular"
	SiteLateralPterygoid    Site = "lateralPterygoid"
	SiteTemporalisTendon    Site = "temporalisTendon"
)

// SiteConfig describes what a palpation site supports.
type SiteConfig struct {
	Region       Region
	HasHeadache  bool
	HasSpreading bool
}

var siteConfigs = map[Site]SiteConfig{
	SiteTemporalisPosterior:  {Region: RegionTemporalis, HasHeadache: true, HasSpreading: true},
	SiteTemporalisMiddle:     {Region: RegionTemporalis, HasHeadache: true, HasSpreading: true},
	SiteTemporalisAnterior:   {Region: RegionTemporalis, HasHeadache: true, HasSpreading: true},
	SiteMasseterOrigin:       {Region: RegionMasseter, HasSpreading: true},
	SiteMasseterBody:         {Region: RegionMasseter, HasSpreading: true},
	SiteMasseterInsertion:    {Region: RegionMasseter, HasSpreading: true},
	SiteTMJLateralPole:       {Region: RegionTMJ},
	SiteTMJAroundLateralPole: {Region: RegionTMJ},

	SitePosteriorMandibular: {Region: RegionPosteriorMandibular, HasSpreading: true},
	SiteSubmandibular:       {Region: RegionSubmandibular, HasSpreading: true},
	SiteLateralPterygoid:    {Region: RegionLateralPterygoid, HasSpreading: true},
	SiteTemporalisTendon:    {Region: RegionTemporalisTendon, HasHeadache: true, HasSpreading: true},
}

// E9Sites are the sites palpated in the standard examination, in order.
var E9Sites = []Site{
	SiteTemporalisPosterior,
	SiteTemporalisMiddle,
	SiteTemporalisAnterior,
	SiteMasseterOrigin,
	SiteMasseterBody,
	SiteMasseterInsertion,
	SiteTMJLateralPole,
	SiteTMJAroundLateralPole,
}

// SupplementalSites are palpated in the supplemental (E10) examination.
var SupplementalSites = []Site{
	SitePosteriorMandibular,
	SiteSubmandibular,
	SiteLateralPterygoid,
	SiteTemporalisTendon,
}

// PalpationRegions are the regions that can be palpated in grouped mode.
var PalpationRegions = []Region{RegionTemporalis, RegionMasseter, RegionTMJ}

// Config returns the capability record of a site.
func (s Site) Config() (SiteConfig, bool) {
	cfg, ok := siteConfigs[s]
	return cfg, ok
}

// Region returns the region a site belongs to.
func (s Site) Region() Region { return siteConfigs[s].Region }

// IsPalpationRegion reports whether r can be palpated in grouped mode.
func (r Region) IsPalpationRegion() bool {
	for _, candidate := range PalpationRegions {
		if candidate == r {
			return true
		}
	}
	return false
}

// PalpationPainTypes lists the questions stored per site regardless of mode.
func (s Site) PalpationPainTypes() []PainType {
	cfg := siteConfigs[s]
	out := []PainType{PainTypePain, PainTypeFamiliarPain}
	if cfg.HasHeadache {
		out = append(out, PainTypeFamiliarHeadache)
	}
	out = append(out, PainTypeReferredPain)
	if cfg.HasSpreading {
		out = append(out, PainTypeSpreadingPain)
	}
	return out
}

// PalpationMode selects which palpation questions are required.
type PalpationMode string

const (
	PalpationModeBasic    PalpationMode = "basic"
	PalpationModeStandard PalpationMode = "standard"
	PalpationModeExtended PalpationMode = "extended"
)

// DefaultPalpationMode applies when the caller leaves the mode unset.
const DefaultPalpationMode = PalpationModeStandard

var modeQuestions = map[PalpationMode][]PainType{
	PalpationModeBasic:    {PainTypePain, PainTypeFamiliarPain, PainTypeFamiliarHeadache},
	PalpationModeStandard: {PainTypePain, PainTypeFamiliarPain, PainTypeFamiliarHeadache, PainTypeReferredPain},
	PalpationModeExtended: {PainTypePain, PainTypeFamiliarPain, PainTypeFamiliarHeadache, PainTypeReferredPain, PainTypeSpreadingPain},
}

// ParsePalpationMode validates a mode name. The empty string maps to the
// default mode.
func ParsePalpationMode(raw string) (PalpationMode, error) {
	if raw == "" {
		return DefaultPalpationMode, nil
	}
	mode := PalpationMode(raw)
	if _, ok := modeQuestions[mode]; !ok {
		return "", fmt.Errorf("anatomy: unknown palpation mode %q", raw)
	}
	return mode, nil
}

// Questions returns the mode's question list before capability filtering.
func (m PalpationMode) Questions() []PainType {
	if qs, ok := modeQuestions[m]; ok {
		return qs
	}
	return modeQuestions[DefaultPalpationMode]
}

// ApplicableQuestions filters the mode's questions by site capability.
func (m PalpationMode) ApplicableQuestions(cfg SiteConfig) []PainType {
	var out []PainType
	for _, q := range m.Questions() {
		switch q {
		case PainTypeFamiliarHeadache:
			if !cfg.HasHeadache {
				continue
			}
		case PainTypeSpreadingPain:
			if !cfg.HasSpreading {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

// SiteDetailMode chooses between per-site and per-region palpation.
type SiteDetailMode string

const (
	SiteDetailDetailed SiteDetailMode = "detailed"
	SiteDetailGrouped  SiteDetailMode = "grouped"
)

// ParseSiteDetailMode validates a detail mode name; empty means detailed.
func ParseSiteDetailMode(raw string) (SiteDetailMode, error) {
	switch SiteDetailMode(raw) {
	case "", SiteDetailDetailed:
		return SiteDetailDetailed, nil
	case SiteDetailGrouped:
		return SiteDetailGrouped, nil
	default:
		return "", fmt.Errorf("anatomy: unknown site detail mode %q", raw)
	}
}

// RegionConfig merges the capabilities of all sites in a region, used when
// palpation is recorded per region.
func RegionConfig(r Region) SiteConfig {
	cfg := SiteConfig{Region: r}
	for _, siteCfg := range siteConfigs {
		if siteCfg.Region != r {
			continue
		}
		cfg.HasHeadache = cfg.HasHeadache || siteCfg.HasHeadache
		cfg.HasSpreading = cfg.HasSpreading || siteCfg.HasSpreading
	}
	return cfg
}

// Known reports whether s is a defined palpation site.
func (s Site) Known() bool {
	_, ok := siteConfigs[s]
	return ok
}
