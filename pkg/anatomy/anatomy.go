// Package anatomy holds the clinical axes used to template repeated question
// groups (side, interview region, palpation site, pain type) together with
// the capability tables the validators consult.
package anatomy

// Side is the patient side. Right is always presented first.
type Side string

const (
	SideRight Side = "right"
	SideLeft  Side = "left"
)

// Sides lists sides in presentation order.
var Sides = []Side{SideRight, SideLeft}

// PainType names a pain question asked per region or site.
type PainType string

const (
	PainTypePain             PainType = "pain"
	PainTypeFamiliarPain     PainType = "familiarPain"
	PainTypeFamiliarHeadache PainType = "familiarHeadache"
	PainTypeReferredPain     PainType = "referredPain"
	PainTypeSpreadingPain    PainType = "spreadingPain"
)

// PainTypes lists pain types in presentation order.
var PainTypes = []PainType{
	PainTypePain,
	PainTypeFamiliarPain,
	PainTypeFamiliarHeadache,
	PainTypeReferredPain,
	PainTypeSpreadingPain,
}

// Region is an anatomical region used by movement interviews and as the
// grouping key for palpation sites.
type Region string

const (
	RegionTemporalis          Region = "temporalis"
	RegionMasseter            Region = "masseter"
	RegionTMJ                 Region = "tmj"
	RegionOtherMast           Region = "otherMast"
	RegionNonMast             Region = "nonMast"
	RegionLateralPterygoid    Region = "lateralPterygoid"
	RegionTemporalisTendon    Region = "temporalisTendon"
	RegionPosteriorMandibular Region = "posteriorMandibular"
	RegionSubmandibular       Region = "submandibular"
)

// BaseRegions is the default interview coverage.
var BaseRegions = []Region{
	RegionTemporalis,
	RegionMasseter,
	RegionTMJ,
	RegionOtherMast,
	RegionNonMast,
}

// AllRegions extends BaseRegions with the supplemental regions.
var AllRegions = append(append([]Region(nil), BaseRegions...),
	RegionLateralPterygoid,
	RegionTemporalisTendon,
	RegionPosteriorMandibular,
	RegionSubmandibular,
)

// InterviewRegions returns the region set an interview check covers.
func InterviewRegions(includeAll bool) []Region {
	if includeAll {
		return AllRegions
	}
	return BaseRegions
}

var headacheRegions = map[Region]bool{
	RegionTemporalis:       true,
	RegionTemporalisTendon: true,
}

// HasHeadache reports whether pain in the region can be familiar headache.
func (r Region) HasHeadache() bool { return headacheRegions[r] }

// InterviewPainTypes returns the pain questions asked for a region during a
// movement interview.
func (r Region) InterviewPainTypes() []PainType {
	if r.HasHeadache() {
		return []PainType{PainTypePain, PainTypeFamiliarPain, PainTypeFamiliarHeadache}
	}
	return []PainType{PainTypePain, PainTypeFamiliarPain}
}

// Known reports whether s is a defined side.
func (s Side) Known() bool { return s == SideRight || s == SideLeft }

// Known reports whether p is a defined pain type.
func (p PainType) Known() bool {
	for _, candidate := range PainTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// Known reports whether r is a defined region.
func (r Region) Known() bool {
	for _, candidate := range AllRegions {
		if candidate == r {
			return true
		}
	}
	return false
}
