package model

import internalmodel "github.com/goliatone/go-dctmd/internal/model"

// Leaf options.
var (
	Required   = internalmodel.Required
	Min        = internalmodel.Min
	Max        = internalmodel.Max
	Unit       = internalmodel.Unit
	Default    = internalmodel.Default
	LabelKey   = internalmodel.LabelKey
	EnableWhen = internalmodel.EnableWhen
)

// Node constructors.
var (
	Field         = internalmodel.Field
	Group         = internalmodel.Group
	AxisField     = internalmodel.AxisField
	YesNo         = internalmodel.YesNo
	Enum          = internalmodel.Enum
	Measurement   = internalmodel.Measurement
	CheckboxGroup = internalmodel.CheckboxGroup
	Flag          = internalmodel.Flag
	Text          = internalmodel.Text
)

// Expand produces one axis child per key.
func Expand[K ~string](axis Axis, keys []K, build func(K) *Node) []Child {
	return internalmodel.Expand(axis, keys, build)
}

// Repeat builds a group whose children are all values of axis.
func Repeat[K ~string](axis Axis, keys []K, build func(K) *Node) *Node {
	return internalmodel.Repeat(axis, keys, build)
}

// ValidateSection checks the structural invariants of a section model.
func ValidateSection(section Section) error {
	return internalmodel.ValidateSection(section)
}

// Defaults builds the initial value tree of a node.
func Defaults(node *Node) any {
	return internalmodel.Defaults(node)
}

// Label derives a readable fallback label from a key.
func Label(key string) string {
	return internalmodel.DefaultLabeler(key)
}
