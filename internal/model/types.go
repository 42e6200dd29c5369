package model

// Kind is the node variant of the declarative examination model.
type Kind string

const (
	KindGroup         Kind = "group"
	KindYesNo         Kind = "yesNo"
	KindEnum          Kind = "enum"
	KindMeasurement   Kind = "measurement"
	KindCheckboxGroup Kind = "checkboxGroup"
	KindFlag          Kind = "flag"
	KindText          Kind = "text"
)

// IsLeaf reports whether the kind carries a value.
func (k Kind) IsLeaf() bool { return k != KindGroup && k != "" }

// Axis marks a child whose key is a value of a templating axis. The instance
// projection tags every leaf below such a child with the key.
type Axis string

const (
	AxisNone     Axis = ""
	AxisSide     Axis = "side"
	AxisRegion   Axis = "region"
	AxisSite     Axis = "site"
	AxisPainType Axis = "painType"
)

// Operator compares a sibling value in an enable condition.
type Operator string

const (
	OpEquals    Operator = "eq"
	OpNotEquals Operator = "neq"
)

// YesNo answer values.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// YesNoOptions are the options of every yesNo leaf.
var YesNoOptions = []string{AnswerYes, AnswerNo}

// Condition enables a leaf depending on a sibling leaf in the same group.
type Condition struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// Child is a keyed entry of a group. Declaration order is significant.
type Child struct {
	Key  string `json:"key"`
	Axis Axis   `json:"axis,omitempty"`
	Node *Node  `json:"node"`
}

// Node is one entry of the model tree: either a group of keyed children or a
// typed leaf question.
type Node struct {
	Kind       Kind       `json:"kind"`
	Children   []Child    `json:"children,omitempty"`
	Options    []string   `json:"options,omitempty"`
	Default    any        `json:"default,omitempty"`
	Required   bool       `json:"required,omitempty"`
	Min        *float64   `json:"min,omitempty"`
	Max        *float64   `json:"max,omitempty"`
	Unit       string     `json:"unit,omitempty"`
	LabelKey   string     `json:"labelKey,omitempty"`
	EnableWhen *Condition `json:"enableWhen,omitempty"`
}

// Child returns the child node stored under key.
func (n *Node) Child(key string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, child := range n.Children {
		if child.Key == key {
			return child.Node, true
		}
	}
	return nil, false
}

// Keys lists child keys in declaration order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	keys := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		keys = append(keys, child.Key)
	}
	return keys
}

// Section is the model of one examination area.
type Section struct {
	ID   string `json:"id"`
	Root *Node  `json:"root"`
}
