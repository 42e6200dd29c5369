package model

// LeafOption configures a leaf node.
type LeafOption func(*Node)

// Required marks the leaf as required.
func Required() LeafOption {
	return func(n *Node) { n.Required = true }
}

// Min sets the lower bound of a measurement.
func Min(value float64) LeafOption {
	return func(n *Node) { n.Min = &value }
}

// Max sets the upper bound of a measurement.
func Max(value float64) LeafOption {
	return func(n *Node) { n.Max = &value }
}

// Unit sets the measurement unit.
func Unit(unit string) LeafOption {
	return func(n *Node) { n.Unit = unit }
}

// Default sets the initial value.
func Default(value any) LeafOption {
	return func(n *Node) { n.Default = value }
}

// LabelKey overrides the derived label key.
func LabelKey(key string) LeafOption {
	return func(n *Node) { n.LabelKey = key }
}

// EnableWhen enables the leaf only when sibling field compares to value.
func EnableWhen(field string, op Operator, value any) LeafOption {
	return func(n *Node) {
		n.EnableWhen = &Condition{Field: field, Op: op, Value: value}
	}
}

// Field pairs a key with a node for group construction.
func Field(key string, node *Node) Child {
	return Child{Key: key, Node: node}
}

// Group builds a plain group.
func Group(children ...Child) *Node {
	return &Node{Kind: KindGroup, Children: children}
}

// AxisField pairs an axis value with a node.
func AxisField(axis Axis, key string, node *Node) Child {
	return Child{Key: key, Axis: axis, Node: node}
}

// Expand produces one axis child per key, each built by build.
func Expand[K ~string](axis Axis, keys []K, build func(K) *Node) []Child {
	children := make([]Child, 0, len(keys))
	for _, key := range keys {
		children = append(children, AxisField(axis, string(key), build(key)))
	}
	return children
}

// Repeat builds a group whose children are all values of axis.
func Repeat[K ~string](axis Axis, keys []K, build func(K) *Node) *Node {
	return Group(Expand(axis, keys, build)...)
}

func leaf(kind Kind, options []string, opts []LeafOption) *Node {
	n := &Node{Kind: kind}
	if len(options) > 0 {
		n.Options = append([]string(nil), options...)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// YesNo builds a yes/no question.
func YesNo(opts ...LeafOption) *Node { return leaf(KindYesNo, YesNoOptions, opts) }

// Enum builds a single-choice question.
func Enum(options []string, opts ...LeafOption) *Node { return leaf(KindEnum, options, opts) }

// Measurement builds a numeric question.
func Measurement(opts ...LeafOption) *Node { return leaf(KindMeasurement, nil, opts) }

// CheckboxGroup builds a multi-select question.
func CheckboxGroup(options []string, opts ...LeafOption) *Node {
	return leaf(KindCheckboxGroup, options, opts)
}

// Flag builds a boolean toggle such as a refusal marker.
func Flag(opts ...LeafOption) *Node {
	return leaf(KindFlag, nil, append([]LeafOption{Default(false)}, opts...))
}

// Text builds a free-text leaf.
func Text(opts ...LeafOption) *Node { return leaf(KindText, nil, opts) }
