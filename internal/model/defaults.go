package model

// Defaults builds the initial value tree of a node. Groups become nested
// maps keyed like the model; leaves contribute their declared default, nil
// when none is set, and checkbox groups default to an empty selection.
func Defaults(node *Node) any {
	if node == nil {
		return nil
	}
	if node.Kind == KindGroup {
		out := make(map[string]any, len(node.Children))
		for _, child := range node.Children {
			out[child.Key] = Defaults(child.Node)
		}
		return out
	}
	if node.Default != nil {
		if values, ok := node.Default.([]string); ok {
			return append([]string(nil), values...)
		}
		return node.Default
	}
	if node.Kind == KindCheckboxGroup {
		return []string{}
	}
	return nil
}
