package fieldpath

import "sort"

// Getter reads the current value stored at a dotted path. Validators only
// ever read through a Getter so they stay independent of the form store.
type Getter func(path string) any

// At reads the value stored at p.
func (g Getter) At(p Path) any {
	if g == nil {
		return nil
	}
	return g(p.String())
}

// Lookup walks a nested value tree.
func Lookup(tree map[string]any, p Path) (any, bool) {
	if tree == nil || p.IsZero() {
		return nil, false
	}
	var current any = tree
	for _, segment := range p.segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Assign writes value at p, creating intermediate objects. Non-object
// intermediates are replaced.
func Assign(tree map[string]any, p Path, value any) {
	if tree == nil || p.IsZero() {
		return
	}
	node := tree
	for _, segment := range p.segments[:len(p.segments)-1] {
		next, ok := node[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[segment] = next
		}
		node = next
	}
	node[p.Leaf()] = value
}

// Flatten converts a nested tree into dotted keys. Only non-object values
// become entries; empty objects are dropped.
func Flatten(tree map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, Path{}, tree)
	return out
}

func flattenInto(dest map[string]any, prefix Path, node map[string]any) {
	for key, value := range node {
		path := prefix.Child(key)
		if nested, ok := value.(map[string]any); ok {
			flattenInto(dest, path, nested)
			continue
		}
		dest[path.String()] = value
	}
}

// Expand rebuilds a nested tree from dotted keys. Keys are applied in sorted
// order so a leaf and a deeper key sharing a prefix resolve deterministically.
func Expand(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	for _, key := range keys {
		Assign(out, Parse(key), flat[key])
	}
	return out
}
