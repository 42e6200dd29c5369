package instance

import (
	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/model"
)

// FromModel flattens a section model into instances, one per reachable
// leaf, in declaration order. Leaves below axis groups are tagged with the
// axis values of their ancestors; site tags also set the site's region.
func FromModel(sectionID string, root *model.Node) []Instance {
	if root == nil {
		return nil
	}
	w := walker{section: sectionID}
	w.walk(root, fieldpath.New(sectionID), []string{sectionID}, Context{})
	return w.out
}

// FromSection is FromModel for a model.Section.
func FromSection(section model.Section) []Instance {
	return FromModel(section.ID, section.Root)
}

type walker struct {
	section string
	out     []Instance
}

func (w *walker) walk(node *model.Node, path fieldpath.Path, labelParts []string, ctx Context) {
	if node.Kind != model.KindGroup {
		w.out = append(w.out, w.leaf(node, path, labelParts, ctx))
		return
	}
	for _, child := range node.Children {
		if child.Node == nil {
			continue
		}
		childCtx := tag(ctx, child.Axis, child.Key)
		childLabel := labelParts
		if child.Axis == model.AxisNone || child.Node.Kind != model.KindGroup {
			childLabel = appendLabel(labelParts, child.Key)
		}
		w.walk(child.Node, path.Child(child.Key), childLabel, childCtx)
	}
}

func (w *walker) leaf(node *model.Node, path fieldpath.Path, labelParts []string, ctx Context) Instance {
	labelKey := node.LabelKey
	if labelKey == "" {
		labelKey = joinLabel(labelParts)
	}
	return Instance{
		Path:       path,
		Section:    w.section,
		RenderType: node.Kind,
		LabelKey:   labelKey,
		Config: Config{
			Required: node.Required,
			Min:      node.Min,
			Max:      node.Max,
			Unit:     node.Unit,
			Options:  append([]string(nil), node.Options...),
			Default:  node.Default,
		},
		EnableWhen: node.EnableWhen,
		Context:    ctx,
	}
}

func tag(ctx Context, axis model.Axis, key string) Context {
	switch axis {
	case model.AxisSide:
		ctx.Side = anatomy.Side(key)
	case model.AxisRegion:
		ctx.Region = anatomy.Region(key)
	case model.AxisSite:
		ctx.Site = anatomy.Site(key)
		ctx.Region = ctx.Site.Region()
	case model.AxisPainType:
		ctx.PainType = anatomy.PainType(key)
	}
	return ctx
}

func appendLabel(parts []string, key string) []string {
	out := make([]string, 0, len(parts)+1)
	out = append(out, parts...)
	return append(out, key)
}

func joinLabel(parts []string) string {
	return fieldpath.New(parts...).String()
}
