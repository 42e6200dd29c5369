package instance

import (
	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/model"
)

// RenderType tells the UI which input to render. It mirrors the leaf kind.
type RenderType = model.Kind

const (
	RenderYesNo         = model.KindYesNo
	RenderEnum          = model.KindEnum
	RenderMeasurement   = model.KindMeasurement
	RenderCheckboxGroup = model.KindCheckboxGroup
	RenderFlag          = model.KindFlag
	RenderText          = model.KindText
)

// Context carries the clinical axes a leaf was templated over. Empty fields
// mean the leaf does not live under that axis.
type Context struct {
	Region   anatomy.Region   `json:"region,omitempty"`
	Side     anatomy.Side     `json:"side,omitempty"`
	PainType anatomy.PainType `json:"painType,omitempty"`
	Site     anatomy.Site     `json:"site,omitempty"`
}

// IsZero reports whether no axis is set.
func (c Context) IsZero() bool { return c == Context{} }

// Matches reports whether every non-empty field of filter equals c.
func (c Context) Matches(filter Context) bool {
	if filter.Region != "" && filter.Region != c.Region {
		return false
	}
	if filter.Side != "" && filter.Side != c.Side {
		return false
	}
	if filter.PainType != "" && filter.PainType != c.PainType {
		return false
	}
	if filter.Site != "" && filter.Site != c.Site {
		return false
	}
	return true
}

// Config is the validation configuration copied from the model leaf.
type Config struct {
	Required bool     `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Options  []string `json:"options,omitempty"`
	Default  any      `json:"default,omitempty"`
}

// Instance is one compiled, path-addressed leaf question.
type Instance struct {
	Path       fieldpath.Path   `json:"path"`
	Section    string           `json:"section"`
	RenderType RenderType       `json:"renderType"`
	LabelKey   string           `json:"labelKey"`
	Config     Config           `json:"config"`
	EnableWhen *model.Condition `json:"enableWhen,omitempty"`
	Context    Context          `json:"context"`
}

// Key returns the dotted path.
func (i Instance) Key() string { return i.Path.String() }
