// Package steps holds the per-section step registries and the merged global
// step table. Each step maps either to a wildcard path prefix or to an
// explicit ordered path list, and carries its validator kind decided at
// registration time.
package steps

import (
	"errors"
	"strings"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/instance"
)

// Kind selects the validator a step is checked with.
type Kind string

const (
	KindField     Kind = "field"
	KindInterview Kind = "interview"
	KindPalpation Kind = "palpation"
	KindScreening Kind = "screening"
)

const wildcardSuffix = ".*"

var (
	// ErrUnknownStep is returned for step ids missing from the registry.
	ErrUnknownStep = errors.New("steps: unknown step")
	// ErrDuplicateStep is returned when two steps share an id.
	ErrDuplicateStep = errors.New("steps: duplicate step id")
)

// Definition is one navigable step.
type Definition struct {
	ID       string   `json:"id" yaml:"id"`
	Section  string   `json:"section" yaml:"section"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Wildcard string   `json:"wildcard,omitempty" yaml:"wildcard,omitempty"`
	Paths    []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	// RefusedField is the flag recording refusal of this step, if any.
	RefusedField string `json:"refusedField,omitempty" yaml:"refusedField,omitempty"`
	// Pair links a measurement step to the interview step it gates.
	Pair string `json:"pair,omitempty" yaml:"pair,omitempty"`
}

// Option configures a definition.
type Option func(*Definition)

// WithRefusal records the refusal flag of the step.
func WithRefusal(path string) Option {
	return func(d *Definition) { d.RefusedField = path }
}

// PairedWith links a measurement step to its interview step.
func PairedWith(interviewID string) Option {
	return func(d *Definition) { d.Pair = interviewID }
}

// Wildcard declares a step covering every side-templated leaf under prefix.
// The prefix may end in ".*".
func Wildcard(id string, kind Kind, prefix string, opts ...Option) Definition {
	def := Definition{ID: id, Kind: kind, Wildcard: strings.TrimSuffix(prefix, wildcardSuffix) + wildcardSuffix}
	return apply(def, opts)
}

// Explicit declares a step covering an ordered path list.
func Explicit(id string, kind Kind, paths []string, opts ...Option) Definition {
	def := Definition{ID: id, Kind: kind, Paths: append([]string(nil), paths...)}
	return apply(def, opts)
}

func apply(def Definition, opts []Option) Definition {
	for _, opt := range opts {
		if opt != nil {
			opt(&def)
		}
	}
	return def
}

// IsWildcard reports whether the step is prefix based.
func (d Definition) IsWildcard() bool { return d.Wildcard != "" }

// Prefix returns the wildcard prefix without the trailing ".*".
func (d Definition) Prefix() fieldpath.Path {
	return fieldpath.Parse(strings.TrimSuffix(d.Wildcard, wildcardSuffix))
}

// Matches reports whether inst belongs to the step. Wildcard steps only
// match leaves carrying a side, so non-templated siblings under the same
// prefix (measurements, refusal flags) stay out of the step.
func (d Definition) Matches(inst instance.Instance) bool {
	if d.IsWildcard() {
		return inst.Context.Side != "" && inst.Path.HasPrefix(d.Prefix())
	}
	key := inst.Key()
	for _, path := range d.Paths {
		if path == key {
			return true
		}
	}
	return false
}

// Side returns the side of a palpation step id ({section}-{side}).
func (d Definition) Side() anatomy.Side {
	for _, side := range anatomy.Sides {
		if d.ID == d.Section+"-"+string(side) {
			return side
		}
	}
	return ""
}

// SectionSteps is the step list of one section with section-relative paths.
type SectionSteps struct {
	Section string
	Steps   []Definition
}

// Qualify prefixes every path of the section's steps with the section id.
func (s SectionSteps) Qualify() []Definition {
	out := make([]Definition, 0, len(s.Steps))
	for _, def := range s.Steps {
		def.Section = s.Section
		if def.Wildcard != "" {
			def.Wildcard = qualify(s.Section, def.Wildcard)
		}
		if len(def.Paths) > 0 {
			paths := make([]string, 0, len(def.Paths))
			for _, p := range def.Paths {
				paths = append(paths, qualify(s.Section, p))
			}
			def.Paths = paths
		}
		if def.RefusedField != "" {
			def.RefusedField = qualify(s.Section, def.RefusedField)
		}
		out = append(out, def)
	}
	return out
}

func qualify(section, path string) string {
	if path == section || strings.HasPrefix(path, section+fieldpath.Separator) {
		return path
	}
	return section + fieldpath.Separator + path
}
