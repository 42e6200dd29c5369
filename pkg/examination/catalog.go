package examination

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-dctmd/pkg/instance"
	"github.com/goliatone/go-dctmd/pkg/model"
	"github.com/goliatone/go-dctmd/pkg/schema"
	"github.com/goliatone/go-dctmd/pkg/steps"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

// Catalog is the compiled examination: every section model, the global
// instance index, the merged step registry and the persistence schema.
// It is immutable once built.
type Catalog struct {
	sections   []model.Section
	byID       map[string]int
	index      *instance.Index
	registry   *steps.Registry
	schema     *schema.Schema
	screenings map[string]validation.Screening
}

// Compile builds a catalog from section models and step tables, checking
// model structure, global path uniqueness and step resolution.
func Compile(sections []model.Section, tables []steps.SectionSteps, screenings map[string]validation.Screening) (*Catalog, error) {
	c := &Catalog{
		sections:   append([]model.Section(nil), sections...),
		byID:       make(map[string]int, len(sections)),
		screenings: make(map[string]validation.Screening, len(screenings)),
	}

	var all []instance.Instance
	for idx, section := range sections {
		if err := model.ValidateSection(section); err != nil {
			return nil, fmt.Errorf("examination: %w", err)
		}
		if _, dup := c.byID[section.ID]; dup {
			return nil, fmt.Errorf("examination: duplicate section %q", section.ID)
		}
		c.byID[section.ID] = idx
		all = append(all, instance.FromSection(section)...)
	}

	index, err := instance.NewIndex(all)
	if err != nil {
		return nil, fmt.Errorf("examination: %w", err)
	}
	c.index = index

	registry, err := steps.Merge(tables...)
	if err != nil {
		return nil, fmt.Errorf("examination: %w", err)
	}
	if err := registry.Validate(index); err != nil {
		return nil, fmt.Errorf("examination: %w", err)
	}
	c.registry = registry

	for id, screening := range screenings {
		def, err := registry.Get(id)
		if err != nil {
			return nil, fmt.Errorf("examination: screening: %w", err)
		}
		if def.Kind != steps.KindScreening {
			return nil, fmt.Errorf("examination: screening rule on %s step %q", def.Kind, id)
		}
		c.screenings[id] = screening
	}

	c.schema = schema.FromSections(c.sections)
	return c, nil
}

// New compiles the standard examination.
func New() (*Catalog, error) {
	return Compile(Sections(), SectionSteps(), map[string]validation.Screening{
		StepAnamnesisSQ: SQScreening,
	})
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the standard examination, compiled once. It panics if the
// built-in tables are inconsistent.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Sections returns the section models in presentation order.
func (c *Catalog) Sections() []model.Section {
	return append([]model.Section(nil), c.sections...)
}

// Section returns one section model.
func (c *Catalog) Section(id string) (model.Section, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return model.Section{}, false
	}
	return c.sections[idx], true
}

// HasSection reports whether id names a known section.
func (c *Catalog) HasSection(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// SectionIDs lists section ids in presentation order.
func (c *Catalog) SectionIDs() []string {
	out := make([]string, 0, len(c.sections))
	for _, section := range c.sections {
		out = append(out, section.ID)
	}
	return out
}

// Index returns the global instance index.
func (c *Catalog) Index() *instance.Index { return c.index }

// Steps returns the merged step registry.
func (c *Catalog) Steps() *steps.Registry { return c.registry }

// Schema returns the structural schema of the whole record.
func (c *Catalog) Schema() *schema.Schema { return c.schema }

// Defaults returns a fresh default value tree keyed by section id.
func (c *Catalog) Defaults() map[string]any { return c.schema.Defaults() }

// Screening returns the screening rule of a screening step.
func (c *Catalog) Screening(stepID string) (validation.Screening, bool) {
	s, ok := c.screenings[stepID]
	return s, ok
}
