package steps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-dctmd/pkg/instance"
)

// Registry is the merged global step table.
type Registry struct {
	steps []Definition
	byID  map[string]int
}

// Merge qualifies and merges section step lists in order.
func Merge(sections ...SectionSteps) (*Registry, error) {
	reg := &Registry{byID: make(map[string]int)}
	for _, section := range sections {
		for _, def := range section.Qualify() {
			if _, dup := reg.byID[def.ID]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, def.ID)
			}
			reg.byID[def.ID] = len(reg.steps)
			reg.steps = append(reg.steps, def)
		}
	}
	return reg, nil
}

// MustMerge is Merge that panics on error.
func MustMerge(sections ...SectionSteps) *Registry {
	reg, err := Merge(sections...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Steps returns every step in registration order.
func (r *Registry) Steps() []Definition {
	return append([]Definition(nil), r.steps...)
}

// Get returns a step by id.
func (r *Registry) Get(id string) (Definition, error) {
	idx, ok := r.byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownStep, id)
	}
	return r.steps[idx], nil
}

// ForSection returns the steps of one section in order.
func (r *Registry) ForSection(section string) []Definition {
	var out []Definition
	for _, def := range r.steps {
		if def.Section == section {
			out = append(out, def)
		}
	}
	return out
}

// Resolve returns the instances a step covers: the wildcard matches in
// projection order, or the explicit paths in declared order.
func (r *Registry) Resolve(def Definition, ix *instance.Index) []instance.Instance {
	if def.IsWildcard() {
		return ix.Filter(def.Matches)
	}
	out := make([]instance.Instance, 0, len(def.Paths))
	for _, path := range def.Paths {
		if inst, err := ix.Get(path); err == nil {
			out = append(out, inst)
		}
	}
	return out
}

// Validate checks the registry against a compiled instance set: every step
// resolves to at least one instance, explicit paths exist, refusal flags
// and pairs point at known targets, and step ids follow the routing naming
// convention of their kind (`-interview` suffix for interview steps,
// `{section}-{side}` for palpation steps).
func (r *Registry) Validate(ix *instance.Index) error {
	var errs []error
	for _, def := range r.steps {
		if err := r.validateStep(def, ix); err != nil {
			errs = append(errs, fmt.Errorf("steps: %s: %w", def.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) validateStep(def Definition, ix *instance.Index) error {
	switch def.Kind {
	case KindInterview:
		if !strings.HasSuffix(def.ID, "-interview") {
			return errors.New("interview step ids must end in -interview")
		}
	case KindPalpation:
		if def.Side() == "" {
			return errors.New("palpation step ids must be {section}-right or {section}-left")
		}
	case KindField, KindScreening:
		if strings.HasSuffix(def.ID, "-interview") || def.Side() != "" {
			return fmt.Errorf("%s step id collides with another kind's naming convention", def.Kind)
		}
	default:
		return fmt.Errorf("unknown kind %q", def.Kind)
	}
	if def.IsWildcard() == (len(def.Paths) > 0) {
		return errors.New("step needs exactly one of wildcard or paths")
	}
	for _, path := range def.Paths {
		if !ix.Has(path) {
			return fmt.Errorf("unknown path %q", path)
		}
	}
	if def.RefusedField != "" && !ix.Has(def.RefusedField) {
		return fmt.Errorf("unknown refusal flag %q", def.RefusedField)
	}
	if def.Pair != "" {
		pair, err := r.Get(def.Pair)
		if err != nil {
			return err
		}
		if pair.Kind != KindInterview {
			return fmt.Errorf("pair %q is not an interview step", def.Pair)
		}
	}
	if len(r.Resolve(def, ix)) == 0 {
		return errors.New("step resolves to no instances")
	}
	return nil
}
