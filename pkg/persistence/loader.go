package persistence

import (
	"log/slog"
)

// Outcome describes how loaded data was accepted.
type Outcome string

const (
	// OutcomeDirect means the migrated data passed the schema as is.
	OutcomeDirect Outcome = "direct"
	// OutcomeMerged means the data passed after merging over defaults.
	OutcomeMerged Outcome = "merged"
	// OutcomeDefaults means the data was discarded for defaults.
	OutcomeDefaults Outcome = "defaults"
	// OutcomeNewer means the data came from a newer model and was passed
	// through unchecked.
	OutcomeNewer Outcome = "newer"
)

// Shape is the structural check applied to migrated data.
type Shape interface {
	Coerce(value any) any
	Validate(value any) error
	Defaults() map[string]any
}

// LoadObserver receives the outcome of every load.
type LoadObserver interface {
	ObserveLoad(outcome string)
}

// Loader turns stored section values into live form values.
type Loader struct {
	migrator *Migrator
	shape    Shape
	sections map[string]bool
	logger   *slog.Logger
	observer LoadObserver
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for load warnings.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithObserver reports every load outcome to o.
func WithObserver(o LoadObserver) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

// NewLoader returns a Loader for the given section ids.
func NewLoader(migrator *Migrator, shape Shape, sectionIDs []string, opts ...LoaderOption) *Loader {
	l := &Loader{
		migrator: migrator,
		shape:    shape,
		sections: make(map[string]bool, len(sectionIDs)),
		logger:   slog.Default(),
	}
	for _, id := range sectionIDs {
		l.sections[id] = true
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Migrator returns the migrator used by the loader.
func (l *Loader) Migrator() *Migrator { return l.migrator }

// Defaults returns a fresh default value tree.
func (l *Loader) Defaults() map[string]any { return l.shape.Defaults() }

// KnownSection reports whether id is one of the loader's sections.
func (l *Loader) KnownSection(id string) bool { return l.sections[id] }

// Load migrates stored values (section ids as keys, model version under
// VersionKey) and shape-checks them. Data without any known section is
// replaced by defaults outright. Data that fails the check is merged over
// defaults and checked once more; if that also fails, defaults are returned.
func (l *Loader) Load(data map[string]any) (map[string]any, Outcome) {
	version := VersionOf(data)
	sections := l.stripReserved(data)

	if version > l.migrator.Current() {
		return l.done(l.migrator.Migrate(sections, version), OutcomeNewer)
	}
	migrated := l.migrator.Migrate(sections, version)

	coerced, _ := l.shape.Coerce(migrated).(map[string]any)
	if !l.hasKnownSection(coerced) {
		l.logger.Warn("Stored record has no known sections, using defaults")
		return l.done(l.shape.Defaults(), OutcomeDefaults)
	}

	err := l.shape.Validate(coerced)
	if err == nil {
		return l.done(coerced, OutcomeDirect)
	}
	l.logger.Warn("Stored record failed schema check", slog.String("error", err.Error()))

	merged := MergeDefaults(l.shape.Defaults(), coerced)
	if err := l.shape.Validate(merged); err != nil {
		l.logger.Warn("Stored record could not be repaired, using defaults", slog.String("error", err.Error()))
		return l.done(l.shape.Defaults(), OutcomeDefaults)
	}
	l.logger.Warn("Stored record repaired by merging over defaults")
	return l.done(merged, OutcomeMerged)
}

// LoadRecord loads rec's sections in place, drops unknown completed
// sections and stamps the current model version.
func (l *Loader) LoadRecord(rec *Record) Outcome {
	values, outcome := l.Load(rec.Values())
	rec.Sections = values
	rec.RestrictSections(l.KnownSection)
	if outcome != OutcomeNewer {
		rec.ModelVersion = l.migrator.Current()
	}
	return outcome
}

func (l *Loader) done(values map[string]any, outcome Outcome) (map[string]any, Outcome) {
	if l.observer != nil {
		l.observer.ObserveLoad(string(outcome))
	}
	return values, outcome
}

func (l *Loader) stripReserved(data map[string]any) map[string]any {
	if _, ok := data[VersionKey]; !ok {
		return data
	}
	out := make(map[string]any, len(data))
	for key, value := range data {
		if key != VersionKey {
			out[key] = value
		}
	}
	return out
}

func (l *Loader) hasKnownSection(data map[string]any) bool {
	for key := range data {
		if l.sections[key] {
			return true
		}
	}
	return false
}

// MergeDefaults overlays src on defaults recursively. Objects merge key by
// key; arrays and primitives come from src; keys missing from src, or nil
// in src where defaults hold an object, come from defaults. Neither input
// is modified.
func MergeDefaults(defaults, src map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(src))
	for key, value := range defaults {
		out[key] = value
	}
	for key, value := range src {
		base, hasBase := defaults[key]
		baseMap, baseIsMap := base.(map[string]any)
		switch v := value.(type) {
		case map[string]any:
			if baseIsMap {
				out[key] = MergeDefaults(baseMap, v)
				continue
			}
			out[key] = v
		case nil:
			if hasBase && baseIsMap {
				continue
			}
			out[key] = nil
		default:
			out[key] = v
		}
	}
	return out
}
