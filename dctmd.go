// Package dctmd bundles the compiled examination catalog, its validators and
// the record persistence path behind one constructor.
package dctmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-dctmd/pkg/draft"
	"github.com/goliatone/go-dctmd/pkg/examination"
	"github.com/goliatone/go-dctmd/pkg/form"
	"github.com/goliatone/go-dctmd/pkg/metrics"
	"github.com/goliatone/go-dctmd/pkg/persistence"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

// Engine owns the catalog and record loader shared by every session.
type Engine struct {
	catalog *examination.Catalog
	loader  *persistence.Loader
	metrics *metrics.Metrics
	ctx     validation.Context
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics reports step validations and load outcomes to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithValidationContext sets the context controllers validate with.
func WithValidationContext(ctx validation.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// New compiles the default catalog and its migration chain. A migration
// table that does not match the current model version is an error.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	catalog, err := examination.New()
	if err != nil {
		return nil, err
	}
	migrator, err := persistence.NewMigrator(examination.CurrentModelVersion, examination.Migrations(), e.logger)
	if err != nil {
		return nil, err
	}
	loaderOpts := []persistence.LoaderOption{persistence.WithLogger(e.logger)}
	if e.metrics != nil {
		loaderOpts = append(loaderOpts, persistence.WithObserver(e.metrics))
	}
	e.catalog = catalog
	e.loader = persistence.NewLoader(migrator, catalog.Schema(), catalog.SectionIDs(), loaderOpts...)
	return e, nil
}

// Catalog returns the compiled catalog.
func (e *Engine) Catalog() *examination.Catalog { return e.catalog }

// Loader returns the record loader.
func (e *Engine) Loader() *persistence.Loader { return e.loader }

// Context returns the validation context.
func (e *Engine) Context() validation.Context { return e.ctx }

// NewRepository binds a backend and draft store to the engine's loader.
func (e *Engine) NewRepository(backend persistence.Backend, drafts draft.Store) *persistence.Repository {
	return persistence.NewRepository(backend, drafts, e.loader, persistence.WithRepositoryLogger(e.logger))
}

// NewController returns a controller over a fresh state seeded with values.
func (e *Engine) NewController(values map[string]any) *form.Controller {
	opts := []form.ControllerOption{form.WithContext(e.ctx), form.WithLogger(e.logger)}
	if e.metrics != nil {
		opts = append(opts, form.WithStepObserver(e.metrics))
	}
	return form.NewController(e.catalog, form.NewState(values), opts...)
}

// DecodeRecord reads a stored record and loads it through the migration
// and schema path.
func (e *Engine) DecodeRecord(r io.Reader) (*persistence.Record, persistence.Outcome, error) {
	var rec persistence.Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, "", err
	}
	return &rec, e.loader.LoadRecord(&rec), nil
}

// StepReport is the validation outcome of one step.
type StepReport struct {
	ID      string                  `json:"id" yaml:"id"`
	Section string                  `json:"section" yaml:"section"`
	Kind    string                  `json:"kind" yaml:"kind"`
	Valid   bool                    `json:"valid" yaml:"valid"`
	Errors  []validation.FieldError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Report is the validation outcome of a whole record.
type Report struct {
	Valid bool         `json:"valid" yaml:"valid"`
	Steps []StepReport `json:"steps" yaml:"steps"`
}

// CompleteSections returns the sections whose steps all passed.
func (r Report) CompleteSections() []string {
	failed := make(map[string]bool)
	var order []string
	for _, step := range r.Steps {
		if _, seen := failed[step.Section]; !seen {
			order = append(order, step.Section)
			failed[step.Section] = false
		}
		if !step.Valid {
			failed[step.Section] = true
		}
	}
	var out []string
	for _, id := range order {
		if !failed[id] {
			out = append(out, id)
		}
	}
	return out
}

// Validate runs every step of the catalog against the controller's state.
func (e *Engine) Validate(c *form.Controller) (Report, error) {
	report := Report{Valid: true}
	for _, def := range e.catalog.Steps().Steps() {
		ok, err := c.ValidateStep(def.ID, e.ctx)
		if err != nil {
			return Report{}, err
		}
		step := StepReport{ID: def.ID, Section: def.Section, Kind: string(def.Kind), Valid: ok}
		if !ok {
			insts, err := c.InstancesForStep(def.ID)
			if err != nil {
				return Report{}, err
			}
			for _, inst := range insts {
				if fe, found := c.State().Error(inst.Key()); found {
					step.Errors = append(step.Errors, fe)
				}
			}
			report.Valid = false
		}
		report.Steps = append(report.Steps, step)
	}
	return report, nil
}

// Session is an open record with a controller whose changes are autosaved
// as local drafts.
type Session struct {
	engine      *Engine
	record      *persistence.Record
	controller  *form.Controller
	autosaver   *draft.Autosaver
	unsubscribe func()
}

// NewSession opens rec for editing. Every state change restarts the
// autosave debounce.
func (e *Engine) NewSession(rec *persistence.Record, drafts draft.Store, opts ...draft.AutosaveOption) *Session {
	controller := e.NewController(rec.Sections)
	state := controller.State()
	opts = append([]draft.AutosaveOption{draft.WithLogger(e.logger)}, opts...)
	autosaver := draft.NewAutosaver(drafts, rec.ID.String(), rec.ModelVersion, state.Snapshot, opts...)
	return &Session{
		engine:      e,
		record:      rec,
		controller:  controller,
		autosaver:   autosaver,
		unsubscribe: state.Subscribe(func(string, any) { autosaver.Touch() }),
	}
}

// Record returns the session's record.
func (s *Session) Record() *persistence.Record { return s.record }

// Controller returns the session's controller.
func (s *Session) Controller() *form.Controller { return s.controller }

// Autosaver returns the draft autosaver.
func (s *Session) Autosaver() *draft.Autosaver { return s.autosaver }

// Commit copies the state into the record, marks finished sections
// complete and saves through repo. A section whose flow was started is
// finished once every step is completed, skipped or refused; other
// sections are finished when all their steps validate. Autosave is held
// during the save so no draft outlives a successful commit. A
// persistence.RejectionError from the backend is mapped onto the form
// state.
func (s *Session) Commit(ctx context.Context, repo *persistence.Repository) (Report, error) {
	report, err := s.engine.Validate(s.controller)
	if err != nil {
		return Report{}, err
	}
	valid := make(map[string]bool)
	for _, id := range report.CompleteSections() {
		valid[id] = true
	}
	all := s.engine.catalog.SectionIDs()
	for _, id := range all {
		s.record.SaveSection(id, s.controller.State().Section(id))
	}
	for _, id := range all {
		finished := valid[id]
		if flow, ok := s.controller.StartedFlow(id); ok {
			finished = flow.Done()
		}
		if finished {
			s.record.CompleteSection(id, all)
		}
	}

	s.autosaver.Hold()
	if err := repo.Save(ctx, s.record); err != nil {
		s.autosaver.Resume()
		var rejected *persistence.RejectionError
		if errors.As(err, &rejected) {
			for _, msg := range s.controller.ApplyErrorPayload(rejected.Fields) {
				s.engine.logger.Warn("Record rejected", slog.String("record", s.record.ID.String()), slog.String("error", msg))
			}
		}
		return report, fmt.Errorf("dctmd: commit: %w", err)
	}
	s.autosaver.Discard()
	return report, nil
}

// Close flushes any pending draft and detaches the autosaver.
func (s *Session) Close(ctx context.Context) error {
	s.unsubscribe()
	return s.autosaver.Close(ctx)
}
