package form

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/examination"
	"github.com/goliatone/go-dctmd/pkg/instance"
	"github.com/goliatone/go-dctmd/pkg/steps"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

// StepObserver receives the outcome of every step validation.
type StepObserver interface {
	ObserveStep(kind string, valid bool, fieldErrors int, duration time.Duration)
}

// Controller binds a State to the compiled catalog.
type Controller struct {
	catalog  *examination.Catalog
	state    *State
	ctx      validation.Context
	observer StepObserver
	logger   *slog.Logger

	flows    map[string]*Flow
	refusals map[string]*RefusalMachine
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithContext sets the validation context used by section flows.
func WithContext(ctx validation.Context) ControllerOption {
	return func(c *Controller) { c.ctx = ctx }
}

// WithStepObserver reports every step validation to o.
func WithStepObserver(o StepObserver) ControllerOption {
	return func(c *Controller) { c.observer = o }
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController returns a controller over state.
func NewController(catalog *examination.Catalog, state *State, opts ...ControllerOption) *Controller {
	c := &Controller{
		catalog:  catalog,
		state:    state,
		logger:   slog.Default(),
		flows:    make(map[string]*Flow),
		refusals: make(map[string]*RefusalMachine),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.buildRefusals()
	return c
}

// State returns the controlled state.
func (c *Controller) State() *State { return c.state }

// Context returns the default validation context.
func (c *Controller) Context() validation.Context { return c.ctx }

// SetContext replaces the default validation context.
func (c *Controller) SetContext(ctx validation.Context) { c.ctx = ctx }

// ValidateStep validates one step: it clears the errors on the step's paths,
// runs the validator chosen by the step kind and attaches the resulting
// per-field errors. The error return is reserved for unknown step ids.
func (c *Controller) ValidateStep(stepID string, ctx validation.Context) (bool, error) {
	def, err := c.catalog.Steps().Get(stepID)
	if err != nil {
		return false, err
	}
	start := time.Now()
	insts := c.catalog.Steps().Resolve(def, c.catalog.Index())

	paths := make([]string, 0, len(insts))
	for _, inst := range insts {
		paths = append(paths, inst.Key())
	}
	c.state.ClearErrors(paths...)

	get := c.state.Getter()
	var errs []validation.FieldError
	switch def.Kind {
	case steps.KindInterview:
		errs = validation.ValidateInterviewCompletion(insts, get, ctx).FieldErrors()
	case steps.KindPalpation:
		errs = validation.ValidatePalpationCompletion(insts, get, ctx).FieldErrors()
	case steps.KindScreening:
		if rule, ok := c.catalog.Screening(stepID); ok {
			errs = validation.ValidateScreening(insts, get, rule).Errors
			break
		}
		errs = validation.ValidateInstances(insts, get).Errors
	default:
		errs = validation.ValidateInstances(insts, get).Errors
	}
	c.state.SetErrors(errs...)

	valid := len(errs) == 0
	if c.observer != nil {
		c.observer.ObserveStep(string(def.Kind), valid, len(errs), time.Since(start))
	}
	c.logger.Debug("Validated step", slog.String("step", stepID), slog.Bool("valid", valid), slog.Int("errors", len(errs)))
	return valid, nil
}

// Step returns the definition of a step.
func (c *Controller) Step(stepID string) (steps.Definition, error) {
	return c.catalog.Steps().Get(stepID)
}

// InstancesForStep returns the instances a step covers.
func (c *Controller) InstancesForStep(stepID string) ([]instance.Instance, error) {
	def, err := c.catalog.Steps().Get(stepID)
	if err != nil {
		return nil, err
	}
	return c.catalog.Steps().Resolve(def, c.catalog.Index()), nil
}

// InstancesForSection returns the instances of one section.
func (c *Controller) InstancesForSection(sectionID string) []instance.Instance {
	return c.catalog.Index().BySection(sectionID)
}

// Get returns the instance at path and panics for unknown paths.
func (c *Controller) Get(path string) instance.Instance {
	return c.catalog.Index().MustGet(path)
}

// ByPrefix returns instances under a dotted prefix.
func (c *Controller) ByPrefix(prefix string) []instance.Instance {
	return c.catalog.Index().ByPrefix(prefix)
}

// ByContext returns instances matching every set field of filter.
func (c *Controller) ByContext(filter instance.Context) []instance.Instance {
	return c.catalog.Index().ByContext(filter)
}

// BySide returns instances tagged with side.
func (c *Controller) BySide(side anatomy.Side) []instance.Instance {
	return c.catalog.Index().BySide(side)
}

// ByRegion returns instances tagged with region.
func (c *Controller) ByRegion(region anatomy.Region) []instance.Instance {
	return c.catalog.Index().ByRegion(region)
}

// Measurements returns every measurement instance.
func (c *Controller) Measurements() []instance.Instance { return c.catalog.Index().Measurements() }

// YesNoQuestions returns every yes/no instance.
func (c *Controller) YesNoQuestions() []instance.Instance { return c.catalog.Index().YesNoQuestions() }

// InterviewQuestions returns every movement interview instance.
func (c *Controller) InterviewQuestions() []instance.Instance {
	return c.catalog.Index().InterviewQuestions()
}

// Flow returns the step flow of a section, creating it on first use. The
// flow validates with the controller's default context.
func (c *Controller) Flow(sectionID string, opts ...FlowOption) (*Flow, error) {
	if flow, ok := c.flows[sectionID]; ok {
		return flow, nil
	}
	if !c.catalog.HasSection(sectionID) {
		return nil, fmt.Errorf("form: unknown section %q", sectionID)
	}
	var ids []string
	for _, def := range c.catalog.Steps().ForSection(sectionID) {
		ids = append(ids, def.ID)
	}
	flow := NewFlow(ids, func(stepID string) bool {
		ok, err := c.ValidateStep(stepID, c.ctx)
		return err == nil && ok
	}, opts...)
	for _, id := range ids {
		if m, ok := c.refusals[id]; ok && m.State() != RefusalOpen {
			c.syncFlow(m, flow)
		}
	}
	c.flows[sectionID] = flow
	return flow, nil
}

// StartedFlow returns the flow of a section if Flow already created one.
func (c *Controller) StartedFlow(sectionID string) (*Flow, bool) {
	flow, ok := c.flows[sectionID]
	return flow, ok
}

// Refuse records a refusal (or its withdrawal) on a measurement or
// interview step of a refusal pair, cascading per the refusal table.
func (c *Controller) Refuse(stepID string, refused bool) error {
	m, ok := c.refusals[stepID]
	if !ok {
		return fmt.Errorf("form: step %q has no refusal pair", stepID)
	}
	var event RefusalEvent
	switch {
	case stepID == m.pair.MeasurementStep && refused:
		event = RefuseMeasurement
	case stepID == m.pair.MeasurementStep:
		event = UnrefuseMeasurement
	case refused:
		event = RefuseInterview
	default:
		event = UnrefuseInterview
	}
	return m.Fire(event, c.state, c.flowFor(m.pair.MeasurementStep))
}

// LeaveStep tells the refusal machine that the examiner left a measurement
// step, after which an un-refusal no longer restores the interview.
func (c *Controller) LeaveStep(stepID string) error {
	m, ok := c.refusals[stepID]
	if !ok || stepID != m.pair.MeasurementStep {
		return nil
	}
	return m.Fire(LeaveMeasurement, c.state, c.flowFor(stepID))
}

// RefusalState returns the refusal state of the pair a step belongs to.
func (c *Controller) RefusalState(stepID string) (RefusalState, bool) {
	m, ok := c.refusals[stepID]
	if !ok {
		return "", false
	}
	return m.State(), true
}

func (c *Controller) flowFor(stepID string) *Flow {
	def, err := c.catalog.Steps().Get(stepID)
	if err != nil {
		return nil
	}
	return c.flows[def.Section]
}

func (c *Controller) syncFlow(m *RefusalMachine, flow *Flow) {
	switch m.State() {
	case RefusalCommitted, RefusalMeasurement, RefusalMeasurementOverInterview:
		_ = setRefused(flow, m.pair.MeasurementStep, true)
		_ = setRefused(flow, m.pair.InterviewStep, true)
	case RefusalInterview:
		_ = setRefused(flow, m.pair.InterviewStep, true)
	}
}

func (c *Controller) buildRefusals() {
	reg := c.catalog.Steps()
	for _, def := range reg.Steps() {
		if def.Pair == "" {
			continue
		}
		interview, err := reg.Get(def.Pair)
		if err != nil {
			c.logger.Warn("Refusal pair points at unknown step", slog.String("step", def.ID), slog.String("pair", def.Pair))
			continue
		}
		pair := RefusalPair{
			MeasurementStep: def.ID,
			InterviewStep:   interview.ID,
			MeasurementFlag: def.RefusedField,
			InterviewFlag:   interview.RefusedField,
		}
		for _, inst := range reg.Resolve(def, c.catalog.Index()) {
			if inst.RenderType != instance.RenderFlag {
				pair.MeasurementPaths = append(pair.MeasurementPaths, inst.Key())
			}
		}
		for _, inst := range reg.Resolve(interview, c.catalog.Index()) {
			pair.InterviewPaths = append(pair.InterviewPaths, inst.Key())
		}
		m := NewRefusalMachine(pair, c.state)
		c.refusals[def.ID] = m
		c.refusals[interview.ID] = m
	}
}
