package form

import (
	"errors"
	"fmt"
)

// StepStatus is the state of one step in a section flow.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusActive    StepStatus = "active"
	StatusCompleted StepStatus = "completed"
	StatusSkipped   StepStatus = "skipped"
	StatusRefused   StepStatus = "refused"
)

// Terminal reports whether the status finishes a step.
func (s StepStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusRefused
}

type flowEvent string

const (
	evEnter    flowEvent = "enter"
	evLeave    flowEvent = "leave"
	evPass     flowEvent = "pass"
	evSkip     flowEvent = "skip"
	evRefuse   flowEvent = "refuse"
	evUnrefuse flowEvent = "unrefuse"
)

type flowKey struct {
	from  StepStatus
	event flowEvent
}

// flowTransitions is the complete step transition table. Pairs missing
// from it are rejected.
var flowTransitions = map[flowKey]StepStatus{
	{StatusPending, evEnter}:      StatusActive,
	{StatusCompleted, evEnter}:    StatusActive,
	{StatusSkipped, evEnter}:      StatusActive,
	{StatusRefused, evEnter}:      StatusRefused,
	{StatusActive, evLeave}:       StatusPending, // or the status held before evEnter
	{StatusRefused, evLeave}:      StatusRefused,
	{StatusActive, evPass}:        StatusCompleted,
	{StatusRefused, evPass}:       StatusRefused,
	{StatusActive, evSkip}:        StatusSkipped,
	{StatusActive, evRefuse}:      StatusRefused,
	{StatusPending, evRefuse}:     StatusRefused,
	{StatusCompleted, evRefuse}:   StatusRefused,
	{StatusSkipped, evRefuse}:     StatusRefused,
	{StatusRefused, evRefuse}:     StatusRefused,
	{StatusRefused, evUnrefuse}:   StatusPending,
	{StatusPending, evUnrefuse}:   StatusPending,
	{StatusActive, evUnrefuse}:    StatusActive,
	{StatusCompleted, evUnrefuse}: StatusCompleted,
	{StatusSkipped, evUnrefuse}:   StatusSkipped,
}

// ErrInvalidTransition is returned for events the current status does not
// accept.
var ErrInvalidTransition = errors.New("form: invalid step transition")

// ErrNoConfirmation is returned by ConfirmSkip when no failed Next is
// waiting for confirmation.
var ErrNoConfirmation = errors.New("form: no skip confirmation pending")

// ValidateFunc validates a step and reports whether it passed.
type ValidateFunc func(stepID string) bool

// NextResult reports what Next did.
type NextResult struct {
	// Advanced is true when the flow moved past the step.
	Advanced bool
	// NeedsConfirmation is true when validation failed and the caller must
	// offer ConfirmSkip or CancelSkip.
	NeedsConfirmation bool
	// Exited is true when the last step was left.
	Exited bool
}

// Flow is the linear step sequence of one section.
type Flow struct {
	steps     []string
	status    map[string]StepStatus
	prior     map[string]StepStatus
	current   int
	validate  ValidateFunc
	onBack    func()
	confirm   bool
	exhausted bool
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithBackHandler sets the parent handler called by Back on the first step.
func WithBackHandler(fn func()) FlowOption {
	return func(f *Flow) { f.onBack = fn }
}

// NewFlow starts a flow on its first step.
func NewFlow(stepIDs []string, validate ValidateFunc, opts ...FlowOption) *Flow {
	f := &Flow{
		steps:    append([]string(nil), stepIDs...),
		status:   make(map[string]StepStatus, len(stepIDs)),
		prior:    make(map[string]StepStatus),
		validate: validate,
	}
	for _, id := range stepIDs {
		f.status[id] = StatusPending
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if len(f.steps) > 0 {
		f.fire(f.steps[0], evEnter)
	}
	return f
}

func (f *Flow) fire(stepID string, event flowEvent) error {
	from, ok := f.status[stepID]
	if !ok {
		return fmt.Errorf("form: unknown step %q", stepID)
	}
	to, ok := flowTransitions[flowKey{from: from, event: event}]
	if !ok {
		return fmt.Errorf("%w: %s on %s step %s", ErrInvalidTransition, event, from, stepID)
	}
	switch {
	case event == evEnter && from.Terminal() && to == StatusActive:
		f.prior[stepID] = from
	case event == evLeave && from == StatusActive:
		if prior, ok := f.prior[stepID]; ok {
			to = prior
		}
		delete(f.prior, stepID)
	case from == StatusActive && to != StatusActive:
		delete(f.prior, stepID)
	}
	f.status[stepID] = to
	return nil
}

// Current returns the id of the current step, or "" once the flow is past
// its last step.
func (f *Flow) Current() string {
	if f.exhausted || len(f.steps) == 0 {
		return ""
	}
	return f.steps[f.current]
}

// Status returns the status of a step.
func (f *Flow) Status(stepID string) StepStatus { return f.status[stepID] }

// Statuses returns the status of every step in order.
func (f *Flow) Statuses() []StepStatus {
	out := make([]StepStatus, 0, len(f.steps))
	for _, id := range f.steps {
		out = append(out, f.status[id])
	}
	return out
}

// Done reports whether every step is completed, skipped or refused.
func (f *Flow) Done() bool {
	for _, id := range f.steps {
		if !f.status[id].Terminal() {
			return false
		}
	}
	return true
}

// Next validates the current step. On success it completes the step and
// advances; on failure it asks for confirmation. Refused steps advance
// without validation.
func (f *Flow) Next() (NextResult, error) {
	id := f.Current()
	if id == "" {
		return NextResult{Exited: true}, nil
	}
	if f.status[id] != StatusRefused && (f.validate != nil && !f.validate(id)) {
		f.confirm = true
		return NextResult{NeedsConfirmation: true}, nil
	}
	if err := f.fire(id, evPass); err != nil {
		return NextResult{}, err
	}
	return f.advance(), nil
}

// ConfirmSkip marks the step skipped after a failed Next, keeping its data.
func (f *Flow) ConfirmSkip() (NextResult, error) {
	if !f.confirm {
		return NextResult{}, ErrNoConfirmation
	}
	f.confirm = false
	if err := f.fire(f.Current(), evSkip); err != nil {
		return NextResult{}, err
	}
	return f.advance(), nil
}

// CancelSkip dismisses a pending confirmation and stays on the step.
func (f *Flow) CancelSkip() { f.confirm = false }

// AwaitingConfirmation reports whether a failed Next is pending.
func (f *Flow) AwaitingConfirmation() bool { return f.confirm }

// Back retreats one step, or calls the parent back handler on the first
// step.
func (f *Flow) Back() error {
	f.confirm = false
	if f.exhausted {
		f.exhausted = false
		return f.fire(f.steps[f.current], evEnter)
	}
	if f.current == 0 {
		if f.onBack != nil {
			f.onBack()
		}
		return nil
	}
	if err := f.fire(f.steps[f.current], evLeave); err != nil {
		return err
	}
	f.current--
	return f.fire(f.steps[f.current], evEnter)
}

// GoTo makes stepID current, leaving the current step.
func (f *Flow) GoTo(stepID string) error {
	for idx, id := range f.steps {
		if id != stepID {
			continue
		}
		if cur := f.Current(); cur != "" && f.status[cur] == StatusActive {
			if err := f.fire(cur, evLeave); err != nil {
				return err
			}
		}
		f.exhausted = false
		f.confirm = false
		f.current = idx
		return f.fire(id, evEnter)
	}
	return fmt.Errorf("form: unknown step %q", stepID)
}

// SetRefused marks a step refused, or reopens a refused step as pending
// (active when it is the current step).
func (f *Flow) SetRefused(stepID string, refused bool) error {
	if !refused {
		if err := f.fire(stepID, evUnrefuse); err != nil {
			return err
		}
		if stepID == f.Current() && f.status[stepID] == StatusPending {
			return f.fire(stepID, evEnter)
		}
		return nil
	}
	return f.fire(stepID, evRefuse)
}

func (f *Flow) advance() NextResult {
	for next := f.current + 1; next < len(f.steps); next++ {
		id := f.steps[next]
		if f.status[id] == StatusRefused {
			continue
		}
		f.current = next
		_ = f.fire(id, evEnter)
		return NextResult{Advanced: true}
	}
	f.exhausted = true
	return NextResult{Advanced: true, Exited: true}
}
