package form

import (
	"errors"
	"fmt"
)

// RefusalState is the refusal state of a measurement/interview step pair.
type RefusalState string

const (
	// RefusalOpen means neither step is refused.
	RefusalOpen RefusalState = "open"
	// RefusalMeasurement means the measurement was refused on the current
	// visit and the interview was refused with it; un-refusing restores both.
	RefusalMeasurement RefusalState = "measurementRefused"
	// RefusalCommitted means the measurement refusal outlived a visit; the
	// interview no longer follows the measurement back.
	RefusalCommitted RefusalState = "committed"
	// RefusalInterview means only the interview is refused.
	RefusalInterview RefusalState = "interviewRefused"
	// RefusalMeasurementOverInterview means the measurement was refused on
	// the current visit while the interview was already refused on its own;
	// un-refusing returns to RefusalInterview.
	RefusalMeasurementOverInterview RefusalState = "measurementOverInterview"
)

// RefusalEvent drives a RefusalMachine.
type RefusalEvent string

const (
	RefuseMeasurement   RefusalEvent = "refuseMeasurement"
	UnrefuseMeasurement RefusalEvent = "unrefuseMeasurement"
	RefuseInterview     RefusalEvent = "refuseInterview"
	UnrefuseInterview   RefusalEvent = "unrefuseInterview"
	LeaveMeasurement    RefusalEvent = "leaveMeasurement"
)

// Effect is one side effect of a refusal transition.
type Effect string

const (
	FlagMeasurement    Effect = "flagMeasurement"
	UnflagMeasurement  Effect = "unflagMeasurement"
	FlagInterview      Effect = "flagInterview"
	UnflagInterview    Effect = "unflagInterview"
	ClearMeasurement   Effect = "clearMeasurement"
	ClearInterview     Effect = "clearInterview"
	RestoreMeasurement Effect = "restoreMeasurement"
	RestoreInterview   Effect = "restoreInterview"
	ForgetCleared      Effect = "forgetCleared"
)

type refusalKey struct {
	from  RefusalState
	event RefusalEvent
}

type refusalTransition struct {
	to      RefusalState
	effects []Effect
}

// refusalTransitions is the refusal cascade. Clearing snapshots the cleared
// values per step so each restore undoes only its own step.
var refusalTransitions = map[refusalKey]refusalTransition{
	{RefusalOpen, RefuseMeasurement}: {RefusalMeasurement, []Effect{
		ClearMeasurement, ClearInterview, FlagMeasurement, FlagInterview,
	}},
	{RefusalInterview, RefuseMeasurement}: {RefusalMeasurementOverInterview, []Effect{
		ClearMeasurement, FlagMeasurement,
	}},
	{RefusalMeasurement, UnrefuseMeasurement}: {RefusalOpen, []Effect{
		UnflagMeasurement, UnflagInterview, RestoreMeasurement, RestoreInterview,
	}},
	{RefusalMeasurementOverInterview, UnrefuseMeasurement}: {RefusalInterview, []Effect{
		UnflagMeasurement, RestoreMeasurement,
	}},
	{RefusalMeasurement, LeaveMeasurement}:               {RefusalCommitted, []Effect{ForgetCleared}},
	{RefusalMeasurementOverInterview, LeaveMeasurement}:  {RefusalCommitted, []Effect{ForgetCleared}},
	{RefusalCommitted, UnrefuseMeasurement}:              {RefusalInterview, []Effect{UnflagMeasurement}},
	{RefusalCommitted, UnrefuseInterview}:                {RefusalCommitted, nil},
	{RefusalCommitted, LeaveMeasurement}:                 {RefusalCommitted, nil},
	{RefusalOpen, RefuseInterview}:                       {RefusalInterview, []Effect{ClearInterview, FlagInterview}},
	{RefusalInterview, UnrefuseInterview}:                {RefusalOpen, []Effect{UnflagInterview, RestoreInterview}},
	{RefusalInterview, LeaveMeasurement}:                 {RefusalInterview, []Effect{ForgetCleared}},
	{RefusalOpen, LeaveMeasurement}:                      {RefusalOpen, nil},
	{RefusalOpen, UnrefuseMeasurement}:                   {RefusalOpen, nil},
	{RefusalOpen, UnrefuseInterview}:                     {RefusalOpen, nil},
	{RefusalMeasurement, RefuseMeasurement}:              {RefusalMeasurement, nil},
	{RefusalMeasurementOverInterview, RefuseMeasurement}: {RefusalMeasurementOverInterview, nil},
	{RefusalInterview, RefuseInterview}:                  {RefusalInterview, nil},
}

// ErrInvalidRefusal is returned for events the current refusal state does
// not accept.
var ErrInvalidRefusal = errors.New("form: invalid refusal transition")

// RefusalPair names the steps and paths a RefusalMachine acts on.
type RefusalPair struct {
	MeasurementStep  string
	InterviewStep    string
	MeasurementFlag  string
	InterviewFlag    string
	MeasurementPaths []string
	InterviewPaths   []string
}

// RefusalMachine applies the refusal cascade of one step pair to a State
// and, when attached, to the section Flow.
type RefusalMachine struct {
	pair    RefusalPair
	state   RefusalState
	cleared map[Effect]map[string]any
}

// NewRefusalMachine derives the initial state from the stored flags.
func NewRefusalMachine(pair RefusalPair, values *State) *RefusalMachine {
	m := &RefusalMachine{pair: pair, state: RefusalOpen}
	measurement := isTrue(values.Get(pair.MeasurementFlag))
	interview := isTrue(values.Get(pair.InterviewFlag))
	switch {
	case measurement:
		m.state = RefusalCommitted
	case interview:
		m.state = RefusalInterview
	}
	return m
}

// State returns the current refusal state.
func (m *RefusalMachine) State() RefusalState { return m.state }

// Pair returns the step pair.
func (m *RefusalMachine) Pair() RefusalPair { return m.pair }

// Fire applies event. flow may be nil.
func (m *RefusalMachine) Fire(event RefusalEvent, values *State, flow *Flow) error {
	tr, ok := refusalTransitions[refusalKey{from: m.state, event: event}]
	if !ok {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidRefusal, event, m.state)
	}
	for _, effect := range tr.effects {
		if err := m.apply(effect, values, flow); err != nil {
			return err
		}
	}
	m.state = tr.to
	return nil
}

func (m *RefusalMachine) apply(effect Effect, values *State, flow *Flow) error {
	switch effect {
	case FlagMeasurement:
		values.Set(m.pair.MeasurementFlag, true)
		return setRefused(flow, m.pair.MeasurementStep, true)
	case UnflagMeasurement:
		values.Set(m.pair.MeasurementFlag, false)
		return setRefused(flow, m.pair.MeasurementStep, false)
	case FlagInterview:
		values.Set(m.pair.InterviewFlag, true)
		return setRefused(flow, m.pair.InterviewStep, true)
	case UnflagInterview:
		values.Set(m.pair.InterviewFlag, false)
		return setRefused(flow, m.pair.InterviewStep, false)
	case ClearMeasurement:
		m.clear(values, RestoreMeasurement, m.pair.MeasurementPaths)
	case ClearInterview:
		m.clear(values, RestoreInterview, m.pair.InterviewPaths)
	case RestoreMeasurement, RestoreInterview:
		for path, value := range m.cleared[effect] {
			values.Set(path, value)
		}
		delete(m.cleared, effect)
	case ForgetCleared:
		m.cleared = nil
	}
	return nil
}

// clear empties paths, keeping their values under the effect that restores
// them.
func (m *RefusalMachine) clear(values *State, restore Effect, paths []string) {
	if m.cleared == nil {
		m.cleared = make(map[Effect]map[string]any)
	}
	snapshot := make(map[string]any)
	for _, path := range paths {
		if value := values.Get(path); value != nil {
			snapshot[path] = value
		}
		values.Set(path, nil)
	}
	m.cleared[restore] = snapshot
}

func setRefused(flow *Flow, stepID string, refused bool) error {
	if flow == nil || stepID == "" {
		return nil
	}
	if _, ok := flow.status[stepID]; !ok {
		return nil
	}
	return flow.SetRefused(stepID, refused)
}

func isTrue(value any) bool {
	b, ok := value.(bool)
	return ok && b
}
