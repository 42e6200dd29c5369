package form_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/examination"
	"github.com/goliatone/go-dctmd/pkg/form"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

func newController(t *testing.T, opts ...form.ControllerOption) *form.Controller {
	t.Helper()
	catalog := examination.Default()
	return form.NewController(catalog, form.NewState(catalog.Defaults()), opts...)
}

func errorPaths(state *form.State) []string {
	var out []string
	for _, fe := range state.Errors() {
		out = append(out, fe.Path)
	}
	return out
}

func TestValidateStepIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newController(t)
	state := c.State()
	state.Set("e2.horizontalOverjet", 50.0)
	state.Set("e2.verticalOverlap", 3.0)

	for i := 0; i < 2; i++ {
		ok, err := c.ValidateStep("e2-incisal", validation.Context{})
		if err != nil {
			t.Fatalf("ValidateStep: %v", err)
		}
		if ok {
			t.Fatalf("run %d: expected failure for out of range overjet", i)
		}
		if diff := cmp.Diff([]string{"e2.horizontalOverjet"}, errorPaths(state)); diff != "" {
			t.Fatalf("run %d: errors mismatch (-want +got):\n%s", i, diff)
		}
	}

	state.Set("e2.horizontalOverjet", 4.0)
	for i := 0; i < 2; i++ {
		ok, err := c.ValidateStep("e2-incisal", validation.Context{})
		if err != nil || !ok {
			t.Fatalf("run %d: expected valid step, got %v %v", i, ok, err)
		}
		if len(state.Errors()) != 0 {
			t.Fatalf("run %d: stale errors %v", i, state.Errors())
		}
	}
}

func TestValidateStepUnknownStep(t *testing.T) {
	t.Parallel()

	c := newController(t)
	if _, err := c.ValidateStep("e42-nope", validation.Context{}); err == nil {
		t.Fatalf("expected error for unknown step")
	}
}

func TestValidateStepScreening(t *testing.T) {
	t.Parallel()

	gates := []string{"SQ1", "SQ5", "SQ8", "SQ9", "SQ13"}

	t.Run("negative screening needs no review", func(t *testing.T) {
		t.Parallel()
		c := newController(t)
		for _, gate := range gates {
			c.State().Set("anamnesis.sq."+gate, "no")
		}
		ok, err := c.ValidateStep(examination.StepAnamnesisSQ, validation.Context{})
		if err != nil || !ok {
			t.Fatalf("expected valid screening, got %v %v: %v", ok, err, c.State().Errors())
		}
	})

	t.Run("positive screening requires review", func(t *testing.T) {
		t.Parallel()
		c := newController(t)
		for _, gate := range gates {
			c.State().Set("anamnesis.sq."+gate, "no")
		}
		c.State().Set("anamnesis.sq.SQ1", "yes")
		c.State().Set("anamnesis.sq.SQ2", 6.0)
		c.State().Set("anamnesis.sq.SQ3", "intermittent")
		c.State().Set("anamnesis.sq.SQ4", "no")

		ok, err := c.ValidateStep(examination.StepAnamnesisSQ, validation.Context{})
		if err != nil {
			t.Fatalf("ValidateStep: %v", err)
		}
		if ok {
			t.Fatalf("expected unreviewed positive screening to fail")
		}
		if diff := cmp.Diff([]string{"anamnesis.sqReviewedAt"}, errorPaths(c.State())); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}

		c.State().Set("anamnesis.sqReviewedAt", "2026-01-12T10:00:00Z")
		if ok, _ := c.ValidateStep(examination.StepAnamnesisSQ, validation.Context{}); !ok {
			t.Fatalf("expected reviewed screening to pass: %v", c.State().Errors())
		}
	})
}

func TestValidateStepInterviewMarksExactPath(t *testing.T) {
	t.Parallel()

	c := newController(t)
	insts, err := c.InstancesForStep("e4-maxUnassisted-interview")
	if err != nil {
		t.Fatalf("InstancesForStep: %v", err)
	}
	for _, inst := range insts {
		if inst.Context.PainType == anatomy.PainTypePain {
			c.State().Set(inst.Key(), "no")
		}
	}
	c.State().Set("e4.maxUnassisted.interview.right.tmj.pain", "yes")

	ok, err := c.ValidateStep("e4-maxUnassisted-interview", validation.Context{})
	if err != nil {
		t.Fatalf("ValidateStep: %v", err)
	}
	if ok {
		t.Fatalf("expected missing familiar pain to fail")
	}
	want := []string{"e4.maxUnassisted.interview.right.tmj.familiarPain"}
	if diff := cmp.Diff(want, errorPaths(c.State())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

type recordingObserver struct {
	kinds []string
	valid []bool
}

func (r *recordingObserver) ObserveStep(kind string, valid bool, _ int, _ time.Duration) {
	r.kinds = append(r.kinds, kind)
	r.valid = append(r.valid, valid)
}

func TestValidateStepReportsToObserver(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	c := newController(t, form.WithStepObserver(obs))
	c.State().Set("e3.pattern", "straight")
	if _, err := c.ValidateStep("e3-pattern", validation.Context{}); err != nil {
		t.Fatalf("ValidateStep: %v", err)
	}
	if _, err := c.ValidateStep("e9-right", validation.Context{}); err != nil {
		t.Fatalf("ValidateStep: %v", err)
	}
	if diff := cmp.Diff([]string{"field", "palpation"}, obs.kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false}, obs.valid); diff != "" {
		t.Fatalf("valid mismatch (-want +got):\n%s", diff)
	}
}

func TestFlowNavigation(t *testing.T) {
	t.Parallel()

	passing := map[string]bool{"a": true, "b": false, "c": true}
	backCalls := 0
	flow := form.NewFlow([]string{"a", "b", "c"}, func(id string) bool { return passing[id] },
		form.WithBackHandler(func() { backCalls++ }))

	if err := flow.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if backCalls != 1 || flow.Current() != "a" {
		t.Fatalf("expected parent back handler on first step, calls=%d current=%s", backCalls, flow.Current())
	}

	res, err := flow.Next()
	if err != nil || !res.Advanced || flow.Current() != "b" {
		t.Fatalf("Next from a: %+v %v current=%s", res, err, flow.Current())
	}

	res, _ = flow.Next()
	if !res.NeedsConfirmation || !flow.AwaitingConfirmation() || flow.Current() != "b" {
		t.Fatalf("expected confirmation on failing step, got %+v", res)
	}
	flow.CancelSkip()
	if _, err := flow.ConfirmSkip(); !errors.Is(err, form.ErrNoConfirmation) {
		t.Fatalf("expected ErrNoConfirmation after cancel, got %v", err)
	}

	_, _ = flow.Next()
	if _, err := flow.ConfirmSkip(); err != nil {
		t.Fatalf("ConfirmSkip: %v", err)
	}
	if flow.Current() != "c" {
		t.Fatalf("expected c after skip, got %s", flow.Current())
	}

	if err := flow.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if flow.Current() != "b" || flow.Status("c") != form.StatusPending || flow.Status("b") != form.StatusActive {
		t.Fatalf("unexpected statuses after back: %v", flow.Statuses())
	}

	passing["b"] = true
	_, _ = flow.Next()
	res, _ = flow.Next()
	if !res.Exited || !flow.Done() || flow.Current() != "" {
		t.Fatalf("expected exhausted flow, got %+v statuses=%v", res, flow.Statuses())
	}
	want := []form.StepStatus{form.StatusCompleted, form.StatusCompleted, form.StatusCompleted}
	if diff := cmp.Diff(want, flow.Statuses()); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestFlowBackKeepsFinishedStatus(t *testing.T) {
	t.Parallel()

	passing := map[string]bool{"a": true, "b": false, "c": true}
	flow := form.NewFlow([]string{"a", "b", "c"}, func(id string) bool { return passing[id] })

	_, _ = flow.Next()
	_, _ = flow.Next()
	if _, err := flow.ConfirmSkip(); err != nil {
		t.Fatalf("ConfirmSkip: %v", err)
	}
	_, _ = flow.Next()
	if !flow.Done() {
		t.Fatalf("expected finished flow, got %v", flow.Statuses())
	}

	// Walk back to the first step and forward again without answering.
	if err := flow.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if err := flow.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if err := flow.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	want := []form.StepStatus{form.StatusActive, form.StatusSkipped, form.StatusCompleted}
	if diff := cmp.Diff(want, flow.Statuses()); diff != "" {
		t.Fatalf("statuses after back mismatch (-want +got):\n%s", diff)
	}

	if err := flow.GoTo("c"); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	want = []form.StepStatus{form.StatusCompleted, form.StatusSkipped, form.StatusActive}
	if diff := cmp.Diff(want, flow.Statuses()); diff != "" {
		t.Fatalf("statuses after GoTo mismatch (-want +got):\n%s", diff)
	}
	_, _ = flow.Next()
	if !flow.Done() {
		t.Fatalf("expected finished flow again, got %v", flow.Statuses())
	}
}

func TestFlowSkipsRefusedSteps(t *testing.T) {
	t.Parallel()

	flow := form.NewFlow([]string{"a", "b", "c"}, func(string) bool { return true })
	if err := flow.SetRefused("b", true); err != nil {
		t.Fatalf("SetRefused: %v", err)
	}
	if _, err := flow.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if flow.Current() != "c" {
		t.Fatalf("expected refused step to be skipped, current=%s", flow.Current())
	}
	if err := flow.SetRefused("b", false); err != nil {
		t.Fatalf("SetRefused: %v", err)
	}
	if flow.Status("b") != form.StatusPending {
		t.Fatalf("expected un-refused step pending, got %s", flow.Status("b"))
	}
	if err := flow.GoTo("b"); err != nil {
		t.Fatalf("GoTo: %v", err)
	}
	if flow.Status("b") != form.StatusActive || flow.Status("c") != form.StatusPending {
		t.Fatalf("unexpected statuses: %v", flow.Statuses())
	}
}

func TestRefusalCascadeIsReversibleBeforeLeaving(t *testing.T) {
	t.Parallel()

	const (
		measurementStep = "e4-maxUnassisted-measurement"
		interviewStep   = "e4-maxUnassisted-interview"
		measurement     = "e4.maxUnassisted.measurement"
		pain            = "e4.maxUnassisted.interview.right.tmj.pain"
	)

	c := newController(t)
	flow, err := c.Flow(examination.SectionE4)
	if err != nil {
		t.Fatalf("Flow: %v", err)
	}
	state := c.State()
	state.Set(measurement, 42.0)
	state.Set(pain, "yes")

	if err := c.Refuse(measurementStep, true); err != nil {
		t.Fatalf("Refuse: %v", err)
	}
	got := map[string]any{
		measurement:                         state.Get(measurement),
		pain:                                state.Get(pain),
		"e4.maxUnassisted.refused":          state.Get("e4.maxUnassisted.refused"),
		"e4.maxUnassisted.interviewRefused": state.Get("e4.maxUnassisted.interviewRefused"),
	}
	want := map[string]any{
		measurement:                         nil,
		pain:                                nil,
		"e4.maxUnassisted.refused":          true,
		"e4.maxUnassisted.interviewRefused": true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("refused state mismatch (-want +got):\n%s", diff)
	}
	if flow.Status(measurementStep) != form.StatusRefused || flow.Status(interviewStep) != form.StatusRefused {
		t.Fatalf("expected both steps refused, got %v", flow.Statuses())
	}

	if err := c.Refuse(measurementStep, false); err != nil {
		t.Fatalf("Refuse(false): %v", err)
	}
	if state.Get(measurement) != 42.0 || state.Get(pain) != "yes" {
		t.Fatalf("expected cleared data restored, got %v %v", state.Get(measurement), state.Get(pain))
	}
	if s, _ := c.RefusalState(interviewStep); s != form.RefusalOpen {
		t.Fatalf("expected open pair, got %s", s)
	}
	if flow.Status(interviewStep) != form.StatusPending {
		t.Fatalf("expected interview step pending, got %s", flow.Status(interviewStep))
	}
}

func TestRefusalCommittedAfterLeaving(t *testing.T) {
	t.Parallel()

	const (
		measurementStep = "e5-protrusive-measurement"
		interviewStep   = "e5-protrusive-interview"
	)

	c := newController(t)
	flow, err := c.Flow(examination.SectionE5)
	if err != nil {
		t.Fatalf("Flow: %v", err)
	}
	c.State().Set("e5.protrusive.measurement", 7.0)

	if err := c.Refuse(measurementStep, true); err != nil {
		t.Fatalf("Refuse: %v", err)
	}
	if err := c.LeaveStep(measurementStep); err != nil {
		t.Fatalf("LeaveStep: %v", err)
	}
	if s, _ := c.RefusalState(measurementStep); s != form.RefusalCommitted {
		t.Fatalf("expected committed refusal, got %s", s)
	}

	if err := c.Refuse(measurementStep, false); err != nil {
		t.Fatalf("Refuse(false): %v", err)
	}
	if s, _ := c.RefusalState(measurementStep); s != form.RefusalInterview {
		t.Fatalf("expected interview-only refusal, got %s", s)
	}
	if c.State().Get("e5.protrusive.measurement") != nil {
		t.Fatalf("committed refusal must not restore cleared data")
	}
	if c.State().Get("e5.protrusive.interviewRefused") != true {
		t.Fatalf("interview refusal must survive")
	}
	if flow.Status(measurementStep) != form.StatusPending || flow.Status(interviewStep) != form.StatusRefused {
		t.Fatalf("unexpected statuses: %v", flow.Statuses())
	}

	if err := c.Refuse("e3-pattern", true); err == nil {
		t.Fatalf("expected error for step without refusal pair")
	}
}

func TestMeasurementUnrefusalKeepsPriorInterviewRefusal(t *testing.T) {
	t.Parallel()

	const (
		measurementStep = "e4-maxUnassisted-measurement"
		interviewStep   = "e4-maxUnassisted-interview"
		measurement     = "e4.maxUnassisted.measurement"
		pain            = "e4.maxUnassisted.interview.right.tmj.pain"
	)

	c := newController(t)
	flow, err := c.Flow(examination.SectionE4)
	if err != nil {
		t.Fatalf("Flow: %v", err)
	}
	state := c.State()
	state.Set(measurement, 38.0)
	state.Set(pain, "yes")

	if err := c.Refuse(interviewStep, true); err != nil {
		t.Fatalf("Refuse(interview): %v", err)
	}
	if err := c.Refuse(measurementStep, true); err != nil {
		t.Fatalf("Refuse(measurement): %v", err)
	}
	if s, _ := c.RefusalState(measurementStep); s != form.RefusalMeasurementOverInterview {
		t.Fatalf("expected measurement refused over interview, got %s", s)
	}
	if err := c.Refuse(measurementStep, false); err != nil {
		t.Fatalf("Refuse(measurement, false): %v", err)
	}

	got := map[string]any{
		"state":            string(mustRefusalState(t, c, measurementStep)),
		measurement:        state.Get(measurement),
		pain:               state.Get(pain),
		"refused":          state.Get("e4.maxUnassisted.refused"),
		"interviewRefused": state.Get("e4.maxUnassisted.interviewRefused"),
		"measurementStep":  string(flow.Status(measurementStep)),
		"interviewStep":    string(flow.Status(interviewStep)),
	}
	want := map[string]any{
		"state":            string(form.RefusalInterview),
		measurement:        38.0,
		pain:               nil,
		"refused":          false,
		"interviewRefused": true,
		"measurementStep":  string(form.StatusPending),
		"interviewStep":    string(form.StatusRefused),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unrefused state mismatch (-want +got):\n%s", diff)
	}

	if err := c.Refuse(interviewStep, false); err != nil {
		t.Fatalf("Refuse(interview, false): %v", err)
	}
	if state.Get(pain) != "yes" {
		t.Fatalf("expected interview answers restored, got %v", state.Get(pain))
	}
}

func mustRefusalState(t *testing.T, c *form.Controller, stepID string) form.RefusalState {
	t.Helper()
	s, ok := c.RefusalState(stepID)
	if !ok {
		t.Fatalf("step %s has no refusal pair", stepID)
	}
	return s
}

func TestRefusalStateRestoredFromFlags(t *testing.T) {
	t.Parallel()

	catalog := examination.Default()
	values := catalog.Defaults()
	e4 := values["e4"].(map[string]any)
	e4["maxAssisted"].(map[string]any)["refused"] = true

	c := form.NewController(catalog, form.NewState(values))
	if s, _ := c.RefusalState("e4-maxAssisted-interview"); s != form.RefusalCommitted {
		t.Fatalf("expected committed refusal from stored flag, got %s", s)
	}
	flow, err := c.Flow(examination.SectionE4)
	if err != nil {
		t.Fatalf("Flow: %v", err)
	}
	if flow.Status("e4-maxAssisted-interview") != form.StatusRefused {
		t.Fatalf("expected refused interview step, got %s", flow.Status("e4-maxAssisted-interview"))
	}
}

func TestStateSubscriptions(t *testing.T) {
	t.Parallel()

	state := form.NewState(map[string]any{"e3": map[string]any{"pattern": nil}})
	var seen []string
	unsubscribe := state.Subscribe(func(path string, value any) {
		seen = append(seen, path)
	})
	state.Set("e3.pattern", "straight")
	unsubscribe()
	state.Set("e3.pattern", "uncorrectedLeft")

	if diff := cmp.Diff([]string{"e3.pattern"}, seen); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"pattern": "uncorrectedLeft"}
	if diff := cmp.Diff(want, state.Section("e3")); diff != "" {
		t.Fatalf("section mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{}, state.Section("e9")); diff != "" {
		t.Fatalf("missing section mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload(t *testing.T) {
	t.Parallel()

	ix := examination.Default().Index()
	got := form.MapErrorPayload(ix, map[string][]string{
		"/e2/horizontalOverjet":                     {"too large"},
		"body.e4.maxUnassisted.measurement":         {" bad ", "bad"},
		"e9.right.temporalisPosterior.pain.details": {"conflicting"},
		"__all__":       {"record locked"},
		"unknown.field": {"ignored field"},
		"e3.pattern":    {"  "},
	})
	want := form.ErrorMapping{
		Fields: map[string][]string{
			"e2.horizontalOverjet":              {"too large"},
			"e4.maxUnassisted.measurement":      {"bad"},
			"e9.right.temporalisPosterior.pain": {"conflicting"},
		},
		Form: []string{"record locked", "ignored field"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyErrorPayload(t *testing.T) {
	t.Parallel()

	c := newController(t)
	formErrors := c.ApplyErrorPayload(map[string][]string{
		"e2[horizontalOverjet]": {"out of range", "check sign"},
		"form":                  {"stale record"},
	})
	if diff := cmp.Diff([]string{"stale record"}, formErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	want := []validation.FieldError{{
		Path:    "e2.horizontalOverjet",
		Code:    form.CodeServer,
		Message: "out of range; check sign",
	}}
	if diff := cmp.Diff(want, c.State().Errors()); diff != "" {
		t.Fatalf("state errors mismatch (-want +got):\n%s", diff)
	}
}
