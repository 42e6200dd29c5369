// Package tui runs examination sections as terminal prompt sessions on top
// of a form controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-dctmd/pkg/fieldpath"
	"github.com/goliatone/go-dctmd/pkg/form"
	"github.com/goliatone/go-dctmd/pkg/instance"
	"github.com/goliatone/go-dctmd/pkg/model"
	"github.com/goliatone/go-dctmd/pkg/steps"
	"github.com/goliatone/go-dctmd/pkg/visibility"
)

// Session walks section flows, prompting for every enabled question of the
// current step.
type Session struct {
	controller *form.Controller
	driver     PromptDriver
	theme      Theme
	logger     *slog.Logger
}

// New constructs a session with the survey driver unless overridden.
func New(controller *form.Controller, options ...Option) (*Session, error) {
	if controller == nil {
		return nil, errors.New("tui: controller required")
	}
	s := &Session{
		controller: controller,
		driver:     NewSurveyDriver(nil),
		theme:      DefaultTheme,
		logger:     slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		return nil, ErrNoDriver
	}
	return s, nil
}

// Run runs the given sections in order.
func (s *Session) Run(ctx context.Context, sectionIDs ...string) error {
	for _, id := range sectionIDs {
		if err := s.RunSection(ctx, id); err != nil {
			return fmt.Errorf("tui: section %s: %w", id, err)
		}
	}
	return nil
}

// RunSection prompts through every step of a section until its flow exits.
func (s *Session) RunSection(ctx context.Context, sectionID string) error {
	flow, err := s.controller.Flow(sectionID)
	if err != nil {
		return err
	}
	for {
		stepID := flow.Current()
		if stepID == "" {
			s.logger.Debug("Section finished", slog.String("section", sectionID), slog.Bool("done", flow.Done()))
			return nil
		}
		if err := s.runStep(ctx, flow, stepID); err != nil {
			return err
		}
	}
}

func (s *Session) runStep(ctx context.Context, flow *form.Flow, stepID string) error {
	def, err := s.controller.Step(stepID)
	if err != nil {
		return err
	}
	if err := s.driver.Info(ctx, s.theme.StepPrefix+stepID); err != nil {
		return err
	}

	refused := flow.Status(stepID) == form.StatusRefused
	if !refused && def.RefusedField != "" {
		if refused, err = s.askRefusal(ctx, def); err != nil {
			return err
		}
	}
	if !refused {
		if err := s.promptStep(ctx, def); err != nil {
			return err
		}
	}

	res, err := flow.Next()
	if err != nil {
		return err
	}
	if res.NeedsConfirmation {
		if err := s.reportErrors(ctx, def); err != nil {
			return err
		}
		skip, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Skip this step with missing answers?"})
		if err != nil {
			return err
		}
		if !skip {
			flow.CancelSkip()
			return nil
		}
		if _, err := flow.ConfirmSkip(); err != nil {
			return err
		}
	}
	return s.controller.LeaveStep(stepID)
}

// askRefusal records a refusal either through the step's refusal pair or,
// for standalone steps, directly on its flag.
func (s *Session) askRefusal(ctx context.Context, def steps.Definition) (bool, error) {
	state := s.controller.State()
	current, _ := state.Get(def.RefusedField).(bool)
	refused, err := s.driver.Confirm(ctx, ConfirmConfig{
		Message: "Patient refused " + def.ID + "?",
		Default: current,
	})
	if err != nil {
		return false, err
	}
	if _, paired := s.controller.RefusalState(def.ID); paired {
		if refused {
			return true, s.controller.Refuse(def.ID, true)
		}
		return false, nil
	}
	state.Set(def.RefusedField, refused)
	return refused, nil
}

func (s *Session) promptStep(ctx context.Context, def steps.Definition) error {
	insts, err := s.controller.InstancesForStep(def.ID)
	if err != nil {
		return err
	}
	get := s.controller.State().Getter()
	for _, inst := range insts {
		if isRefusalFlag(inst, def) {
			continue
		}
		if !visibility.Default.Enabled(inst.Path, inst.EnableWhen, get) {
			continue
		}
		if err := s.promptInstance(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) reportErrors(ctx context.Context, def steps.Definition) error {
	insts, err := s.controller.InstancesForStep(def.ID)
	if err != nil {
		return err
	}
	for _, inst := range insts {
		fe, ok := s.controller.State().Error(inst.Key())
		if !ok {
			continue
		}
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+fe.Path+": "+fe.Message); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptInstance(ctx context.Context, inst instance.Instance) error {
	state := s.controller.State()
	path := inst.Key()
	label := displayLabel(inst)

	switch inst.RenderType {
	case instance.RenderYesNo, instance.RenderEnum:
		current, _ := state.Get(path).(string)
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      inst.Config.Options,
			DefaultIndex: indexOf(inst.Config.Options, current),
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(inst.Config.Options) {
			state.Set(path, inst.Config.Options[idx])
		}
		return nil

	case instance.RenderCheckboxGroup:
		current, _ := state.Get(path).([]string)
		indices, err := s.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  inst.Config.Options,
			Defaults: indicesOf(inst.Config.Options, current),
		})
		if err != nil {
			return err
		}
		state.Set(path, defaultsFromIndices(inst.Config.Options, indices))
		return nil

	case instance.RenderFlag:
		current, _ := state.Get(path).(bool)
		ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current})
		if err != nil {
			return err
		}
		state.Set(path, ok)
		return nil

	case instance.RenderMeasurement:
		return s.promptMeasurement(ctx, inst, label)

	default:
		current, _ := state.Get(path).(string)
		input, err := s.driver.Input(ctx, InputConfig{Message: label, Default: current})
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			state.Set(path, nil)
			return nil
		}
		state.Set(path, input)
		return nil
	}
}

// promptMeasurement re-prompts until the input is blank or a number within
// the configured range. Blank answers are left to step validation.
func (s *Session) promptMeasurement(ctx context.Context, inst instance.Instance, label string) error {
	state := s.controller.State()
	path := inst.Key()
	defaultStr := ""
	if current := state.Get(path); current != nil {
		defaultStr = fmt.Sprint(current)
	}
	if inst.Config.Unit != "" {
		label += " (" + inst.Config.Unit + ")"
	}
	check := func(raw string) error {
		_, err := parseMeasurement(inst.Config, raw)
		return err
	}

	for {
		input, err := s.driver.Input(ctx, InputConfig{Message: label, Default: defaultStr, Validator: check})
		if err != nil {
			return err
		}
		value, err := parseMeasurement(inst.Config, input)
		if err != nil {
			if err := s.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", s.theme.ErrorPrefix, path, err)); err != nil {
				return err
			}
			continue
		}
		if value == nil {
			state.Set(path, nil)
		} else {
			state.Set(path, *value)
		}
		return nil
	}
}

func parseMeasurement(cfg instance.Config, raw string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, errors.New("must be a number")
	}
	if cfg.Min != nil && f < *cfg.Min {
		return nil, fmt.Errorf("must be at least %s", strconv.FormatFloat(*cfg.Min, 'f', -1, 64))
	}
	if cfg.Max != nil && f > *cfg.Max {
		return nil, fmt.Errorf("must be at most %s", strconv.FormatFloat(*cfg.Max, 'f', -1, 64))
	}
	return &f, nil
}

func isRefusalFlag(inst instance.Instance, def steps.Definition) bool {
	if inst.RenderType != instance.RenderFlag {
		return false
	}
	if inst.Key() == def.RefusedField {
		return true
	}
	leaf := inst.Path.Leaf()
	return leaf == fieldpath.KeyRefused || leaf == fieldpath.KeyInterviewRefused
}

func displayLabel(inst instance.Instance) string {
	segments := inst.Path.Segments()
	if len(segments) > 1 {
		segments = segments[1:]
	}
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, model.Label(segment))
	}
	return strings.Join(parts, " / ")
}
