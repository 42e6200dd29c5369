package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dctmd/pkg/tui"
)

// run executes the command tree against a hermetic config file.
func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "dctmd.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o644))

	cmd := newRootCmd(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeRecord(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestInstancesGlob(t *testing.T) {
	out, err := run(t, &app{}, "instances", "e9.right.temporalisPosterior.*", "-o", "json")
	require.NoError(t, err)

	var rows []instanceRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, "e9.right.temporalisPosterior.pain", rows[0].Path)
	assert.Equal(t, "temporalisPosterior", rows[0].Site)
	assert.Equal(t, "pain eq yes", rows[1].EnableWhen)
}

func TestInstancesFilters(t *testing.T) {
	out, err := run(t, &app{}, "instances", "--section", "e8", "--side", "left", "-o", "json")
	require.NoError(t, err)

	var rows []instanceRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Equal(t, "left", row.Side)
	}

	_, err = run(t, &app{}, "instances", "e9/[")
	assert.Error(t, err)
}

func TestStepsYAML(t *testing.T) {
	out, err := run(t, &app{}, "steps", "--section", "e9")
	require.NoError(t, err)

	assert.Contains(t, out, "id: e9-right")
	assert.Contains(t, out, "id: e9-left")
	assert.Contains(t, out, "kind: palpation")
	assert.Contains(t, out, "instances: 34")
}

func TestSchemaJSON(t *testing.T) {
	out, err := run(t, &app{}, "schema", "-o", "json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "e4")
	assert.Contains(t, props, "anamnesis")
}

func TestValidateCommand(t *testing.T) {
	path := writeRecord(t, `{"_modelVersion":2,"e3":{"pattern":"straight"}}`)

	out, err := run(t, &app{}, "validate", path, "--only-failed", "-o", "json")
	require.NoError(t, err)

	var report struct {
		Valid bool `json:"valid"`
		Steps []struct {
			ID string `json:"id"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	for _, step := range report.Steps {
		assert.NotEqual(t, "e3-pattern", step.ID)
	}

	_, err = run(t, &app{}, "validate", path, "--strict")
	assert.True(t, errors.Is(err, errInvalidRecord))
}

func TestMigrateCommand(t *testing.T) {
	path := writeRecord(t, `{"id":"0b7c5f5e-8a4e-4f59-9a63-2f1c1b9d7e10","e4":{"maxAssisted":{"value":44}}}`)
	dest := filepath.Join(t.TempDir(), "out", "migrated.json")

	_, err := run(t, &app{}, "migrate", path, "--out", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2.0, doc["_modelVersion"])
	movement := doc["e4"].(map[string]any)["maxAssisted"].(map[string]any)
	assert.Equal(t, 44.0, movement["measurement"])
	assert.NotContains(t, movement, "value")
}

type scriptedDriver struct {
	selects []int
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	return "", errors.New("unexpected input prompt")
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, errors.New("unexpected confirm prompt")
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	idx := d.selects[0]
	d.selects = d.selects[1:]
	return idx, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	return nil, errors.New("unexpected multiselect prompt")
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestIntakeWritesRecord(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "exam.json")
	out, err := run(t, &app{driver: &scriptedDriver{selects: []int{1}}}, "intake", "e3", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "complete sections [e3]")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "correctedDeviation", doc["e3"].(map[string]any)["pattern"])
	assert.Equal(t, []any{"e3"}, doc["completedSections"])
	assert.Equal(t, "in_progress", doc["status"])
}

func TestIntakeRejectsUnknownSection(t *testing.T) {
	_, err := run(t, &app{driver: &scriptedDriver{}}, "intake", "e42", "--out", filepath.Join(t.TempDir(), "x.json"))
	assert.ErrorContains(t, err, "unknown section")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, &app{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dctmd version "+Version)
}
