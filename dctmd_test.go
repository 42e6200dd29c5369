package dctmd_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dctmd "github.com/goliatone/go-dctmd"
	"github.com/goliatone/go-dctmd/pkg/draft"
	"github.com/goliatone/go-dctmd/pkg/form"
	"github.com/goliatone/go-dctmd/pkg/metrics"
	"github.com/goliatone/go-dctmd/pkg/persistence"
)

func TestValidateDefaultsReportsEveryStep(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	engine, err := dctmd.New(dctmd.WithMetrics(m))
	require.NoError(t, err)

	c := engine.NewController(engine.Catalog().Defaults())
	c.State().Set("e3.pattern", "straight")

	report, err := engine.Validate(c)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Len(t, report.Steps, len(engine.Catalog().Steps().Steps()))
	assert.Equal(t, []string{"e3"}, report.CompleteSections())

	for _, step := range report.Steps {
		if step.ID == "e3-pattern" {
			assert.True(t, step.Valid)
			continue
		}
		if step.ID == "e2-reference-tooth" {
			require.Len(t, step.Errors, 1)
			assert.Equal(t, "e2.referenceTooth", step.Errors[0].Path)
		}
	}

	total := testutil.ToFloat64(m.StepValidations().WithLabelValues("field", "true")) +
		testutil.ToFloat64(m.StepValidations().WithLabelValues("field", "false"))
	assert.Positive(t, total)
}

func TestDecodeRecordMigrates(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	engine, err := dctmd.New(dctmd.WithMetrics(m))
	require.NoError(t, err)

	raw := `{"id":"6f1c7d2e-3b0a-4c55-9d7e-0a1b2c3d4e5f","_modelVersion":1,"status":"in_progress",
		"e4":{"maxUnassisted":{"value":40}}}`
	rec, outcome, err := engine.DecodeRecord(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, persistence.OutcomeDirect, outcome)
	assert.Equal(t, 2, rec.ModelVersion)
	assert.Equal(t, persistence.StatusInProgress, rec.Status)
	movement := rec.Sections["e4"].(map[string]any)["maxUnassisted"].(map[string]any)
	assert.Equal(t, 40.0, movement["measurement"])
	assert.NotContains(t, movement, "value")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads().WithLabelValues("direct")))

	_, _, err = engine.DecodeRecord(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestSessionAutosavesAndCommits(t *testing.T) {
	ctx := context.Background()
	engine, err := dctmd.New()
	require.NoError(t, err)

	drafts := draft.NewMemoryStore()
	backend := persistence.NewMemoryBackend()
	repo := engine.NewRepository(backend, drafts)

	rec := repo.Create()
	session := engine.NewSession(rec, drafts, draft.WithDelay(time.Hour))
	session.Controller().State().Set("e3.pattern", "uncorrectedRight")
	assert.True(t, session.Autosaver().Pending())

	require.NoError(t, session.Autosaver().Flush(ctx))
	saved, err := drafts.Load(ctx, rec.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "uncorrectedRight", saved.Values["e3"].(map[string]any)["pattern"])

	report, err := session.Commit(ctx, repo)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, []string{"e3"}, rec.CompletedSections)
	assert.Equal(t, persistence.StatusInProgress, rec.Status)

	_, err = drafts.Load(ctx, rec.ID.String())
	assert.True(t, errors.Is(err, draft.ErrNotFound), "commit removes the draft")

	stored, source, err := repo.Open(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, persistence.SourceBackend, source)
	assert.Equal(t, "uncorrectedRight", stored.Sections["e3"].(map[string]any)["pattern"])

	require.NoError(t, session.Close(ctx))
	session.Controller().State().Set("e3.pattern", "straight")
	assert.False(t, session.Autosaver().Pending(), "closed sessions stop autosaving")
}

func TestCommitCompletesSectionsFinishedThroughFlows(t *testing.T) {
	ctx := context.Background()
	engine, err := dctmd.New()
	require.NoError(t, err)

	drafts := draft.NewMemoryStore()
	repo := engine.NewRepository(persistence.NewMemoryBackend(), drafts)
	rec := repo.Create()
	session := engine.NewSession(rec, drafts, draft.WithDelay(time.Hour))
	c := session.Controller()

	flow, err := c.Flow("e3")
	require.NoError(t, err)
	res, err := flow.Next()
	require.NoError(t, err)
	require.True(t, res.NeedsConfirmation)
	_, err = flow.ConfirmSkip()
	require.NoError(t, err)
	require.True(t, flow.Done())

	report, err := session.Commit(ctx, repo)
	require.NoError(t, err)
	assert.NotContains(t, report.CompleteSections(), "e3")
	assert.Equal(t, []string{"e3"}, rec.CompletedSections)
	assert.Equal(t, persistence.StatusInProgress, rec.Status)

	for _, id := range engine.Catalog().SectionIDs() {
		flow, err := c.Flow(id)
		require.NoError(t, err)
		for flow.Current() != "" {
			res, err := flow.Next()
			require.NoError(t, err)
			if res.NeedsConfirmation {
				_, err = flow.ConfirmSkip()
				require.NoError(t, err)
			}
		}
	}

	_, err = session.Commit(ctx, repo)
	require.NoError(t, err)
	assert.ElementsMatch(t, engine.Catalog().SectionIDs(), rec.CompletedSections)
	assert.Equal(t, persistence.StatusCompleted, rec.Status)
	require.NoError(t, session.Close(ctx))
}

type slowDeleteStore struct {
	*draft.MemoryStore
}

func (s slowDeleteStore) Delete(ctx context.Context, recordID string) error {
	err := s.MemoryStore.Delete(ctx, recordID)
	time.Sleep(60 * time.Millisecond)
	return err
}

func TestCommitLeavesNoDraftBehind(t *testing.T) {
	ctx := context.Background()
	engine, err := dctmd.New()
	require.NoError(t, err)

	drafts := slowDeleteStore{MemoryStore: draft.NewMemoryStore()}
	repo := engine.NewRepository(persistence.NewMemoryBackend(), drafts)
	rec := repo.Create()
	session := engine.NewSession(rec, drafts, draft.WithDelay(10*time.Millisecond))

	session.Controller().State().Set("e3.pattern", "straight")
	_, err = session.Commit(ctx, repo)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	_, err = drafts.Load(ctx, rec.ID.String())
	assert.True(t, errors.Is(err, draft.ErrNotFound), "a successful commit leaves no draft")
	assert.False(t, session.Autosaver().Pending())
	require.NoError(t, session.Close(ctx))
}

type rejectingBackend struct {
	*persistence.MemoryBackend
	fields map[string][]string
}

func (b rejectingBackend) Put(context.Context, *persistence.Record) error {
	return &persistence.RejectionError{Fields: b.fields}
}

func TestCommitMapsBackendRejection(t *testing.T) {
	ctx := context.Background()
	engine, err := dctmd.New()
	require.NoError(t, err)

	drafts := draft.NewMemoryStore()
	backend := rejectingBackend{
		MemoryBackend: persistence.NewMemoryBackend(),
		fields: map[string][]string{
			"/e2/horizontalOverjet": {"must be at most 20"},
			"__all__":               {"record locked"},
		},
	}
	repo := engine.NewRepository(backend, drafts)
	rec := repo.Create()
	session := engine.NewSession(rec, drafts, draft.WithDelay(time.Hour))
	session.Controller().State().Set("e2.horizontalOverjet", 25.0)

	_, err = session.Commit(ctx, repo)
	var rejected *persistence.RejectionError
	require.True(t, errors.As(err, &rejected))

	fe, ok := session.Controller().State().Error("e2.horizontalOverjet")
	require.True(t, ok)
	assert.Equal(t, form.CodeServer, fe.Code)
	assert.Equal(t, "must be at most 20", fe.Message)
	assert.True(t, session.Autosaver().Pending(), "a failed commit keeps the change for autosave")
	session.Autosaver().Discard()
}
