package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dctmd/pkg/draft"
	"github.com/goliatone/go-dctmd/pkg/persistence"
	"github.com/goliatone/go-dctmd/pkg/tui"
)

var errInvalidRecord = errors.New("record has validation errors")

func fmtValue(v any) string { return fmt.Sprint(v) }

// readRecord decodes a record file, or stdin for "-".
func (a *app) readRecord(cmd *cobra.Command, path string) (*persistence.Record, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		r = bytes.NewReader(data)
	}
	rec, outcome, err := a.engine.DecodeRecord(r)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	a.logger.Info("Loaded record",
		slog.String("record", rec.ID.String()),
		slog.String("outcome", string(outcome)),
		slog.Int("model_version", rec.ModelVersion))
	return rec, nil
}

func validateCmd(a *app) *cobra.Command {
	var (
		strict     bool
		onlyFailed bool
	)

	cmd := &cobra.Command{
		Use:   "validate <record.json|->",
		Short: "Validate every step of a stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.readRecord(cmd, args[0])
			if err != nil {
				return err
			}
			report, err := a.engine.Validate(a.engine.NewController(rec.Sections))
			if err != nil {
				return err
			}
			if onlyFailed {
				kept := report.Steps[:0]
				for _, step := range report.Steps {
					if !step.Valid {
						kept = append(kept, step)
					}
				}
				report.Steps = kept
			}
			if err := a.write(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if strict && !report.Valid {
				return errInvalidRecord
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any step fails")
	cmd.Flags().BoolVar(&onlyFailed, "only-failed", false, "Only report failing steps")
	return cmd
}

func migrateCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "migrate <record.json|->",
		Short: "Migrate a stored record to the current model version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.readRecord(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			return writeFileAtomic(out, data)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the migrated record here instead of stdout")
	return cmd
}

func intakeCmd(a *app) *cobra.Command {
	var (
		recordPath string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "intake [section...]",
		Short: "Record examination sections interactively",
		Long: `Walk the steps of the given sections (all sections when none are
named), prompting for every enabled question. Changes are autosaved as
drafts; the record is written to --out when the session ends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog := a.engine.Catalog()
			sections := args
			if len(sections) == 0 {
				sections = catalog.SectionIDs()
			}
			for _, id := range sections {
				if !catalog.HasSection(id) {
					return fmt.Errorf("unknown section %q", id)
				}
			}

			if out == "" {
				out = recordPath
			}
			if out == "" {
				return errors.New("--out is required for new records")
			}

			drafts, err := a.draftStore()
			if err != nil {
				return err
			}
			repo := a.engine.NewRepository(&fileBackend{path: out}, drafts)

			var rec *persistence.Record
			if recordPath != "" {
				if rec, err = a.readRecord(cmd, recordPath); err != nil {
					return err
				}
			} else {
				rec = repo.Create()
			}

			session := a.engine.NewSession(rec, drafts, draft.WithDelay(a.cfg.Autosave.Delay), draft.WithLogger(a.logger))
			defer func() {
				if err := session.Close(context.WithoutCancel(ctx)); err != nil {
					a.logger.Warn("Failed to flush draft", slog.String("error", err.Error()))
				}
			}()

			opts := []tui.Option{tui.WithLogger(a.logger)}
			if a.driver != nil {
				opts = append(opts, tui.WithPromptDriver(a.driver))
			} else {
				opts = append(opts, tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())))
			}
			prompts, err := tui.New(session.Controller(), opts...)
			if err != nil {
				return err
			}
			if err := prompts.Run(ctx, sections...); err != nil {
				return err
			}

			if _, err := session.Commit(ctx, repo); err != nil {
				return err
			}
			return a.printSummary(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().StringVar(&recordPath, "record", "", "Existing record to continue")
	cmd.Flags().StringVar(&out, "out", "", "Where to write the record (defaults to --record)")
	return cmd
}

func (a *app) printSummary(w io.Writer, rec *persistence.Record) error {
	_, err := fmt.Fprintf(w, "record %s: %s, complete sections %v\n", rec.ID, rec.Status, rec.CompletedSections)
	return err
}

func (a *app) draftStore() (draft.Store, error) {
	if a.cfg.Autosave.Dir == "" {
		return draft.NewMemoryStore(), nil
	}
	return draft.NewFileStore(a.cfg.Autosave.Dir)
}

// fileBackend stores a single record as a JSON file.
type fileBackend struct {
	path string
}

func (b *fileBackend) Get(_ context.Context, id uuid.UUID) (*persistence.Record, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec persistence.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.ID != id {
		return nil, persistence.ErrNotFound
	}
	return &rec, nil
}

func (b *fileBackend) Put(_ context.Context, rec *persistence.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(b.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
