package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	dctmd "github.com/goliatone/go-dctmd"
	"github.com/goliatone/go-dctmd/internal/config"
	"github.com/goliatone/go-dctmd/pkg/metrics"
	"github.com/goliatone/go-dctmd/pkg/tui"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath    string
	logLevel      string
	palpationMode string
	allRegions    bool
	format        string

	// driver overrides the terminal prompt driver used by intake.
	driver tui.PromptDriver

	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	engine  *dctmd.Engine
}

func rootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {

	cmd := &cobra.Command{
		Use:   appName,
		Short: "DC/TMD examination form engine",
		Long: `dctmd projects the DC/TMD examination model into path-addressed
questions, validates recorded examinations step by step, and migrates
stored records to the current model version.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.palpationMode, "palpation-mode", "", "Palpation mode (basic, standard, extended)")
	flags.BoolVar(&a.allRegions, "all-regions", false, "Include supplemental regions in interview checks")
	flags.StringVarP(&a.format, "format", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(
		instancesCmd(a),
		stepsCmd(a),
		schemaCmd(a),
		validateCmd(a),
		migrateCmd(a),
		intakeCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// setup loads layered configuration, applies flag overrides and builds the
// engine.
func (a *app) setup(cmd *cobra.Command) error {
	var cfg *config.Config
	if a.configPath != "" {
		loaded, err := config.LoadFromFile(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		loaded, err := config.NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil))).Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.palpationMode != "" {
		cfg.Validation.PalpationMode = a.palpationMode
	}
	if a.allRegions {
		cfg.Validation.IncludeAllRegions = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := parseFormat(a.format); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	a.metrics = metrics.New(nil)

	engine, err := dctmd.New(
		dctmd.WithLogger(a.logger),
		dctmd.WithMetrics(a.metrics),
		dctmd.WithValidationContext(cfg.ValidationContext()),
	)
	if err != nil {
		return err
	}
	a.engine = engine
	a.logger.Debug("Engine ready",
		slog.String("palpation_mode", string(cfg.ValidationContext().PalpationMode)),
		slog.Bool("all_regions", cfg.Validation.IncludeAllRegions),
		slog.Int("sections", len(engine.Catalog().SectionIDs())))
	return nil
}
