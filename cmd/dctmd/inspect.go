package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/instance"
	"github.com/goliatone/go-dctmd/pkg/steps"
)

type instanceRow struct {
	Path       string   `json:"path"`
	RenderType string   `json:"renderType"`
	Required   bool     `json:"required,omitempty"`
	Options    []string `json:"options,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	EnableWhen string   `json:"enableWhen,omitempty"`
	Side       string   `json:"side,omitempty"`
	Region     string   `json:"region,omitempty"`
	Site       string   `json:"site,omitempty"`
	PainType   string   `json:"painType,omitempty"`
}

func toInstanceRow(inst instance.Instance) instanceRow {
	row := instanceRow{
		Path:       inst.Key(),
		RenderType: string(inst.RenderType),
		Required:   inst.Config.Required,
		Options:    inst.Config.Options,
		Min:        inst.Config.Min,
		Max:        inst.Config.Max,
		Unit:       inst.Config.Unit,
		Side:       string(inst.Context.Side),
		Region:     string(inst.Context.Region),
		Site:       string(inst.Context.Site),
		PainType:   string(inst.Context.PainType),
	}
	if cond := inst.EnableWhen; cond != nil {
		row.EnableWhen = cond.Field + " " + string(cond.Op) + " " + fmtValue(cond.Value)
	}
	return row
}

func instancesCmd(a *app) *cobra.Command {
	var (
		section    string
		side       string
		region     string
		renderType string
	)

	cmd := &cobra.Command{
		Use:   "instances [glob]",
		Short: "List compiled question instances",
		Long: `List the path-addressed questions of the examination. An optional
doublestar pattern filters paths, e.g. "e9.*.temporalis*.pain" or
"e4/**/familiarPain".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix := a.engine.Catalog().Index()
			insts := ix.All()
			if len(args) == 1 {
				matched, err := ix.Glob(args[0])
				if err != nil {
					return err
				}
				insts = matched
			}

			filter := instance.Context{Side: anatomy.Side(side), Region: anatomy.Region(region)}
			rows := make([]instanceRow, 0, len(insts))
			for _, inst := range insts {
				if section != "" && inst.Section != section {
					continue
				}
				if renderType != "" && string(inst.RenderType) != renderType {
					continue
				}
				if !inst.Context.Matches(filter) {
					continue
				}
				rows = append(rows, toInstanceRow(inst))
			}
			return a.write(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Only instances of this section")
	cmd.Flags().StringVar(&side, "side", "", "Only instances on this side (right, left)")
	cmd.Flags().StringVar(&region, "region", "", "Only instances in this region")
	cmd.Flags().StringVar(&renderType, "render-type", "", "Only instances of this render type")
	return cmd
}

type stepRow struct {
	steps.Definition
	Instances int `json:"instances"`
}

func stepsCmd(a *app) *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List navigable steps and the instances each covers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := a.engine.Catalog()
			defs := catalog.Steps().Steps()
			if section != "" {
				defs = catalog.Steps().ForSection(section)
			}
			rows := make([]stepRow, 0, len(defs))
			for _, def := range defs {
				rows = append(rows, stepRow{
					Definition: def,
					Instances:  len(catalog.Steps().Resolve(def, catalog.Index())),
				})
			}
			return a.write(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Only steps of this section")
	return cmd
}

func schemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the structural schema of a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.write(cmd.OutOrStdout(), a.engine.Catalog().Schema())
		},
	}
}
