package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/charts"
	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/sample"
)

func newSampleCmd(o *options) *cobra.Command {
	opts := sample.DefaultOptions()
	var out string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic simulation results CSV",
		Example: `  policysim sample --rows 1000 --seed 7 --out LMIC_Intervention_Simulation_Results.csv
  policysim sample --no-probability`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" || out == "-" {
				_, err := sample.Write(cmd.OutOrStdout(), opts)
				return err
			}
			ds, err := sample.WriteFile(out, opts)
			if err != nil {
				return err
			}
			o.logger.Info("sample written",
				logging.Field{Key: "path", Value: out},
				logging.Field{Key: "records", Value: ds.Len()},
				logging.Field{Key: "has_probability", Value: ds.HasProbability})
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", opts.Rows, "number of records")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().Float64Var(&opts.TargetedEffect, "targeted-effect", opts.TargetedEffect, "chance targeted therapy clears a baseline MDR case")
	cmd.Flags().BoolVar(&opts.NoProbability, "no-probability", false, "omit the MDR_Probability column")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func newChartsCmd(o *options) *cobra.Command {
	var (
		levers leverFlags
		outDir string
		format string
	)
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Export the region and risk charts as SVG or PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := charts.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := o.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())

			v, err := a.Dashboard.Evaluate(levers.resolve(cmd, o.cfg.Levers))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", outDir, err)
			}

			written, err := exportCharts(v, outDir, f, o.cfg.Charts)
			for _, p := range written {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	levers.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out-dir", "d", ".", "directory for the chart files")
	cmd.Flags().StringVarP(&format, "format", "f", string(charts.FormatSVG), "svg or png")
	return cmd
}

// exportCharts writes regions.<ext> and, when risk levels are available,
// risk.<ext>. Charts without data are skipped.
func exportCharts(v *app.View, dir string, f charts.Format, opts charts.Options) ([]string, error) {
	var written []string

	regions := filepath.Join(dir, "regions."+string(f))
	ok, err := writeChart(regions, func(file *os.File) error {
		return charts.RenderRegionDelta(file, v.Regions, f, opts)
	})
	if err != nil {
		return written, err
	}
	if ok {
		written = append(written, regions)
	}

	if !v.RiskAvailable || v.RiskError != "" {
		return written, nil
	}
	riskPath := filepath.Join(dir, "risk."+string(f))
	ok, err = writeChart(riskPath, func(file *os.File) error {
		return charts.RenderRiskLevels(file, v.Risk, f, opts)
	})
	if err != nil {
		return written, err
	}
	if ok {
		written = append(written, riskPath)
	}
	return written, nil
}

func writeChart(path string, render func(*os.File) error) (bool, error) {
	file, err := os.Create(path)
	if err != nil {
		return false, err
	}
	err = render(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if errors.Is(err, charts.ErrNoData) {
		return false, os.Remove(path)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialise the configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := o.cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}
