// Package cli wires the policysim commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/model"
)

// DefaultConfigPath is read when --config is not given. A missing file is
// not an error.
const DefaultConfigPath = "policysim.yaml"

// options carries the state shared by every subcommand. It is filled in by
// the root PersistentPreRunE.
type options struct {
	configPath string
	envFiles   []string
	verbose    bool

	cfg    *app.Config
	logger logging.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "policysim",
		Short: "LMIC policy simulation dashboard",
		Long: `policysim explores simulated antimicrobial-resistance interventions.

It loads model predictions per patient record, applies the selected
intervention levers (audit score, rapid AST, targeted therapy) and reports
the change in predicted MDR cases overall, by region and by risk level.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s, ok := o.logger.(interface{ Sync() error }); ok {
				_ = s.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", DefaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().StringSliceVar(&o.envFiles, "env-file", nil, "dotenv files to load before POLICYSIM_* overrides (default .env)")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(o),
		newReportCmd(o),
		newTUICmd(o),
		newSampleCmd(o),
		newChartsCmd(o),
		newConfigCmd(o),
	)
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *options) init(cmd *cobra.Command) error {
	cfg, err := app.LoadConfig(o.configPath, o.envFiles...)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	} else if cmd.Name() == "tui" {
		// Log lines would tear the alternate screen.
		cfg.Logging.Level = "error"
	}

	logger, err := logging.New(cfg.Logging, "policysim")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.cfg = cfg
	o.logger = logger.With(logging.Field{Key: "command", Value: cmd.Name()})
	return nil
}

// loadDashboard starts an application without the file watcher and returns
// it after the initial load.
func (o *options) loadDashboard(ctx context.Context) (*app.Application, error) {
	cfg := *o.cfg
	cfg.Dataset.Watch = false
	a, err := app.NewApplication(&cfg, o.logger)
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// leverFlags registers --audit, --ast and --therapy. Unset flags keep the
// configured lever defaults.
type leverFlags struct {
	audit, ast, therapy bool
}

func (l *leverFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&l.audit, "audit", true, "apply the audit score lever")
	cmd.Flags().BoolVar(&l.ast, "ast", true, "apply the rapid AST lever")
	cmd.Flags().BoolVar(&l.therapy, "therapy", true, "apply the targeted therapy lever")
}

func (l *leverFlags) resolve(cmd *cobra.Command, defaults model.LeverState) model.LeverState {
	out := defaults
	if cmd.Flags().Changed("audit") {
		out.AuditEffect = l.audit
	}
	if cmd.Flags().Changed("ast") {
		out.ASTEffect = l.ast
	}
	if cmd.Flags().Changed("therapy") {
		out.TherapyAdjustment = l.therapy
	}
	return out
}
