package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raysh454/policysim/internal/report"
	"github.com/raysh454/policysim/internal/tui"
)

func newReportCmd(o *options) *cobra.Command {
	var (
		levers leverFlags
		width  int
		style  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard for one lever state",
		Example: `  policysim report
  policysim report --therapy=false --style notty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())

			if style == "" {
				style = o.cfg.Report.MarkdownStyle
			}
			r, err := report.New(report.Options{MarkdownStyle: style, Width: width})
			if err != nil {
				return err
			}
			v, err := a.Dashboard.Evaluate(levers.resolve(cmd, o.cfg.Levers))
			if err != nil {
				return err
			}
			out, err := r.Render(v)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	levers.register(cmd)
	cmd.Flags().IntVarP(&width, "width", "w", 100, "wrap width in columns")
	cmd.Flags().StringVar(&style, "style", "", "markdown style: auto, dark, light, notty, ascii (default from config)")
	return cmd
}

func newTUICmd(o *options) *cobra.Command {
	var levers leverFlags
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the levers interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())

			r, err := report.New(report.Options{MarkdownStyle: o.cfg.Report.MarkdownStyle, Width: 80})
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.Dashboard, r, levers.resolve(cmd, o.cfg.Levers))
		},
	}
	levers.register(cmd)
	return cmd
}
