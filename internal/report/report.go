// Package report renders a dashboard view for the terminal: metric cards,
// text bar charts and the drivers panel.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/model"
)

// Options configures a Renderer.
type Options struct {
	// MarkdownStyle is a glamour style: auto, dark, light, notty, ascii.
	MarkdownStyle string

	// Width is the wrap width in columns. Zero means 80.
	Width int
}

var (
	colorTitle   = lipgloss.Color("#101F38")
	colorMuted   = lipgloss.Color("#6c757d")
	colorBorder  = lipgloss.Color("#dce0e5")
	colorGood    = lipgloss.Color("#8BC34A")
	colorBad     = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
)

var riskColors = map[model.RiskLevel]lipgloss.Color{
	model.RiskGreen:  colorGood,
	model.RiskYellow: colorWarning,
	model.RiskRed:    colorBad,
}

// Styles groups the lipgloss styles of the report.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Card    lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the report palette.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true).
			MarginBottom(1),
		Section: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			MarginTop(1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(22),
		Label: lipgloss.NewStyle().
			Foreground(colorMuted),
		Value: lipgloss.NewStyle().
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(colorBad),
	}
}

// Renderer turns views into terminal text.
type Renderer struct {
	styles Styles
	width  int
	md     *glamour.TermRenderer
}

// New builds a Renderer. The markdown renderer is created once and reused.
func New(opts Options) (*Renderer, error) {
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	styleOpt := glamour.WithAutoStyle()
	if s := strings.TrimSpace(opts.MarkdownStyle); s != "" && s != "auto" {
		styleOpt = glamour.WithStandardStyle(s)
	}
	md, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Renderer{styles: DefaultStyles(), width: width, md: md}, nil
}

// Render draws the full report for v.
func (r *Renderer) Render(v *app.View) (string, error) {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render("LMIC Policy Simulation Dashboard"))
	b.WriteString("\n")
	b.WriteString(r.styles.Muted.Render(LeverSummary(v.Levers)))
	b.WriteString("\n\n")
	b.WriteString(r.MetricCards(v.Metrics))
	b.WriteString("\n")

	b.WriteString(r.styles.Section.Render("Change in MDR by Region"))
	b.WriteString("\n")
	if len(v.Regions) == 0 {
		b.WriteString(r.styles.Muted.Render("No regions in the dataset."))
		b.WriteString("\n")
	} else {
		b.WriteString(RegionBars(v.Regions, r.barWidth()))
	}

	b.WriteString(r.styles.Section.Render(app.DriversTitle))
	b.WriteString("\n")
	drivers, err := r.md.Render(app.DriversMarkdown())
	if err != nil {
		return "", fmt.Errorf("rendering drivers: %w", err)
	}
	b.WriteString(drivers)

	b.WriteString(r.styles.Section.Render("MDR Risk Stratification"))
	b.WriteString("\n")
	switch {
	case !v.RiskAvailable:
		b.WriteString(r.styles.Muted.Render("The dataset has no MDR_Probability column."))
		b.WriteString("\n")
	case v.RiskError != "":
		b.WriteString(r.styles.Error.Render(v.RiskError))
		b.WriteString("\n")
	default:
		b.WriteString(r.RiskBars(v.Risk))
	}

	if v.DatasetID != "" {
		b.WriteString("\n")
		b.WriteString(r.styles.Muted.Render(fmt.Sprintf("dataset %s (%s)", v.DatasetID, v.Source)))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (r *Renderer) barWidth() int {
	return max(10, r.width-30)
}

// MetricCards renders the four summary figures side by side. Sums are
// shown truncated toward zero.
func (r *Renderer) MetricCards(m model.Metrics) string {
	cards := []struct {
		label string
		value int64
	}{
		{"Total Cases", int64(m.TotalCases)},
		{"Predicted MDR (Baseline)", int64(math.Trunc(m.PredictedBaseline))},
		{"Predicted MDR (After Intervention)", int64(math.Trunc(m.PredictedAfter))},
		{"Net MDR Change", int64(math.Trunc(m.NetChange))},
	}
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := r.styles.Label.Render(c.label) + "\n" + r.styles.Value.Render(humanize.Comma(c.value))
		rendered = append(rendered, r.styles.Card.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// RiskBars renders the bucket counts with their traffic-light colours.
func (r *Renderer) RiskBars(counts []model.BucketCount) string {
	maxCount := 0
	for _, c := range counts {
		maxCount = max(maxCount, c.Count)
	}
	var b strings.Builder
	width := r.barWidth()
	for _, c := range counts {
		n := 0
		if maxCount > 0 {
			n = int(math.Round(float64(c.Count) / float64(maxCount) * float64(width)))
		}
		bar := lipgloss.NewStyle().Foreground(riskColors[c.Level]).Render(strings.Repeat("█", n))
		fmt.Fprintf(&b, "%-7s %s %s\n", c.Level, bar, humanize.Comma(int64(c.Count)))
	}
	return b.String()
}

// RegionBars renders a signed horizontal bar per region, scaled to the
// largest absolute change. Reductions are drawn with "▓", increases with
// "█".
func RegionBars(regions []model.RegionDelta, width int) string {
	labelWidth := 0
	maxAbs := 0.0
	for _, r := range regions {
		labelWidth = max(labelWidth, lipgloss.Width(r.Region))
		maxAbs = max(maxAbs, math.Abs(r.DeltaMDR))
	}

	var b strings.Builder
	for _, r := range regions {
		n := 0
		if maxAbs > 0 {
			n = int(math.Round(math.Abs(r.DeltaMDR) / maxAbs * float64(width)))
		}
		glyph := "█"
		if r.DeltaMDR < 0 {
			glyph = "▓"
		}
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(r.Region))
		fmt.Fprintf(&b, "%s%s %s %s\n", r.Region, pad, strings.Repeat(glyph, n), formatDelta(r.DeltaMDR))
	}
	return b.String()
}

func formatDelta(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%+d", int64(v))
	}
	return fmt.Sprintf("%+.2f", v)
}

// LeverSummary describes the lever state in one line.
func LeverSummary(l model.LeverState) string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("Increase Audit Score: %s · Use Rapid AST: %s · Apply Targeted Therapy: %s",
		onOff(l.AuditEffect), onOff(l.ASTEffect), onOff(l.TherapyAdjustment))
}
