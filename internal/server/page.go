package server

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strconv"

	"github.com/raysh454/policysim/internal/app"
	"github.com/raysh454/policysim/internal/model"
)

// PageTitle heads the HTML dashboard.
const PageTitle = "LMIC Policy Simulation Dashboard"

// Each checkbox is followed by a hidden "false" input with the same name.
// Browsers submit values in document order and the query parser takes the
// first, so a checked box reads true and an unchecked one false.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { --bg: #fff; --fg: #1a1a2e; --card-bg: #f8f9fa; --border: #dee2e6; --muted: #6c757d; --bad: #dc3545; --good: #28a745; }
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--fg); line-height: 1.5; display: grid; grid-template-columns: 260px 1fr; min-height: 100vh; }
aside { background: var(--card-bg); border-right: 1px solid var(--border); padding: 1rem; }
aside h2 { font-size: 1rem; margin-bottom: .75rem; }
aside label { display: block; margin-bottom: .5rem; }
main { padding: 1.5rem; max-width: 1100px; }
h1 { font-size: 1.5rem; margin-bottom: 1rem; }
h2.section { font-size: 1.15rem; margin: 1.5rem 0 .5rem; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: .75rem; }
.card { background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: .75rem; }
.card .label { font-size: .75rem; color: var(--muted); text-transform: uppercase; }
.card .value { font-size: 1.6rem; font-weight: 700; }
.chart { max-width: 100%; border: 1px solid var(--border); border-radius: 8px; }
.error { color: var(--bad); }
footer { margin-top: 2rem; color: var(--muted); font-size: .75rem; }
</style>
</head>
<body>
<aside>
<h2>Simulated Intervention Levers</h2>
<form method="get" action="/">
<label><input type="checkbox" name="audit" value="true" onchange="this.form.submit()"{{if .View.Levers.AuditEffect}} checked{{end}}> Increase Audit Score</label>
<input type="hidden" name="audit" value="false">
<label><input type="checkbox" name="ast" value="true" onchange="this.form.submit()"{{if .View.Levers.ASTEffect}} checked{{end}}> Use Rapid AST</label>
<input type="hidden" name="ast" value="false">
<label><input type="checkbox" name="therapy" value="true" onchange="this.form.submit()"{{if .View.Levers.TherapyAdjustment}} checked{{end}}> Apply Targeted Therapy</label>
<input type="hidden" name="therapy" value="false">
<noscript><button type="submit">Apply</button></noscript>
</form>
</aside>
<main>
<h1>{{.Title}}</h1>
<section class="cards" id="metrics">
{{range .Metrics}}<div class="card"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</section>

<h2 class="section">Change in MDR by Region</h2>
{{if .View.Regions}}<img class="chart" id="region-chart" src="/charts/regions.svg?{{.Query}}" alt="Change in MDR by Region">
{{else}}<p id="region-chart-empty">No regions in the dataset.</p>
{{end}}
<h2 class="section">{{.DriversTitle}}</h2>
<ul id="drivers">
{{range .View.Drivers}}<li>{{range $i, $f := .Features}}{{if $i}}, {{end}}<strong>{{$f}}</strong>{{end}}: {{.Explanation}}</li>
{{end}}</ul>

<h2 class="section">MDR Risk Stratification</h2>
{{if not .View.RiskAvailable}}<p id="risk-unavailable">The dataset has no MDR_Probability column.</p>
{{else if .View.RiskError}}<p class="error" id="risk-error">{{.View.RiskError}}</p>
{{else}}<img class="chart" id="risk-chart" src="/charts/risk.svg" alt="Risk Levels Among Patients">
<ul id="risk-counts">{{range .View.Risk}}<li>{{.Level}}: {{.Count}}</li>{{end}}</ul>
{{end}}
<footer>Dataset {{.View.DatasetID}} from {{.View.Source}}</footer>
</main>
</body>
</html>
`

var page = template.Must(template.New("dashboard").Parse(pageTemplate))

type metricCard struct {
	Label string
	Value int64
}

type pageData struct {
	Title        string
	DriversTitle string
	View         *app.View
	Metrics      []metricCard
	Query        template.URL
}

// truncate mirrors integer conversion of the summed predictions: the
// fractional part is dropped toward zero.
func truncate(v float64) int64 {
	return int64(math.Trunc(v))
}

func metricCards(m model.Metrics) []metricCard {
	return []metricCard{
		{Label: "Total Cases", Value: int64(m.TotalCases)},
		{Label: "Predicted MDR (Baseline)", Value: truncate(m.PredictedBaseline)},
		{Label: "Predicted MDR (After Intervention)", Value: truncate(m.PredictedAfter)},
		{Label: "Net MDR Change", Value: truncate(m.NetChange)},
	}
}

func leverQuery(l model.LeverState) string {
	q := url.Values{}
	q.Set("audit", strconv.FormatBool(l.AuditEffect))
	q.Set("ast", strconv.FormatBool(l.ASTEffect))
	q.Set("therapy", strconv.FormatBool(l.TherapyAdjustment))
	return q.Encode()
}

func renderPage(v *app.View) ([]byte, error) {
	data := pageData{
		Title:        PageTitle,
		DriversTitle: app.DriversTitle,
		View:         v,
		Metrics:      metricCards(v.Metrics),
		Query:        template.URL(leverQuery(v.Levers)),
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render dashboard page: %w", err)
	}
	return buf.Bytes(), nil
}
