package app

import (
	"errors"
	"strings"
	"time"

	"github.com/raysh454/policysim/internal/dataset"
	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/model"
	"github.com/raysh454/policysim/internal/risk"
	"github.com/raysh454/policysim/internal/simulation"
)

// ErrNoDataset is returned by Evaluate before the first successful load.
var ErrNoDataset = errors.New("no dataset loaded")

// Driver is one explanatory entry of the "Top Drivers of Policy Impact"
// panel. The list is static; it documents the model behind the data.
type Driver struct {
	Features    []string `json:"features"`
	Explanation string   `json:"explanation"`
}

// DriversTitle heads the drivers panel.
const DriversTitle = "Top Drivers of Policy Impact"

var drivers = []Driver{
	{Features: []string{"Audit_Score"}, Explanation: "Higher score correlates with lower MDR"},
	{Features: []string{"AST_Ordered"}, Explanation: "Early AST use linked to targeted therapy"},
	{Features: []string{"Therapy_Modified_After_AST"}, Explanation: "Reduces inappropriate antibiotic use"},
	{Features: []string{"ICU_Admission", "APACHE_II_Score"}, Explanation: "Higher severity = greater MDR risk"},
}

// Drivers returns a copy of the drivers panel entries.
func Drivers() []Driver {
	out := make([]Driver, len(drivers))
	for i, d := range drivers {
		out[i] = Driver{Features: append([]string(nil), d.Features...), Explanation: d.Explanation}
	}
	return out
}

// DriversMarkdown renders the drivers as a markdown bullet list.
func DriversMarkdown() string {
	var b strings.Builder
	for _, d := range drivers {
		b.WriteString("- ")
		for i, f := range d.Features {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("**" + f + "**")
		}
		b.WriteString(": " + d.Explanation + "\n")
	}
	return b.String()
}

// View is everything the dashboard shows for one lever state.
type View struct {
	DatasetID string           `json:"dataset_id"`
	Source    string           `json:"source"`
	LoadedAt  time.Time        `json:"loaded_at"`
	Levers    model.LeverState `json:"levers"`

	Metrics model.Metrics       `json:"metrics"`
	Regions []model.RegionDelta `json:"regions"`

	// RiskAvailable is false when the dataset has no probability column;
	// the risk panel is then skipped entirely.
	RiskAvailable bool                `json:"risk_available"`
	Risk          []model.BucketCount `json:"risk,omitempty"`
	RiskTotal     int                 `json:"risk_total,omitempty"`
	RiskError     string              `json:"risk_error,omitempty"`

	Drivers []Driver `json:"drivers"`
}

// Dashboard evaluates lever states against the store's current snapshot.
type Dashboard struct {
	store  *dataset.Store
	logger logging.Logger
}

// NewDashboard returns a dashboard over store.
func NewDashboard(store *dataset.Store, logger logging.Logger) *Dashboard {
	return &Dashboard{store: store, logger: logger}
}

// Store returns the snapshot store.
func (d *Dashboard) Store() *dataset.Store {
	return d.store
}

// Evaluate recomputes the full view for levers from the current snapshot.
func (d *Dashboard) Evaluate(levers model.LeverState) (*View, error) {
	ds := d.store.Current()
	if ds == nil {
		return nil, ErrNoDataset
	}
	v := EvaluateDataset(ds, levers)
	if v.RiskError != "" && d.logger != nil {
		d.logger.Warn("risk stratification unavailable",
			logging.Field{Key: "dataset_id", Value: ds.ID},
			logging.Field{Key: "error", Value: v.RiskError})
	}
	return v, nil
}

// EvaluateDataset is the pure evaluation of one snapshot. A null or invalid
// probability fails only the risk panel; metrics and regions are still
// returned.
func EvaluateDataset(ds *model.Dataset, levers model.LeverState) *View {
	derived := simulation.ComputeDelta(ds, levers)
	v := &View{
		DatasetID: ds.ID,
		Source:    ds.Source,
		LoadedAt:  ds.LoadedAt,
		Levers:    levers,
		Metrics:   simulation.Summarize(derived),
		Regions:   simulation.AggregateByRegion(derived),
		Drivers:   Drivers(),
	}

	classified, err := risk.ClassifyRisk(ds)
	switch {
	case errors.Is(err, risk.ErrProbabilityUnavailable):
	case err != nil:
		v.RiskAvailable = true
		v.RiskError = err.Error()
	default:
		counts := risk.CountByBucket(classified)
		v.RiskAvailable = true
		v.Risk = counts.Ordered()
		v.RiskTotal = counts.Total()
	}
	return v
}

// Records returns the derived records for levers, labelled with a risk
// level when every row can be classified.
func (d *Dashboard) Records(levers model.LeverState) ([]model.DerivedRecord, error) {
	ds := d.store.Current()
	if ds == nil {
		return nil, ErrNoDataset
	}
	derived := simulation.ComputeDelta(ds, levers)
	classified, err := risk.ClassifyRisk(ds)
	if err == nil {
		for i := range derived {
			derived[i].RiskLevel = classified[i].RiskLevel
		}
	}
	return derived, nil
}
