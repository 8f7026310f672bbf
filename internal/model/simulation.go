package model

import "time"

// Canonical column names of the simulation results table.
const (
	ColumnRegion           = "Region"
	ColumnPredIntervention = "MDR_Pred_Intervention"
	ColumnPredTargeted     = "MDR_Pred_Targeted"
	ColumnProbability      = "MDR_Probability"
)

// Record is one row of the simulation results.
type Record struct {
	// Region groups rows for the regional aggregate; not unique.
	Region string `json:"region"`

	// PredIntervention is the baseline predicted MDR outcome (0/1 or a count).
	PredIntervention float64 `json:"mdr_pred_intervention"`

	// PredTargeted is the predicted MDR outcome under targeted therapy.
	PredTargeted float64 `json:"mdr_pred_targeted"`

	// Probability is the predicted MDR probability in [0,1]. Nil when the
	// cell is null, invalid, or the dataset has no probability column.
	Probability *float64 `json:"mdr_probability,omitempty"`

	// InvalidProbability holds the raw cell when it is not a number in
	// [0,1]. Only risk stratification rejects it; the rest of the row is
	// still usable.
	InvalidProbability string `json:"mdr_probability_invalid,omitempty"`
}

// Dataset is an immutable snapshot of the loaded table. Records keep the
// source order; callers must not modify them.
type Dataset struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`

	// HasProbability is resolved once at load time from the header and
	// gates the risk stratification feature.
	HasProbability bool `json:"has_probability"`

	Records []Record `json:"-"`
}

// Len returns the number of records, tolerating a nil dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// LeverState holds the three simulated intervention toggles. It is an input
// to every evaluation and is never stored with the data.
type LeverState struct {
	AuditEffect       bool `json:"audit_effect" yaml:"audit_effect"`
	ASTEffect         bool `json:"ast_effect" yaml:"ast_effect"`
	TherapyAdjustment bool `json:"therapy_adjustment" yaml:"therapy_adjustment"`
}

// DefaultLevers is the initial state of the dashboard: every lever on.
func DefaultLevers() LeverState {
	return LeverState{AuditEffect: true, ASTEffect: true, TherapyAdjustment: true}
}

// DerivedRecord is a Record plus the values computed for one evaluation.
type DerivedRecord struct {
	Record
	DeltaMDR  float64   `json:"delta_mdr"`
	RiskLevel RiskLevel `json:"risk_level,omitempty"`
}

// RegionDelta is the summed DeltaMDR of one region.
type RegionDelta struct {
	Region   string  `json:"region"`
	DeltaMDR float64 `json:"delta_mdr"`
}

// Metrics are the dashboard summary figures, reduced over the full dataset.
type Metrics struct {
	TotalCases        int     `json:"total_cases"`
	PredictedBaseline float64 `json:"predicted_baseline"`
	PredictedAfter    float64 `json:"predicted_after"`
	NetChange         float64 `json:"net_change"`
}
