// Package simulation computes the simulated MDR change for a lever state and
// reduces it into the dashboard aggregates. Everything here is a pure
// function of its inputs.
package simulation

import (
	"gonum.org/v1/gonum/floats"

	"github.com/raysh454/policysim/internal/model"
)

// Delta returns the simulated change in predicted MDR for one record.
//
// Therapy adjustment is the master switch: with it off nothing changes.
// With it on, at least one of the audit or AST levers must also be on for
// the targeted prediction to replace the baseline.
func Delta(rec model.Record, levers model.LeverState) float64 {
	if !levers.TherapyAdjustment {
		return 0
	}
	if !levers.AuditEffect && !levers.ASTEffect {
		return 0
	}
	return rec.PredTargeted - rec.PredIntervention
}

// ComputeDelta derives DeltaMDR for every record of ds under levers. The
// result is a fresh slice in dataset order; ds is not modified.
func ComputeDelta(ds *model.Dataset, levers model.LeverState) []model.DerivedRecord {
	if ds == nil {
		return []model.DerivedRecord{}
	}
	out := make([]model.DerivedRecord, len(ds.Records))
	for i, rec := range ds.Records {
		out[i] = model.DerivedRecord{
			Record:   rec,
			DeltaMDR: Delta(rec, levers),
		}
	}
	return out
}

// AggregateByRegion sums DeltaMDR per region. Groups appear in the order in
// which each region is first seen in derived.
func AggregateByRegion(derived []model.DerivedRecord) []model.RegionDelta {
	index := make(map[string]int)
	out := make([]model.RegionDelta, 0)
	for _, d := range derived {
		i, ok := index[d.Region]
		if !ok {
			i = len(out)
			index[d.Region] = i
			out = append(out, model.RegionDelta{Region: d.Region})
		}
		out[i].DeltaMDR += d.DeltaMDR
	}
	return out
}

// Summarize reduces derived records into the four dashboard metrics.
func Summarize(derived []model.DerivedRecord) model.Metrics {
	baseline := make([]float64, len(derived))
	targeted := make([]float64, len(derived))
	deltas := make([]float64, len(derived))
	for i, d := range derived {
		baseline[i] = d.PredIntervention
		targeted[i] = d.PredTargeted
		deltas[i] = d.DeltaMDR
	}
	return model.Metrics{
		TotalCases:        len(derived),
		PredictedBaseline: floats.Sum(baseline),
		PredictedAfter:    floats.Sum(targeted),
		NetChange:         floats.Sum(deltas),
	}
}
