// Package sample generates synthetic simulation results for demos and tests.
package sample

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/policysim/internal/dataset"
	"github.com/raysh454/policysim/internal/model"
)

// Region is a named region with its baseline MDR rate.
type Region struct {
	Name     string
	BaseRate float64
}

// Regions are the LMIC regions used by the generator.
var Regions = []Region{
	{Name: "Sub-Saharan Africa", BaseRate: 0.32},
	{Name: "South Asia", BaseRate: 0.41},
	{Name: "Southeast Asia", BaseRate: 0.29},
	{Name: "Latin America", BaseRate: 0.22},
	{Name: "Middle East & North Africa", BaseRate: 0.27},
	{Name: "Eastern Europe & Central Asia", BaseRate: 0.35},
}

// Options controls generation.
type Options struct {
	Rows           int
	Seed           uint64
	NoProbability  bool
	TargetedEffect float64 // chance that targeted therapy clears a baseline MDR case
}

// DefaultOptions returns 500 rows with seed 42.
func DefaultOptions() Options {
	return Options{Rows: 500, Seed: 42, TargetedEffect: 0.35}
}

// Generate builds a dataset. The same options always give the same records.
func Generate(opts Options) (*model.Dataset, error) {
	if opts.Rows < 0 {
		return nil, fmt.Errorf("rows must be >= 0, got %d", opts.Rows)
	}
	if opts.TargetedEffect < 0 || opts.TargetedEffect > 1 {
		return nil, fmt.Errorf("targeted effect must be in [0,1], got %g", opts.TargetedEffect)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	records := make([]model.Record, 0, opts.Rows)
	for range opts.Rows {
		region := Regions[rng.IntN(len(Regions))]

		// Latent risk around the regional rate, kept inside [0,1].
		p := clamp(region.BaseRate+rng.NormFloat64()*0.18, 0, 1)

		baseline := 0.0
		if rng.Float64() < p {
			baseline = 1
		}
		targeted := baseline
		if baseline == 1 && rng.Float64() < opts.TargetedEffect {
			targeted = 0
		}

		rec := model.Record{
			Region:           region.Name,
			PredIntervention: baseline,
			PredTargeted:     targeted,
		}
		if !opts.NoProbability {
			prob := math.Round(p*1e4) / 1e4
			rec.Probability = &prob
		}
		records = append(records, rec)
	}

	return &model.Dataset{
		ID:             uuid.New().String(),
		Source:         fmt.Sprintf("sample:seed=%d", opts.Seed),
		LoadedAt:       time.Now().UTC(),
		HasProbability: !opts.NoProbability,
		Records:        records,
	}, nil
}

// Write generates a dataset and writes it as CSV to w.
func Write(w io.Writer, opts Options) (*model.Dataset, error) {
	ds, err := Generate(opts)
	if err != nil {
		return nil, err
	}
	if err := dataset.WriteCSV(w, ds); err != nil {
		return nil, fmt.Errorf("writing sample: %w", err)
	}
	return ds, nil
}

// WriteFile writes a generated dataset to path.
func WriteFile(path string, opts Options) (*model.Dataset, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	ds, err := Write(f, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
