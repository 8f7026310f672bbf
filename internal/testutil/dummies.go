// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── Source ────────────────────────────────────────────────────────────

// DummySource implements dataset.Source. Each Load returns a shallow copy of
// Dataset with a fresh ID, or Err when set.
type DummySource struct {
	mu      sync.Mutex
	Dataset *model.Dataset
	Err     error
	Loads   int
}

func (d *DummySource) Load(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Loads++
	if d.Err != nil {
		return nil, d.Err
	}
	cp := *d.Dataset
	cp.ID = d.Dataset.ID + "-" + time.Now().Format("150405.000000000")
	cp.Records = append([]model.Record(nil), d.Dataset.Records...)
	return &cp, nil
}

func (d *DummySource) Describe() string { return "dummy" }

// SetErr changes the error returned by subsequent loads.
func (d *DummySource) SetErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Err = err
}

// ─── Fixtures ──────────────────────────────────────────────────────────

// Prob returns a pointer to v for Record.Probability literals.
func Prob(v float64) *float64 { return &v }

// ScenarioDataset is the three-row reference scenario: regions A, A, B with
// baseline 5, 3, 2 and targeted 2, 1, 1.
func ScenarioDataset() *model.Dataset {
	return &model.Dataset{
		ID:     "scenario",
		Source: "fixture",
		Records: []model.Record{
			{Region: "A", PredIntervention: 5, PredTargeted: 2},
			{Region: "A", PredIntervention: 3, PredTargeted: 1},
			{Region: "B", PredIntervention: 2, PredTargeted: 1},
		},
	}
}

// ScenarioWithProbability adds probabilities 0.9, 0.5, 0.65 to the scenario.
func ScenarioWithProbability() *model.Dataset {
	ds := ScenarioDataset()
	ds.HasProbability = true
	ds.Records[0].Probability = Prob(0.9)
	ds.Records[1].Probability = Prob(0.5)
	ds.Records[2].Probability = Prob(0.65)
	return ds
}

// ScenarioCSV is ScenarioWithProbability as CSV text.
const ScenarioCSV = `Region,MDR_Pred_Intervention,MDR_Pred_Targeted,MDR_Probability
A,5,2,0.9
A,3,1,0.5
B,2,1,0.65
`
