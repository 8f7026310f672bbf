package risk_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raysh454/policysim/internal/model"
	"github.com/raysh454/policysim/internal/risk"
)

func prob(v float64) *float64 { return &v }

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		p    float64
		want model.RiskLevel
	}{
		{0.0, model.RiskGreen},
		{0.3, model.RiskGreen},
		{0.5, model.RiskGreen},
		{0.500001, model.RiskYellow},
		{0.7, model.RiskYellow},
		{0.8, model.RiskYellow},
		{0.81, model.RiskRed},
		{1.0, model.RiskRed},
	}
	for _, tt := range tests {
		if got := risk.Classify(tt.p); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestClassifyRisk_LabelsEveryRow(t *testing.T) {
	ds := &model.Dataset{
		HasProbability: true,
		Records: []model.Record{
			{Region: "A", Probability: prob(0.9)},
			{Region: "A", Probability: prob(0.5)},
			{Region: "B", Probability: prob(0.6)},
		},
	}

	got, err := risk.ClassifyRisk(ds)
	if err != nil {
		t.Fatalf("ClassifyRisk: %v", err)
	}
	levels := make([]model.RiskLevel, len(got))
	for i, d := range got {
		levels[i] = d.RiskLevel
	}
	want := []model.RiskLevel{model.RiskRed, model.RiskGreen, model.RiskYellow}
	if diff := cmp.Diff(want, levels); diff != "" {
		t.Errorf("levels mismatch (-want +got):\n%s", diff)
	}
	if ds.Records[0].Probability == nil || *ds.Records[0].Probability != 0.9 {
		t.Error("source record was modified")
	}
}

func TestClassifyRisk_SkippedWithoutColumn(t *testing.T) {
	ds := &model.Dataset{Records: []model.Record{{Region: "A"}}}

	_, err := risk.ClassifyRisk(ds)
	if !errors.Is(err, risk.ErrProbabilityUnavailable) {
		t.Fatalf("expected ErrProbabilityUnavailable, got %v", err)
	}
}

func TestClassifyRisk_NullFailsWholeStep(t *testing.T) {
	ds := &model.Dataset{
		HasProbability: true,
		Records: []model.Record{
			{Region: "A", Probability: prob(0.2)},
			{Region: "B"},
			{Region: "C", Probability: prob(0.95)},
		},
	}

	got, err := risk.ClassifyRisk(ds)
	if !errors.Is(err, risk.ErrNullProbability) {
		t.Fatalf("expected ErrNullProbability, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
	var nullErr *risk.NullProbabilityError
	if !errors.As(err, &nullErr) {
		t.Fatalf("expected *NullProbabilityError, got %T", err)
	}
	if nullErr.Row != 1 || nullErr.Region != "B" {
		t.Errorf("unexpected error location: %+v", nullErr)
	}
}

func TestClassifyRisk_InvalidFailsWholeStep(t *testing.T) {
	ds := &model.Dataset{
		HasProbability: true,
		Records: []model.Record{
			{Region: "A", Probability: prob(0.2)},
			{Region: "B", Probability: prob(0.6)},
			{Region: "C", InvalidProbability: "80"},
		},
	}

	got, err := risk.ClassifyRisk(ds)
	if !errors.Is(err, risk.ErrInvalidProbability) {
		t.Fatalf("expected ErrInvalidProbability, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
	var invErr *risk.InvalidProbabilityError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected *InvalidProbabilityError, got %T", err)
	}
	if invErr.Row != 2 || invErr.Region != "C" || invErr.Value != "80" {
		t.Errorf("unexpected error location: %+v", invErr)
	}
}

func TestCountByBucket_AlwaysReportsAllBuckets(t *testing.T) {
	classified := []model.DerivedRecord{
		{RiskLevel: model.RiskGreen},
		{RiskLevel: model.RiskYellow},
		{RiskLevel: model.RiskGreen},
	}

	counts := risk.CountByBucket(classified)
	if red, ok := counts[model.RiskRed]; !ok || red != 0 {
		t.Errorf("expected Red: 0 present, got %v (present=%v)", red, ok)
	}

	want := []model.BucketCount{
		{Level: model.RiskGreen, Count: 2},
		{Level: model.RiskYellow, Count: 1},
		{Level: model.RiskRed, Count: 0},
	}
	if diff := cmp.Diff(want, counts.Ordered()); diff != "" {
		t.Errorf("ordered counts mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByBucket_EmptyDataset(t *testing.T) {
	ds := &model.Dataset{HasProbability: true}
	classified, err := risk.ClassifyRisk(ds)
	if err != nil {
		t.Fatalf("ClassifyRisk on empty dataset: %v", err)
	}
	counts := risk.CountByBucket(classified)
	if len(counts) != 3 || counts.Total() != 0 {
		t.Errorf("expected three zero buckets, got %v", counts)
	}
}
