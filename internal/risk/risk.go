// Package risk buckets predicted MDR probabilities into Green/Yellow/Red.
package risk

import (
	"errors"
	"fmt"

	"github.com/raysh454/policysim/internal/model"
)

const (
	// RedThreshold: probabilities strictly above it are Red.
	RedThreshold = 0.8
	// YellowThreshold: probabilities strictly above it (and not Red) are Yellow.
	YellowThreshold = 0.5
)

var (
	// ErrProbabilityUnavailable means the dataset has no probability column;
	// the risk feature is skipped rather than failed.
	ErrProbabilityUnavailable = errors.New("dataset has no MDR_Probability column")

	// ErrNullProbability means the column exists but a row has no value.
	ErrNullProbability = errors.New("null MDR_Probability")

	// ErrInvalidProbability means a row's value is not a number in [0,1].
	ErrInvalidProbability = errors.New("MDR_Probability must be a number in [0,1]")
)

// NullProbabilityError identifies the first row without a probability.
type NullProbabilityError struct {
	Row    int
	Region string
}

func (e *NullProbabilityError) Error() string {
	return fmt.Sprintf("row %d (region %q): %s", e.Row, e.Region, ErrNullProbability)
}

func (e *NullProbabilityError) Unwrap() error { return ErrNullProbability }

// InvalidProbabilityError identifies the first row whose probability cell
// could not be used.
type InvalidProbabilityError struct {
	Row    int
	Region string
	Value  string
}

func (e *InvalidProbabilityError) Error() string {
	return fmt.Sprintf("row %d (region %q): %s, got %q", e.Row, e.Region, ErrInvalidProbability, e.Value)
}

func (e *InvalidProbabilityError) Unwrap() error { return ErrInvalidProbability }

// Classify maps a probability onto its bucket. Boundaries belong to the
// lower bucket: 0.5 is Green and 0.8 is Yellow.
func Classify(p float64) model.RiskLevel {
	switch {
	case p > RedThreshold:
		return model.RiskRed
	case p > YellowThreshold:
		return model.RiskYellow
	default:
		return model.RiskGreen
	}
}

// ClassifyRisk labels every record of ds. Either every row gets a label or
// the whole step fails; rows are never dropped.
func ClassifyRisk(ds *model.Dataset) ([]model.DerivedRecord, error) {
	if ds == nil || !ds.HasProbability {
		return nil, ErrProbabilityUnavailable
	}
	out := make([]model.DerivedRecord, len(ds.Records))
	for i, rec := range ds.Records {
		if rec.InvalidProbability != "" {
			return nil, &InvalidProbabilityError{Row: i, Region: rec.Region, Value: rec.InvalidProbability}
		}
		if rec.Probability == nil {
			return nil, &NullProbabilityError{Row: i, Region: rec.Region}
		}
		out[i] = model.DerivedRecord{
			Record:    rec,
			RiskLevel: Classify(*rec.Probability),
		}
	}
	return out, nil
}

// CountByBucket counts labelled records. All three buckets are always
// present; use Ordered for the Green, Yellow, Red display order.
func CountByBucket(classified []model.DerivedRecord) model.BucketCounts {
	counts := model.NewBucketCounts()
	for _, d := range classified {
		if d.RiskLevel == "" {
			continue
		}
		counts[d.RiskLevel]++
	}
	return counts
}
