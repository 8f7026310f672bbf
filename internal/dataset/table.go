package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/raysh454/policysim/internal/model"
)

var (
	// ErrSchema is returned when a required column is missing.
	ErrSchema = errors.New("dataset schema violation")

	// ErrInvalidValue is returned when a required cell is null or a required
	// numeric cell does not parse.
	ErrInvalidValue = errors.New("invalid dataset value")
)

// SchemaError lists the required columns absent from a table header.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s) %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ValueError locates a cell that violates the data contract. Row is the
// zero-based data row (header excluded).
type ValueError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("row %d column %s: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
}

func (e *ValueError) Unwrap() error { return ErrInvalidValue }

// RequiredColumns are the columns every source must provide.
func RequiredColumns() []string {
	return []string{model.ColumnRegion, model.ColumnPredIntervention, model.ColumnPredTargeted}
}

// nullTokens follows the usual spreadsheet/dataframe spellings of a missing cell.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

func isNull(cell string) bool {
	_, ok := nullTokens[strings.TrimSpace(cell)]
	return ok
}

// cleanHeader strips whitespace and a UTF-8 BOM and puts the name in NFC so
// spreadsheet exports with decomposed characters still match.
func cleanHeader(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return norm.NFC.String(v)
}

// columnIndex holds resolved header positions. probability is -1 when the
// optional column is absent.
type columnIndex struct {
	region       int
	intervention int
	targeted     int
	probability  int
}

func findColumn(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(cleanHeader(col), name) {
			return i
		}
	}
	return -1
}

// resolveColumns validates the header before any row is parsed.
func resolveColumns(header []string, source string) (columnIndex, error) {
	idx := columnIndex{
		region:       findColumn(header, model.ColumnRegion),
		intervention: findColumn(header, model.ColumnPredIntervention),
		targeted:     findColumn(header, model.ColumnPredTargeted),
		probability:  findColumn(header, model.ColumnProbability),
	}
	var missing []string
	if idx.region < 0 {
		missing = append(missing, model.ColumnRegion)
	}
	if idx.intervention < 0 {
		missing = append(missing, model.ColumnPredIntervention)
	}
	if idx.targeted < 0 {
		missing = append(missing, model.ColumnPredTargeted)
	}
	if len(missing) > 0 {
		return idx, &SchemaError{Source: source, Missing: missing}
	}
	return idx, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseRequiredNumber(row []string, rowNum, col int, name string) (float64, error) {
	cell := cellAt(row, col)
	if isNull(cell) {
		return 0, &ValueError{Row: rowNum, Column: name, Value: cell, Reason: "required value is null"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, &ValueError{Row: rowNum, Column: name, Value: cell, Reason: "not a number"}
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &ValueError{Row: rowNum, Column: name, Value: cell, Reason: "not a finite number"}
	}
	return v, nil
}

// parseProbability accepts finite numbers in [0,1].
func parseProbability(cell string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
		return 0, false
	}
	return p, true
}

func buildDataset(idx columnIndex, rows [][]string, source string) (*model.Dataset, error) {
	records := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		region := strings.TrimSpace(cellAt(row, idx.region))
		if isNull(region) {
			return nil, &ValueError{Row: i, Column: model.ColumnRegion, Value: region, Reason: "required value is null"}
		}
		intervention, err := parseRequiredNumber(row, i, idx.intervention, model.ColumnPredIntervention)
		if err != nil {
			return nil, err
		}
		targeted, err := parseRequiredNumber(row, i, idx.targeted, model.ColumnPredTargeted)
		if err != nil {
			return nil, err
		}
		rec := model.Record{
			Region:           region,
			PredIntervention: intervention,
			PredTargeted:     targeted,
		}
		if idx.probability >= 0 {
			cell := cellAt(row, idx.probability)
			if !isNull(cell) {
				if p, ok := parseProbability(cell); ok {
					rec.Probability = &p
				} else {
					rec.InvalidProbability = cell
				}
			}
		}
		records = append(records, rec)
	}

	return &model.Dataset{
		ID:             uuid.New().String(),
		Source:         source,
		LoadedAt:       time.Now().UTC(),
		HasProbability: idx.probability >= 0,
		Records:        records,
	}, nil
}

// FromTable builds a Dataset from a header and string rows. The header is
// validated first; a missing required column returns a *SchemaError before
// any row is looked at. Null and invalid probabilities do not fail the load:
// the risk step decides what to do with them.
func FromTable(header []string, rows [][]string, source string) (*model.Dataset, error) {
	idx, err := resolveColumns(header, source)
	if err != nil {
		return nil, err
	}
	return buildDataset(idx, rows, source)
}
