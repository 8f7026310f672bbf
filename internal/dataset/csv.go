package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raysh454/policysim/internal/model"
)

// CSVSource reads the simulation results from a delimited file. Files with a
// .tsv extension are read tab-separated.
type CSVSource struct {
	Path string
}

// NewCSVSource returns a source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Describe() string {
	return "csv:" + s.Path
}

// Load reads the whole file. The header is checked before data rows are read.
func (s *CSVSource) Load(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(s.Path), err)
	}
	defer f.Close()
	return ReadCSV(f, s.Describe(), strings.EqualFold(filepath.Ext(s.Path), ".tsv"))
}

// ReadCSV parses delimited content from r.
func ReadCSV(r io.Reader, source string, tabSeparated bool) (*model.Dataset, error) {
	reader := csv.NewReader(r)
	if tabSeparated {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Source: source, Missing: RequiredColumns()}
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", source, err)
	}
	idx, err := resolveColumns(header, source)
	if err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return buildDataset(idx, rows, source)
}

// WriteCSV writes ds with the canonical header. The probability column is
// written only when the dataset has one; null probabilities are left empty
// and invalid ones are written back as read.
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)
	header := RequiredColumns()
	if ds.HasProbability {
		header = append(header, model.ColumnProbability)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range ds.Records {
		row := []string{
			rec.Region,
			formatFloat(rec.PredIntervention),
			formatFloat(rec.PredTargeted),
		}
		if ds.HasProbability {
			cell := rec.InvalidProbability
			if rec.Probability != nil {
				cell = formatFloat(*rec.Probability)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
