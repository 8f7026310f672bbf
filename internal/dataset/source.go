// Package dataset loads the simulation results table, enforces its column
// contract, and holds the current immutable snapshot for the dashboard.
package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raysh454/policysim/internal/model"
)

// Source produces a fresh Dataset on every Load.
type Source interface {
	Load(ctx context.Context) (*model.Dataset, error)
	Describe() string
}

// Config selects and parameterises the Source.
type Config struct {
	// Driver is csv, http, sqlite or postgres.
	Driver string `yaml:"driver"`

	// Path of the CSV/TSV file for the csv driver.
	Path string `yaml:"path"`

	// URL of the CSV/TSV table for the http driver.
	URL string `yaml:"url"`

	// DSN, Table and OrderBy configure the SQL drivers.
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
	OrderBy string `yaml:"order_by"`

	// Watch reloads the CSV file when it changes on disk.
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// NewSource builds the Source described by cfg.
func NewSource(cfg Config) (Source, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "csv", "tsv":
		if cfg.Path == "" {
			return nil, fmt.Errorf("csv source: path is required")
		}
		return NewCSVSource(cfg.Path), nil
	case "http", "https":
		if cfg.URL == "" {
			return nil, fmt.Errorf("http source: url is required")
		}
		return NewHTTPSource(cfg.URL, nil)
	case "sqlite", "sqlite3":
		return NewSQLSource("sqlite", cfg.DSN, cfg.Table, cfg.OrderBy)
	case "postgres", "postgresql":
		return NewSQLSource("postgres", cfg.DSN, cfg.Table, cfg.OrderBy)
	}
	return nil, fmt.Errorf("unknown dataset driver %q", cfg.Driver)
}
