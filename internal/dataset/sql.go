package dataset

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/policysim/internal/model"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSource reads the simulation results from a database table. Driver is a
// database/sql driver name: "sqlite" (modernc) or "postgres" (lib/pq).
type SQLSource struct {
	Driver  string
	DSN     string
	Table   string
	OrderBy string

	// PingTimeout bounds the connectivity check before the read.
	PingTimeout time.Duration
}

// NewSQLSource validates identifiers up front so they can be interpolated.
func NewSQLSource(driver, dsn, table, orderBy string) (*SQLSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s source: dsn is required", driver)
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("%s source: invalid table name %q", driver, table)
	}
	if orderBy != "" && !identPattern.MatchString(orderBy) {
		return nil, fmt.Errorf("%s source: invalid order_by column %q", driver, orderBy)
	}
	return &SQLSource{
		Driver:      driver,
		DSN:         dsn,
		Table:       table,
		OrderBy:     orderBy,
		PingTimeout: 5 * time.Second,
	}, nil
}

func (s *SQLSource) Describe() string {
	return s.Driver + ":" + s.Table
}

func (s *SQLSource) query() string {
	q := fmt.Sprintf(`SELECT * FROM "%s"`, s.Table)
	switch {
	case s.OrderBy != "":
		q += fmt.Sprintf(` ORDER BY "%s"`, s.OrderBy)
	case s.Driver == "sqlite":
		// Insertion order for display.
		q += " ORDER BY rowid"
	}
	return q
}

// Load opens a short-lived connection, checks the column list, then reads
// every row as text and hands it to the same contract as the CSV source.
func (s *SQLSource) Load(ctx context.Context) (*model.Dataset, error) {
	db, err := sqlx.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Describe(), err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, s.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", s.Describe(), err)
	}

	rows, err := db.QueryxContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.Describe(), err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", s.Describe(), err)
	}
	idx, err := resolveColumns(header, s.Describe())
	if err != nil {
		return nil, err
	}

	var table [][]string
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", s.Describe(), err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cellString(v)
		}
		table = append(table, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", s.Describe(), err)
	}
	return buildDataset(idx, table, s.Describe())
}

// cellString renders a scanned driver value as the text a CSV would hold.
// SQL NULL becomes the empty string, which the parser treats as null.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
