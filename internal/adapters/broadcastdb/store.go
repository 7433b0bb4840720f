// Package broadcastdb looks up scheduled TV and radio segments in the
// broadcast metadata database. It supports MySQL (github.com/go-sql-driver/mysql)
// and PostgreSQL (github.com/jackc/pgx/v5/stdlib); any other registered
// database/sql driver using "?" placeholders also works.
//
// A connection is opened and closed for every lookup. Jobs never share or
// hold a database handle.
//
// The capture time is read from the last column of the segment row unless a
// column is named with WithTimeColumn.
package broadcastdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/danilodaat/automat/internal/core/domain"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

// table describes where one source kind is stored.
type table struct {
	name     string
	idColumn string
}

var tables = map[domain.SourceKind]table{
	domain.SourceBroadcastTV:    {name: "pautas_tv", idColumn: "id_pauta_tv"},
	domain.SourceBroadcastRadio: {name: "pautas_radio", idColumn: "id_pauta_radio"},
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements ports.RecordStore.
type Store struct {
	driver     string
	dsn        string
	timeColumn string
	timeout    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTimeColumn reads the capture time from the named column instead of the
// last column of the row. An empty name keeps the default.
func WithTimeColumn(name string) Option {
	return func(s *Store) {
		s.timeColumn = name
	}
}

// NewStore returns a store for the given database/sql driver name and DSN.
func NewStore(driver, dsn string, opts ...Option) (*Store, error) {
	if driver == "" {
		driver = DriverMySQL
	}
	if dsn == "" {
		return nil, errors.New("broadcast database DSN is empty")
	}
	s := &Store{driver: driver, dsn: dsn, timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeColumn != "" && !identifierRegex.MatchString(s.timeColumn) {
		return nil, fmt.Errorf("invalid time column name %q", s.timeColumn)
	}
	return s, nil
}

// MySQLDSN composes a DSN from discrete settings. Timestamps are parsed as UTC.
func MySQLDSN(host, user, password, database string) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.User = user
	cfg.Passwd = password
	cfg.DBName = database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN()
}

// FindRecord returns the record with the given id, or nil when there is none.
func (s *Store) FindRecord(ctx context.Context, kind domain.SourceKind, id int64) (*domain.BroadcastRecord, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("no broadcast table for source %q", kind)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open broadcast database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, s.query(t), id)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query %s: %w", t.name, err)
		}
		return nil, nil
	}
	raw, err := lastColumn(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.name, err)
	}

	capturedAt, err := parseTimestamp(raw)
	if err != nil {
		return nil, fmt.Errorf("record %d in %s: %w", id, t.name, err)
	}
	return &domain.BroadcastRecord{ID: id, CapturedAt: capturedAt}, nil
}

func (s *Store) query(t table) string {
	placeholder := "?"
	if s.driver == DriverPostgres {
		placeholder = "$1"
	}
	columns := "*"
	if s.timeColumn != "" {
		columns = s.timeColumn
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", columns, t.name, t.idColumn, placeholder)
}

// lastColumn scans the current row and returns its final value.
func lastColumn(rows *sql.Rows) (any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errors.New("row has no columns")
	}
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values[len(values)-1], nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts the shapes drivers return for a timestamp column:
// time.Time when the driver parses it, text otherwise. Text without a zone
// is UTC.
func parseTimestamp(v any) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case []byte:
		s = string(t)
	case string:
		s = t
	case nil:
		return time.Time{}, errors.New("capture timestamp is NULL")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable capture timestamp %q", s)
}
