package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// queryDuration is shared by every TimedDB in the process.
var queryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deleteop_db_query_duration_seconds",
		Help:    "Duration of SQL calls made through TimedDB, in seconds.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

// slowQueries counts calls at or above the slow threshold.
var slowQueries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deleteop_db_slow_queries_total",
		Help: "SQL calls that exceeded the slow-query threshold.",
	},
	[]string{"op"},
)

// TimedDB wraps a *sql.DB to log slow queries and export query durations.
// Satisfies the SQLDB interface so it can be passed to any store constructor.
type TimedDB struct {
	db        *sql.DB
	threshold time.Duration
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// A non-positive slowQueryMs falls back to DefaultSlowQueryMs.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs slow queries and observes durations
func NewTimedDB(db *sql.DB, slowQueryMs int) *TimedDB {
	if slowQueryMs <= 0 {
		slowQueryMs = DefaultSlowQueryMs
	}
	return &TimedDB{
		db:        db,
		threshold: time.Duration(slowQueryMs) * time.Millisecond,
	}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// observe logs and records a single call.
func (t *TimedDB) observe(op, query string, start time.Time) {
	elapsed := time.Since(start)
	queryDuration.WithLabelValues(op).Observe(elapsed.Seconds())

	durationMs := float64(elapsed.Microseconds()) / 1000.0
	if elapsed >= t.threshold {
		slowQueries.WithLabelValues(op).Inc()
		slog.Warn("slow_query",
			"op", op,
			"query", firstLine(query),
			"duration_ms", durationMs,
		)
		return
	}
	slog.Debug("query",
		"op", op,
		"duration_ms", durationMs,
	)
}

// firstLine trims a query to its first non-blank line for log output.
func firstLine(q string) string {
	for _, line := range strings.Split(q, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return ""
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe("exec", query, start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe("query", query, start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe("query_row", query, start)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("begin_tx", "BEGIN", start)
	return tx, err
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the database connection.
func (t *TimedDB) Ping() error {
	return t.db.Ping()
}
