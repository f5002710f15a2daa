// Package store persists analysis run history, grounded on the teacher's
// internal/database connection manager: one *sql.DB per process, the
// driver picked from the DSN's scheme, per SPEC_FULL.md §4.12. This is a
// reporting convenience only — it carries none of the core's soundness
// obligations.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// AnalysisRun is a persisted record of one analyze invocation, per
// SPEC_FULL.md §3.
type AnalysisRun struct {
	ID            string
	Method        string
	IntDomain     string
	StringDomain  string
	Probabilities map[string]int
	ErrorSet      []string
	Iterations    int
	Joins         int
	Widens        int
	DurationMS    int64
	CreatedAt     time.Time
}

// Store wraps a *sql.DB and the fixed schema used to record runs.
type Store struct {
	db     *sql.DB
	driver string
}

// Open picks a driver from the DSN's "scheme://" prefix (sqlite, sqlite3,
// mysql, postgres/postgresql, sqlserver) and opens the connection,
// mirroring DBManager.Connect's driver-name mapping. An empty DSN opens an
// in-memory database, which the pure-Go modernc.org/sqlite driver supports
// via ":memory:"; a DSN with no or an unrecognised scheme is handed to that
// driver as is.
func Open(dsn string) (*Store, error) {
	driver, source := resolveDriver(dsn)
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func resolveDriver(dsn string) (driver, source string) {
	if dsn == "" {
		return "sqlite", ":memory:"
	}
	scheme, rest, found := strings.Cut(dsn, "://")
	if !found {
		return "sqlite", dsn
	}
	switch scheme {
	case "sqlite":
		return "sqlite", rest
	case "sqlite3":
		return "sqlite3", rest
	case "mysql":
		return "mysql", rest
	case "postgres", "postgresql":
		return "postgres", dsn
	case "sqlserver":
		return "sqlserver", dsn
	default:
		return "sqlite", dsn
	}
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		method TEXT NOT NULL,
		int_domain TEXT NOT NULL,
		string_domain TEXT NOT NULL,
		probabilities TEXT NOT NULL,
		error_set TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		joins INTEGER NOT NULL,
		widens INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}

// RecordRun inserts one AnalysisRun, per SPEC_FULL.md §4.12.
func (s *Store) RecordRun(run AnalysisRun) error {
	_, err := s.db.Exec(
		`INSERT INTO analysis_runs
			(id, method, int_domain, string_domain, probabilities, error_set, iterations, joins, widens, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Method, run.IntDomain, run.StringDomain,
		encodeProbabilities(run.Probabilities), strings.Join(run.ErrorSet, ","),
		run.Iterations, run.Joins, run.Widens, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// History returns the most recent runs for a method, newest first.
func (s *Store) History(method string, limit int) ([]AnalysisRun, error) {
	rows, err := s.db.Query(
		`SELECT id, method, int_domain, string_domain, probabilities, error_set, iterations, joins, widens, duration_ms, created_at
		 FROM analysis_runs WHERE method = ? ORDER BY created_at DESC LIMIT ?`,
		method, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		var probs, errs string
		if err := rows.Scan(&run.ID, &run.Method, &run.IntDomain, &run.StringDomain,
			&probs, &errs, &run.Iterations, &run.Joins, &run.Widens, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		run.Probabilities = decodeProbabilities(probs)
		if errs != "" {
			run.ErrorSet = strings.Split(errs, ",")
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

func encodeProbabilities(p map[string]int) string {
	parts := make([]string, 0, len(p))
	for k, v := range p {
		parts = append(parts, fmt.Sprintf("%s=%d", k, v))
	}
	return strings.Join(parts, ";")
}

func decodeProbabilities(s string) map[string]int {
	out := map[string]int{}
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		var n int
		fmt.Sscanf(v, "%d", &n)
		out[k] = n
	}
	return out
}
