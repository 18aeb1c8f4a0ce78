// Package history maintains a SQLite index of past benchmark runs so
// recent activity can be listed without rescanning report files. The
// report files remain the source of truth; history failures never
// fail a run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/benchdeck/benchdeck/internal/result"
)

// DB wraps the run-history SQLite database.
type DB struct {
	db *sql.DB
}

// Open opens (and migrates) the history database at dbPath, creating
// the parent directory if needed.
func Open(ctx context.Context, dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode and a busy timeout; SQLite works best with a single
	// connection for writes.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() {
	d.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			generated_at TEXT NOT NULL,
			hostname TEXT NOT NULL,
			report_path TEXT NOT NULL,
			presets_requested TEXT NOT NULL,
			ok_count INTEGER NOT NULL,
			skipped_count INTEGER NOT NULL,
			error_count INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			metrics TEXT,
			message TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id);
		CREATE INDEX IF NOT EXISTS idx_run_results_name ON run_results(name);
	`)
	if err != nil {
		return fmt.Errorf("migrate history schema: %w", err)
	}
	return nil
}

// RunSummary is one row of `benchdeck history`.
type RunSummary struct {
	ID          int64
	GeneratedAt time.Time
	Hostname    string
	ReportPath  string
	Presets     JSONStringArray
	OK          int
	Skipped     int
	Errors      int
}

// RecordRun inserts one summary row for the run and one row per
// result.
func (d *DB) RecordRun(ctx context.Context, rep *result.Report, reportPath string) (int64, error) {
	ok, skipped, errors := rep.Counts()

	presets := JSONStringArray(rep.PresetsRequested)
	presetsValue, err := presets.Value()
	if err != nil {
		return 0, fmt.Errorf("encode presets: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (generated_at, hostname, report_path, presets_requested, ok_count, skipped_count, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.GeneratedAt.UTC().Format(time.RFC3339),
		rep.System.Hostname,
		reportPath,
		presetsValue,
		ok, skipped, errors,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, b := range rep.Benchmarks {
		metrics := JSONMap(b.Metrics)
		metricsValue, err := metrics.Value()
		if err != nil {
			return 0, fmt.Errorf("encode metrics for %s: %w", b.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_results (run_id, name, status, duration_seconds, metrics, message)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, b.Name, string(b.Status), b.DurationSeconds, metricsValue, b.Message,
		)
		if err != nil {
			return 0, fmt.Errorf("insert result %s: %w", b.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the most recent runs, newest first.
func (d *DB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, generated_at, hostname, report_path, presets_requested, ok_count, skipped_count, error_count
		FROM runs ORDER BY generated_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var generatedAt string
		if err := rows.Scan(&s.ID, &generatedAt, &s.Hostname, &s.ReportPath, &s.Presets, &s.OK, &s.Skipped, &s.Errors); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
			s.GeneratedAt = t
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
