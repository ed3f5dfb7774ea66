// Package runstore persists evaluation runs in SQLite.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrRunNotFound is returned by Get for unknown run IDs.
var ErrRunNotFound = errors.New("run not found")

// Store persists metrics reports and their failed examples. Failures live in
// their own table; the stored report JSON never duplicates them.
type Store struct {
	db *sql.DB
}

// Open opens or creates a run database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT,
		created_at TIMESTAMP NOT NULL,
		config TEXT,
		report TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

	CREATE TABLE IF NOT EXISTS run_failures (
		run_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		detail TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_run_failures_run_id ON run_failures(run_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Run is a persisted evaluation run: the report plus the config snapshot it
// was produced with.
type Run struct {
	Report *models.MetricsReport `json:"report"`
	Config string                `json:"config,omitempty"`
}

// RunSummary is one row of a run listing.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Engine    string    `json:"engine"`
	Reader    string    `json:"reader"`
	Questions int       `json:"questions"`
	Scored    int       `json:"scored"`
	Failed    int       `json:"failed"`
	LongF1    float64   `json:"long_f1"`
	ShortF1   float64   `json:"short_f1"`
	Partial   bool      `json:"partial,omitempty"`
}

// Save persists a report and its failed examples in one transaction. config
// is the resolved configuration the run was produced with, kept so a run
// stays reproducible after the config file changes.
func (s *Store) Save(ctx context.Context, report *models.MetricsReport, config string) error {
	stored := *report
	stored.Failed = nil
	reportJSON, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, created_at, config, report)
		 VALUES (?, ?, ?, ?, ?)`,
		report.RunID, report.Name, report.CreatedAt, config, string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(report.Failed) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_failures (run_id, question_id, reason, detail)
			 VALUES (?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range report.Failed {
			if _, err := stmt.ExecContext(ctx, report.RunID, f.QuestionID, f.Reason, f.Detail); err != nil {
				return fmt.Errorf("failed to insert failure for %s: %w", f.QuestionID, err)
			}
		}
	}

	return tx.Commit()
}

// Get returns a run by ID with its failed examples reattached.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	var reportJSON, config string
	err := s.db.QueryRowContext(ctx,
		`SELECT config, report FROM runs WHERE id = ?`, runID,
	).Scan(&config, &reportJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	var report models.MetricsReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", runID, err)
	}

	failed, err := s.failures(ctx, runID)
	if err != nil {
		return nil, err
	}
	report.Failed = failed

	return &Run{Report: &report, Config: config}, nil
}

func (s *Store) failures(ctx context.Context, runID string) ([]models.FailedExample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, reason, detail FROM run_failures
		 WHERE run_id = ? ORDER BY rowid`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failed []models.FailedExample
	for rows.Next() {
		var f models.FailedExample
		if err := rows.Scan(&f.QuestionID, &f.Reason, &f.Detail); err != nil {
			return nil, err
		}
		failed = append(failed, f)
	}
	return failed, rows.Err()
}

// List returns run summaries, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.created_at, r.report,
		        (SELECT COUNT(*) FROM run_failures f WHERE f.run_id = r.id)
		 FROM runs r ORDER BY r.created_at DESC, r.id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			sum        RunSummary
			reportJSON string
		)
		if err := rows.Scan(&sum.RunID, &sum.Name, &sum.CreatedAt, &reportJSON, &sum.Failed); err != nil {
			return nil, err
		}
		var report models.MetricsReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report %s: %w", sum.RunID, err)
		}
		sum.Engine = report.Engine
		sum.Reader = report.Reader
		sum.Questions = report.Questions
		sum.Scored = report.Scored
		sum.LongF1 = report.LongAnswer.F1
		sum.ShortF1 = report.ShortAnswer.F1
		sum.Partial = report.Partial
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Count returns the total number of persisted runs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
