// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records build runs and the pages they produced in a SQLite
// database, and exports that history as YAML or JSON.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mdsite/pkg/types"
)

const defaultLimit = 20

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned by Run for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating its parent
// directory and schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			backend TEXT,
			policy TEXT,
			converted INTEGER,
			skipped INTEGER,
			failed INTEGER,
			warnings INTEGER,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source_path TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			duration_ms INTEGER,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_run_id ON pages(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Record stores run and its pages in one transaction. An empty run.ID is
// filled in.
func (s *Store) Record(ctx context.Context, run *types.Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, backend, policy, converted, skipped, failed, warnings, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		string(run.Backend), string(run.Policy),
		run.Converted, run.Skipped, run.Failed, run.Warnings, run.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (run_id, source_path, output_path, status, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range run.Pages {
		_, err := stmt.ExecContext(ctx,
			run.ID, p.SourcePath, p.OutputPath, string(p.Status), p.Duration.Milliseconds(), p.Error)
		if err != nil {
			return fmt.Errorf("inserting page %s: %w", p.SourcePath, err)
		}
	}

	return tx.Commit()
}

// Runs returns the most recent runs, newest first, without pages. A
// non-positive limit uses the default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, backend, policy, converted, skipped, failed, warnings, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns one run with its pages.
func (s *Store) Run(ctx context.Context, id string) (types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, backend, policy, converted, skipped, failed, warnings, error
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return types.Run{}, err
	}

	r.Pages, err = s.pages(ctx, id)
	return r, err
}

func (s *Store) pages(ctx context.Context, runID string) ([]types.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_path, output_path, status, duration_ms, error
		 FROM pages WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	var pages []types.Page
	for rows.Next() {
		var p types.Page
		var status string
		var ms int64
		var output, errText sql.NullString
		if err := rows.Scan(&p.SourcePath, &output, &status, &ms, &errText); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		p.OutputPath = output.String
		p.Status = types.PageStatus(status)
		p.Duration = time.Duration(ms) * time.Millisecond
		p.Error = errText.String
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var r types.Run
	var started, finished string
	var backend, policy, errText sql.NullString
	err := sc.Scan(&r.ID, &started, &finished, &backend, &policy,
		&r.Converted, &r.Skipped, &r.Failed, &r.Warnings, &errText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning run: %w", err)
	}
	r.StartedAt, _ = time.Parse(timeLayout, started)
	r.FinishedAt, _ = time.Parse(timeLayout, finished)
	r.Backend = types.ConverterBackend(backend.String)
	r.Policy = types.ErrorPolicy(policy.String)
	r.Error = errText.String
	return r, nil
}

// Export writes the most recent runs, each with its pages, to w as "yaml"
// or "json".
func (s *Store) Export(ctx context.Context, w io.Writer, format string, limit int) error {
	runs, err := s.Runs(ctx, limit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	for i := range runs {
		if runs[i].Pages, err = s.pages(ctx, runs[i].ID); err != nil {
			return err
		}
	}

	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
