package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clang-format-all/internal/processor"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS format_runs (
	run_id      UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL,
	source_dir  TEXT NOT NULL,
	formatter   TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	cancelled   BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS format_results (
	run_id      UUID NOT NULL REFERENCES format_runs (run_id),
	path        TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL
);`

const (
	insertRun = `INSERT INTO format_runs (run_id, started_at, duration_ms, source_dir, formatter, exit_code, cancelled)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insertResult = `INSERT INTO format_results (run_id, path, outcome, exit_code, duration_ms)
VALUES ($1, $2, $3, $4, $5)`
	deleteResults = `DELETE FROM format_results WHERE run_id = $1`
	deleteRun     = `DELETE FROM format_runs WHERE run_id = $1`
)

const DefaultBatchSize = 500

type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	SourceDir string
	Formatter string
	ExitCode  int
	Cancelled bool
}

// Connect opens and pings a PostgreSQL database.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening connection to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

// History stores runs and their per-file results.
type History struct {
	Db        *sql.DB
	batchSize int64
}

// NewHistory creates the history tables when they are missing.
func NewHistory(ctx context.Context, db *sql.DB, batchSize int64) (*History, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("error creating history tables: %w", err)
	}
	return &History{Db: db, batchSize: batchSize}, nil
}

// RecordRun stores the run and its results. Rows are committed in batches, so when any insert
// fails the rows already committed for this run are deleted again.
func (h *History) RecordRun(ctx context.Context, run Run, results []processor.Result) error {
	tm, err := NewTransactionManager(ctx, h.Db, h.batchSize)
	if err != nil {
		return err
	}

	if err := tm.Exec(ctx, insertRun, run.ID, run.StartedAt, run.Duration.Milliseconds(),
		run.SourceDir, run.Formatter, run.ExitCode, run.Cancelled); err != nil {
		tm.Rollback()
		return h.discard(ctx, run.ID, err)
	}

	for _, r := range results {
		if err := tm.Exec(ctx, insertResult, run.ID, r.Path, string(r.Outcome), r.ExitCode, r.Duration.Milliseconds()); err != nil {
			tm.Rollback()
			return h.discard(ctx, run.ID, err)
		}
	}

	if err := tm.Close(ctx); err != nil {
		return h.discard(ctx, run.ID, err)
	}
	return nil
}

// discard removes every row of a run that failed to record and returns cause,
// joined with the cleanup error if the rows could not be removed.
func (h *History) discard(ctx context.Context, runID string, cause error) error {
	tx, err := h.Db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("unable to start a transaction: %w", err))
	}
	for _, query := range []string{deleteResults, deleteRun} {
		if _, err := tx.ExecContext(ctx, query, runID); err != nil {
			_ = tx.Rollback()
			return errors.Join(cause, fmt.Errorf("removing partial run %s: %w", runID, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Join(cause, fmt.Errorf("commit error: %w", err))
	}
	return cause
}
