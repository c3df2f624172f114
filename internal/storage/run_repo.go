package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks incident-pipeline/internal/storage RunStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// timeLayout is fixed-width so that timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunStore defines the interface for run ledger operations.
type RunStore interface {
	// Insert records a finished run.
	Insert(ctx context.Context, run *RunRecord) error
	// Get returns the run with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*RunRecord, error)
	// ListRecent returns up to limit runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]*RunRecord, error)
}

// RunRepo provides methods for run ledger operations.
// It implements the RunStore interface.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Insert records a finished run.
func (r *RunRepo) Insert(ctx context.Context, run *RunRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, workers, dispatched, ok, fail, lost, write_errors, timed_out, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Workers, run.Dispatched, run.OK, run.Fail, run.Lost, run.WriteErrors, run.TimedOut,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns the run with the given id, or ErrNotFound.
func (r *RunRepo) Get(ctx context.Context, id string) (*RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, workers, dispatched, ok, fail, lost, write_errors, timed_out, started_at, finished_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]*RunRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workers, dispatched, ok, fail, lost, write_errors, timed_out, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	runs := make([]*RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	var startedAt, finishedAt string
	if err := row.Scan(&run.ID, &run.Workers, &run.Dispatched, &run.OK, &run.Fail, &run.Lost,
		&run.WriteErrors, &run.TimedOut, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
		return nil, fmt.Errorf("failed to parse finished_at: %w", err)
	}
	return &run, nil
}
