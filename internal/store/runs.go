package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/tally/internal/ingest"
	"github.com/MikeSquared-Agency/tally/internal/metrics"
)

// ErrNotFound is returned when an analysis run does not exist.
var ErrNotFound = errors.New("analysis run not found")

// AnalysisRun is one completed pass of the pipeline: which files went in,
// how many sessions came out, and the full metrics snapshot.
type AnalysisRun struct {
	ID           uuid.UUID           `json:"id"`
	CreatedAt    time.Time           `json:"createdAt"`
	Source       string              `json:"source"` // upload, event or scan
	FileCount    int                 `json:"fileCount"`
	SessionCount int                 `json:"sessionCount"`
	Files        []ingest.FileResult `json:"files"`
	Snapshot     *metrics.Snapshot   `json:"snapshot"`
}

// RunSummary is the listing row: everything except the snapshot body.
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	Source       string    `json:"source"`
	FileCount    int       `json:"fileCount"`
	SessionCount int       `json:"sessionCount"`
}

// SaveRun writes an analysis run. Table: analysis_runs
// (id uuid pk, created_at timestamptz, source text, file_count int,
// session_count int, files jsonb, snapshot jsonb).
func (s *Store) SaveRun(ctx context.Context, run *AnalysisRun) error {
	filesJSON, err := json.Marshal(run.Files)
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}
	snapshotJSON, err := json.Marshal(run.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO analysis_runs (id, created_at, source, file_count, session_count, files, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.CreatedAt, run.Source, run.FileCount, run.SessionCount, filesJSON, snapshotJSON,
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}
	return nil
}

// GetRun loads one run with its full snapshot.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*AnalysisRun, error) {
	var run AnalysisRun
	var filesJSON, snapshotJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT id, created_at, source, file_count, session_count, files, snapshot
		FROM analysis_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.CreatedAt, &run.Source, &run.FileCount, &run.SessionCount, &filesJSON, &snapshotJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select analysis run: %w", err)
	}

	if err := json.Unmarshal(filesJSON, &run.Files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	if err := json.Unmarshal(snapshotJSON, &run.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, source, file_count, session_count
		FROM analysis_runs ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list analysis runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Source, &r.FileCount, &r.SessionCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
