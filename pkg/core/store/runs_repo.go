package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptsheet/pkg/core/batch"
)

// RunRecord is one batch run's accounting: totals, timing, and the failed
// jobs' normalized errors.
type RunRecord struct {
	ID        uuid.UUID     `json:"id"`
	Model     string        `json:"model"`
	JobCount  int           `json:"job_count"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// RunsRepo records batch runs. A nil pool makes every method a no-op so
// callers never branch on whether history is configured.
type RunsRepo struct {
	pool *pgxpool.Pool
}

// NewRunsRepo creates the repository over the given pool, which may be nil.
func NewRunsRepo(pool *pgxpool.Pool) *RunsRepo {
	return &RunsRepo{pool: pool}
}

// Enabled reports whether run history is actually being persisted.
func (r *RunsRepo) Enabled() bool { return r != nil && r.pool != nil }

// SummarizeRun builds a record from settled results.
func SummarizeRun(model string, results []batch.PromptResult, startedAt time.Time) RunRecord {
	rec := RunRecord{
		ID:        uuid.New(),
		Model:     model,
		JobCount:  len(results),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	for _, res := range results {
		if res.OK() {
			rec.Succeeded++
		} else {
			rec.Failed++
		}
	}
	return rec
}

// SaveRun stores a run record plus the failed jobs' error details as JSONB.
func (r *RunsRepo) SaveRun(ctx context.Context, rec RunRecord, results []batch.PromptResult) error {
	if !r.Enabled() {
		return nil
	}

	var failures []batch.PromptResult
	for _, res := range results {
		if !res.OK() {
			failures = append(failures, res)
		}
	}
	failureJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("failed to marshal run failures: %w", err)
	}

	query := `
		INSERT INTO prompt_runs (
			id, model, job_count, succeeded, failed,
			duration_ms, started_at, failures
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			succeeded = EXCLUDED.succeeded,
			failed = EXCLUDED.failed,
			duration_ms = EXCLUDED.duration_ms,
			failures = EXCLUDED.failures
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.Model, rec.JobCount, rec.Succeeded, rec.Failed,
		rec.Duration.Milliseconds(), rec.StartedAt, failureJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// RecentRuns lists the latest run records, newest first.
func (r *RunsRepo) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if !r.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, model, job_count, succeeded, failed, duration_ms, started_at
		FROM prompt_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.Model, &rec.JobCount, &rec.Succeeded, &rec.Failed, &durationMS, &rec.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
