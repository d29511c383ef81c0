package postgres

import (
	"context"
	"errors"
	"time"

	"lifeboard/internal/jobs"
	"lifeboard/internal/observability"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *JobsRepo {
	return &JobsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *JobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *JobsRepo) Enqueue(ctx context.Context, j jobs.Job) error {
	return r.observe("jobs.enqueue", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO jobs (id, type, payload, status, attempts, max_tries, run_at, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			j.ID, j.Type, j.Payload, j.Status, j.Attempts, j.MaxTries, j.RunAt, j.CreatedAt, j.UpdatedAt,
		)
		return err
	})
}

// ClaimNext atomically picks the oldest runnable pending job and marks it
// processing for this worker. SKIP LOCKED keeps competing workers from
// claiming the same row.
func (r *JobsRepo) ClaimNext(ctx context.Context, workerID string) (jobs.Job, error) {
	var j jobs.Job

	err := r.observe("jobs.claim_next", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE jobs
				SET status = $2,
				    attempts = attempts + 1,
				    locked_by = $3,
				    locked_at = NOW(),
				    updated_at = NOW()
			  WHERE id = (
					SELECT id FROM jobs
					 WHERE status = $1 AND run_at <= NOW()
					 ORDER BY run_at ASC, created_at ASC
					 FOR UPDATE SKIP LOCKED
					 LIMIT 1
			  )
			  RETURNING id, type, payload, status, attempts, max_tries, run_at, last_error, created_at, updated_at`,
			jobs.JobPending, jobs.JobProcessing, workerID,
		).Scan(&j.ID, &j.Type, &j.Payload, &j.Status, &j.Attempts, &j.MaxTries, &j.RunAt, &j.LastError, &j.CreatedAt, &j.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return jobs.Job{}, jobs.ErrNotFound
		}
		return jobs.Job{}, err
	}

	return j, nil
}

func (r *JobsRepo) MarkDone(ctx context.Context, id string) error {
	return r.finish(ctx, "jobs.mark_done", id, jobs.JobDone, nil)
}

func (r *JobsRepo) MarkFailed(ctx context.Context, id string, lastError string) error {
	return r.finish(ctx, "jobs.mark_failed", id, jobs.JobFailed, &lastError)
}

func (r *JobsRepo) finish(ctx context.Context, op, id string, status jobs.JobStatus, lastError *string) error {
	return r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE jobs
				SET status = $2,
				    last_error = $3,
				    locked_by = NULL,
				    locked_at = NULL,
				    updated_at = NOW()
			  WHERE id = $1`,
			id, status, lastError,
		)

		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return jobs.ErrNotFound
		}
		return nil
	})
}

// Reschedule returns a failed attempt to the pending queue for a later run.
func (r *JobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, lastError string) error {
	return r.observe("jobs.reschedule", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE jobs
				SET status = $2,
				    run_at = $3,
				    last_error = $4,
				    locked_by = NULL,
				    locked_at = NULL,
				    updated_at = NOW()
			  WHERE id = $1`,
			id, jobs.JobPending, runAt, lastError,
		)

		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return jobs.ErrNotFound
		}
		return nil
	})
}
