package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lifeboard/internal/jobs"
	"lifeboard/internal/notifications"
	"lifeboard/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (jobs.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, lastError string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, lastError string) error
}

type Config struct {
	PollInterval time.Duration
	WorkerID     string
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		prom:     prom,
		log:      log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-ticker.C:
			// drain everything runnable before sleeping again
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.Error("claim error", "err", err)
					break
				}
				if !processed {
					break
				}
			}
		}
	}
}

// ProcessOne claims and executes a single job. It reports whether a job was
// found; execution failures are handled inside (retry or fail), not
// returned.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	w.log.Info("claimed job", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts)

	start := time.Now()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
	}

	err = w.execute(ctx, j)

	if w.prom != nil {
		w.prom.JobsInFlight.Dec()
	}

	result := "done"

	if err != nil {
		result = w.handleFailure(ctx, j, err)
	} else if markErr := w.repo.MarkDone(ctx, j.ID); markErr != nil {
		w.log.Error("mark done failed", "job_id", j.ID, "err", markErr)
	}

	if w.prom != nil {
		w.prom.JobResults.WithLabelValues(string(j.Type), result).Inc()
		w.prom.JobDuration.WithLabelValues(string(j.Type), result).Observe(time.Since(start).Seconds())
	}

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.PasswordResetEmailPayload:
		return w.notifier.SendPasswordReset(ctx, notifications.SendPasswordResetInput{
			Email:      p.Email,
			Username:   p.Username,
			ResetToken: p.ResetToken,
			ExpiresAt:  p.ExpiresAt,
		})

	default:
		return fmt.Errorf("%w: %T", jobs.ErrInvalidJobType, payload)
	}
}

// handleFailure decides retry vs terminal failure and returns the metric
// label for the outcome.
func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, execErr error) string {
	// attempts was already bumped by the claim
	if j.Attempts >= j.MaxTries || errors.Is(execErr, jobs.ErrInvalidJobType) || errors.Is(execErr, jobs.ErrInvalidJobPayload) {
		w.log.Error("job failed permanently", "job_id", j.ID, "attempts", j.Attempts, "err", execErr)

		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed errored", "job_id", j.ID, "err", err)
		}
		return "failed"
	}

	delay := ExponentialBackoff(j.Attempts)
	runAt := time.Now().UTC().Add(delay)

	w.log.Warn("job retry scheduled", "job_id", j.ID, "attempt", j.Attempts, "delay", delay.String(), "err", execErr)

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("reschedule failed", "job_id", j.ID, "err", err)
	}
	return "retry"
}
