package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"lifeboard/internal/jobs"
	"lifeboard/internal/notifications"
)

var testLogger = slog.New(slog.DiscardHandler)

type fakeJobsRepo struct {
	claimFn func(ctx context.Context, workerID string) (jobs.Job, error)

	done        []string
	failed      []string
	rescheduled []time.Time
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (jobs.Job, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}
	return jobs.Job{}, jobs.ErrNotFound
}

func (f *fakeJobsRepo) MarkDone(_ context.Context, id string) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeJobsRepo) MarkFailed(_ context.Context, id string, _ string) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeJobsRepo) Reschedule(_ context.Context, id string, runAt time.Time, _ string) error {
	f.rescheduled = append(f.rescheduled, runAt)
	return nil
}

type fakeNotifier struct {
	err   error
	sends []notifications.SendPasswordResetInput
}

func (f *fakeNotifier) SendPasswordReset(_ context.Context, in notifications.SendPasswordResetInput) error {
	f.sends = append(f.sends, in)
	return f.err
}

func resetJob(t *testing.T, attempts, maxTries int) jobs.Job {
	t.Helper()

	payload, err := jobs.EncodePayload(jobs.JobPasswordResetEmail, jobs.PasswordResetEmailPayload{
		UserID:     "u-1",
		Email:      "ada@example.com",
		Username:   "ada",
		ResetToken: "tok",
		ExpiresAt:  time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	j, err := jobs.NewJob(jobs.JobPasswordResetEmail, payload, time.Now())
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	j.Attempts = attempts
	j.MaxTries = maxTries
	return j
}

func singleJobRepo(j jobs.Job) *fakeJobsRepo {
	claimed := false
	return &fakeJobsRepo{
		claimFn: func(context.Context, string) (jobs.Job, error) {
			if claimed {
				return jobs.Job{}, jobs.ErrNotFound
			}
			claimed = true
			return j, nil
		},
	}
}

func TestProcessOneDeliversAndMarksDone(t *testing.T) {
	j := resetJob(t, 1, 5)
	repo := singleJobRepo(j)
	notifier := &fakeNotifier{}

	w := New(Config{WorkerID: "test"}, repo, notifier, nil, testLogger)

	processed, err := w.ProcessOne(context.Background())
	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	if len(notifier.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(notifier.sends))
	}
	if notifier.sends[0].ResetToken != "tok" {
		t.Fatalf("send = %+v", notifier.sends[0])
	}

	if len(repo.done) != 1 || repo.done[0] != j.ID {
		t.Fatalf("done = %v", repo.done)
	}
	if len(repo.failed) != 0 || len(repo.rescheduled) != 0 {
		t.Fatalf("unexpected failure bookkeeping: %v %v", repo.failed, repo.rescheduled)
	}
}

func TestProcessOneReschedulesOnTransientFailure(t *testing.T) {
	j := resetJob(t, 1, 5)
	repo := singleJobRepo(j)
	notifier := &fakeNotifier{err: errors.New("provider down")}

	w := New(Config{WorkerID: "test"}, repo, notifier, nil, testLogger)

	processed, err := w.ProcessOne(context.Background())
	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	if len(repo.rescheduled) != 1 {
		t.Fatalf("rescheduled = %d, want 1", len(repo.rescheduled))
	}
	if !repo.rescheduled[0].After(time.Now()) {
		t.Fatal("retry must be scheduled in the future")
	}
	if len(repo.done) != 0 || len(repo.failed) != 0 {
		t.Fatalf("unexpected done/failed: %v %v", repo.done, repo.failed)
	}
}

func TestProcessOneFailsPermanentlyAtMaxTries(t *testing.T) {
	j := resetJob(t, 5, 5)
	repo := singleJobRepo(j)
	notifier := &fakeNotifier{err: errors.New("provider down")}

	w := New(Config{WorkerID: "test"}, repo, notifier, nil, testLogger)

	processed, err := w.ProcessOne(context.Background())
	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	if len(repo.failed) != 1 {
		t.Fatalf("failed = %v, want one entry", repo.failed)
	}
	if len(repo.rescheduled) != 0 {
		t.Fatalf("rescheduled = %v, want none", repo.rescheduled)
	}
}

func TestProcessOneFailsFastOnBadPayload(t *testing.T) {
	j := resetJob(t, 1, 5)
	j.Payload = []byte(`{"broken`)
	repo := singleJobRepo(j)

	w := New(Config{WorkerID: "test"}, repo, &fakeNotifier{}, nil, testLogger)

	processed, err := w.ProcessOne(context.Background())
	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	// malformed payloads never succeed on retry
	if len(repo.failed) != 1 {
		t.Fatalf("failed = %v, want one entry", repo.failed)
	}
}

func TestProcessOneReportsIdleQueue(t *testing.T) {
	w := New(Config{WorkerID: "test"}, &fakeJobsRepo{}, &fakeNotifier{}, nil, testLogger)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if processed {
		t.Fatal("idle queue must report processed=false")
	}
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	prev := time.Duration(0)

	for attempt := 0; attempt < 5; attempt++ {
		d := ExponentialBackoff(attempt)
		if d < prev {
			t.Fatalf("backoff shrank at attempt %d: %v < %v", attempt, d, prev)
		}
		prev = d
	}

	if d := ExponentialBackoff(30); d > 5*time.Minute+time.Second {
		t.Fatalf("backoff exceeds cap: %v", d)
	}
}
