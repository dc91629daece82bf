package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
)

type memLocks struct {
	taken map[string]bool
	err   error
}

func (m *memLocks) Once(_ context.Context, key string, _ time.Duration, fn func() error) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.taken[key] {
		return false, nil
	}
	m.taken[key] = true
	if err := fn(); err != nil {
		delete(m.taken, key)
		return true, err
	}
	return true, nil
}

type stubRunner struct {
	err  error
	runs int
}

func (r *stubRunner) Run(context.Context, domain.IngestJob) (domain.IngestRun, error) {
	r.runs++
	return domain.IngestRun{RowsValid: 3}, r.err
}

type ackRecorder struct {
	calls []bool
}

func (a *ackRecorder) ack(success bool) error {
	a.calls = append(a.calls, success)
	return nil
}

func newTestWorker(runner jobRunner, locks domain.Cache) *jobWorker {
	return &jobWorker{log: zerolog.Nop(), locks: locks, runner: runner, lockTTL: time.Minute, maxAttempts: 3}
}

func TestWorkerAcksSuccessAndSkipsDuplicates(t *testing.T) {
	runner := &stubRunner{}
	w := newTestWorker(runner, &memLocks{taken: map[string]bool{}})
	job := domain.IngestJob{ID: "job-1", Source: "a.csv"}

	first, second := &ackRecorder{}, &ackRecorder{}
	w.handle(context.Background(), job, first.ack)
	w.handle(context.Background(), job, second.ack)

	if runner.runs != 1 {
		t.Fatalf("повторная задача не должна запускаться, запусков %d", runner.runs)
	}
	if len(first.calls) != 1 || !first.calls[0] || len(second.calls) != 1 || !second.calls[0] {
		t.Fatalf("обе доставки должны быть подтверждены: %v %v", first.calls, second.calls)
	}
}

func TestWorkerRetriesUntilLimit(t *testing.T) {
	runner := &stubRunner{err: errors.New("db down")}
	w := newTestWorker(runner, &memLocks{taken: map[string]bool{}})

	cases := []struct {
		attempt int
		want    bool
	}{
		{0, false},
		{1, false},
		{2, true},
	}
	for _, c := range cases {
		rec := &ackRecorder{}
		w.handle(context.Background(), domain.IngestJob{ID: "job-2", Source: "a.csv", Attempt: c.attempt}, rec.ack)
		if len(rec.calls) != 1 || rec.calls[0] != c.want {
			t.Fatalf("попытка %d: ожидали ack(%v), получили %v", c.attempt, c.want, rec.calls)
		}
	}
	if runner.runs != 3 {
		t.Fatalf("после ошибки блокировка должна освобождаться, запусков %d", runner.runs)
	}
}

func TestWorkerRequeuesOnLockError(t *testing.T) {
	runner := &stubRunner{}
	w := newTestWorker(runner, &memLocks{err: errors.New("redis down")})
	rec := &ackRecorder{}
	w.handle(context.Background(), domain.IngestJob{ID: "job-3", Source: "a.csv"}, rec.ack)
	if runner.runs != 0 || len(rec.calls) != 1 || rec.calls[0] {
		t.Fatalf("без блокировки задача возвращается в очередь: runs=%d acks=%v", runner.runs, rec.calls)
	}
}

func TestWorkerDropsIncompleteJob(t *testing.T) {
	runner := &stubRunner{}
	w := newTestWorker(runner, &memLocks{taken: map[string]bool{}})
	rec := &ackRecorder{}
	w.handle(context.Background(), domain.IngestJob{ID: "job-4"}, rec.ack)
	if runner.runs != 0 || len(rec.calls) != 1 || !rec.calls[0] {
		t.Fatalf("неполная задача подтверждается без запуска: runs=%d acks=%v", runner.runs, rec.calls)
	}
}
