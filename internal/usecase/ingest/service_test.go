package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
)

type stubRepo struct {
	created   []domain.IngestRun
	finished  []domain.IngestRun
	upserted  []domain.PostRecord
	refreshed int
	upsertErr error
}

func (r *stubRepo) CreateIngestRun(_ context.Context, run domain.IngestRun) error {
	r.created = append(r.created, run)
	return nil
}

func (r *stubRepo) FinishIngestRun(_ context.Context, run domain.IngestRun) error {
	r.finished = append(r.finished, run)
	return nil
}

func (r *stubRepo) UpsertRecords(_ context.Context, records []domain.PostRecord) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserted = append(r.upserted, records...)
	return len(records), nil
}

func (r *stubRepo) RefreshDeduped(context.Context) error {
	r.refreshed++
	return nil
}

type stubFetcher struct {
	files map[string]string
}

func (f stubFetcher) Open(_ context.Context, source string) (io.ReadCloser, error) {
	body, ok := f.files[source]
	if !ok {
		return nil, errors.New("файл не найден")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func newTestService(repo *stubRepo, files map[string]string) *Service {
	svc := NewService(repo, stubFetcher{files: files}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestRunProcessesSource(t *testing.T) {
	repo := &stubRepo{}
	csv := sampleCSV + "Acme,alice,1000,v1,k1,Hello world,https://x/v1,1500,12,2,1,0,2024-01-10,2024-01-12\n"
	svc := newTestService(repo, map[string]string{"export.csv": csv})

	run, err := svc.Run(context.Background(), domain.IngestJob{ID: "job-1", Source: "export.csv"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if run.Status != domain.IngestProcessed {
		t.Fatalf("ожидали статус processed, получили %s", run.Status)
	}
	if run.ScrapeDate != "2024-01-20" {
		t.Fatalf("пустая дата выгрузки должна стать сегодняшней: %s", run.ScrapeDate)
	}
	if run.RowsIn != 6 || run.RowsDropped != 3 || run.RowsDeduped != 1 || run.RowsValid != 2 {
		t.Fatalf("неверные счётчики: %+v", run)
	}
	if len(repo.upserted) != 2 || repo.upserted[0].Plays != 1500 {
		t.Fatalf("ожидали 2 сохранённые записи с последним снимком: %+v", repo.upserted)
	}
	if repo.refreshed != 1 {
		t.Fatalf("представление должно обновиться один раз")
	}
	if len(repo.created) != 1 || repo.created[0].Status != domain.IngestPending {
		t.Fatalf("запуск должен быть зарегистрирован как pending")
	}
	if len(repo.finished) != 1 || repo.finished[0].Status != domain.IngestProcessed {
		t.Fatalf("итог запуска не сохранён")
	}
}

func TestRunMarksFailure(t *testing.T) {
	repo := &stubRepo{upsertErr: errors.New("db down")}
	svc := newTestService(repo, map[string]string{"export.csv": sampleCSV})

	run, err := svc.Run(context.Background(), domain.IngestJob{ID: "job-2", Source: "export.csv", ScrapeDate: "2024-01-15"})
	if err == nil {
		t.Fatalf("ожидали ошибку сохранения")
	}
	if run.Status != domain.IngestFailed || !strings.Contains(run.Error, "db down") {
		t.Fatalf("запуск должен быть помечен как failed: %+v", run)
	}
	if repo.refreshed != 0 {
		t.Fatalf("представление не должно обновляться после ошибки")
	}
	if len(repo.finished) != 1 || repo.finished[0].Status != domain.IngestFailed {
		t.Fatalf("итог неудачного запуска не сохранён")
	}
}

func TestRunMissingSource(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	run, err := svc.Run(context.Background(), domain.IngestJob{ID: "job-3", Source: "missing.csv"})
	if err == nil || run.Status != domain.IngestFailed {
		t.Fatalf("ожидали неудачный запуск, получили %+v, %v", run, err)
	}
}

func TestNewJob(t *testing.T) {
	now := time.Date(2024, 1, 20, 8, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	job, err := NewJob(" s3://exports/day.csv ", "2024-01-19", now)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if job.ID == "" || job.Source != "s3://exports/day.csv" || job.RequestedAt.Location() != time.UTC {
		t.Fatalf("неверная задача: %+v", job)
	}
	if _, err := NewJob("", "", now); !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("ожидали ErrInvalidJob для пустого источника, получили %v", err)
	}
	if _, err := NewJob("day.csv", "19.01.2024", now); !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("ожидали ErrInvalidJob для даты, получили %v", err)
	}
}
