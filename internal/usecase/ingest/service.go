package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

// ErrInvalidJob возвращается для задачи без источника или с некорректной датой.
var ErrInvalidJob = errors.New("некорректная задача загрузки")

// Service загружает выгрузки в хранилище.
type Service struct {
	repo    domain.IngestRepo
	fetcher domain.SourceFetcher
	log     zerolog.Logger
	now     func() time.Time
}

// NewService создаёт сервис загрузки.
func NewService(repo domain.IngestRepo, fetcher domain.SourceFetcher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, fetcher: fetcher, log: logger, now: time.Now}
}

// NewJob формирует задачу загрузки. Пустая scrapeDate допустима.
func NewJob(source, scrapeDate string, now time.Time) (domain.IngestJob, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return domain.IngestJob{}, fmt.Errorf("%w: пустой источник", ErrInvalidJob)
	}
	scrapeDate = strings.TrimSpace(scrapeDate)
	if scrapeDate != "" {
		if _, err := time.Parse(dateLayout, scrapeDate); err != nil {
			return domain.IngestJob{}, fmt.Errorf("%w: scrape_date %q", ErrInvalidJob, scrapeDate)
		}
	}
	return domain.IngestJob{
		ID:          uuid.NewString(),
		Source:      source,
		ScrapeDate:  scrapeDate,
		RequestedAt: now.UTC(),
	}, nil
}

// Run выполняет загрузку и фиксирует итог в истории запусков.
func (s *Service) Run(ctx context.Context, job domain.IngestJob) (domain.IngestRun, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	run := domain.IngestRun{
		ID:         job.ID,
		SourceFile: job.Source,
		ScrapeDate: job.ScrapeDate,
		Status:     domain.IngestPending,
		CreatedAt:  s.now().UTC(),
	}
	if run.ScrapeDate == "" {
		run.ScrapeDate = run.CreatedAt.Format(dateLayout)
	}
	log := s.log.With().Str("run", run.ID).Str("source", run.SourceFile).Logger()

	if err := s.repo.CreateIngestRun(ctx, run); err != nil {
		return run, fmt.Errorf("регистрация запуска: %w", err)
	}

	runErr := s.process(ctx, &run)
	if runErr != nil {
		run.Status = domain.IngestFailed
		run.Error = runErr.Error()
		log.Error().Err(runErr).Msg("ingest: загрузка завершилась ошибкой")
	} else {
		run.Status = domain.IngestProcessed
		log.Info().
			Int("rows_in", run.RowsIn).
			Int("rows_valid", run.RowsValid).
			Int("rows_dropped", run.RowsDropped).
			Int("rows_deduped", run.RowsDeduped).
			Msg("ingest: загрузка завершена")
	}
	metrics.IncIngestRun(string(run.Status))

	if err := s.repo.FinishIngestRun(context.WithoutCancel(ctx), run); err != nil {
		return run, errors.Join(runErr, fmt.Errorf("сохранение итогов запуска: %w", err))
	}
	return run, runErr
}

func (s *Service) process(ctx context.Context, run *domain.IngestRun) error {
	src, err := s.fetcher.Open(ctx, run.SourceFile)
	if err != nil {
		return fmt.Errorf("открытие выгрузки: %w", err)
	}
	defer src.Close()

	parsed, err := Parse(src, run.ScrapeDate)
	if err != nil {
		return fmt.Errorf("разбор выгрузки: %w", err)
	}
	records, deduped := Dedupe(parsed.Records)

	run.RowsIn = parsed.RowsIn
	run.RowsDropped = parsed.Dropped
	run.RowsDeduped = deduped
	run.RowsValid = len(records)
	metrics.AddIngestRows("dropped", parsed.Dropped)
	metrics.AddIngestRows("deduped", deduped)

	if len(records) == 0 {
		return nil
	}
	saved, err := s.repo.UpsertRecords(ctx, records)
	metrics.AddIngestRows("saved", saved)
	if err != nil {
		return fmt.Errorf("сохранение записей: %w", err)
	}
	if err := s.repo.RefreshDeduped(ctx); err != nil {
		return fmt.Errorf("обновление представления: %w", err)
	}
	return nil
}
