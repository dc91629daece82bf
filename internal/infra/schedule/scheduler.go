package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job — периодическая задача.
type Job func(ctx context.Context) error

// Scheduler запускает задачи по cron-расписанию в заданном часовом поясе.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

// New создаёт планировщик. timeout ограничивает один запуск задачи.
func New(loc *time.Location, timeout time.Duration, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     logger,
		timeout: timeout,
	}
}

// AddJob регистрирует задачу. spec — стандартное выражение из пяти полей.
func (s *Scheduler) AddJob(ctx context.Context, name, spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunNow(ctx, name, job) }); err != nil {
		return fmt.Errorf("расписание %s (%q): %w", name, spec, err)
	}
	s.log.Info().Str("job", name).Str("spec", spec).Msg("scheduler: задача добавлена")
	return nil
}

// RunNow выполняет задачу синхронно с логированием результата.
func (s *Scheduler) RunNow(ctx context.Context, name string, job Job) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(runCtx); err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("scheduler: задача завершилась ошибкой")
		return
	}
	s.log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("scheduler: задача выполнена")
}

// Run запускает планировщик и блокируется до отмены ctx, дожидаясь активных задач.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}
