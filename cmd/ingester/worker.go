package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
)

type jobRunner interface {
	Run(ctx context.Context, job domain.IngestJob) (domain.IngestRun, error)
}

type jobWorker struct {
	log         zerolog.Logger
	queue       domain.IngestQueue
	locks       domain.Cache
	runner      jobRunner
	lockTTL     time.Duration
	maxAttempts int
}

const defaultMaxAttempts = 5

func (w *jobWorker) Run(ctx context.Context) {
	for {
		job, ack, err := w.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("ingester: ошибка чтения очереди")
			time.Sleep(time.Second)
			continue
		}
		w.handle(ctx, job, ack)
	}
}

func (w *jobWorker) handle(ctx context.Context, job domain.IngestJob, ack domain.AckFunc) {
	jobLog := w.log.With().
		Str("job_id", job.ID).
		Str("source", job.Source).
		Int("attempt", job.Attempt).
		Logger()

	if job.ID == "" || job.Source == "" {
		jobLog.Error().Msg("ingester: получена неполная задача, подтверждаем и пропускаем")
		if err := ack(true); err != nil {
			jobLog.Error().Err(err).Msg("ingester: не удалось подтвердить неполную задачу")
		}
		return
	}

	var runErr error
	ran, lockErr := w.locks.Once(ctx, job.ID, w.lockTTL, func() error {
		run, err := w.runner.Run(ctx, job)
		if err == nil {
			jobLog.Info().Int("rows_valid", run.RowsValid).Msg("ingester: выгрузка загружена")
		}
		runErr = err
		return err
	})

	switch {
	case lockErr != nil && !ran:
		jobLog.Error().Err(lockErr).Msg("ingester: не удалось взять блокировку")
		runErr = lockErr
	case !ran:
		jobLog.Info().Msg("ingester: задача уже обрабатывается или обработана, подтверждаем")
		if err := ack(true); err != nil {
			jobLog.Error().Err(err).Msg("ingester: не удалось подтвердить повторную задачу")
		}
		return
	case runErr == nil:
		if err := ack(true); err != nil {
			jobLog.Error().Err(err).Msg("ingester: не удалось подтвердить задачу")
		}
		return
	}

	maxAttempts := w.maxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if job.Attempt+1 < maxAttempts {
		jobLog.Warn().Err(runErr).Msg("ingester: задача завершилась ошибкой, повторим позже")
		if err := ack(false); err != nil {
			jobLog.Error().Err(err).Msg("ingester: не удалось вернуть задачу после ошибки")
		}
		return
	}
	jobLog.Error().Err(runErr).Msg("ingester: достигнут предел попыток, снимаем задачу")
	if err := ack(true); err != nil {
		jobLog.Error().Err(err).Msg("ingester: не удалось подтвердить задачу после последней попытки")
	}
}
