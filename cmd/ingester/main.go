package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"video-dashboard/internal/adapters/repo"
	"video-dashboard/internal/adapters/source"
	"video-dashboard/internal/infra/cache"
	"video-dashboard/internal/infra/config"
	applog "video-dashboard/internal/infra/log"
	"video-dashboard/internal/infra/metrics"
	"video-dashboard/internal/infra/queue"
	"video-dashboard/internal/usecase/ingest"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, cfg.LogPretty)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	store, closeStore, err := repo.Open(ctx, repo.StoreConfig{
		Driver:     cfg.Store.Driver,
		PGDSN:      cfg.Store.PGDSN,
		PGMaxConns: cfg.Store.PGMaxConns,
		SQLitePath: cfg.Store.SQLitePath,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("ingester: нет подключения к хранилищу")
	}
	defer closeStore()

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("ingester: не указан адрес Redis (REDIS_ADDR)")
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	ingestQueue, closeQueue, err := queue.Open(queue.Config{
		Backend:   cfg.Queues.Backend,
		Key:       cfg.Queues.Ingest,
		RabbitURL: cfg.Queues.RabbitURL,
		Prefetch:  cfg.Queues.Workers,
	}, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("ingester: не удалось инициализировать очередь")
	}
	defer closeQueue()

	objects, err := source.NewMinIO(source.MinIOConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("ingester: не удалось создать клиента MinIO")
	}

	service := ingest.NewService(store, source.NewFetcher(objects, ""), logger.With().Str("component", "ingest").Logger())

	worker := &jobWorker{
		log:         logger,
		queue:       ingestQueue,
		locks:       cache.NewRedis(redisClient, "ingest:lock:"),
		runner:      service,
		lockTTL:     cfg.Queues.LockTTL,
		maxAttempts: cfg.Queues.MaxAttempts,
	}

	workers := cfg.Queues.Workers
	if workers <= 0 {
		workers = 1
	}
	logger.Info().Int("workers", workers).Str("backend", cfg.Queues.Backend).Msg("ingester: запуск обработки очереди")
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}
	_ = g.Wait()
	logger.Info().Msg("ingester: остановлен")
}
