package main

import (
	"context"
	"errors"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"video-dashboard/internal/adapters/httpapi"
	"video-dashboard/internal/adapters/repo"
	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/config"
	httpinfra "video-dashboard/internal/infra/http"
	applog "video-dashboard/internal/infra/log"
	"video-dashboard/internal/infra/metrics"
	"video-dashboard/internal/infra/queue"
	"video-dashboard/internal/usecase/dashboard"
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
		logger.Fatal().Err(err).Msg("api: нет подключения к хранилищу")
	}
	defer closeStore()

	var ingestQueue domain.IngestQueue
	var redisClient redis.Cmdable
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		redisClient = client
	}
	q, closeQueue, err := queue.Open(queue.Config{
		Backend:   cfg.Queues.Backend,
		Key:       cfg.Queues.Ingest,
		RabbitURL: cfg.Queues.RabbitURL,
	}, redisClient)
	if err != nil {
		logger.Warn().Err(err).Msg("api: очередь загрузок недоступна, POST /api/v1/ingest отключён")
	} else {
		ingestQueue = q
		defer closeQueue()
	}

	loc := cfg.Location()
	dashboards := dashboard.NewService(store,
		dashboard.WithLogger(logger.With().Str("component", "dashboard").Logger()),
		dashboard.WithClock(func() time.Time { return time.Now().In(loc) }),
	)

	server := httpinfra.NewServer(logger.With().Str("component", "http").Logger(), httpinfra.Options{
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	httpapi.NewHandler(dashboards, ingestQueue, logger.With().Str("component", "api").Logger()).Register(server.Router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(":" + strconv.Itoa(cfg.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("api: сервер остановлен с ошибкой")
		return
	}
	logger.Info().Msg("api: остановлен")
}
