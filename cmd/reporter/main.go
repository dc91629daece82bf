package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"video-dashboard/internal/adapters/repo"
	"video-dashboard/internal/adapters/telegram"
	"video-dashboard/internal/infra/config"
	applog "video-dashboard/internal/infra/log"
	"video-dashboard/internal/infra/metrics"
	"video-dashboard/internal/infra/schedule"
	"video-dashboard/internal/usecase/dashboard"
	"video-dashboard/internal/usecase/report"
)

const reportTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, cfg.LogPretty)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	if cfg.Telegram.Token == "" {
		logger.Fatal().Msg("reporter: не указан токен Telegram (TG_BOT_TOKEN)")
	}
	if len(cfg.Report.ChatIDs) == 0 {
		logger.Fatal().Msg("reporter: не указаны чаты для отчётов (REPORT_CHAT_IDS)")
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("reporter: не удалось создать бота")
	}

	store, closeStore, err := repo.Open(ctx, repo.StoreConfig{
		Driver:     cfg.Store.Driver,
		PGDSN:      cfg.Store.PGDSN,
		PGMaxConns: cfg.Store.PGMaxConns,
		SQLitePath: cfg.Store.SQLitePath,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("reporter: нет подключения к хранилищу")
	}
	defer closeStore()

	loc := cfg.Location()
	dashboards := dashboard.NewService(store,
		dashboard.WithLogger(logger.With().Str("component", "dashboard").Logger()),
		dashboard.WithClock(func() time.Time { return time.Now().In(loc) }),
	)
	notifier := telegram.NewNotifier(botAPI, cfg.Report.ChatIDs, logger.With().Str("component", "telegram").Logger())
	reports := report.NewService(dashboards, notifier, loc, cfg.Report.TopN, logger.With().Str("component", "report").Logger())

	scheduler := schedule.New(loc, reportTimeout, logger.With().Str("component", "scheduler").Logger())
	if err := scheduler.AddJob(ctx, "daily_report", cfg.Report.Cron, reports.SendDaily); err != nil {
		logger.Fatal().Err(err).Msg("reporter: некорректное расписание (REPORT_CRON)")
	}
	if cfg.Report.RunOnStart {
		scheduler.RunNow(ctx, "daily_report", reports.SendDaily)
	}

	logger.Info().Str("tz", loc.String()).Str("cron", cfg.Report.Cron).Msg("reporter: запущен")
	scheduler.Run(ctx)
	logger.Info().Msg("reporter: остановлен")
}
