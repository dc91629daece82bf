package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	DashboardBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_build_seconds",
		Help:    "Время построения дашборда",
		Buckets: prometheus.DefBuckets,
	})

	DashboardRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_requests_total",
		Help: "Количество запросов дашборда по периодам",
	}, []string{"window"})

	IngestRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rows_total",
		Help: "Строки выгрузок по результату обработки",
	}, []string{"outcome"})

	IngestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_runs_total",
		Help: "Запуски загрузки по статусу",
	}, []string{"status"})

	ReportsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reports_sent_total",
		Help: "Отправленные ежедневные отчёты",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		DashboardBuildSeconds,
		DashboardRequestsTotal,
		IngestRowsTotal,
		IngestRunsTotal,
		ReportsSentTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	labels := []string{orUnknown(component), orUnknown(operation), orUnknown(target), status}
	NetworkRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(labels...).Inc()
}

// ObserveDashboard фиксирует построение дашборда за период.
func ObserveDashboard(window string, start time.Time) {
	DashboardRequestsTotal.WithLabelValues(orUnknown(window)).Inc()
	DashboardBuildSeconds.Observe(time.Since(start).Seconds())
}

// AddIngestRows увеличивает счётчик строк с заданным результатом.
func AddIngestRows(outcome string, n int) {
	if n <= 0 {
		return
	}
	IngestRowsTotal.WithLabelValues(outcome).Add(float64(n))
}

// IncIngestRun считает завершённый запуск загрузки.
func IncIngestRun(status string) {
	IngestRunsTotal.WithLabelValues(orUnknown(status)).Inc()
}

// IncReportSent считает отправленный отчёт.
func IncReportSent() {
	ReportsSentTotal.Inc()
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
