package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
	"video-dashboard/internal/usecase/dashboard"
)

// DashboardBuilder — часть сервиса дашборда, нужная отчёту.
type DashboardBuilder interface {
	Build(ctx context.Context, q domain.DashboardQuery) (domain.Dashboard, error)
}

// Report — данные ежедневного отчёта.
type Report struct {
	Date        string
	KPIs        domain.KPISummary
	TopVideos   []domain.ProcessedVideo
	TopAccounts []domain.AccountAggregate
	Brands      []domain.BrandAggregate
}

// Service собирает отчёт за вчерашний день и рассылает его.
type Service struct {
	dashboards DashboardBuilder
	notifier   domain.Notifier
	loc        *time.Location
	topN       int
	log        zerolog.Logger
	now        func() time.Time
}

// NewService создаёт сервис отчётов. Даты считаются в loc.
func NewService(dashboards DashboardBuilder, notifier domain.Notifier, loc *time.Location, topN int, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if topN <= 0 {
		topN = dashboard.DefaultTopN
	}
	return &Service{dashboards: dashboards, notifier: notifier, loc: loc, topN: topN, log: logger, now: time.Now}
}

// Yesterday возвращает метку вчерашнего дня в часовом поясе сервиса.
func (s *Service) Yesterday() string {
	return s.now().In(s.loc).AddDate(0, 0, -1).Format("2006-01-02")
}

// Build строит отчёт за день date (YYYY-MM-DD).
func (s *Service) Build(ctx context.Context, date string) (Report, error) {
	q := domain.DashboardQuery{
		TimeWindow:  domain.WindowCustom,
		CustomRange: &domain.DateRange{Start: date, End: date},
	}
	d, err := s.dashboards.Build(ctx, q)
	if err != nil {
		return Report{}, fmt.Errorf("дашборд за %s: %w", date, err)
	}

	records := d.DedupedData
	brands := dashboard.AggregateByBrand(records)
	return Report{
		Date:        date,
		KPIs:        d.KPIs,
		TopVideos:   dashboard.TopN(dashboard.ProcessVideos(records), dashboard.VideoByPlays.Key(), s.topN),
		TopAccounts: dashboard.TopN(dashboard.AggregateByAccount(records), dashboard.AccountByTotalViews.Key(), s.topN),
		Brands:      dashboard.TopN(brands, dashboard.BrandByTotalViews.Key(), len(brands)),
	}, nil
}

// SendDaily строит и отправляет отчёт за вчерашний день.
func (s *Service) SendDaily(ctx context.Context) error {
	date := s.Yesterday()
	r, err := s.Build(ctx, date)
	if err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, FormatReport(r)); err != nil {
		return fmt.Errorf("отправка отчёта за %s: %w", date, err)
	}
	metrics.IncReportSent()
	s.log.Info().Str("date", date).Int64("videos", r.KPIs.PublishedVideos).Msg("reporter: отчёт отправлен")
	return nil
}
