package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

// ErrBrandNotFound возвращается, если slug не соответствует ни одному бренду выборки.
var ErrBrandNotFound = errors.New("бренд не найден")

// DefaultTopN — размер топа по умолчанию.
const DefaultTopN = 5

// Service строит представления дашборда по одной выборке из хранилища.
type Service struct {
	store domain.RecordStore
	log   zerolog.Logger
	now   func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт логгер сервиса.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService создаёт сервис дашборда.
func NewService(store domain.RecordStore, opts ...Option) *Service {
	s := &Service{store: store, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type selection struct {
	window   domain.DateRange
	records  []domain.PostRecord
	options  []domain.DescriptionOption
	filtered []domain.PostRecord
}

// Build собирает полный ответ дашборда.
func (s *Service) Build(ctx context.Context, q domain.DashboardQuery) (domain.Dashboard, error) {
	start := time.Now()
	sel, err := s.load(ctx, q)
	if err != nil {
		return domain.Dashboard{}, err
	}
	result := assemble(sel)
	metrics.ObserveDashboard(string(q.TimeWindow), start)
	s.log.Debug().
		Str("window", string(q.TimeWindow)).
		Str("since", sel.window.Start).
		Int("records", len(sel.records)).
		Int("filtered", len(sel.filtered)).
		Msg("dashboard: built")
	return result, nil
}

// BrandDashboard строит дашборд по бренду, найденному по slug.
// Выбор брендов из запроса игнорируется.
func (s *Service) BrandDashboard(ctx context.Context, slug string, q domain.DashboardQuery) (domain.Dashboard, error) {
	start := time.Now()
	q.Brands = nil
	sel, err := s.load(ctx, q)
	if err != nil {
		return domain.Dashboard{}, err
	}
	brand, ok := BrandFromSlug(slug, BrandListing(sel.records))
	if !ok {
		return domain.Dashboard{}, fmt.Errorf("%s: %w", slug, ErrBrandNotFound)
	}
	sel.records = FilterByBrands(sel.records, []string{brand})
	sel.options = DescriptionOptions(sel.records)
	sel.filtered = FilterByDescriptions(sel.records, q.Descriptions, sel.options)
	result := assemble(sel)
	metrics.ObserveDashboard(string(q.TimeWindow), start)
	return result, nil
}

// TopVideos возвращает n лучших видео по полю.
func (s *Service) TopVideos(ctx context.Context, q domain.DashboardQuery, field VideoSortField, n int) ([]domain.ProcessedVideo, error) {
	sel, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return TopN(ProcessVideos(sel.filtered), field.Key(), n), nil
}

// TopAccounts возвращает n лучших аккаунтов по полю.
func (s *Service) TopAccounts(ctx context.Context, q domain.DashboardQuery, field AccountSortField, n int) ([]domain.AccountAggregate, error) {
	sel, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return TopN(AggregateByAccount(sel.filtered), field.Key(), n), nil
}

// TopBrands возвращает обзор брендов, отсортированный по полю.
// Бренды периода, не прошедшие фильтр описаний, и выбранные бренды без записей
// попадают в обзор с нулями.
func (s *Service) TopBrands(ctx context.Context, q domain.DashboardQuery, field BrandSortField) ([]domain.BrandAggregate, error) {
	sel, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	inRange := append(BrandListing(sel.records), ExcludeBlockedBrands(q.Brands)...)
	aggs := CompleteBrands(AggregateByBrand(sel.filtered), inRange)
	return TopN(aggs, field.Key(), len(aggs)), nil
}

// BestAccounts возвращает n аккаунтов с наибольшими средними просмотрами.
func (s *Service) BestAccounts(ctx context.Context, q domain.DashboardQuery, n int) ([]domain.BestPerformingAccount, error) {
	sel, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	best := BestPerformingAccounts(sel.filtered, MinBestAccountViews)
	if n >= 0 && n < len(best) {
		best = best[:n]
	}
	return best, nil
}

// SearchVideos ищет видео в выборке и возвращает страницу результатов.
func (s *Service) SearchVideos(ctx context.Context, q domain.DashboardQuery, text string, page, perPage int) (Page[domain.ProcessedVideo], error) {
	sel, err := s.load(ctx, q)
	if err != nil {
		return Page[domain.ProcessedVideo]{}, err
	}
	return Paginate(SearchVideos(sel.filtered, text), page, perPage), nil
}

// SearchAccounts ищет аккаунты в выборке и возвращает страницу результатов.
func (s *Service) SearchAccounts(ctx context.Context, q domain.DashboardQuery, text string, page, perPage int) (Page[domain.AccountAggregate], error) {
	sel, err := s.load(ctx, q)
	if err != nil {
		return Page[domain.AccountAggregate]{}, err
	}
	return Paginate(SearchAccounts(sel.filtered, text), page, perPage), nil
}

// load выполняет единственное чтение из хранилища и применяет фильтры запроса.
func (s *Service) load(ctx context.Context, q domain.DashboardQuery) (selection, error) {
	window, err := ResolveWindow(q.TimeWindow, s.now(), q.CustomRange)
	if err != nil {
		return selection{}, err
	}
	filter := domain.RecordFilter{Since: window.Start, Until: window.End, Brands: q.Brands}
	records, err := s.store.ListRecords(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Str("window", string(q.TimeWindow)).Msg("dashboard: list records failed")
		return selection{}, fmt.Errorf("чтение записей: %w", err)
	}
	records = FilterByBrands(records, q.Brands)
	if q.HideUnknown {
		records = HideUnknownBrands(records)
	}
	options := DescriptionOptions(records)
	return selection{
		window:   window,
		records:  records,
		options:  options,
		filtered: FilterByDescriptions(records, q.Descriptions, options),
	}, nil
}

func assemble(sel selection) domain.Dashboard {
	daily := DailyMetrics(sel.filtered)
	deduped := sel.filtered
	if deduped == nil {
		deduped = []domain.PostRecord{}
	}
	return domain.Dashboard{
		KPIs:               Summarize(sel.filtered),
		DailyMetrics:       daily,
		DedupedData:        deduped,
		TotalDaysAvailable: len(daily),
		Brands:             BrandListing(sel.records),
		DescriptionOptions: sel.options,
	}
}
