package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/usecase/dashboard"
	"video-dashboard/internal/usecase/ingest"
)

const maxIngestBody = 1 << 16

// DashboardService — операции дашборда, доступные через API.
type DashboardService interface {
	Build(ctx context.Context, q domain.DashboardQuery) (domain.Dashboard, error)
	BrandDashboard(ctx context.Context, slug string, q domain.DashboardQuery) (domain.Dashboard, error)
	TopVideos(ctx context.Context, q domain.DashboardQuery, field dashboard.VideoSortField, n int) ([]domain.ProcessedVideo, error)
	TopAccounts(ctx context.Context, q domain.DashboardQuery, field dashboard.AccountSortField, n int) ([]domain.AccountAggregate, error)
	TopBrands(ctx context.Context, q domain.DashboardQuery, field dashboard.BrandSortField) ([]domain.BrandAggregate, error)
	BestAccounts(ctx context.Context, q domain.DashboardQuery, n int) ([]domain.BestPerformingAccount, error)
	SearchVideos(ctx context.Context, q domain.DashboardQuery, text string, page, perPage int) (dashboard.Page[domain.ProcessedVideo], error)
	SearchAccounts(ctx context.Context, q domain.DashboardQuery, text string, page, perPage int) (dashboard.Page[domain.AccountAggregate], error)
}

var _ DashboardService = (*dashboard.Service)(nil)

// Handler обслуживает HTTP API дашборда.
type Handler struct {
	dashboards DashboardService
	queue      domain.IngestQueue
	log        zerolog.Logger
	now        func() time.Time
}

// NewHandler создаёт обработчик. queue может быть nil, тогда загрузка через API недоступна.
func NewHandler(dashboards DashboardService, queue domain.IngestQueue, logger zerolog.Logger) *Handler {
	return &Handler{dashboards: dashboards, queue: queue, log: logger, now: time.Now}
}

// Register подключает маршруты к роутеру.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/dashboard", h.getDashboard)
		api.Get("/videos/top", h.getTopVideos)
		api.Get("/accounts/top", h.getTopAccounts)
		api.Get("/accounts/best", h.getBestAccounts)
		api.Get("/brands/overview", h.getBrandsOverview)
		api.Get("/brands/{slug}/dashboard", h.getBrandDashboard)
		api.Get("/search", h.getSearch)
		api.Post("/ingest", h.postIngest)
	})
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseDashboardQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.dashboards.Build(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getBrandDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseDashboardQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.dashboards.BrandDashboard(r.Context(), chi.URLParam(r, "slug"), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getTopVideos(w http.ResponseWriter, r *http.Request) {
	q, top, err := parseQueryAndTop(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	field, err := dashboard.ParseVideoSortField(top.Sort)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	videos, err := h.dashboards.TopVideos(r.Context(), q, field, top.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

func (h *Handler) getTopAccounts(w http.ResponseWriter, r *http.Request) {
	q, top, err := parseQueryAndTop(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	field, err := dashboard.ParseAccountSortField(top.Sort)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accounts, err := h.dashboards.TopAccounts(r.Context(), q, field, top.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) getBestAccounts(w http.ResponseWriter, r *http.Request) {
	q, top, err := parseQueryAndTop(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	accounts, err := h.dashboards.BestAccounts(r.Context(), q, top.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) getBrandsOverview(w http.ResponseWriter, r *http.Request) {
	q, top, err := parseQueryAndTop(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	field, err := dashboard.ParseBrandSortField(top.Sort)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	brands, err := h.dashboards.TopBrands(r.Context(), q, field)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *Handler) getSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q, err := parseDashboardQuery(values)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := parseSearchParams(values)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if p.Mode == "accounts" {
		page, err := h.dashboards.SearchAccounts(r.Context(), q, p.Query, p.Page, p.PerPage)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}
	page, err := h.dashboards.SearchVideos(r.Context(), q, p.Query, p.Page, p.PerPage)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) postIngest(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "очередь загрузок не настроена")
		return
	}
	defer r.Body.Close()
	var req ingestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateDTO(req); err != nil {
		h.fail(w, r, err)
		return
	}
	job, err := ingest.NewJob(req.Source, req.ScrapeDate, h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info().Str("job_id", job.ID).Str("source", job.Source).Msg("api: загрузка поставлена в очередь")
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func parseQueryAndTop(r *http.Request) (domain.DashboardQuery, topParams, error) {
	values := r.URL.Query()
	q, err := parseDashboardQuery(values)
	if err != nil {
		return domain.DashboardQuery{}, topParams{}, err
	}
	top, err := parseTopParams(values)
	if err != nil {
		return domain.DashboardQuery{}, topParams{}, err
	}
	return q, top, nil
}

// fail выбирает HTTP статус по ошибке.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, dashboard.ErrInvalidRange),
		errors.Is(err, dashboard.ErrUnknownSortField),
		errors.Is(err, ingest.ErrInvalidJob):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dashboard.ErrBrandNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("api: ошибка обработки запроса")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
