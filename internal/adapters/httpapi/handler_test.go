package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/usecase/dashboard"
)

type stubStore struct {
	records []domain.PostRecord
	err     error
	filters []domain.RecordFilter
}

func (s *stubStore) ListRecords(_ context.Context, filter domain.RecordFilter) ([]domain.PostRecord, error) {
	s.filters = append(s.filters, filter)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubQueue struct {
	jobs []domain.IngestJob
	err  error
}

func (q *stubQueue) Enqueue(_ context.Context, job domain.IngestJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) Receive(context.Context) (domain.IngestJob, domain.AckFunc, error) {
	return domain.IngestJob{}, nil, errors.New("not implemented")
}

func testRecords() []domain.PostRecord {
	return []domain.PostRecord{
		{ID: 1, Brand: "Café Olé", Username: "alice", VideoID: "v1", VideoKey: "k1", Description: "Promo", Plays: 1000, Likes: 100, DatePosted: "2024-01-20"},
		{ID: 2, Brand: "Acme", Username: "bob", VideoID: "v2", VideoKey: "k2", Description: "Launch", Plays: 400, Likes: 4, DatePosted: "2024-01-21"},
		{ID: 3, Brand: "", Username: "carol", VideoID: "v3", VideoKey: "k3", Description: "Launch", Plays: 50, DatePosted: "2024-01-22"},
	}
}

func newTestRouter(store *stubStore, queue domain.IngestQueue) chi.Router {
	clock := func() time.Time { return time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC) }
	svc := dashboard.NewService(store, dashboard.WithClock(clock))
	r := chi.NewRouter()
	NewHandler(svc, queue, zerolog.Nop()).Register(r)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetDashboard(t *testing.T) {
	store := &stubStore{records: testRecords()}
	rec := doRequest(t, newTestRouter(store, nil), http.MethodGet, "/api/v1/dashboard?timeWindow=last7&hideUnknown=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d: %s", rec.Code, rec.Body.String())
	}
	var d domain.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if d.KPIs.PublishedVideos != 2 {
		t.Fatalf("ожидали 2 видео без Unknown, получили %d", d.KPIs.PublishedVideos)
	}
	if len(store.filters) != 1 || store.filters[0].Since != "2024-01-24" {
		t.Fatalf("неверная граница периода: %+v", store.filters)
	}
}

func TestGetDashboardUnknownWindowReturnsAllRows(t *testing.T) {
	store := &stubStore{records: testRecords()}
	rec := doRequest(t, newTestRouter(store, nil), http.MethodGet, "/api/v1/dashboard?timeWindow=lastweek", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.filters) != 1 || store.filters[0].Since != "" || store.filters[0].Until != "" {
		t.Fatalf("неизвестный период не должен ограничивать выборку: %+v", store.filters)
	}
	var d domain.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if d.KPIs.PublishedVideos != 3 {
		t.Fatalf("ожидали все 3 видео, получили %d", d.KPIs.PublishedVideos)
	}
}

func TestGetDashboardBadParams(t *testing.T) {
	cases := []string{
		"/api/v1/dashboard?timeWindow=custom&start=2024-02-01&end=2024-01-01",
		"/api/v1/dashboard?start=01.02.2024",
		"/api/v1/dashboard?match=fuzzy",
		"/api/v1/videos/top?sort=views_per_second",
		"/api/v1/videos/top?limit=abc",
		"/api/v1/search?mode=brands",
	}
	r := newTestRouter(&stubStore{records: testRecords()}, nil)
	for _, target := range cases {
		rec := doRequest(t, r, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: ожидали 400, получили %d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("%s: ожидали поле error: %s", target, rec.Body.String())
		}
	}
}

func TestStoreFailureIs500(t *testing.T) {
	r := newTestRouter(&stubStore{err: errors.New("connection refused")}, nil)
	rec := doRequest(t, r, http.MethodGet, "/api/v1/dashboard", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("ожидали 500, получили %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("ожидали текст ошибки хранилища: %s", rec.Body.String())
	}
}

func TestTopVideosDefaultLimitAndSort(t *testing.T) {
	r := newTestRouter(&stubStore{records: testRecords()}, nil)
	rec := doRequest(t, r, http.MethodGet, "/api/v1/videos/top?timeWindow=alltime&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	var videos []domain.ProcessedVideo
	if err := json.Unmarshal(rec.Body.Bytes(), &videos); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if len(videos) != 2 || videos[0].VideoID != "v1" || videos[1].VideoID != "v2" {
		t.Fatalf("неверный топ: %+v", videos)
	}
}

func TestBrandsOverviewIncludesUnknown(t *testing.T) {
	r := newTestRouter(&stubStore{records: testRecords()}, nil)
	rec := doRequest(t, r, http.MethodGet, "/api/v1/brands/overview?timeWindow=alltime", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	var brands []domain.BrandAggregate
	if err := json.Unmarshal(rec.Body.Bytes(), &brands); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if len(brands) != 3 || brands[0].Brand != "Café Olé" {
		t.Fatalf("неверный обзор брендов: %+v", brands)
	}
}

func TestBrandDashboardBySlug(t *testing.T) {
	r := newTestRouter(&stubStore{records: testRecords()}, nil)
	rec := doRequest(t, r, http.MethodGet, "/api/v1/brands/cafe-ole/dashboard?timeWindow=alltime", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d: %s", rec.Code, rec.Body.String())
	}
	var d domain.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if d.KPIs.PublishedVideos != 1 || d.KPIs.TotalViews != 1000 {
		t.Fatalf("ожидали только записи бренда: %+v", d.KPIs)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/v1/brands/nope/dashboard?timeWindow=alltime", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ожидали 404, получили %d", rec.Code)
	}
}

func TestSearchAccountsPaginates(t *testing.T) {
	r := newTestRouter(&stubStore{records: testRecords()}, nil)
	rec := doRequest(t, r, http.MethodGet, "/api/v1/search?timeWindow=alltime&mode=accounts&q=O&perPage=1&page=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
	var page dashboard.Page[domain.AccountAggregate]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	// bob (400) и carol (50) содержат "o"
	if page.Total != 2 || len(page.Items) != 1 || page.Items[0].Username != "carol" {
		t.Fatalf("неверная страница: %+v", page)
	}
}

func TestPostIngest(t *testing.T) {
	queue := &stubQueue{}
	r := newTestRouter(&stubStore{}, queue)

	rec := doRequest(t, r, http.MethodPost, "/api/v1/ingest", `{"source":"s3://exports/day.csv","scrape_date":"2024-01-30"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("ожидали 202, получили %d: %s", rec.Code, rec.Body.String())
	}
	if len(queue.jobs) != 1 || queue.jobs[0].Source != "s3://exports/day.csv" {
		t.Fatalf("задача не поставлена: %+v", queue.jobs)
	}
	if !strings.Contains(rec.Body.String(), queue.jobs[0].ID) {
		t.Fatalf("ответ должен содержать job_id")
	}

	for _, body := range []string{`{`, `{"source":""}`, `{"source":"a.csv","scrape_date":"30.01.2024"}`} {
		rec = doRequest(t, r, http.MethodPost, "/api/v1/ingest", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: ожидали 400, получили %d", body, rec.Code)
		}
	}
}

func TestPostIngestWithoutQueue(t *testing.T) {
	r := newTestRouter(&stubStore{}, nil)
	rec := doRequest(t, r, http.MethodPost, "/api/v1/ingest", `{"source":"a.csv"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ожидали 503, получили %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, newTestRouter(&stubStore{}, nil), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("неверный ответ healthz: %d %s", rec.Code, rec.Body.String())
	}
}
