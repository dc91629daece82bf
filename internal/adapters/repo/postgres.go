package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

const (
	dedupedView     = "mv_video_performance_deduped"
	recordsTable    = "video_performance"
	ingestRuns      = "ingest_runs"
	upsertBatchSize = 500
	queryTimeout    = 5 * time.Second
	refreshTimeout  = 2 * time.Minute
)

// Postgres реализует хранилище записей и загрузок на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.RecordStore = (*Postgres)(nil)
	_ domain.IngestRepo  = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

const selectRecords = `
SELECT id,
       COALESCE(brand, ''), COALESCE(username, ''), COALESCE(followers, 0),
       COALESCE(video_id, ''), video_key, COALESCE(description, ''), COALESCE(url, ''),
       COALESCE(plays, 0), COALESCE(likes, 0), COALESCE(comments, 0), COALESCE(shares, 0), COALESCE(saves, 0),
       to_char(date_posted, 'YYYY-MM-DD'), COALESCE(to_char(date_scraped, 'YYYY-MM-DD'), ''),
       COALESCE(inserted_at, now())
FROM ` + dedupedView

// ListRecords реализует domain.RecordStore.
func (p *Postgres) ListRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.PostRecord, error) {
	ctx, cancel := p.connCtx(ctx, queryTimeout)
	defer cancel()

	query, args := postgresDialect.recordQuery(selectRecords, filter)
	start := time.Now()
	rows, err := p.pool.Query(ctx, query, args...)
	metrics.ObserveNetworkRequest("postgres", "records_list", dedupedView, start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.PostRecord, 0)
	for rows.Next() {
		var r domain.PostRecord
		if err := rows.Scan(&r.ID, &r.Brand, &r.Username, &r.Followers, &r.VideoID, &r.VideoKey, &r.Description, &r.URL,
			&r.Plays, &r.Likes, &r.Comments, &r.Shares, &r.Saves, &r.DatePosted, &r.DateScraped, &r.InsertedAt); err != nil {
			return nil, err
		}
		records = append(records, clampCounters(r))
	}
	return records, rows.Err()
}

// CreateIngestRun регистрирует запуск загрузки.
func (p *Postgres) CreateIngestRun(ctx context.Context, run domain.IngestRun) error {
	ctx, cancel := p.connCtx(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO ingest_runs (id, source_file, scrape_date, status, created_at)
VALUES ($1, $2, NULLIF($3, '')::date, $4, $5)
ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
`, run.ID, run.SourceFile, run.ScrapeDate, string(run.Status), run.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "ingest_runs_insert", ingestRuns, start, err)
	return err
}

// FinishIngestRun сохраняет итоги загрузки.
func (p *Postgres) FinishIngestRun(ctx context.Context, run domain.IngestRun) error {
	ctx, cancel := p.connCtx(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE ingest_runs
SET status = $2, rows_in = $3, rows_valid = $4, rows_dropped = $5, rows_deduped = $6, error = NULLIF($7, '')
WHERE id = $1
`, run.ID, string(run.Status), run.RowsIn, run.RowsValid, run.RowsDropped, run.RowsDeduped, run.Error)
	metrics.ObserveNetworkRequest("postgres", "ingest_runs_update", ingestRuns, start, err)
	return err
}

// UpsertRecords сохраняет записи батчами по video_key.
func (p *Postgres) UpsertRecords(ctx context.Context, records []domain.PostRecord) (int, error) {
	saved := 0
	for from := 0; from < len(records); from += upsertBatchSize {
		to := from + upsertBatchSize
		if to > len(records) {
			to = len(records)
		}
		n, err := p.upsertChunk(ctx, records[from:to])
		saved += n
		if err != nil {
			return saved, err
		}
	}
	return saved, nil
}

func (p *Postgres) upsertChunk(ctx context.Context, records []domain.PostRecord) (int, error) {
	ctx, cancel := p.connCtx(ctx, queryTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
INSERT INTO video_performance (brand, username, followers, video_id, video_key, description, url,
                               plays, likes, comments, shares, saves, date_posted, date_scraped)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::date, NULLIF($14, '')::date)
ON CONFLICT (video_key, date_scraped) DO UPDATE SET
  brand = EXCLUDED.brand, username = EXCLUDED.username, followers = EXCLUDED.followers,
  description = EXCLUDED.description, url = EXCLUDED.url, plays = EXCLUDED.plays, likes = EXCLUDED.likes,
  comments = EXCLUDED.comments, shares = EXCLUDED.shares, saves = EXCLUDED.saves
`, r.Brand, r.Username, r.Followers, r.VideoID, r.VideoKey, r.Description, r.URL,
			r.Plays, r.Likes, r.Comments, r.Shares, r.Saves, r.DatePosted, r.DateScraped)
	}
	start := time.Now()
	saved, err := execBatch(p.pool.SendBatch(ctx, batch), len(records))
	metrics.ObserveNetworkRequest("postgres", "records_upsert_batch", recordsTable, start, err)
	return saved, err
}

// execBatch читает результаты n запросов пакета и закрывает его.
func execBatch(br pgx.BatchResults, n int) (int, error) {
	saved := 0
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return saved, err
		}
		saved++
	}
	return saved, br.Close()
}

// RefreshDeduped перестраивает материализованное представление дашборда.
func (p *Postgres) RefreshDeduped(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx, refreshTimeout)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, "REFRESH MATERIALIZED VIEW "+dedupedView)
	metrics.ObserveNetworkRequest("postgres", "refresh_view", dedupedView, start, err)
	return err
}

// clampCounters приводит отрицательные счётчики к нулю.
func clampCounters(r domain.PostRecord) domain.PostRecord {
	for _, v := range []*int64{&r.Followers, &r.Plays, &r.Likes, &r.Comments, &r.Shares, &r.Saves} {
		if *v < 0 {
			*v = 0
		}
	}
	return r
}
