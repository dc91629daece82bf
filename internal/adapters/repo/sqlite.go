package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

// sqliteDedupedView — обычное представление, пересчитывается при каждом чтении.
const sqliteDedupedView = "video_performance_deduped"

// SQLite реализует хранилище на локальном файле SQLite.
type SQLite struct {
	db *sql.DB
}

var (
	_ domain.RecordStore = (*SQLite)(nil)
	_ domain.IngestRepo  = (*SQLite)(nil)
)

// NewSQLite создаёт адаптер SQLite.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

const sqliteSelectRecords = `
SELECT id,
       COALESCE(brand, ''), COALESCE(username, ''), COALESCE(followers, 0),
       COALESCE(video_id, ''), video_key, COALESCE(description, ''), COALESCE(url, ''),
       COALESCE(plays, 0), COALESCE(likes, 0), COALESCE(comments, 0), COALESCE(shares, 0), COALESCE(saves, 0),
       substr(date_posted, 1, 10), COALESCE(substr(date_scraped, 1, 10), ''), COALESCE(inserted_at, '')
FROM ` + sqliteDedupedView

// ListRecords реализует domain.RecordStore.
func (s *SQLite) ListRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.PostRecord, error) {
	query, args := sqliteDialect.recordQuery(sqliteSelectRecords, filter)
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	metrics.ObserveNetworkRequest("sqlite", "records_list", sqliteDedupedView, start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.PostRecord, 0)
	for rows.Next() {
		var (
			r          domain.PostRecord
			insertedAt string
		)
		if err := rows.Scan(&r.ID, &r.Brand, &r.Username, &r.Followers, &r.VideoID, &r.VideoKey, &r.Description, &r.URL,
			&r.Plays, &r.Likes, &r.Comments, &r.Shares, &r.Saves, &r.DatePosted, &r.DateScraped, &insertedAt); err != nil {
			return nil, err
		}
		r.InsertedAt = parseSQLiteTime(insertedAt)
		records = append(records, clampCounters(r))
	}
	return records, rows.Err()
}

// CreateIngestRun регистрирует запуск загрузки.
func (s *SQLite) CreateIngestRun(ctx context.Context, run domain.IngestRun) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ingest_runs (id, source_file, scrape_date, status, created_at)
VALUES (?, ?, NULLIF(?, ''), ?, ?)
ON CONFLICT (id) DO UPDATE SET status = excluded.status
`, run.ID, run.SourceFile, run.ScrapeDate, string(run.Status), run.CreatedAt.UTC().Format(time.RFC3339))
	metrics.ObserveNetworkRequest("sqlite", "ingest_runs_insert", ingestRuns, start, err)
	return err
}

// FinishIngestRun сохраняет итоги загрузки.
func (s *SQLite) FinishIngestRun(ctx context.Context, run domain.IngestRun) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
UPDATE ingest_runs
SET status = ?, rows_in = ?, rows_valid = ?, rows_dropped = ?, rows_deduped = ?, error = NULLIF(?, '')
WHERE id = ?
`, string(run.Status), run.RowsIn, run.RowsValid, run.RowsDropped, run.RowsDeduped, run.Error, run.ID)
	metrics.ObserveNetworkRequest("sqlite", "ingest_runs_update", ingestRuns, start, err)
	return err
}

// UpsertRecords сохраняет записи одной транзакцией.
func (s *SQLite) UpsertRecords(ctx context.Context, records []domain.PostRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	start := time.Now()
	saved, err := s.upsertTx(ctx, records)
	metrics.ObserveNetworkRequest("sqlite", "records_upsert", recordsTable, start, err)
	return saved, err
}

func (s *SQLite) upsertTx(ctx context.Context, records []domain.PostRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO video_performance (brand, username, followers, video_id, video_key, description, url,
                               plays, likes, comments, shares, saves, date_posted, date_scraped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''))
ON CONFLICT (video_key, date_scraped) DO UPDATE SET
  brand = excluded.brand, username = excluded.username, followers = excluded.followers,
  description = excluded.description, url = excluded.url, plays = excluded.plays, likes = excluded.likes,
  comments = excluded.comments, shares = excluded.shares, saves = excluded.saves
`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Brand, r.Username, r.Followers, r.VideoID, r.VideoKey, r.Description, r.URL,
			r.Plays, r.Likes, r.Comments, r.Shares, r.Saves, r.DatePosted, r.DateScraped); err != nil {
			return 0, fmt.Errorf("upsert %s (row %d): %w", r.VideoKey, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

// RefreshDeduped ничего не делает: представление SQLite не материализовано.
func (s *SQLite) RefreshDeduped(context.Context) error {
	return nil
}

func parseSQLiteTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
