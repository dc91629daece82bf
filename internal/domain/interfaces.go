package domain

import (
	"context"
	"io"
	"time"
)

// RecordStore читает записи о видео из хранилища.
type RecordStore interface {
	ListRecords(ctx context.Context, filter RecordFilter) ([]PostRecord, error)
}

// IngestRepo сохраняет загруженные записи и историю загрузок.
type IngestRepo interface {
	CreateIngestRun(ctx context.Context, run IngestRun) error
	FinishIngestRun(ctx context.Context, run IngestRun) error
	UpsertRecords(ctx context.Context, records []PostRecord) (int, error)
	// RefreshDeduped обновляет представление, из которого читает дашборд.
	RefreshDeduped(ctx context.Context) error
}

// SourceFetcher открывает файл выгрузки по его адресу.
type SourceFetcher interface {
	Open(ctx context.Context, source string) (io.ReadCloser, error)
}

// Notifier доставляет текстовые отчёты.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Cache используется для идемпотентных блокировок с TTL.
type Cache interface {
	Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error)
}
