package domain

import (
	"context"
	"time"
)

// IngestStatus описывает состояние загрузки выгрузки.
type IngestStatus string

const (
	IngestPending   IngestStatus = "pending"
	IngestProcessed IngestStatus = "processed"
	IngestFailed    IngestStatus = "failed"
)

// IngestRun хранит итоги загрузки одного файла выгрузки.
type IngestRun struct {
	ID          string       `json:"id"`
	SourceFile  string       `json:"source_file"`
	ScrapeDate  string       `json:"scrape_date"`
	Status      IngestStatus `json:"status"`
	RowsIn      int          `json:"rows_in"`
	RowsValid   int          `json:"rows_valid"`
	RowsDropped int          `json:"rows_dropped"`
	RowsDeduped int          `json:"rows_deduped"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IngestJob содержит информацию о задаче загрузки.
type IngestJob struct {
	ID          string    `json:"job_id"`
	Source      string    `json:"source"`
	ScrapeDate  string    `json:"scrape_date,omitempty"`
	Attempt     int       `json:"attempt"`
	RequestedAt time.Time `json:"requested_at"`
}

// IngestQueue описывает очередь задач на загрузку выгрузок.
type IngestQueue interface {
	Enqueue(ctx context.Context, job IngestJob) error
	Receive(ctx context.Context) (IngestJob, AckFunc, error)
}

// AckFunc подтверждает успешную обработку или запрашивает повтор доставки задачи.
type AckFunc func(success bool) error
