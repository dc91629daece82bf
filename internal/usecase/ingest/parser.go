package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"video-dashboard/internal/domain"
)

// ErrEmptySource возвращается для выгрузки без заголовка.
var ErrEmptySource = errors.New("пустая выгрузка")

// ErrMissingColumn возвращается, если в заголовке нет обязательной колонки.
var ErrMissingColumn = errors.New("нет обязательной колонки")

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

var requiredColumns = []string{"video_key", "date_posted"}

// ParseResult — итог разбора выгрузки.
type ParseResult struct {
	Records []domain.PostRecord
	RowsIn  int
	Dropped int
}

// Parse читает CSV с заголовком. Строки с отрицательными или нечисловыми счётчиками,
// без video_key или с нераспознанной date_posted отбрасываются.
func Parse(r io.Reader, scrapeDate string) (ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ParseResult{}, ErrEmptySource
	}
	if err != nil {
		return ParseResult{}, fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return ParseResult{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var result ParseResult
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.RowsIn++
				result.Dropped++
				continue
			}
			return result, fmt.Errorf("read row: %w", err)
		}
		if blankRow(row) {
			continue
		}
		result.RowsIn++
		rec, ok := parseRow(cols, row, scrapeDate)
		if !ok {
			result.Dropped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(cols map[string]int, row []string, scrapeDate string) (domain.PostRecord, bool) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := domain.PostRecord{
		Brand:       field("brand"),
		Username:    strings.TrimPrefix(field("username"), "@"),
		VideoID:     field("video_id"),
		VideoKey:    field("video_key"),
		Description: field("description"),
		URL:         field("url"),
	}
	if rec.VideoKey == "" {
		return domain.PostRecord{}, false
	}

	posted, ok := normalizeDate(field("date_posted"))
	if !ok {
		return domain.PostRecord{}, false
	}
	rec.DatePosted = posted

	rec.DateScraped = scrapeDate
	if raw := field("date_scraped"); raw != "" {
		scraped, ok := normalizeDate(raw)
		if !ok {
			return domain.PostRecord{}, false
		}
		rec.DateScraped = scraped
	}

	counters := []struct {
		name string
		dst  *int64
	}{
		{"followers", &rec.Followers},
		{"plays", &rec.Plays},
		{"likes", &rec.Likes},
		{"comments", &rec.Comments},
		{"shares", &rec.Shares},
		{"saves", &rec.Saves},
	}
	for _, c := range counters {
		v, ok := parseCounter(field(c.name))
		if !ok {
			return domain.PostRecord{}, false
		}
		*c.dst = v
	}
	return rec, true
}

// parseCounter разбирает неотрицательное целое. Пустое значение означает 0.
func parseCounter(raw string) (int64, bool) {
	raw = strings.NewReplacer(",", "", "_", "", " ", "").Replace(raw)
	if raw == "" {
		return 0, true
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, v >= 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

func normalizeDate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout), true
		}
	}
	return "", false
}

// Dedupe оставляет по одной записи на video_key с самой поздней date_scraped.
// При равных датах побеждает последняя строка. Порядок первых появлений сохраняется.
func Dedupe(records []domain.PostRecord) ([]domain.PostRecord, int) {
	index := make(map[string]int, len(records))
	out := make([]domain.PostRecord, 0, len(records))
	for _, r := range records {
		i, seen := index[r.VideoKey]
		if !seen {
			index[r.VideoKey] = len(out)
			out = append(out, r)
			continue
		}
		if r.DateScraped >= out[i].DateScraped {
			out[i] = r
		}
	}
	return out, len(records) - len(out)
}
