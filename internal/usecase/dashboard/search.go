package dashboard

import (
	"strings"

	"video-dashboard/internal/domain"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Page — страница результатов поиска.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// SearchVideos ищет подстроку в описании, username и id видео без учёта регистра.
// Результат отсортирован по просмотрам по убыванию.
func SearchVideos(records []domain.PostRecord, query string) []domain.ProcessedVideo {
	q := strings.ToLower(strings.TrimSpace(query))
	matched := make([]domain.PostRecord, 0)
	for _, r := range records {
		if q == "" ||
			strings.Contains(strings.ToLower(r.Description), q) ||
			strings.Contains(strings.ToLower(r.Username), q) ||
			strings.Contains(strings.ToLower(r.VideoID), q) {
			matched = append(matched, r)
		}
	}
	videos := ProcessVideos(matched)
	return TopN(videos, VideoByPlays.Key(), len(videos))
}

// SearchAccounts ищет аккаунты по подстроке username, сортирует по суммарным просмотрам.
func SearchAccounts(records []domain.PostRecord, query string) []domain.AccountAggregate {
	q := strings.ToLower(strings.TrimSpace(query))
	accounts := AggregateByAccount(records)
	matched := make([]domain.AccountAggregate, 0, len(accounts))
	for _, a := range accounts {
		if q == "" || strings.Contains(strings.ToLower(a.Username), q) {
			matched = append(matched, a)
		}
	}
	return TopN(matched, AccountByTotalViews.Key(), len(matched))
}

// Paginate возвращает страницу page (с единицы) размером perPage.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	result := Page[T]{Items: []T{}, Total: len(items), Page: page, PerPage: perPage}
	from := (page - 1) * perPage
	if from >= len(items) {
		return result
	}
	to := from + perPage
	if to > len(items) {
		to = len(items)
	}
	result.Items = append(result.Items, items[from:to]...)
	return result
}
