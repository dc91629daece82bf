package dashboard

import (
	"errors"
	"sort"
	"strings"

	"video-dashboard/internal/domain"
)

// ErrUnknownSortField возвращается для неизвестного поля сортировки.
var ErrUnknownSortField = errors.New("неизвестное поле сортировки")

// TopN сортирует копию по убыванию ключа и возвращает первые n элементов.
// При равных ключах сохраняется исходный порядок.
func TopN[T any](items []T, key func(T) float64, n int) []T {
	if n <= 0 {
		return []T{}
	}
	sorted := append([]T(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) > key(sorted[j]) })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	if sorted == nil {
		return []T{}
	}
	return sorted
}

// VideoSortField — поле сортировки таблицы видео.
type VideoSortField string

const (
	VideoByPlays          VideoSortField = "plays"
	VideoByLikes          VideoSortField = "likes"
	VideoByComments       VideoSortField = "comments"
	VideoByShares         VideoSortField = "shares"
	VideoBySaves          VideoSortField = "saves"
	VideoByInteractions   VideoSortField = "interactions"
	VideoByEngagementRate VideoSortField = "engagement_rate"
)

var videoKeys = map[VideoSortField]func(domain.ProcessedVideo) float64{
	VideoByPlays:          func(v domain.ProcessedVideo) float64 { return float64(v.Plays) },
	VideoByLikes:          func(v domain.ProcessedVideo) float64 { return float64(v.Likes) },
	VideoByComments:       func(v domain.ProcessedVideo) float64 { return float64(v.Comments) },
	VideoByShares:         func(v domain.ProcessedVideo) float64 { return float64(v.Shares) },
	VideoBySaves:          func(v domain.ProcessedVideo) float64 { return float64(v.Saves) },
	VideoByInteractions:   func(v domain.ProcessedVideo) float64 { return float64(v.Interactions) },
	VideoByEngagementRate: func(v domain.ProcessedVideo) float64 { return v.EngagementRate },
}

// ParseVideoSortField разбирает имя поля, пустое значение означает plays.
func ParseVideoSortField(raw string) (VideoSortField, error) {
	field := VideoSortField(strings.TrimSpace(raw))
	if field == "" {
		return VideoByPlays, nil
	}
	if _, ok := videoKeys[field]; !ok {
		return "", ErrUnknownSortField
	}
	return field, nil
}

// Key возвращает функцию извлечения значения.
func (f VideoSortField) Key() func(domain.ProcessedVideo) float64 {
	if key, ok := videoKeys[f]; ok {
		return key
	}
	return videoKeys[VideoByPlays]
}

// AccountSortField — поле сортировки таблицы аккаунтов.
type AccountSortField string

const (
	AccountByTotalViews        AccountSortField = "total_views"
	AccountByTotalVideos       AccountSortField = "total_videos"
	AccountByTotalLikes        AccountSortField = "total_likes"
	AccountByTotalComments     AccountSortField = "total_comments"
	AccountByTotalShares       AccountSortField = "total_shares"
	AccountByTotalInteractions AccountSortField = "total_interactions"
	AccountByFollowers         AccountSortField = "followers"
	AccountByEngagementRate    AccountSortField = "avg_engagement_rate"
)

var accountKeys = map[AccountSortField]func(domain.AccountAggregate) float64{
	AccountByTotalViews:        func(a domain.AccountAggregate) float64 { return float64(a.TotalViews) },
	AccountByTotalVideos:       func(a domain.AccountAggregate) float64 { return float64(a.TotalVideos) },
	AccountByTotalLikes:        func(a domain.AccountAggregate) float64 { return float64(a.TotalLikes) },
	AccountByTotalComments:     func(a domain.AccountAggregate) float64 { return float64(a.TotalComments) },
	AccountByTotalShares:       func(a domain.AccountAggregate) float64 { return float64(a.TotalShares) },
	AccountByTotalInteractions: func(a domain.AccountAggregate) float64 { return float64(a.TotalInteractions) },
	AccountByFollowers:         func(a domain.AccountAggregate) float64 { return float64(a.Followers) },
	AccountByEngagementRate:    func(a domain.AccountAggregate) float64 { return a.AvgEngagementRate },
}

// ParseAccountSortField разбирает имя поля, пустое значение означает total_views.
func ParseAccountSortField(raw string) (AccountSortField, error) {
	field := AccountSortField(strings.TrimSpace(raw))
	if field == "" {
		return AccountByTotalViews, nil
	}
	if _, ok := accountKeys[field]; !ok {
		return "", ErrUnknownSortField
	}
	return field, nil
}

// Key возвращает функцию извлечения значения.
func (f AccountSortField) Key() func(domain.AccountAggregate) float64 {
	if key, ok := accountKeys[f]; ok {
		return key
	}
	return accountKeys[AccountByTotalViews]
}

// BrandSortField — поле сортировки обзора брендов.
type BrandSortField string

const (
	BrandByTotalViews     BrandSortField = "total_views"
	BrandByAvgViews       BrandSortField = "avg_views"
	BrandByTotalVideos    BrandSortField = "total_videos"
	BrandByActiveAccounts BrandSortField = "active_accounts"
	BrandByEngagementRate BrandSortField = "avg_engagement_rate"
)

var brandKeys = map[BrandSortField]func(domain.BrandAggregate) float64{
	BrandByTotalViews:     func(b domain.BrandAggregate) float64 { return float64(b.TotalViews) },
	BrandByAvgViews:       func(b domain.BrandAggregate) float64 { return b.AvgViews },
	BrandByTotalVideos:    func(b domain.BrandAggregate) float64 { return float64(b.TotalVideos) },
	BrandByActiveAccounts: func(b domain.BrandAggregate) float64 { return float64(b.ActiveAccounts) },
	BrandByEngagementRate: func(b domain.BrandAggregate) float64 { return b.AvgEngagementRate },
}

// ParseBrandSortField разбирает имя поля, пустое значение означает total_views.
func ParseBrandSortField(raw string) (BrandSortField, error) {
	field := BrandSortField(strings.TrimSpace(raw))
	if field == "" {
		return BrandByTotalViews, nil
	}
	if _, ok := brandKeys[field]; !ok {
		return "", ErrUnknownSortField
	}
	return field, nil
}

// Key возвращает функцию извлечения значения.
func (f BrandSortField) Key() func(domain.BrandAggregate) float64 {
	if key, ok := brandKeys[f]; ok {
		return key
	}
	return brandKeys[BrandByTotalViews]
}
