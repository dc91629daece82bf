package domain

import "time"

// UnknownBrand подставляется вместо пустого бренда при группировке.
const UnknownBrand = "Unknown"

// PostRecord описывает одно опубликованное видео со счётчиками вовлечённости.
// Счётчики никогда не бывают nil: отсутствующие значения приводятся к нулю на границе хранилища.
type PostRecord struct {
	ID          int64     `json:"id"`
	Brand       string    `json:"brand"`
	Username    string    `json:"username"`
	Followers   int64     `json:"followers"`
	VideoID     string    `json:"video_id"`
	VideoKey    string    `json:"video_key"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Plays       int64     `json:"plays"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Shares      int64     `json:"shares"`
	Saves       int64     `json:"saves"`
	DatePosted  string    `json:"date_posted"`
	DateScraped string    `json:"date_scraped"`
	InsertedAt  time.Time `json:"inserted_at"`
}

// DerivedMetrics содержит вычисляемые метрики записи.
type DerivedMetrics struct {
	Interactions   int64   `json:"interactions"`
	EngagementRate float64 `json:"engagement_rate"`
}

// ProcessedVideo — запись вместе с производными метриками.
type ProcessedVideo struct {
	PostRecord
	DerivedMetrics
}

// DailyMetrics агрегирует записи за один календарный день.
type DailyMetrics struct {
	Date           string  `json:"date"`
	Plays          int64   `json:"plays"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	Saves          int64   `json:"saves"`
	Interactions   int64   `json:"interactions"`
	EngagementRate float64 `json:"engagementRate"`
}

// AccountAggregate агрегирует записи одного аккаунта.
type AccountAggregate struct {
	Username          string   `json:"username"`
	Brands            []string `json:"brands"`
	Followers         int64    `json:"followers"`
	TotalVideos       int64    `json:"total_videos"`
	TotalViews        int64    `json:"total_views"`
	TotalLikes        int64    `json:"total_likes"`
	TotalComments     int64    `json:"total_comments"`
	TotalShares       int64    `json:"total_shares"`
	TotalSaves        int64    `json:"total_saves"`
	TotalInteractions int64    `json:"total_interactions"`
	AvgEngagementRate float64  `json:"avg_engagement_rate"`
}

// BrandAggregate агрегирует записи одного бренда.
type BrandAggregate struct {
	Brand             string  `json:"brand"`
	TotalVideos       int64   `json:"total_videos"`
	TotalViews        int64   `json:"total_views"`
	TotalLikes        int64   `json:"total_likes"`
	TotalComments     int64   `json:"total_comments"`
	TotalShares       int64   `json:"total_shares"`
	TotalSaves        int64   `json:"total_saves"`
	TotalInteractions int64   `json:"total_interactions"`
	ActiveAccounts    int64   `json:"active_accounts"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	AvgViews          float64 `json:"avg_views"`
}

// BestPerformingAccount описывает аккаунт в рейтинге по средним просмотрам.
type BestPerformingAccount struct {
	Username      string   `json:"username"`
	Brands        []string `json:"brands"`
	Followers     int64    `json:"followers"`
	TotalVideos   int64    `json:"total_videos"`
	TotalViews    int64    `json:"total_views"`
	AvgViews      float64  `json:"avg_views"`
	MinViews      int64    `json:"min_views"`
	MaxViews      int64    `json:"max_views"`
	DaysWithPosts int64    `json:"days_with_posts"`
}

// DescriptionOption — уникальное нормализованное описание видео.
type DescriptionOption struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	NormalizedText string `json:"normalizedText"`
	Count          int64  `json:"count"`
	FirstPosted    string `json:"firstPosted"`
	LastPosted     string `json:"lastPosted"`
}

// KPISummary — сводка по всей отфильтрованной выборке.
type KPISummary struct {
	PublishedVideos            int64   `json:"publishedVideos"`
	ActiveAccounts             int64   `json:"activeAccounts"`
	TotalViews                 int64   `json:"totalViews"`
	TotalLikes                 int64   `json:"totalLikes"`
	TotalComments              int64   `json:"totalComments"`
	TotalShares                int64   `json:"totalShares"`
	TotalBookmarks             int64   `json:"totalBookmarks"`
	TotalInteractions          int64   `json:"totalInteractions"`
	EngagementRate             float64 `json:"engagementRate"`
	VideosWithZeroViews        int64   `json:"videosWithZeroViews"`
	VideosWithZeroViewsPercent float64 `json:"videosWithZeroViewsPercent"`
	AvgViews                   float64 `json:"avgViews"`
}

// Dashboard — ответ дашборда на один запрос.
type Dashboard struct {
	KPIs               KPISummary          `json:"kpis"`
	DailyMetrics       []DailyMetrics      `json:"dailyMetrics"`
	DedupedData        []PostRecord        `json:"dedupedData"`
	TotalDaysAvailable int                 `json:"totalDaysAvailable"`
	Brands             []string            `json:"brands"`
	DescriptionOptions []DescriptionOption `json:"descriptionOptions"`
}
