package dashboard

import "video-dashboard/internal/domain"

// Derive вычисляет взаимодействия и вовлечённость записи.
func Derive(r domain.PostRecord) domain.DerivedMetrics {
	interactions := Interactions(r)
	return domain.DerivedMetrics{
		Interactions:   interactions,
		EngagementRate: EngagementRate(interactions, r.Plays),
	}
}

// Interactions суммирует лайки, комментарии, репосты и сохранения.
func Interactions(r domain.PostRecord) int64 {
	return r.Likes + r.Comments + r.Shares + r.Saves
}

// EngagementRate возвращает interactions/views или 0 при отсутствии просмотров.
func EngagementRate(interactions, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(interactions) / float64(views)
}

// ProcessVideos дополняет записи производными метриками.
func ProcessVideos(records []domain.PostRecord) []domain.ProcessedVideo {
	out := make([]domain.ProcessedVideo, 0, len(records))
	for _, r := range records {
		out = append(out, domain.ProcessedVideo{PostRecord: r, DerivedMetrics: Derive(r)})
	}
	return out
}

func ratio(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
