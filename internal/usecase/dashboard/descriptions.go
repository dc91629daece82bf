package dashboard

import (
	"sort"
	"strings"

	"video-dashboard/internal/domain"
)

// DescriptionOptions собирает уникальные описания по отпечатку нормализованного текста.
// Пустые описания не учитываются. Порядок: по частоте убыванию, затем по тексту.
func DescriptionOptions(records []domain.PostRecord) []domain.DescriptionOption {
	byID := make(map[string]*domain.DescriptionOption)
	for _, r := range records {
		if strings.TrimSpace(r.Description) == "" {
			continue
		}
		id := Fingerprint(r.Description)
		opt, ok := byID[id]
		if !ok {
			byID[id] = &domain.DescriptionOption{
				ID:             id,
				Text:           r.Description,
				NormalizedText: Normalize(r.Description),
				Count:          1,
				FirstPosted:    r.DatePosted,
				LastPosted:     r.DatePosted,
			}
			continue
		}
		opt.Count++
		if r.DatePosted < opt.FirstPosted {
			opt.FirstPosted = r.DatePosted
		}
		if r.DatePosted > opt.LastPosted {
			opt.LastPosted = r.DatePosted
		}
	}

	out := make([]domain.DescriptionOption, 0, len(byID))
	for _, opt := range byID {
		out = append(out, *opt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].NormalizedText != out[j].NormalizedText {
			return out[i].NormalizedText < out[j].NormalizedText
		}
		return out[i].ID < out[j].ID
	})
	return out
}
