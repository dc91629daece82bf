package dashboard

import (
	"strings"

	"video-dashboard/internal/domain"
)

// blockedBrands — метки, которые не являются брендами.
var blockedBrands = map[string]struct{}{
	"":         {},
	"PLEASEEE": {},
	"Unknown":  {},
	"0":        {},
	"2":        {},
	"3":        {},
}

// FilterByBrands оставляет записи выбранных брендов. Пустой выбор означает отсутствие ограничения.
func FilterByBrands(records []domain.PostRecord, brands []string) []domain.PostRecord {
	if len(brands) == 0 {
		return records
	}
	allowed := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		allowed[b] = struct{}{}
	}
	out := make([]domain.PostRecord, 0, len(records))
	for _, r := range records {
		if _, ok := allowed[r.Brand]; ok {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDescriptions оставляет записи, совпавшие с выбранными описаниями.
// В режиме exact+AND при двух и более разных описаниях результат всегда пуст.
func FilterByDescriptions(records []domain.PostRecord, filter domain.DescriptionFilter, options []domain.DescriptionOption) []domain.PostRecord {
	if len(filter.SelectedIDs) == 0 {
		return records
	}
	selected := make(map[string]struct{}, len(filter.SelectedIDs))
	for _, id := range filter.SelectedIDs {
		selected[id] = struct{}{}
	}
	texts := make([]string, 0, len(filter.SelectedIDs))
	for _, opt := range options {
		if _, ok := selected[opt.ID]; ok {
			texts = append(texts, opt.NormalizedText)
		}
	}

	match := func(desc, text string) bool { return desc == text }
	if filter.MatchMode == domain.MatchContains {
		match = strings.Contains
	}

	out := make([]domain.PostRecord, 0, len(records))
	for _, r := range records {
		desc := Normalize(r.Description)
		var ok bool
		if filter.CombineMode == domain.CombineAND {
			ok = matchAll(desc, texts, match)
		} else {
			ok = matchAny(desc, texts, match)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func matchAny(desc string, texts []string, match func(string, string) bool) bool {
	for _, text := range texts {
		if match(desc, text) {
			return true
		}
	}
	return false
}

func matchAll(desc string, texts []string, match func(string, string) bool) bool {
	for _, text := range texts {
		if !match(desc, text) {
			return false
		}
	}
	return true
}

// ExcludeBlockedBrands убирает пустые и служебные метки брендов.
func ExcludeBlockedBrands(brands []string) []string {
	out := make([]string, 0, len(brands))
	for _, b := range brands {
		if _, blocked := blockedBrands[strings.TrimSpace(b)]; blocked {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BrandListing возвращает уникальные бренды выборки в порядке появления без служебных меток.
func BrandListing(records []domain.PostRecord) []string {
	seen := make(map[string]struct{})
	brands := make([]string, 0)
	for _, r := range records {
		if r.Brand == "" {
			continue
		}
		if _, ok := seen[r.Brand]; ok {
			continue
		}
		seen[r.Brand] = struct{}{}
		brands = append(brands, r.Brand)
	}
	return ExcludeBlockedBrands(brands)
}

// HideUnknownBrands убирает записи без бренда и с брендом Unknown.
func HideUnknownBrands(records []domain.PostRecord) []domain.PostRecord {
	out := make([]domain.PostRecord, 0, len(records))
	for _, r := range records {
		if brandOrUnknown(strings.TrimSpace(r.Brand)) == domain.UnknownBrand {
			continue
		}
		out = append(out, r)
	}
	return out
}
