package report

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"video-dashboard/internal/domain"
)

var printer = message.NewPrinter(language.Russian)

// FormatReport готовит HTML-текст ежедневного отчёта для Telegram.
func FormatReport(r Report) string {
	var sections []string

	sections = append(sections, fmt.Sprintf("📊 <b>Отчёт за %s</b>", escapeHTML(r.Date)))
	if r.KPIs.PublishedVideos == 0 {
		sections = append(sections, "За этот день публикаций нет.")
		return strings.Join(sections, "\n\n")
	}

	sections = append(sections, buildKPISection(r.KPIs))
	if videos := buildVideosSection(r.TopVideos); videos != "" {
		sections = append(sections, videos)
	}
	if accounts := buildAccountsSection(r.TopAccounts); accounts != "" {
		sections = append(sections, accounts)
	}
	if brands := buildBrandsSection(r.Brands); brands != "" {
		sections = append(sections, brands)
	}

	return strings.TrimSpace(strings.Join(sections, "\n\n"))
}

func buildKPISection(k domain.KPISummary) string {
	var b strings.Builder
	b.WriteString("📈 <b>Показатели</b>\n")
	b.WriteString("Видео: " + formatCount(k.PublishedVideos) + "\n")
	b.WriteString("Активных аккаунтов: " + formatCount(k.ActiveAccounts) + "\n")
	b.WriteString("Просмотры: " + formatCount(k.TotalViews) + "\n")
	b.WriteString("Взаимодействия: " + formatCount(k.TotalInteractions) + "\n")
	b.WriteString("Вовлечённость: " + formatPercent(k.EngagementRate) + "\n")
	b.WriteString(fmt.Sprintf("Без просмотров: %s (%s)", formatCount(k.VideosWithZeroViews), formatPercent(k.VideosWithZeroViewsPercent)))
	return b.String()
}

func buildVideosSection(videos []domain.ProcessedVideo) string {
	if len(videos) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🎬 <b>Лучшие видео</b>")
	for i, v := range videos {
		label := strings.TrimSpace(v.Description)
		if label == "" {
			label = v.VideoID
		}
		label = escapeHTML(truncate(label, 80))
		if url := strings.TrimSpace(v.URL); url != "" {
			label = fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(url), label)
		}
		b.WriteString(fmt.Sprintf("\n%d. %s (@%s) — %s просмотров, ER %s",
			i+1, label, escapeHTML(v.Username), formatCount(v.Plays), formatPercent(v.EngagementRate)))
	}
	return b.String()
}

func buildAccountsSection(accounts []domain.AccountAggregate) string {
	if len(accounts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("👤 <b>Лучшие аккаунты</b>")
	for i, a := range accounts {
		b.WriteString(fmt.Sprintf("\n%d. @%s — %s просмотров за %s видео",
			i+1, escapeHTML(a.Username), formatCount(a.TotalViews), formatCount(a.TotalVideos)))
	}
	return b.String()
}

func buildBrandsSection(brands []domain.BrandAggregate) string {
	if len(brands) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🏷 <b>Бренды</b>")
	for _, br := range brands {
		b.WriteString(fmt.Sprintf("\n• %s: %s видео, %s просмотров",
			escapeHTML(br.Brand), formatCount(br.TotalVideos), formatCount(br.TotalViews)))
	}
	return b.String()
}

func formatCount(n int64) string {
	return printer.Sprintf("%d", n)
}

func formatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
