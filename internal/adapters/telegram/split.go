package telegram

import "strings"

const messageLimit = 4096

// SplitMessage делит текст на части не длиннее лимита Telegram.
// Части собираются из целых строк, строка длиннее лимита режется по рунам.
func SplitMessage(text string) []string {
	return splitLines(strings.TrimSpace(text), messageLimit)
}

func splitLines(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current []rune
	)
	flush := func() {
		chunk := strings.Trim(string(current), "\n")
		if chunk != "" {
			parts = append(parts, chunk)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		sep := 0
		if len(current) > 0 {
			sep = 1
		}
		if len(current)+sep+len(runes) > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			current = append(current, '\n')
		}
		current = append(current, runes...)
	}
	flush()
	return parts
}
