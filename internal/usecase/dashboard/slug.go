package dashboard

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BrandSlug приводит название бренда к виду для URL.
func BrandSlug(brand string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	plain, _, err := transform.String(stripper, strings.ToLower(brand))
	if err != nil {
		plain = strings.ToLower(brand)
	}

	var b strings.Builder
	b.Grow(len(plain))
	lastDash := true
	inSpace := false
	for _, r := range plain {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), r == '-':
		default:
			continue
		}
		if inSpace && !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
		inSpace = false
		if r == '-' {
			if lastDash {
				continue
			}
			lastDash = true
		} else {
			lastDash = false
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), "-")
}

// BrandFromSlug находит бренд по slug среди доступных. Пустая строка, если совпадений нет.
func BrandFromSlug(slug string, brands []string) (string, bool) {
	target := strings.ToLower(strings.TrimSpace(slug))
	for _, brand := range brands {
		if BrandSlug(brand) == target {
			return brand, true
		}
	}
	return "", false
}
