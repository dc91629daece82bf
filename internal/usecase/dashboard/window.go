package dashboard

import (
	"errors"
	"strings"
	"time"

	"video-dashboard/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidRange возвращается для некорректного произвольного диапазона.
	ErrInvalidRange = errors.New("некорректный диапазон дат")
)

// ParseTimeWindow разбирает период из запроса. Пустое значение означает last30,
// неизвестное значение читается как alltime.
func ParseTimeWindow(raw string) domain.TimeWindow {
	w := domain.TimeWindow(strings.ToLower(strings.TrimSpace(raw)))
	switch w {
	case "":
		return domain.DefaultTimeWindow
	case domain.WindowDaily, domain.WindowLast7, domain.WindowLast30, domain.WindowCustom, domain.WindowAllTime:
		return w
	}
	return domain.WindowAllTime
}

// ResolveWindow вычисляет границы по date_posted для периода.
//
// last7 и last30 отсчитываются от текущего момента, а не от начала суток, поэтому
// фактический охват на один день шире; их граница переводится в календарную дату UTC.
// daily начинается с сегодняшней даты в зоне now. Неизвестный период и alltime не
// ограничивают выборку.
func ResolveWindow(w domain.TimeWindow, now time.Time, custom *domain.DateRange) (domain.DateRange, error) {
	switch w {
	case domain.WindowDaily:
		return domain.DateRange{Start: now.Format(dateLayout)}, nil
	case domain.WindowLast7:
		return domain.DateRange{Start: dateLabel(now.AddDate(0, 0, -7))}, nil
	case domain.WindowLast30:
		return domain.DateRange{Start: dateLabel(now.AddDate(0, 0, -30))}, nil
	case domain.WindowCustom:
		if custom == nil {
			return domain.DateRange{}, nil
		}
		return validateRange(*custom)
	default:
		return domain.DateRange{}, nil
	}
}

func validateRange(r domain.DateRange) (domain.DateRange, error) {
	r.Start = strings.TrimSpace(r.Start)
	r.End = strings.TrimSpace(r.End)
	for _, label := range []string{r.Start, r.End} {
		if label == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, label); err != nil {
			return domain.DateRange{}, ErrInvalidRange
		}
	}
	if r.Start != "" && r.End != "" && r.Start > r.End {
		return domain.DateRange{}, ErrInvalidRange
	}
	return r, nil
}

func dateLabel(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
