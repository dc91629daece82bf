package httpapi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/usecase/dashboard"
)

// ErrInvalidParams возвращается для параметров, не прошедших валидацию.
var ErrInvalidParams = errors.New("некорректные параметры запроса")

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func validateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			first := vErrs[0]
			return fmt.Errorf("%w: поле [%s] не прошло проверку [%s]", ErrInvalidParams, first.Field(), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

type dashboardParams struct {
	TimeWindow   string   `validate:"omitempty,max=16"`
	Start        string   `validate:"omitempty,datetime=2006-01-02"`
	End          string   `validate:"omitempty,datetime=2006-01-02"`
	Brands       []string `validate:"omitempty,dive,max=200"`
	Descriptions []string `validate:"omitempty,dive,hexadecimal"`
	Match        string   `validate:"omitempty,oneof=exact contains"`
	Combine      string   `validate:"omitempty,oneof=OR AND"`
	HideUnknown  string   `validate:"omitempty,boolean"`
}

type topParams struct {
	Sort  string `validate:"omitempty,max=32"`
	Limit int    `validate:"gte=0,lte=100"`
}

type searchParams struct {
	Mode    string `validate:"omitempty,oneof=videos accounts"`
	Query   string `validate:"max=200"`
	Page    int    `validate:"gte=0"`
	PerPage int    `validate:"gte=0,lte=100"`
}

type ingestRequest struct {
	Source     string `json:"source" validate:"required,max=1024"`
	ScrapeDate string `json:"scrape_date" validate:"omitempty,datetime=2006-01-02"`
}

// parseDashboardQuery собирает DashboardQuery из строки запроса.
func parseDashboardQuery(values url.Values) (domain.DashboardQuery, error) {
	p := dashboardParams{
		TimeWindow:   values.Get("timeWindow"),
		Start:        strings.TrimSpace(values.Get("start")),
		End:          strings.TrimSpace(values.Get("end")),
		Brands:       listParam(values, "brands"),
		Descriptions: listParam(values, "descriptions"),
		Match:        values.Get("match"),
		Combine:      strings.ToUpper(values.Get("combine")),
		HideUnknown:  values.Get("hideUnknown"),
	}
	if err := validateDTO(p); err != nil {
		return domain.DashboardQuery{}, err
	}

	window := dashboard.ParseTimeWindow(p.TimeWindow)
	q := domain.DashboardQuery{
		TimeWindow: window,
		Brands:     p.Brands,
		Descriptions: domain.DescriptionFilter{
			SelectedIDs: p.Descriptions,
			MatchMode:   domain.MatchExact,
			CombineMode: domain.CombineOR,
		},
	}
	if p.Match != "" {
		q.Descriptions.MatchMode = domain.DescriptionMatchMode(p.Match)
	}
	if p.Combine != "" {
		q.Descriptions.CombineMode = domain.DescriptionCombineMode(p.Combine)
	}
	if p.HideUnknown != "" {
		q.HideUnknown, _ = strconv.ParseBool(p.HideUnknown)
	}
	if window == domain.WindowCustom && (p.Start != "" || p.End != "") {
		q.CustomRange = &domain.DateRange{Start: p.Start, End: p.End}
	}
	return q, nil
}

func parseTopParams(values url.Values) (topParams, error) {
	p := topParams{Sort: values.Get("sort")}
	var err error
	if p.Limit, err = intParam(values, "limit"); err != nil {
		return topParams{}, err
	}
	if err := validateDTO(p); err != nil {
		return topParams{}, err
	}
	if p.Limit == 0 {
		p.Limit = dashboard.DefaultTopN
	}
	return p, nil
}

func parseSearchParams(values url.Values) (searchParams, error) {
	p := searchParams{Mode: values.Get("mode"), Query: values.Get("q")}
	var err error
	if p.Page, err = intParam(values, "page"); err != nil {
		return searchParams{}, err
	}
	if p.PerPage, err = intParam(values, "perPage"); err != nil {
		return searchParams{}, err
	}
	if err := validateDTO(p); err != nil {
		return searchParams{}, err
	}
	if p.Mode == "" {
		p.Mode = "videos"
	}
	return p, nil
}

// listParam принимает как повторяющиеся параметры, так и значения через запятую.
func listParam(values url.Values, name string) []string {
	var out []string
	for _, raw := range values[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(values url.Values, name string) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s должен быть числом", ErrInvalidParams, name)
	}
	return n, nil
}
