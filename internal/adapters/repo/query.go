package repo

import (
	"fmt"
	"strings"

	"video-dashboard/internal/domain"
)

// dialect описывает различия SQL между Postgres и SQLite.
type dialect struct {
	placeholder func(n int) string
	dateCast    string
	arrayParams bool
}

var (
	postgresDialect = dialect{
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		dateCast:    "::date",
		arrayParams: true,
	}
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
	}
)

// recordQuery дописывает к запросу предикаты по дате и брендам.
func (d dialect) recordQuery(base string, filter domain.RecordFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Since != "" {
		args = append(args, filter.Since)
		conds = append(conds, "date_posted >= "+d.placeholder(len(args))+d.dateCast)
	}
	if filter.Until != "" {
		args = append(args, filter.Until)
		conds = append(conds, "date_posted <= "+d.placeholder(len(args))+d.dateCast)
	}
	if len(filter.Brands) > 0 {
		if d.arrayParams {
			args = append(args, filter.Brands)
			conds = append(conds, "brand = ANY("+d.placeholder(len(args))+")")
		} else {
			marks := make([]string, 0, len(filter.Brands))
			for _, b := range filter.Brands {
				args = append(args, b)
				marks = append(marks, d.placeholder(len(args)))
			}
			conds = append(conds, "brand IN ("+strings.Join(marks, ", ")+")")
		}
	}
	query := base
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	return query + "\nORDER BY date_posted, id", args
}
