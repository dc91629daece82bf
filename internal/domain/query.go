package domain

// TimeWindow описывает именованный период выборки.
type TimeWindow string

const (
	// WindowDaily — с начала текущих суток.
	WindowDaily TimeWindow = "daily"
	// WindowLast7 — последние 7 дней от текущего момента.
	WindowLast7 TimeWindow = "last7"
	// WindowLast30 — последние 30 дней от текущего момента.
	WindowLast30 TimeWindow = "last30"
	// WindowCustom — явный диапазон дат от клиента.
	WindowCustom TimeWindow = "custom"
	// WindowAllTime — без нижней границы.
	WindowAllTime TimeWindow = "alltime"
)

// DefaultTimeWindow используется, если период не передан.
const DefaultTimeWindow = WindowLast30

// DateRange хранит границы по date_posted в формате YYYY-MM-DD. Пустая граница означает отсутствие ограничения.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// DescriptionMatchMode задаёт способ сравнения описаний.
type DescriptionMatchMode string

const (
	MatchExact    DescriptionMatchMode = "exact"
	MatchContains DescriptionMatchMode = "contains"
)

// DescriptionCombineMode задаёт способ объединения нескольких выбранных описаний.
type DescriptionCombineMode string

const (
	CombineOR  DescriptionCombineMode = "OR"
	CombineAND DescriptionCombineMode = "AND"
)

// DescriptionFilter — выбор описаний пользователем.
type DescriptionFilter struct {
	SelectedIDs []string
	MatchMode   DescriptionMatchMode
	CombineMode DescriptionCombineMode
}

// DashboardQuery собирает все фильтры одного запроса к дашборду.
type DashboardQuery struct {
	TimeWindow   TimeWindow
	CustomRange  *DateRange
	Brands       []string
	Descriptions DescriptionFilter
	HideUnknown  bool
}

// RecordFilter — предикаты выборки из хранилища.
type RecordFilter struct {
	Since  string
	Until  string
	Brands []string
}
