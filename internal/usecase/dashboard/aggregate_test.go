package dashboard

import (
	"math"
	"testing"

	"video-dashboard/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDailyMetricsSameDay(t *testing.T) {
	records := []domain.PostRecord{
		{DatePosted: "2024-01-01", Plays: 50, Likes: 5},
		{DatePosted: "2024-01-01", Plays: 70, Comments: 1},
	}
	days := DailyMetrics(records)
	if len(days) != 1 {
		t.Fatalf("ожидали один день, получили %d", len(days))
	}
	if days[0].Date != "2024-01-01" || days[0].Plays != 120 {
		t.Fatalf("неверная агрегация: %+v", days[0])
	}
	if days[0].Interactions != 6 || !almostEqual(days[0].EngagementRate, 6.0/120) {
		t.Fatalf("неверная вовлечённость: %+v", days[0])
	}
}

func TestDailyMetricsPreservesMassAndOrder(t *testing.T) {
	records := []domain.PostRecord{
		{DatePosted: "2024-01-03", Plays: 3},
		{DatePosted: "2024-01-01", Plays: 10},
		{DatePosted: "2024-01-02", Plays: 0, Likes: 4},
		{DatePosted: "2024-01-01", Plays: 7},
	}
	days := DailyMetrics(records)
	var total int64
	for i, d := range days {
		total += d.Plays
		if i > 0 && days[i-1].Date >= d.Date {
			t.Fatalf("дни не отсортированы: %s >= %s", days[i-1].Date, d.Date)
		}
	}
	if total != 20 {
		t.Fatalf("ожидали сумму 20, получили %d", total)
	}
	if days[1].EngagementRate != 0 {
		t.Fatalf("без просмотров вовлечённость должна быть 0")
	}
}

func TestAggregateByAccount(t *testing.T) {
	records := []domain.PostRecord{
		{Username: "alice", Brand: "Acme", Followers: 100, Plays: 10, Likes: 1},
		{Username: "", Brand: "Acme", Plays: 1000},
		{Username: "bob", Brand: "", Followers: 5, Plays: 0},
		{Username: "alice", Brand: "Beta", Followers: 120, Plays: 30, Saves: 3},
		{Username: "alice", Brand: "Acme", Followers: 110, Plays: 0},
	}
	accounts := AggregateByAccount(records)
	if len(accounts) != 2 {
		t.Fatalf("ожидали 2 аккаунта, получили %d", len(accounts))
	}
	alice := accounts[0]
	if alice.Username != "alice" || alice.Followers != 120 || alice.TotalVideos != 3 || alice.TotalViews != 40 {
		t.Fatalf("неверный агрегат alice: %+v", alice)
	}
	if len(alice.Brands) != 2 || alice.Brands[0] != "Acme" || alice.Brands[1] != "Beta" {
		t.Fatalf("неверные бренды alice: %v", alice.Brands)
	}
	if !almostEqual(alice.AvgEngagementRate, 4.0/40) {
		t.Fatalf("неверная вовлечённость alice: %v", alice.AvgEngagementRate)
	}
	bob := accounts[1]
	if bob.Brands[0] != domain.UnknownBrand || bob.AvgEngagementRate != 0 {
		t.Fatalf("неверный агрегат bob: %+v", bob)
	}
}

func TestAggregateByBrand(t *testing.T) {
	records := []domain.PostRecord{
		{Brand: "Acme", Username: "a", Plays: 100, Likes: 10},
		{Brand: "Acme", Username: "b", Plays: 50},
		{Brand: "Acme", Username: "a", Plays: 30},
		{Brand: "", Username: "c", Plays: 5},
		{Brand: "", Username: "", Plays: 5},
	}
	brands := AggregateByBrand(records)
	if len(brands) != 2 {
		t.Fatalf("ожидали 2 бренда, получили %d", len(brands))
	}
	acme := brands[0]
	if acme.Brand != "Acme" || acme.ActiveAccounts != 2 || acme.TotalVideos != 3 || acme.TotalViews != 180 {
		t.Fatalf("неверный агрегат Acme: %+v", acme)
	}
	if !almostEqual(acme.AvgViews, 60) {
		t.Fatalf("ожидали avg_views 60, получили %v", acme.AvgViews)
	}
	unknown := brands[1]
	if unknown.Brand != domain.UnknownBrand || unknown.ActiveAccounts != 1 || unknown.TotalVideos != 2 {
		t.Fatalf("неверный агрегат Unknown: %+v", unknown)
	}
}

func TestAggregatorsDoNotMutateInput(t *testing.T) {
	records := []domain.PostRecord{
		{Brand: "", Username: "a", DatePosted: "2024-01-02", Plays: 1},
		{Brand: "B", Username: "b", DatePosted: "2024-01-01", Plays: 2},
	}
	snapshot := append([]domain.PostRecord(nil), records...)
	DailyMetrics(records)
	AggregateByAccount(records)
	AggregateByBrand(records)
	BestPerformingAccounts(records, 0)
	for i := range records {
		if records[i] != snapshot[i] {
			t.Fatalf("вход изменён: %+v", records[i])
		}
	}
}

func TestCompleteBrands(t *testing.T) {
	aggs := []domain.BrandAggregate{{Brand: "Acme", TotalViews: 10}}
	out := CompleteBrands(aggs, []string{"Acme", "Beta", "Beta"})
	if len(out) != 2 || out[1].Brand != "Beta" || out[1].TotalViews != 0 {
		t.Fatalf("неверное дополнение: %+v", out)
	}
	if len(aggs) != 1 {
		t.Fatalf("исходный срез изменён")
	}
}

func TestBestPerformingAccounts(t *testing.T) {
	records := []domain.PostRecord{
		{Username: "low", Plays: 100, DatePosted: "2024-01-01"},
		{Username: "steady", Plays: 300, DatePosted: "2024-01-01"},
		{Username: "steady", Plays: 300, DatePosted: "2024-01-02"},
		{Username: "star", Plays: 900, DatePosted: "2024-01-01"},
		{Username: "star", Plays: 100, DatePosted: "2024-01-01"},
	}
	best := BestPerformingAccounts(records, MinBestAccountViews)
	if len(best) != 2 {
		t.Fatalf("ожидали 2 аккаунта выше порога, получили %d", len(best))
	}
	if best[0].Username != "star" || !almostEqual(best[0].AvgViews, 500) {
		t.Fatalf("ожидали star первым: %+v", best[0])
	}
	if best[0].MinViews != 100 || best[0].MaxViews != 900 || best[0].DaysWithPosts != 1 {
		t.Fatalf("неверные min/max/days у star: %+v", best[0])
	}
	if best[1].Username != "steady" || best[1].DaysWithPosts != 2 {
		t.Fatalf("неверный второй аккаунт: %+v", best[1])
	}
}
