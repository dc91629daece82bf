package dashboard

import (
	"sort"

	"video-dashboard/internal/domain"
)

// MinBestAccountViews — порог суммарных просмотров для рейтинга лучших аккаунтов.
const MinBestAccountViews = 500

// DailyMetrics группирует записи по date_posted и возвращает дни по возрастанию.
func DailyMetrics(records []domain.PostRecord) []domain.DailyMetrics {
	byDate := make(map[string]*domain.DailyMetrics)
	for _, r := range records {
		day, ok := byDate[r.DatePosted]
		if !ok {
			day = &domain.DailyMetrics{Date: r.DatePosted}
			byDate[r.DatePosted] = day
		}
		day.Plays += r.Plays
		day.Likes += r.Likes
		day.Comments += r.Comments
		day.Shares += r.Shares
		day.Saves += r.Saves
		day.Interactions += Interactions(r)
	}

	out := make([]domain.DailyMetrics, 0, len(byDate))
	for _, day := range byDate {
		day.EngagementRate = EngagementRate(day.Interactions, day.Plays)
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// AggregateByAccount группирует записи по username. Записи без username пропускаются.
func AggregateByAccount(records []domain.PostRecord) []domain.AccountAggregate {
	grouped := make(map[string]*domain.AccountAggregate)
	brandSeen := make(map[string]map[string]struct{})
	order := make([]string, 0)

	for _, r := range records {
		if r.Username == "" {
			continue
		}
		acc, ok := grouped[r.Username]
		if !ok {
			acc = &domain.AccountAggregate{Username: r.Username, Brands: []string{}}
			grouped[r.Username] = acc
			brandSeen[r.Username] = make(map[string]struct{})
			order = append(order, r.Username)
		}
		brand := brandOrUnknown(r.Brand)
		if _, seen := brandSeen[r.Username][brand]; !seen {
			brandSeen[r.Username][brand] = struct{}{}
			acc.Brands = append(acc.Brands, brand)
		}
		if r.Followers > acc.Followers {
			acc.Followers = r.Followers
		}
		acc.TotalVideos++
		acc.TotalViews += r.Plays
		acc.TotalLikes += r.Likes
		acc.TotalComments += r.Comments
		acc.TotalShares += r.Shares
		acc.TotalSaves += r.Saves
		acc.TotalInteractions += Interactions(r)
	}

	out := make([]domain.AccountAggregate, 0, len(order))
	for _, username := range order {
		acc := grouped[username]
		acc.AvgEngagementRate = EngagementRate(acc.TotalInteractions, acc.TotalViews)
		out = append(out, *acc)
	}
	return out
}

// AggregateByBrand группирует записи по бренду, пустой бренд считается Unknown.
func AggregateByBrand(records []domain.PostRecord) []domain.BrandAggregate {
	grouped := make(map[string]*domain.BrandAggregate)
	accounts := make(map[string]map[string]struct{})
	order := make([]string, 0)

	for _, r := range records {
		brand := brandOrUnknown(r.Brand)
		agg, ok := grouped[brand]
		if !ok {
			agg = &domain.BrandAggregate{Brand: brand}
			grouped[brand] = agg
			accounts[brand] = make(map[string]struct{})
			order = append(order, brand)
		}
		if r.Username != "" {
			accounts[brand][r.Username] = struct{}{}
		}
		agg.TotalVideos++
		agg.TotalViews += r.Plays
		agg.TotalLikes += r.Likes
		agg.TotalComments += r.Comments
		agg.TotalShares += r.Shares
		agg.TotalSaves += r.Saves
		agg.TotalInteractions += Interactions(r)
	}

	out := make([]domain.BrandAggregate, 0, len(order))
	for _, brand := range order {
		agg := grouped[brand]
		agg.ActiveAccounts = int64(len(accounts[brand]))
		agg.AvgEngagementRate = EngagementRate(agg.TotalInteractions, agg.TotalViews)
		agg.AvgViews = ratio(agg.TotalViews, agg.TotalVideos)
		out = append(out, *agg)
	}
	return out
}

// CompleteBrands дополняет агрегаты нулевыми строками для брендов без записей.
func CompleteBrands(aggs []domain.BrandAggregate, brandsInRange []string) []domain.BrandAggregate {
	out := append([]domain.BrandAggregate(nil), aggs...)
	existing := make(map[string]struct{}, len(aggs))
	for _, agg := range aggs {
		existing[agg.Brand] = struct{}{}
	}
	for _, brand := range brandsInRange {
		if _, ok := existing[brand]; ok {
			continue
		}
		existing[brand] = struct{}{}
		out = append(out, domain.BrandAggregate{Brand: brand})
	}
	return out
}

// BestPerformingAccounts строит рейтинг аккаунтов по средним просмотрам.
// В рейтинг попадают аккаунты с суммарными просмотрами не ниже minTotalViews.
func BestPerformingAccounts(records []domain.PostRecord, minTotalViews int64) []domain.BestPerformingAccount {
	type accountState struct {
		result    domain.BestPerformingAccount
		brandSeen map[string]struct{}
		postDates map[string]struct{}
		hasViews  bool
	}

	grouped := make(map[string]*accountState)
	order := make([]string, 0)
	for _, r := range records {
		if r.Username == "" {
			continue
		}
		st, ok := grouped[r.Username]
		if !ok {
			st = &accountState{
				result:    domain.BestPerformingAccount{Username: r.Username, Brands: []string{}},
				brandSeen: make(map[string]struct{}),
				postDates: make(map[string]struct{}),
			}
			grouped[r.Username] = st
			order = append(order, r.Username)
		}
		brand := brandOrUnknown(r.Brand)
		if _, seen := st.brandSeen[brand]; !seen {
			st.brandSeen[brand] = struct{}{}
			st.result.Brands = append(st.result.Brands, brand)
		}
		st.postDates[r.DatePosted] = struct{}{}
		if r.Followers > st.result.Followers {
			st.result.Followers = r.Followers
		}
		st.result.TotalVideos++
		st.result.TotalViews += r.Plays
		if !st.hasViews || r.Plays < st.result.MinViews {
			st.result.MinViews = r.Plays
		}
		if !st.hasViews || r.Plays > st.result.MaxViews {
			st.result.MaxViews = r.Plays
		}
		st.hasViews = true
	}

	out := make([]domain.BestPerformingAccount, 0, len(order))
	for _, username := range order {
		st := grouped[username]
		if st.result.TotalViews < minTotalViews {
			continue
		}
		st.result.AvgViews = ratio(st.result.TotalViews, st.result.TotalVideos)
		st.result.DaysWithPosts = int64(len(st.postDates))
		out = append(out, st.result)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgViews > out[j].AvgViews })
	return out
}

func brandOrUnknown(brand string) string {
	if brand == "" {
		return domain.UnknownBrand
	}
	return brand
}
