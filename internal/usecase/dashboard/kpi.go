package dashboard

import "video-dashboard/internal/domain"

// Summarize сворачивает выборку в сводку KPI.
func Summarize(records []domain.PostRecord) domain.KPISummary {
	var kpi domain.KPISummary
	accounts := make(map[string]struct{})
	for _, r := range records {
		kpi.PublishedVideos++
		kpi.TotalViews += r.Plays
		kpi.TotalLikes += r.Likes
		kpi.TotalComments += r.Comments
		kpi.TotalShares += r.Shares
		kpi.TotalBookmarks += r.Saves
		if r.Plays == 0 {
			kpi.VideosWithZeroViews++
		}
		if r.Username != "" {
			accounts[r.Username] = struct{}{}
		}
	}
	kpi.ActiveAccounts = int64(len(accounts))
	kpi.TotalInteractions = kpi.TotalLikes + kpi.TotalComments + kpi.TotalShares + kpi.TotalBookmarks
	kpi.EngagementRate = EngagementRate(kpi.TotalInteractions, kpi.TotalViews)
	kpi.VideosWithZeroViewsPercent = ratio(kpi.VideosWithZeroViews, kpi.PublishedVideos)
	kpi.AvgViews = ratio(kpi.TotalViews, kpi.PublishedVideos)
	return kpi
}
