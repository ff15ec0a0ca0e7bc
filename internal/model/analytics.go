package model

// Analytics time windows.
var TimeRanges = []string{"24h", "7d", "30d", "90d", "1y"}

// DefaultTimeRange is used when the caller does not pick a window.
const DefaultTimeRange = "7d"

// AdminOverview holds the platform-wide totals.
type AdminOverview struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalCreators       int64 `json:"totalCreators"`
	TotalVideos         int64 `json:"totalVideos"`
	TotalRevenue        int64 `json:"totalRevenue"`
	ActiveSubscriptions int64 `json:"activeSubscriptions"`
	NewUsers            int64 `json:"newUsers"`
	WindowRevenue       int64 `json:"windowRevenue"`
	PendingVideos       int64 `json:"pendingVideos"`
}

// Transaction is one row of the admin "recent transactions" list.
type Transaction struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Amount int64  `json:"amount"`
	Plan   string `json:"plan"`
	Date   string `json:"date"`
}

// AdminAnalytics is the ADMIN rollup.
type AdminAnalytics struct {
	Overview           AdminOverview `json:"overview"`
	RecentTransactions []Transaction `json:"recentTransactions"`
}

// CreatorOverview holds totals restricted to one creator's videos.
type CreatorOverview struct {
	VideosCount     int64 `json:"videosCount"`
	TotalViews      int64 `json:"totalViews"`
	TotalWatchTime  int64 `json:"totalWatchTime"`
	WindowWatchTime int64 `json:"windowWatchTime"`
	Revenue         int64 `json:"revenue"`
}

// VideoStat is one of a creator's top videos.
type VideoStat struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int64  `json:"views"`
	Likes int64  `json:"likes"`
}

// CreatorAnalytics is the CREATOR rollup.
type CreatorAnalytics struct {
	Overview  CreatorOverview `json:"overview"`
	TopVideos []VideoStat     `json:"topVideos"`
}

// UserOverview holds a viewer's personal totals.
type UserOverview struct {
	TotalWatched    int64 `json:"totalWatched"`
	TotalWatchTime  int64 `json:"totalWatchTime"`
	WindowWatchTime int64 `json:"windowWatchTime"`
	ContentLiked    int64 `json:"contentLiked"`
}

// Activity is one recent watch-history entry. Duration is in minutes.
type Activity struct {
	Title     string `json:"title"`
	WatchedAt string `json:"watchedAt"`
	Duration  int    `json:"duration"`
}

// UserAnalytics is the USER rollup.
type UserAnalytics struct {
	Overview       UserOverview `json:"overview"`
	RecentActivity []Activity   `json:"recentActivity"`
}
