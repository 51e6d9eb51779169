package model

// ViewKind says which entity a view event belongs to.
type ViewKind string

const (
	ViewManga   ViewKind = "manga"
	ViewChapter ViewKind = "chapter"
)

// View is one append-only view event. UserID is nil for anonymous
// visitors; IPHash is a salted hash, never a raw address.
type View struct {
	ID       int32    `json:"id"`
	Kind     ViewKind `json:"kind"`
	TargetID int32    `json:"target_id"`
	UserID   *int32   `json:"user_id"`
	IPHash   string   `json:"ip_hash"`
	ViewedTs int64    `json:"viewed_ts"`
}

// ViewJob is queued by the tracking middleware and resolved by a worker,
// so the insert never runs on the request path.
type ViewJob struct {
	Kind     ViewKind
	Slug     string
	UserID   *int32
	IPHash   string
	ViewedTs int64
}

// MangaViewStats is one row of the per-manga analytics listing.
type MangaViewStats struct {
	MangaID       int32  `json:"manga_id"`
	MangaTitle    string `json:"manga_title"`
	MangaSlug     string `json:"manga_slug"`
	TotalViews    int    `json:"total_views"`
	ViewsToday    int    `json:"views_today"`
	ViewsWeek     int    `json:"views_week"`
	ViewsMonth    int    `json:"views_month"`
	UniqueViewers int    `json:"unique_viewers"`
}

// TopManga is one row of the top-manga ranking.
type TopManga struct {
	Rank       int    `json:"rank"`
	MangaID    int32  `json:"manga_id"`
	MangaTitle string `json:"manga_title"`
	MangaSlug  string `json:"manga_slug"`
	Count      int    `json:"count"`
}

// GrowthPoint is one day of user registrations.
type GrowthPoint struct {
	Date       string `json:"date"`
	NewUsers   int    `json:"new_users"`
	TotalUsers int    `json:"total_users"`
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	Type       string `json:"type"`
	Username   string `json:"username"`
	MangaTitle string `json:"manga_title"`
	Timestamp  int64  `json:"timestamp"`
}

// AnalyticsOverview is the admin dashboard summary.
type AnalyticsOverview struct {
	Database struct {
		TotalUsers       int `json:"total_users"`
		ActiveUsersToday int `json:"active_users_today"`
		ActiveUsersWeek  int `json:"active_users_week"`
		TotalManga       int `json:"total_manga"`
		MangaOngoing     int `json:"manga_ongoing"`
		MangaCompleted   int `json:"manga_completed"`
		TotalChapters    int `json:"total_chapters"`
	} `json:"database"`
	Views struct {
		TotalMangaViews   int `json:"total_manga_views"`
		TotalChapterViews int `json:"total_chapter_views"`
		ViewsToday        int `json:"views_today"`
		ViewsWeek         int `json:"views_week"`
		ViewsMonth        int `json:"views_month"`
	} `json:"views"`
	Engagement struct {
		TotalBookmarks    int `json:"total_bookmarks"`
		TotalReadingLists int `json:"total_reading_lists"`
	} `json:"engagement"`
	PopularGenres []*Genre      `json:"popular_genres"`
	UserGrowth    []GrowthPoint `json:"user_growth"`
	Timestamp     int64         `json:"timestamp"`
}
