package model

// ListStatus is one of the five reading-list shelves.
type ListStatus string

const (
	ListPlanToRead ListStatus = "plan_to_read"
	ListReading    ListStatus = "reading"
	ListCompleted  ListStatus = "completed"
	ListDropped    ListStatus = "dropped"
	ListOnHold     ListStatus = "on_hold"
)

// ListStatuses enumerates every shelf, in display order.
var ListStatuses = []ListStatus{ListPlanToRead, ListReading, ListCompleted, ListDropped, ListOnHold}

func (e ListStatus) IsValid() bool {
	switch e {
	case ListPlanToRead, ListReading, ListCompleted, ListDropped, ListOnHold:
		return true
	}
	return false
}

// ReadingProgress is one saved position, unique per (user, manga, chapter).
type ReadingProgress struct {
	ID         int32 `json:"id"`
	UserID     int32 `json:"user_id"`
	MangaID    int32 `json:"manga_id"`
	ChapterID  int32 `json:"chapter_id"`
	PageNumber int   `json:"page_number"`
	LastReadTs int64 `json:"last_read_ts"`
}

type FindReadingProgress struct {
	UserID    *int32 `json:"user_id"`
	MangaID   *int32 `json:"manga_id"`
	ChapterID *int32 `json:"chapter_id"`

	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

// HistoryEntry is one row of the reading-history listing: the latest
// progress per manga, joined with catalog info.
type HistoryEntry struct {
	MangaID      int32  `json:"manga_id"`
	MangaTitle   string `json:"manga_title"`
	MangaSlug    string `json:"manga_slug"`
	CoverPath    string `json:"manga_cover,omitempty"`
	ChapterID    int32  `json:"chapter_id"`
	ChapterLabel string `json:"chapter_label"`
	ChapterSlug  string `json:"chapter_slug"`
	PageNumber   int    `json:"page_number"`
	TotalPages   int    `json:"total_pages"`
	LastReadTs   int64  `json:"last_read_ts"`
}

type SaveProgressRequest struct {
	MangaSlug   string `json:"manga_slug"`
	ChapterSlug string `json:"chapter_slug"`
	PageNumber  int    `json:"page_number"`
}

// Bookmark marks a manga as a favorite, unique per (user, manga).
type Bookmark struct {
	ID        int32 `json:"id"`
	UserID    int32 `json:"user_id"`
	MangaID   int32 `json:"manga_id"`
	CreatedTs int64 `json:"created_ts"`
}

// BookmarkEntry is a bookmark joined with its manga for listing.
type BookmarkEntry struct {
	MangaID       int32  `json:"manga_id"`
	MangaTitle    string `json:"manga_title"`
	MangaSlug     string `json:"manga_slug"`
	CoverPath     string `json:"manga_cover,omitempty"`
	TotalChapters int    `json:"total_chapters"`
	LatestChapter string `json:"latest_chapter,omitempty"`
	CreatedTs     int64  `json:"created_ts"`
}

type FindBookmark struct {
	UserID  *int32 `json:"user_id"`
	MangaID *int32 `json:"manga_id"`

	// SortBy is one of created_at, title, updated_at.
	SortBy    string `json:"sort_by"`
	Ascending bool   `json:"ascending"`
	Limit     *int   `json:"limit"`
	Offset    *int   `json:"offset"`
}

// ReadingListEntry is one shelf assignment, unique per (user, manga).
// Rating is 1..10 when present.
type ReadingListEntry struct {
	ID        int32      `json:"id"`
	UserID    int32      `json:"user_id"`
	MangaID   int32      `json:"manga_id"`
	Status    ListStatus `json:"status"`
	Rating    *int       `json:"rating"`
	Notes     *string    `json:"notes"`
	AddedTs   int64      `json:"added_ts"`
	UpdatedTs int64      `json:"updated_ts"`
}

// ListEntryDetail is a reading-list entry joined with its manga.
type ListEntryDetail struct {
	MangaID       int32      `json:"manga_id"`
	MangaTitle    string     `json:"manga_title"`
	MangaSlug     string     `json:"manga_slug"`
	CoverPath     string     `json:"manga_cover,omitempty"`
	Status        ListStatus `json:"status"`
	Rating        *int       `json:"rating"`
	Notes         *string    `json:"notes"`
	TotalChapters int        `json:"total_chapters"`
	ReadChapters  int        `json:"read_chapters"`
	AddedTs       int64      `json:"added_ts"`
	UpdatedTs     int64      `json:"updated_ts"`
}

type FindReadingListEntry struct {
	UserID  *int32      `json:"user_id"`
	MangaID *int32      `json:"manga_id"`
	Status  *ListStatus `json:"status"`

	// SortBy is one of updated_at, added_at, title, rating.
	SortBy    string `json:"sort_by"`
	Ascending bool   `json:"ascending"`
	Limit     *int   `json:"limit"`
	Offset    *int   `json:"offset"`
}

type ReadingListRequest struct {
	MangaSlug string  `json:"manga_slug"`
	Status    string  `json:"status"`
	Rating    *int    `json:"rating"`
	Notes     *string `json:"notes"`
}

// ReadingStats is the per-user summary returned by the stats endpoint.
type ReadingStats struct {
	ByStatus       map[ListStatus]int `json:"reading_list"`
	TotalInList    int                `json:"total_in_list"`
	TotalBookmarks int                `json:"total_bookmarks"`
	TotalHistory   int                `json:"total_history"`
}
