package model //import "github.com/yomu-app/yomu/model"

// MangaStatus is the publication status of a series.
type MangaStatus string

const (
	MangaOngoing   MangaStatus = "ongoing"
	MangaCompleted MangaStatus = "completed"
)

func (e MangaStatus) IsValid() bool {
	return e == MangaOngoing || e == MangaCompleted
}

type Manga struct {
	ID          int32       `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	CoverPath   string      `json:"cover_path"`
	Kind        string      `json:"kind"`
	Status      MangaStatus `json:"status"`
	CreatedTs   int64       `json:"created_ts"`
	UpdatedTs   int64       `json:"updated_ts"`

	// Populated by list/detail queries, not columns of the manga table.
	Genres        []*Genre `json:"genres,omitempty"`
	TotalChapters int      `json:"total_chapters"`
	LatestChapter string   `json:"latest_chapter,omitempty"`
}

type FindManga struct {
	ID     *int32       `json:"id"`
	Slug   *string      `json:"slug"`
	Title  *string      `json:"title"`
	Search *string      `json:"search"`
	Kind   *string      `json:"kind"`
	Genre  *string      `json:"genre"`
	Status *MangaStatus `json:"status"`

	OrderBy   *string `json:"order_by"`
	Ascending bool    `json:"ascending"`
	Limit     *int    `json:"limit"`
	Offset    *int    `json:"offset"`
}

type MangaUpsertRequest struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Kind        string   `json:"kind"`
	Status      string   `json:"status"`
	GenreSlugs  []string `json:"genres"`
}

type Genre struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	MangaCount int `json:"manga_count,omitempty"`
}
