package model

// ChapterKind distinguishes regular chapters from specials.
type ChapterKind string

const (
	ChapterRegular   ChapterKind = "regular"
	ChapterSpecial   ChapterKind = "special"
	ChapterExtra     ChapterKind = "extra"
	ChapterOmake     ChapterKind = "omake"
	ChapterSideStory ChapterKind = "side_story"
)

func (e ChapterKind) IsValid() bool {
	switch e {
	case ChapterRegular, ChapterSpecial, ChapterExtra, ChapterOmake, ChapterSideStory:
		return true
	}
	return false
}

type Chapter struct {
	ID           int32       `json:"id"`
	MangaID      int32       `json:"manga_id"`
	ChapterMain  int         `json:"chapter_main"`
	ChapterSub   int         `json:"chapter_sub"`
	Label        string      `json:"chapter_label"`
	Slug         string      `json:"slug"`
	FolderName   string      `json:"folder_name"`
	VolumeNumber *int        `json:"volume_number"`
	Kind         ChapterKind `json:"chapter_type"`
	PageCount    int         `json:"page_count"`
	UploadedBy   int32       `json:"uploaded_by"`
	CreatedTs    int64       `json:"created_ts"`
	UpdatedTs    int64       `json:"updated_ts"`
}

type FindChapter struct {
	ID      *int32  `json:"id"`
	MangaID *int32  `json:"manga_id"`
	Slug    *string `json:"slug"`

	// Descending flips the (chapter_main, chapter_sub) ordering.
	Descending bool `json:"descending"`
	Limit      *int `json:"limit"`
	Offset     *int `json:"offset"`
}

type ChapterCreateRequest struct {
	ChapterMain  int    `json:"chapter_main"`
	ChapterSub   int    `json:"chapter_sub"`
	Label        string `json:"chapter_label"`
	FolderName   string `json:"folder_name"`
	VolumeNumber *int   `json:"volume_number"`
	Kind         string `json:"chapter_type"`
	PageCount    int    `json:"page_count"`
}
