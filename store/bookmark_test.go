package store

import (
	"testing"

	"github.com/yomu-app/yomu/model"
)

func TestAddBookmarkIdempotent(t *testing.T) {
	s := newTestStore(t)
	user, manga, _, _ := seedReader(t, s)

	first, err := s.AddBookmark(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to add bookmark: %v", err)
	}

	// Bookmarking again returns the existing row.
	second, err := s.AddBookmark(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to re-add bookmark: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same bookmark id %d, got %d", first.ID, second.ID)
	}
	if second.CreatedTs != first.CreatedTs {
		t.Errorf("Expected created_ts to be unchanged")
	}

	count, err := s.CountBookmarks(user.ID)
	if err != nil {
		t.Fatalf("Failed to count bookmarks: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 bookmark, got %d", count)
	}
}

func TestRemoveBookmark(t *testing.T) {
	s := newTestStore(t)
	user, manga, _, _ := seedReader(t, s)

	if _, err := s.AddBookmark(user.ID, manga.ID); err != nil {
		t.Fatalf("Failed to add bookmark: %v", err)
	}

	removed, err := s.RemoveBookmark(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to remove bookmark: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed row, got %d", removed)
	}

	removed, err = s.RemoveBookmark(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to remove bookmark: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed rows, got %d", removed)
	}

	has, err := s.HasBookmark(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to check bookmark: %v", err)
	}
	if has {
		t.Errorf("Expected bookmark to be gone")
	}
}

func TestListBookmarks(t *testing.T) {
	s := newTestStore(t)
	user, manga, _, _ := seedReader(t, s)

	berserk, err := s.CreateManga(&model.Manga{
		Title:  "Berserk",
		Slug:   "berserk",
		Kind:   "manga",
		Status: model.MangaOngoing,
	})
	if err != nil {
		t.Fatalf("Failed to create manga: %v", err)
	}

	for _, mangaID := range []int32{manga.ID, berserk.ID} {
		if _, err := s.AddBookmark(user.ID, mangaID); err != nil {
			t.Fatalf("Failed to add bookmark: %v", err)
		}
	}

	list, err := s.ListBookmarks(&model.FindBookmark{
		UserID:    &user.ID,
		SortBy:    "title",
		Ascending: true,
	})
	if err != nil {
		t.Fatalf("Failed to list bookmarks: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 bookmarks, got %d", len(list))
	}
	if list[0].MangaTitle != "Berserk" {
		t.Errorf("Expected title ordering, first is %s", list[0].MangaTitle)
	}
	if list[1].TotalChapters != 2 {
		t.Errorf("Expected chapter count 2, got %d", list[1].TotalChapters)
	}
}
