package store

import (
	"testing"

	"github.com/yomu-app/yomu/model"
)

func seedReader(t *testing.T, s *Store) (*model.User, *model.Manga, *model.Chapter, *model.Chapter) {
	t.Helper()

	user, err := s.CreateUser(&model.User{Username: "reader", Role: model.RoleUser, PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	manga, chapter := seedCatalog(t, s)
	second, err := s.CreateChapter(&model.Chapter{
		MangaID:     manga.ID,
		ChapterMain: 2,
		Label:       "Chapter 2",
		Slug:        "one-punch-man-chapter-2",
		Kind:        model.ChapterRegular,
		PageCount:   20,
		UploadedBy:  1,
	})
	if err != nil {
		t.Fatalf("Failed to create chapter: %v", err)
	}

	return user, manga, chapter, second
}

func TestUpsertReadingProgress(t *testing.T) {
	s := newTestStore(t)
	user, manga, chapter, _ := seedReader(t, s)

	first, err := s.UpsertReadingProgress(&model.ReadingProgress{
		UserID:     user.ID,
		MangaID:    manga.ID,
		ChapterID:  chapter.ID,
		PageNumber: 5,
		LastReadTs: 1000,
	})
	if err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	// Saving the same chapter again overwrites the row instead of
	// inserting a second one.
	second, err := s.UpsertReadingProgress(&model.ReadingProgress{
		UserID:     user.ID,
		MangaID:    manga.ID,
		ChapterID:  chapter.ID,
		PageNumber: 12,
		LastReadTs: 2000,
	})
	if err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected upsert to keep row id %d, got %d", first.ID, second.ID)
	}
	if second.PageNumber != 12 {
		t.Errorf("Expected page 12, got %d", second.PageNumber)
	}

	list, err := s.ListReadingProgress(&model.FindReadingProgress{UserID: &user.ID})
	if err != nil {
		t.Fatalf("Failed to list progress: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected a single progress row, got %d", len(list))
	}
}

func TestListHistoryOnePerManga(t *testing.T) {
	s := newTestStore(t)
	user, manga, chapter, second := seedReader(t, s)

	saves := []*model.ReadingProgress{
		{UserID: user.ID, MangaID: manga.ID, ChapterID: chapter.ID, PageNumber: 24, LastReadTs: 1000},
		{UserID: user.ID, MangaID: manga.ID, ChapterID: second.ID, PageNumber: 3, LastReadTs: 2000},
	}
	for _, save := range saves {
		if _, err := s.UpsertReadingProgress(save); err != nil {
			t.Fatalf("Failed to save progress: %v", err)
		}
	}

	history, err := s.ListHistory(user.ID, 20, 0)
	if err != nil {
		t.Fatalf("Failed to list history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected one history entry per manga, got %d", len(history))
	}
	entry := history[0]
	if entry.ChapterID != second.ID {
		t.Errorf("Expected latest chapter %d, got %d", second.ID, entry.ChapterID)
	}
	if entry.PageNumber != 3 {
		t.Errorf("Expected page 3, got %d", entry.PageNumber)
	}
	if entry.MangaSlug != "one-punch-man" {
		t.Errorf("Unexpected manga slug: %s", entry.MangaSlug)
	}

	count, err := s.CountHistory(user.ID)
	if err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected history count 1, got %d", count)
	}
}

func TestGetLastRead(t *testing.T) {
	s := newTestStore(t)
	user, manga, chapter, second := seedReader(t, s)

	if _, err := s.UpsertReadingProgress(&model.ReadingProgress{
		UserID: user.ID, MangaID: manga.ID, ChapterID: chapter.ID, PageNumber: 24, LastReadTs: 1000,
	}); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}
	if _, err := s.UpsertReadingProgress(&model.ReadingProgress{
		UserID: user.ID, MangaID: manga.ID, ChapterID: second.ID, PageNumber: 8, LastReadTs: 2000,
	}); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	entry, err := s.GetLastRead(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to get last read: %v", err)
	}
	if entry == nil {
		t.Fatalf("Expected a last-read entry")
	}
	if entry.ChapterSlug != "one-punch-man-chapter-2" {
		t.Errorf("Unexpected chapter slug: %s", entry.ChapterSlug)
	}

	// No progress for another user.
	other, err := s.CreateUser(&model.User{Username: "other", Role: model.RoleUser, PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	entry, err = s.GetLastRead(other.ID, manga.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected nil entry for a user without progress")
	}
}

func TestDeleteHistoryForManga(t *testing.T) {
	s := newTestStore(t)
	user, manga, chapter, second := seedReader(t, s)

	for _, chapterID := range []int32{chapter.ID, second.ID} {
		if _, err := s.UpsertReadingProgress(&model.ReadingProgress{
			UserID: user.ID, MangaID: manga.ID, ChapterID: chapterID, PageNumber: 1,
		}); err != nil {
			t.Fatalf("Failed to save progress: %v", err)
		}
	}

	removed, err := s.DeleteHistoryForManga(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to delete history: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed rows, got %d", removed)
	}

	removed, err = s.DeleteHistoryForManga(user.ID, manga.ID)
	if err != nil {
		t.Fatalf("Failed to delete history: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected 0 removed rows on second delete, got %d", removed)
	}
}
