package store

import (
	"testing"
	"time"

	"github.com/yomu-app/yomu/model"
)

func TestAddAndPruneViews(t *testing.T) {
	s := newTestStore(t)
	user, manga, chapter, _ := seedReader(t, s)

	now := time.Now().Unix()
	views := []*model.View{
		{Kind: model.ViewManga, TargetID: manga.ID, UserID: &user.ID, ViewedTs: now},
		{Kind: model.ViewManga, TargetID: manga.ID, IPHash: "abcd1234", ViewedTs: now - 90*86400},
		{Kind: model.ViewChapter, TargetID: chapter.ID, UserID: &user.ID, ViewedTs: now},
	}
	for _, view := range views {
		if err := s.AddView(view); err != nil {
			t.Fatalf("Failed to add view: %v", err)
		}
	}

	count, err := s.CountViews(model.ViewManga, 0)
	if err != nil {
		t.Fatalf("Failed to count views: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 manga views, got %d", count)
	}

	// Prune everything older than 30 days.
	removed, err := s.PruneViewsOlderThan(model.ViewManga, now-30*86400)
	if err != nil {
		t.Fatalf("Failed to prune views: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 pruned view, got %d", removed)
	}

	count, err = s.CountViews(model.ViewManga, 0)
	if err != nil {
		t.Fatalf("Failed to count views: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 manga view after prune, got %d", count)
	}
}

func TestPruneViewsForTarget(t *testing.T) {
	s := newTestStore(t)
	user, manga, _, _ := seedReader(t, s)

	for i := 0; i < 3; i++ {
		if err := s.AddView(&model.View{Kind: model.ViewManga, TargetID: manga.ID, UserID: &user.ID}); err != nil {
			t.Fatalf("Failed to add view: %v", err)
		}
	}

	removed, err := s.PruneViewsForTarget(model.ViewManga, manga.ID)
	if err != nil {
		t.Fatalf("Failed to prune views: %v", err)
	}
	if removed != 3 {
		t.Errorf("Expected 3 pruned views, got %d", removed)
	}
}

func TestPruneAllViews(t *testing.T) {
	s := newTestStore(t)
	user, manga, chapter, _ := seedReader(t, s)

	if err := s.AddView(&model.View{Kind: model.ViewManga, TargetID: manga.ID, UserID: &user.ID}); err != nil {
		t.Fatalf("Failed to add view: %v", err)
	}
	if err := s.AddView(&model.View{Kind: model.ViewChapter, TargetID: chapter.ID, UserID: &user.ID}); err != nil {
		t.Fatalf("Failed to add view: %v", err)
	}

	mangaViews, chapterViews, err := s.PruneAllViews()
	if err != nil {
		t.Fatalf("Failed to prune all views: %v", err)
	}
	if mangaViews != 1 || chapterViews != 1 {
		t.Errorf("Expected 1+1 pruned views, got %d+%d", mangaViews, chapterViews)
	}
}

func TestAnalyticsOverview(t *testing.T) {
	s := newTestStore(t)
	user, manga, chapter, _ := seedReader(t, s)

	if err := s.AddView(&model.View{Kind: model.ViewManga, TargetID: manga.ID, UserID: &user.ID}); err != nil {
		t.Fatalf("Failed to add view: %v", err)
	}
	if err := s.AddView(&model.View{Kind: model.ViewChapter, TargetID: chapter.ID, IPHash: "abcd1234"}); err != nil {
		t.Fatalf("Failed to add view: %v", err)
	}
	if _, err := s.AddBookmark(user.ID, manga.ID); err != nil {
		t.Fatalf("Failed to add bookmark: %v", err)
	}

	overview, err := s.GetAnalyticsOverview()
	if err != nil {
		t.Fatalf("Failed to get overview: %v", err)
	}
	if overview.Database.TotalUsers != 1 {
		t.Errorf("Expected 1 user, got %d", overview.Database.TotalUsers)
	}
	if overview.Database.TotalManga != 1 {
		t.Errorf("Expected 1 manga, got %d", overview.Database.TotalManga)
	}
	if overview.Views.TotalMangaViews != 1 || overview.Views.TotalChapterViews != 1 {
		t.Errorf("Unexpected view totals: %+v", overview.Views)
	}
	if overview.Views.ViewsToday != 2 {
		t.Errorf("Expected 2 views today, got %d", overview.Views.ViewsToday)
	}
	if overview.Engagement.TotalBookmarks != 1 {
		t.Errorf("Expected 1 bookmark, got %d", overview.Engagement.TotalBookmarks)
	}
	if len(overview.PopularGenres) == 0 {
		t.Errorf("Expected popular genres to be filled")
	}
}

func TestListTopManga(t *testing.T) {
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

	for i := 0; i < 3; i++ {
		if err := s.AddView(&model.View{Kind: model.ViewManga, TargetID: berserk.ID, UserID: &user.ID}); err != nil {
			t.Fatalf("Failed to add view: %v", err)
		}
	}
	if err := s.AddView(&model.View{Kind: model.ViewManga, TargetID: manga.ID, UserID: &user.ID}); err != nil {
		t.Fatalf("Failed to add view: %v", err)
	}

	top, err := s.ListTopManga("views", "week", 10)
	if err != nil {
		t.Fatalf("Failed to list top manga: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Expected 2 ranked manga, got %d", len(top))
	}
	if top[0].MangaSlug != "berserk" || top[0].Count != 3 || top[0].Rank != 1 {
		t.Errorf("Unexpected first rank: %+v", top[0])
	}
}
