package worker

import (
	"context"
	"testing"
	"time"

	"github.com/yomu-app/yomu/config"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/store"
	"github.com/yomu-app/yomu/store/db"
)

// Initialize the logger and config
func init() {
	config.Opts = config.GetDefaultOptions()
	log.Logger = log.NewLogger()
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	config.Opts.Data = dir
	config.Opts.DSN = dir + "/yomu_test.db"

	d, err := db.NewDB(config.Opts.DSN)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := d.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate db: %v", err)
	}
	return store.NewStore(d.DB)
}

func seedManga(t *testing.T, s *store.Store) *model.Manga {
	t.Helper()
	manga, err := s.CreateManga(&model.Manga{
		Title:  "Berserk",
		Slug:   "berserk",
		Kind:   "manga",
		Status: model.MangaOngoing,
	})
	if err != nil {
		t.Fatalf("Failed to create manga: %v", err)
	}
	return manga
}

func TestViewRecordPool(t *testing.T) {
	s := newTestStore(t)
	seedManga(t, s)

	pool := NewViewRecordPool(s, 2)
	pool.Push(model.ViewJob{
		Kind:   model.ViewManga,
		Slug:   "berserk",
		IPHash: "abcd1234",
	})

	deadline := time.Now().Add(5 * time.Second)
	for {
		count, err := s.CountViews(model.ViewManga, 0)
		if err != nil {
			t.Fatalf("Failed to count views: %v", err)
		}
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("View was not recorded, count is %d", count)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestViewRecordPoolUnknownSlug(t *testing.T) {
	s := newTestStore(t)

	pool := NewViewRecordPool(s, 1)
	pool.Push(model.ViewJob{
		Kind: model.ViewManga,
		Slug: "does-not-exist",
	})

	// Give the worker a moment, then make sure nothing was written.
	time.Sleep(100 * time.Millisecond)
	count, err := s.CountViews(model.ViewManga, 0)
	if err != nil {
		t.Fatalf("Failed to count views: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no views for an unknown slug, got %d", count)
	}
}

func TestRetentionSweep(t *testing.T) {
	s := newTestStore(t)
	manga := seedManga(t, s)

	now := time.Now().Unix()
	old := now - int64(config.Opts.ViewRetentionDays+10)*86400
	views := []*model.View{
		{Kind: model.ViewManga, TargetID: manga.ID, IPHash: "old", ViewedTs: old},
		{Kind: model.ViewManga, TargetID: manga.ID, IPHash: "new", ViewedTs: now},
	}
	for _, view := range views {
		if err := s.AddView(view); err != nil {
			t.Fatalf("Failed to add view: %v", err)
		}
	}

	w := NewRetentionWorker(s)
	w.Sweep()

	count, err := s.CountViews(model.ViewManga, 0)
	if err != nil {
		t.Fatalf("Failed to count views: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 view after sweep, got %d", count)
	}
}
