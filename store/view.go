package store

import (
	"fmt"
	"time"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

func viewTable(kind model.ViewKind) (table, column string) {
	if kind == model.ViewChapter {
		return "chapter_view", "chapter_id"
	}
	return "manga_view", "manga_id"
}

// AddView appends one view event.
func (s *Store) AddView(view *model.View) error {
	table, column := viewTable(view.Kind)

	viewedTs := view.ViewedTs
	if viewedTs == 0 {
		viewedTs = time.Now().Unix()
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s, user_id, ip_hash, viewed_ts) VALUES (?, ?, ?, ?)", table, column,
	)
	log.Fallback("Debug", fmt.Sprintf("AddView\nstmt: %s\n", stmt))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	_, err := s.db.Exec(stmt, view.TargetID, view.UserID, view.IPHash, viewedTs)
	return err
}

func (s *Store) CountViews(kind model.ViewKind, since int64) (int, error) {
	table, _ := viewTable(kind)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE viewed_ts >= ?", table)

	var count int
	if err := s.db.QueryRow(query, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// PruneViewsOlderThan removes view events of one kind older than the
// cutoff. Returns the number of removed rows.
func (s *Store) PruneViewsOlderThan(kind model.ViewKind, cutoffTs int64) (int64, error) {
	table, _ := viewTable(kind)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE viewed_ts < ?", table), cutoffTs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// PruneViewsForTarget removes every view event of one manga or chapter.
func (s *Store) PruneViewsForTarget(kind model.ViewKind, targetID int32) (int64, error) {
	table, column := viewTable(kind)

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column), targetID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// PruneAllViews truncates both view tables. Returns rows removed per kind.
func (s *Store) PruneAllViews() (mangaViews, chapterViews int64, err error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.Exec("DELETE FROM manga_view")
	if err != nil {
		return 0, 0, err
	}
	mangaViews, _ = result.RowsAffected()

	result, err = s.db.Exec("DELETE FROM chapter_view")
	if err != nil {
		return mangaViews, 0, err
	}
	chapterViews, _ = result.RowsAffected()

	return mangaViews, chapterViews, nil
}
