package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

// UpsertReadingListEntry moves a manga onto a shelf. A second call for
// the same (user, manga) replaces status, rating and notes but keeps
// added_ts.
func (s *Store) UpsertReadingListEntry(upsert *model.ReadingListEntry) (*model.ReadingListEntry, error) {
	stmt := `
		INSERT INTO reading_list (user_id, manga_id, status, rating, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, manga_id) DO UPDATE
		SET status = excluded.status,
			rating = excluded.rating,
			notes = excluded.notes,
			updated_ts = ?
		RETURNING id, user_id, manga_id, status, rating, notes, added_ts, updated_ts
	`
	log.Fallback("Debug", fmt.Sprintf("UpsertReadingListEntry\nstmt: %s\n", stmt))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var entry model.ReadingListEntry
	if err := s.db.QueryRow(stmt,
		upsert.UserID,
		upsert.MangaID,
		upsert.Status,
		upsert.Rating,
		upsert.Notes,
		time.Now().Unix(),
	).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.MangaID,
		&entry.Status,
		&entry.Rating,
		&entry.Notes,
		&entry.AddedTs,
		&entry.UpdatedTs,
	); err != nil {
		return nil, err
	}

	return &entry, nil
}

// RemoveReadingListEntry returns the number of removed rows.
func (s *Store) RemoveReadingListEntry(userID, mangaID int32) (int64, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.Exec("DELETE FROM reading_list WHERE user_id = ? AND manga_id = ?", userID, mangaID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) GetReadingListEntry(userID, mangaID int32) (*model.ReadingListEntry, error) {
	query := `
		SELECT id, user_id, manga_id, status, rating, notes, added_ts, updated_ts
		FROM reading_list
		WHERE user_id = ? AND manga_id = ?
	`
	rows, err := s.db.Query(query, userID, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var entry model.ReadingListEntry
	if err := rows.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.MangaID,
		&entry.Status,
		&entry.Rating,
		&entry.Notes,
		&entry.AddedTs,
		&entry.UpdatedTs,
	); err != nil {
		return nil, err
	}

	return &entry, rows.Err()
}

func (s *Store) ListReadingListEntries(find *model.FindReadingListEntry) ([]*model.ListEntryDetail, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "rl.user_id = ?"), append(args, *v)
	}
	if v := find.MangaID; v != nil {
		where, args = append(where, "rl.manga_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "rl.status = ?"), append(args, string(*v))
	}

	orderBy := "rl.updated_ts"
	switch find.SortBy {
	case "added_at":
		orderBy = "rl.added_ts"
	case "title":
		orderBy = "m.title"
	case "rating":
		orderBy = "rl.rating"
	}
	direction := "DESC"
	if find.Ascending {
		direction = "ASC"
	}

	query := `
		SELECT
			m.id, m.title, m.slug, m.cover_path,
			rl.status, rl.rating, rl.notes,
			COUNT(DISTINCT c.id) AS total_chapters,
			COUNT(DISTINCT rp.chapter_id) AS read_chapters,
			rl.added_ts, rl.updated_ts
		FROM reading_list rl
		JOIN manga m ON m.id = rl.manga_id
		LEFT JOIN chapter c ON c.manga_id = m.id
		LEFT JOIN reading_progress rp ON rp.manga_id = m.id AND rp.user_id = rl.user_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY rl.id
		ORDER BY ` + orderBy + ` ` + direction
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}

	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.ListEntryDetail, 0)
	for rows.Next() {
		var entry model.ListEntryDetail
		if err := rows.Scan(
			&entry.MangaID,
			&entry.MangaTitle,
			&entry.MangaSlug,
			&entry.CoverPath,
			&entry.Status,
			&entry.Rating,
			&entry.Notes,
			&entry.TotalChapters,
			&entry.ReadChapters,
			&entry.AddedTs,
			&entry.UpdatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CountReadingListEntries(find *model.FindReadingListEntry) (int, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, string(*v))
	}

	query := "SELECT COUNT(*) FROM reading_list WHERE " + strings.Join(where, " AND ")

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetReadingStats summarizes a user's shelves, bookmarks and history.
// Every shelf appears in ByStatus, zero counts included.
func (s *Store) GetReadingStats(userID int32) (*model.ReadingStats, error) {
	stats := &model.ReadingStats{
		ByStatus: make(map[model.ListStatus]int, len(model.ListStatuses)),
	}
	for _, status := range model.ListStatuses {
		stats.ByStatus[status] = 0
	}

	rows, err := s.db.Query(
		"SELECT status, COUNT(*) FROM reading_list WHERE user_id = ? GROUP BY status", userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status model.ListStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.TotalInList += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalBookmarks, err = s.CountBookmarks(userID); err != nil {
		return nil, err
	}
	if stats.TotalHistory, err = s.CountHistory(userID); err != nil {
		return nil, err
	}

	return stats, nil
}
