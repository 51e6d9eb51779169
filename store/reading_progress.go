package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

// UpsertReadingProgress saves a position. A second save for the same
// (user, manga, chapter) overwrites the page and bumps last_read_ts.
func (s *Store) UpsertReadingProgress(upsert *model.ReadingProgress) (*model.ReadingProgress, error) {
	stmt := `
		INSERT INTO reading_progress (user_id, manga_id, chapter_id, page_number, last_read_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, manga_id, chapter_id) DO UPDATE
		SET page_number = excluded.page_number, last_read_ts = excluded.last_read_ts
		RETURNING id, user_id, manga_id, chapter_id, page_number, last_read_ts
	`
	lastReadTs := upsert.LastReadTs
	if lastReadTs == 0 {
		lastReadTs = time.Now().Unix()
	}

	log.Fallback("Debug", fmt.Sprintf("UpsertReadingProgress\nstmt: %s\n", stmt))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var progress model.ReadingProgress
	if err := s.db.QueryRow(stmt,
		upsert.UserID,
		upsert.MangaID,
		upsert.ChapterID,
		upsert.PageNumber,
		lastReadTs,
	).Scan(
		&progress.ID,
		&progress.UserID,
		&progress.MangaID,
		&progress.ChapterID,
		&progress.PageNumber,
		&progress.LastReadTs,
	); err != nil {
		return nil, err
	}

	return &progress, nil
}

func (s *Store) GetReadingProgress(find *model.FindReadingProgress) (*model.ReadingProgress, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.ListReadingProgress(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListReadingProgress(find *model.FindReadingProgress) ([]*model.ReadingProgress, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.MangaID; v != nil {
		where, args = append(where, "manga_id = ?"), append(args, *v)
	}
	if v := find.ChapterID; v != nil {
		where, args = append(where, "chapter_id = ?"), append(args, *v)
	}

	query := `
		SELECT id, user_id, manga_id, chapter_id, page_number, last_read_ts
		FROM reading_progress
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY last_read_ts DESC`
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

	list := make([]*model.ReadingProgress, 0)
	for rows.Next() {
		var progress model.ReadingProgress
		if err := rows.Scan(
			&progress.ID,
			&progress.UserID,
			&progress.MangaID,
			&progress.ChapterID,
			&progress.PageNumber,
			&progress.LastReadTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &progress)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// GetLastRead returns the most recent position within one manga.
func (s *Store) GetLastRead(userID, mangaID int32) (*model.HistoryEntry, error) {
	query := `
		SELECT
			m.id, m.title, m.slug, m.cover_path,
			c.id, c.label, c.slug, c.page_count,
			rp.page_number, rp.last_read_ts
		FROM reading_progress rp
		JOIN manga m ON m.id = rp.manga_id
		JOIN chapter c ON c.id = rp.chapter_id
		WHERE rp.user_id = ? AND rp.manga_id = ?
		ORDER BY rp.last_read_ts DESC
		LIMIT 1
	`
	rows, err := s.db.Query(query, userID, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var entry model.HistoryEntry
	if err := rows.Scan(
		&entry.MangaID,
		&entry.MangaTitle,
		&entry.MangaSlug,
		&entry.CoverPath,
		&entry.ChapterID,
		&entry.ChapterLabel,
		&entry.ChapterSlug,
		&entry.TotalPages,
		&entry.PageNumber,
		&entry.LastReadTs,
	); err != nil {
		return nil, err
	}

	return &entry, rows.Err()
}

// ListHistory returns one entry per manga, the latest position first.
func (s *Store) ListHistory(userID int32, limit, offset int) ([]*model.HistoryEntry, error) {
	query := `
		SELECT
			m.id, m.title, m.slug, m.cover_path,
			c.id, c.label, c.slug, c.page_count,
			rp.page_number, rp.last_read_ts
		FROM reading_progress rp
		JOIN (
			SELECT manga_id, MAX(last_read_ts) AS max_ts
			FROM reading_progress
			WHERE user_id = ?
			GROUP BY manga_id
		) latest ON latest.manga_id = rp.manga_id AND latest.max_ts = rp.last_read_ts
		JOIN manga m ON m.id = rp.manga_id
		JOIN chapter c ON c.id = rp.chapter_id
		WHERE rp.user_id = ?
		GROUP BY rp.manga_id
		ORDER BY rp.last_read_ts DESC
		LIMIT ? OFFSET ?
	`
	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: [%d %d %d %d]\n", query, userID, userID, limit, offset))

	rows, err := s.db.Query(query, userID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.HistoryEntry, 0)
	for rows.Next() {
		var entry model.HistoryEntry
		if err := rows.Scan(
			&entry.MangaID,
			&entry.MangaTitle,
			&entry.MangaSlug,
			&entry.CoverPath,
			&entry.ChapterID,
			&entry.ChapterLabel,
			&entry.ChapterSlug,
			&entry.TotalPages,
			&entry.PageNumber,
			&entry.LastReadTs,
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

// CountHistory counts distinct manga with saved progress.
func (s *Store) CountHistory(userID int32) (int, error) {
	var count int
	if err := s.db.QueryRow(
		"SELECT COUNT(DISTINCT manga_id) FROM reading_progress WHERE user_id = ?", userID,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteHistoryForManga removes every saved position of one manga.
// Returns the number of removed rows.
func (s *Store) DeleteHistoryForManga(userID, mangaID int32) (int64, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.Exec(
		"DELETE FROM reading_progress WHERE user_id = ? AND manga_id = ?", userID, mangaID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountReadChapters counts distinct chapters of a manga the user has opened.
func (s *Store) CountReadChapters(userID, mangaID int32) (int, error) {
	var count int
	if err := s.db.QueryRow(
		"SELECT COUNT(DISTINCT chapter_id) FROM reading_progress WHERE user_id = ? AND manga_id = ?",
		userID, mangaID,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
