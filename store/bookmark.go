package store

import (
	"fmt"
	"strings"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

// AddBookmark is idempotent: bookmarking the same manga twice returns
// the existing row unchanged.
func (s *Store) AddBookmark(userID, mangaID int32) (*model.Bookmark, error) {
	stmt := `
		INSERT INTO bookmark (user_id, manga_id)
		VALUES (?, ?)
		ON CONFLICT(user_id, manga_id) DO UPDATE
		SET user_id = excluded.user_id
		RETURNING id, user_id, manga_id, created_ts
	`
	log.Fallback("Debug", fmt.Sprintf("AddBookmark\nstmt: %s\nargs: [%d %d]\n", stmt, userID, mangaID))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var bookmark model.Bookmark
	if err := s.db.QueryRow(stmt, userID, mangaID).Scan(
		&bookmark.ID,
		&bookmark.UserID,
		&bookmark.MangaID,
		&bookmark.CreatedTs,
	); err != nil {
		return nil, err
	}

	return &bookmark, nil
}

// RemoveBookmark returns the number of removed rows, zero when the
// bookmark did not exist.
func (s *Store) RemoveBookmark(userID, mangaID int32) (int64, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	result, err := s.db.Exec("DELETE FROM bookmark WHERE user_id = ? AND manga_id = ?", userID, mangaID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) HasBookmark(userID, mangaID int32) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(
		"SELECT COUNT(*) > 0 FROM bookmark WHERE user_id = ? AND manga_id = ?", userID, mangaID,
	).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) ListBookmarks(find *model.FindBookmark) ([]*model.BookmarkEntry, error) {
	orderBy := "b.created_ts"
	switch find.SortBy {
	case "title":
		orderBy = "m.title"
	case "updated_at":
		orderBy = "m.updated_ts"
	}
	direction := "DESC"
	if find.Ascending {
		direction = "ASC"
	}

	where, args := []string{"1 = 1"}, []any{}
	if v := find.UserID; v != nil {
		where, args = append(where, "b.user_id = ?"), append(args, *v)
	}
	if v := find.MangaID; v != nil {
		where, args = append(where, "b.manga_id = ?"), append(args, *v)
	}

	query := `
		SELECT
			m.id, m.title, m.slug, m.cover_path,
			COUNT(DISTINCT c.id) AS total_chapters,
			COALESCE(MAX(c.label), '') AS latest_chapter,
			b.created_ts
		FROM bookmark b
		JOIN manga m ON m.id = b.manga_id
		LEFT JOIN chapter c ON c.manga_id = m.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY b.id
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

	list := make([]*model.BookmarkEntry, 0)
	for rows.Next() {
		var entry model.BookmarkEntry
		if err := rows.Scan(
			&entry.MangaID,
			&entry.MangaTitle,
			&entry.MangaSlug,
			&entry.CoverPath,
			&entry.TotalChapters,
			&entry.LatestChapter,
			&entry.CreatedTs,
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

func (s *Store) CountBookmarks(userID int32) (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM bookmark WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
