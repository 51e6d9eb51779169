package store

import (
	"fmt"
	"strings"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

func (s *Store) GetChapter(find *model.FindChapter) (*model.Chapter, error) {
	list, err := s.ListChapters(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListChapters(find *model.FindChapter) ([]*model.Chapter, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.MangaID; v != nil {
		where, args = append(where, "manga_id = ?"), append(args, *v)
	}
	if v := find.Slug; v != nil {
		where, args = append(where, "slug = ?"), append(args, *v)
	}

	direction := "ASC"
	if find.Descending {
		direction = "DESC"
	}

	query := `
		SELECT
			id,
			manga_id,
			chapter_main,
			chapter_sub,
			label,
			slug,
			folder_name,
			volume_number,
			kind,
			page_count,
			uploaded_by,
			created_ts,
			updated_ts
		FROM chapter
		WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY chapter_main ` + direction + `, chapter_sub ` + direction
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

	list := make([]*model.Chapter, 0)
	for rows.Next() {
		var chapter model.Chapter
		if err := rows.Scan(
			&chapter.ID,
			&chapter.MangaID,
			&chapter.ChapterMain,
			&chapter.ChapterSub,
			&chapter.Label,
			&chapter.Slug,
			&chapter.FolderName,
			&chapter.VolumeNumber,
			&chapter.Kind,
			&chapter.PageCount,
			&chapter.UploadedBy,
			&chapter.CreatedTs,
			&chapter.UpdatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CountChapters(mangaID int32) (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chapter WHERE manga_id = ?", mangaID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CreateChapter(create *model.Chapter) (*model.Chapter, error) {
	fields := []string{"`manga_id`", "`chapter_main`", "`chapter_sub`", "`label`", "`slug`", "`folder_name`", "`volume_number`", "`kind`", "`page_count`", "`uploaded_by`"}
	placeholder := []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	args := []any{
		create.MangaID,
		create.ChapterMain,
		create.ChapterSub,
		create.Label,
		create.Slug,
		create.FolderName,
		create.VolumeNumber,
		create.Kind,
		create.PageCount,
		create.UploadedBy,
	}
	stmt := "INSERT INTO chapter (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholder, ", ") +
		") RETURNING id, manga_id, chapter_main, chapter_sub, label, slug, folder_name, volume_number, kind, page_count, uploaded_by, created_ts, updated_ts"

	log.Fallback("Debug", fmt.Sprintf("CreateChapter\nstmt: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var chapter model.Chapter
	if err := tx.QueryRow(stmt, args...).Scan(
		&chapter.ID,
		&chapter.MangaID,
		&chapter.ChapterMain,
		&chapter.ChapterSub,
		&chapter.Label,
		&chapter.Slug,
		&chapter.FolderName,
		&chapter.VolumeNumber,
		&chapter.Kind,
		&chapter.PageCount,
		&chapter.UploadedBy,
		&chapter.CreatedTs,
		&chapter.UpdatedTs,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	// New chapter bumps the series so it sorts as recently updated.
	if _, err := s.db.Exec("UPDATE manga SET updated_ts = strftime('%s', 'now') WHERE id = ?", chapter.MangaID); err != nil {
		return nil, err
	}
	s.MangaCache.Range(func(key, value any) bool {
		if value.(*model.Manga).ID == chapter.MangaID {
			s.MangaCache.Delete(key)
			return false
		}
		return true
	})

	return &chapter, nil
}

func (s *Store) DeleteChapter(chapterID int32) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		"DELETE FROM chapter_view WHERE chapter_id = ?",
		"DELETE FROM reading_progress WHERE chapter_id = ?",
		"DELETE FROM chapter WHERE id = ?",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, chapterID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
