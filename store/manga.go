package store

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

func (s *Store) GetManga(find *model.FindManga) (*model.Manga, error) {
	if find.Slug != nil {
		if cache, ok := s.MangaCache.Load(*find.Slug); ok {
			return cache.(*model.Manga), nil
		}
	}

	list, err := s.ListManga(find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	manga := list[0]
	genres, err := s.listGenresForManga(manga.ID)
	if err != nil {
		return nil, err
	}
	manga.Genres = genres
	s.MangaCache.Store(manga.Slug, manga)
	return manga, nil
}

func (s *Store) ListManga(find *model.FindManga) ([]*model.Manga, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "m.id = ?"), append(args, *v)
	}
	if v := find.Slug; v != nil {
		where, args = append(where, "m.slug = ?"), append(args, *v)
	}
	if v := find.Title; v != nil {
		where, args = append(where, "m.title = ?"), append(args, *v)
	}
	if v := find.Search; v != nil {
		where, args = append(where, "(m.title LIKE ? OR m.description LIKE ?)"), append(args, "%"+*v+"%", "%"+*v+"%")
	}
	if v := find.Kind; v != nil {
		where, args = append(where, "m.kind = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "m.status = ?"), append(args, string(*v))
	}
	if v := find.Genre; v != nil {
		where = append(where, "m.id IN (SELECT mg.manga_id FROM manga_genre mg JOIN genre g ON g.id = mg.genre_id WHERE g.slug = ?)")
		args = append(args, *v)
	}

	orderBy := "m.updated_ts"
	if v := find.OrderBy; v != nil {
		switch *v {
		case "title":
			orderBy = "m.title"
		case "created":
			orderBy = "m.created_ts"
		case "updated":
			orderBy = "m.updated_ts"
		case "views":
			orderBy = "view_count"
		}
	}
	direction := "DESC"
	if find.Ascending {
		direction = "ASC"
	}

	query := `
		SELECT
			m.id,
			m.title,
			m.slug,
			m.description,
			m.cover_path,
			m.kind,
			m.status,
			m.created_ts,
			m.updated_ts,
			COUNT(DISTINCT c.id) AS total_chapters,
			COALESCE(MAX(c.label), '') AS latest_chapter,
			(SELECT COUNT(*) FROM manga_view mv WHERE mv.manga_id = m.id) AS view_count
		FROM manga m
		LEFT JOIN chapter c ON c.manga_id = m.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY m.id
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
		log.Debug("Error querying manga", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Manga, 0)
	for rows.Next() {
		var manga model.Manga
		var viewCount int
		if err := rows.Scan(
			&manga.ID,
			&manga.Title,
			&manga.Slug,
			&manga.Description,
			&manga.CoverPath,
			&manga.Kind,
			&manga.Status,
			&manga.CreatedTs,
			&manga.UpdatedTs,
			&manga.TotalChapters,
			&manga.LatestChapter,
			&viewCount,
		); err != nil {
			return nil, err
		}
		list = append(list, &manga)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) CountManga(find *model.FindManga) (int, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Search; v != nil {
		where, args = append(where, "(m.title LIKE ? OR m.description LIKE ?)"), append(args, "%"+*v+"%", "%"+*v+"%")
	}
	if v := find.Kind; v != nil {
		where, args = append(where, "m.kind = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "m.status = ?"), append(args, string(*v))
	}
	if v := find.Genre; v != nil {
		where = append(where, "m.id IN (SELECT mg.manga_id FROM manga_genre mg JOIN genre g ON g.id = mg.genre_id WHERE g.slug = ?)")
		args = append(args, *v)
	}

	query := "SELECT COUNT(*) FROM manga m WHERE " + strings.Join(where, " AND ")

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CreateManga(create *model.Manga) (*model.Manga, error) {
	fields := []string{"`title`", "`slug`", "`description`", "`cover_path`", "`kind`", "`status`"}
	placeholder := []string{"?", "?", "?", "?", "?", "?"}
	args := []any{create.Title, create.Slug, create.Description, create.CoverPath, create.Kind, create.Status}
	stmt := "INSERT INTO manga (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholder, ", ") +
		") RETURNING id, title, slug, description, cover_path, kind, status, created_ts, updated_ts"

	log.Fallback("Debug", fmt.Sprintf("CreateManga\nstmt: %s\nargs: %v\n", stmt, args))

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var manga model.Manga
	if err := tx.QueryRow(stmt, args...).Scan(
		&manga.ID,
		&manga.Title,
		&manga.Slug,
		&manga.Description,
		&manga.CoverPath,
		&manga.Kind,
		&manga.Status,
		&manga.CreatedTs,
		&manga.UpdatedTs,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &manga, nil
}

func (s *Store) UpdateManga(update *model.Manga) (*model.Manga, error) {
	stmt := `
		UPDATE manga
		SET title = ?, description = ?, cover_path = ?, kind = ?, status = ?, updated_ts = ?
		WHERE id = ?
		RETURNING id, title, slug, description, cover_path, kind, status, created_ts, updated_ts
	`
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	var manga model.Manga
	if err := s.db.QueryRow(stmt,
		update.Title,
		update.Description,
		update.CoverPath,
		update.Kind,
		update.Status,
		time.Now().Unix(),
		update.ID,
	).Scan(
		&manga.ID,
		&manga.Title,
		&manga.Slug,
		&manga.Description,
		&manga.CoverPath,
		&manga.Kind,
		&manga.Status,
		&manga.CreatedTs,
		&manga.UpdatedTs,
	); err != nil {
		return nil, err
	}

	s.MangaCache.Delete(manga.Slug)
	return &manga, nil
}

func (s *Store) DeleteManga(mangaID int32) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Remove the series and everything hanging off it.
	stmts := []string{
		"DELETE FROM chapter_view WHERE chapter_id IN (SELECT id FROM chapter WHERE manga_id = ?)",
		"DELETE FROM manga_view WHERE manga_id = ?",
		"DELETE FROM reading_progress WHERE manga_id = ?",
		"DELETE FROM bookmark WHERE manga_id = ?",
		"DELETE FROM reading_list WHERE manga_id = ?",
		"DELETE FROM manga_genre WHERE manga_id = ?",
		"DELETE FROM chapter WHERE manga_id = ?",
		"DELETE FROM manga WHERE id = ?",
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, mangaID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.MangaCache.Range(func(key, value any) bool {
		if value.(*model.Manga).ID == mangaID {
			s.MangaCache.Delete(key)
			return false
		}
		return true
	})
	return nil
}

// SetMangaGenres replaces the genre links of a series, creating genres
// that do not exist yet.
func (s *Store) SetMangaGenres(mangaID int32, genres []*model.Genre) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM manga_genre WHERE manga_id = ?", mangaID); err != nil {
		return err
	}

	for _, genre := range genres {
		var genreID int32
		if err := tx.QueryRow(`
			INSERT INTO genre (name, slug)
			VALUES (?, ?)
			ON CONFLICT(slug) DO UPDATE SET name = excluded.name
			RETURNING id
		`, genre.Name, genre.Slug).Scan(&genreID); err != nil {
			return err
		}
		if _, err := tx.Exec("INSERT INTO manga_genre (manga_id, genre_id) VALUES (?, ?)", mangaID, genreID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.MangaCache.Range(func(key, value any) bool {
		if value.(*model.Manga).ID == mangaID {
			s.MangaCache.Delete(key)
			return false
		}
		return true
	})
	return nil
}

// UpsertGenre creates a genre or refreshes its display name when the
// slug already exists.
func (s *Store) UpsertGenre(genre *model.Genre) (*model.Genre, error) {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	if err := s.db.QueryRow(`
		INSERT INTO genre (name, slug)
		VALUES (?, ?)
		ON CONFLICT(slug) DO UPDATE SET name = excluded.name
		RETURNING id, name, slug
	`, genre.Name, genre.Slug).Scan(&genre.ID, &genre.Name, &genre.Slug); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *Store) ListGenres() ([]*model.Genre, error) {
	query := `
		SELECT g.id, g.name, g.slug, COUNT(mg.manga_id) AS manga_count
		FROM genre g
		LEFT JOIN manga_genre mg ON mg.genre_id = g.id
		GROUP BY g.id
		ORDER BY g.name ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Genre, 0)
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.Slug, &genre.MangaCount); err != nil {
			return nil, err
		}
		list = append(list, &genre)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) listGenresForManga(mangaID int32) ([]*model.Genre, error) {
	query := `
		SELECT g.id, g.name, g.slug
		FROM genre g
		JOIN manga_genre mg ON mg.genre_id = g.id
		WHERE mg.manga_id = ?
		ORDER BY g.name ASC
	`
	rows, err := s.db.Query(query, mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.Genre, 0)
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.Slug); err != nil {
			return nil, err
		}
		list = append(list, &genre)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
