package store

import (
	"fmt"
	"time"

	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

// WindowCutoff maps a named window to a unix cutoff. An unknown name
// falls back to "week".
func WindowCutoff(window string, now time.Time) int64 {
	switch window {
	case "today":
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).Unix()
	case "month":
		return now.AddDate(0, -1, 0).Unix()
	case "year":
		return now.AddDate(-1, 0, 0).Unix()
	default:
		return now.AddDate(0, 0, -7).Unix()
	}
}

func (s *Store) GetAnalyticsOverview() (*model.AnalyticsOverview, error) {
	now := time.Now()
	overview := &model.AnalyticsOverview{Timestamp: now.Unix()}

	todayTs := WindowCutoff("today", now)
	weekTs := WindowCutoff("week", now)
	monthTs := WindowCutoff("month", now)

	counts := []struct {
		query string
		args  []any
		dst   *int
	}{
		{"SELECT COUNT(*) FROM user WHERE row_status = 'NORMAL'", nil, &overview.Database.TotalUsers},
		{"SELECT COUNT(*) FROM user WHERE last_login_ts >= ?", []any{todayTs}, &overview.Database.ActiveUsersToday},
		{"SELECT COUNT(*) FROM user WHERE last_login_ts >= ?", []any{weekTs}, &overview.Database.ActiveUsersWeek},
		{"SELECT COUNT(*) FROM manga", nil, &overview.Database.TotalManga},
		{"SELECT COUNT(*) FROM manga WHERE status = 'ongoing'", nil, &overview.Database.MangaOngoing},
		{"SELECT COUNT(*) FROM manga WHERE status = 'completed'", nil, &overview.Database.MangaCompleted},
		{"SELECT COUNT(*) FROM chapter", nil, &overview.Database.TotalChapters},
		{"SELECT COUNT(*) FROM manga_view", nil, &overview.Views.TotalMangaViews},
		{"SELECT COUNT(*) FROM chapter_view", nil, &overview.Views.TotalChapterViews},
		{"SELECT (SELECT COUNT(*) FROM manga_view WHERE viewed_ts >= ?) + (SELECT COUNT(*) FROM chapter_view WHERE viewed_ts >= ?)", []any{todayTs, todayTs}, &overview.Views.ViewsToday},
		{"SELECT (SELECT COUNT(*) FROM manga_view WHERE viewed_ts >= ?) + (SELECT COUNT(*) FROM chapter_view WHERE viewed_ts >= ?)", []any{weekTs, weekTs}, &overview.Views.ViewsWeek},
		{"SELECT (SELECT COUNT(*) FROM manga_view WHERE viewed_ts >= ?) + (SELECT COUNT(*) FROM chapter_view WHERE viewed_ts >= ?)", []any{monthTs, monthTs}, &overview.Views.ViewsMonth},
		{"SELECT COUNT(*) FROM bookmark", nil, &overview.Engagement.TotalBookmarks},
		{"SELECT COUNT(*) FROM reading_list", nil, &overview.Engagement.TotalReadingLists},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query, c.args...).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	genres, err := s.ListPopularGenres(5)
	if err != nil {
		return nil, err
	}
	overview.PopularGenres = genres

	growth, err := s.ListUserGrowth(30)
	if err != nil {
		return nil, err
	}
	overview.UserGrowth = growth

	return overview, nil
}

// ListMangaViewStats returns per-manga view counts over the standard
// windows, most viewed first.
func (s *Store) ListMangaViewStats(limit, offset int) ([]*model.MangaViewStats, error) {
	now := time.Now()
	todayTs := WindowCutoff("today", now)
	weekTs := WindowCutoff("week", now)
	monthTs := WindowCutoff("month", now)

	query := `
		SELECT
			m.id, m.title, m.slug,
			COUNT(mv.id) AS total_views,
			COUNT(CASE WHEN mv.viewed_ts >= ? THEN 1 END) AS views_today,
			COUNT(CASE WHEN mv.viewed_ts >= ? THEN 1 END) AS views_week,
			COUNT(CASE WHEN mv.viewed_ts >= ? THEN 1 END) AS views_month,
			COUNT(DISTINCT COALESCE(CAST(mv.user_id AS TEXT), mv.ip_hash)) AS unique_viewers
		FROM manga m
		LEFT JOIN manga_view mv ON mv.manga_id = m.id
		GROUP BY m.id
		ORDER BY total_views DESC, m.title ASC
		LIMIT ? OFFSET ?
	`
	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\n", query))

	rows, err := s.db.Query(query, todayTs, weekTs, monthTs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.MangaViewStats, 0)
	for rows.Next() {
		var stats model.MangaViewStats
		if err := rows.Scan(
			&stats.MangaID,
			&stats.MangaTitle,
			&stats.MangaSlug,
			&stats.TotalViews,
			&stats.ViewsToday,
			&stats.ViewsWeek,
			&stats.ViewsMonth,
			&stats.UniqueViewers,
		); err != nil {
			return nil, err
		}
		list = append(list, &stats)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// ListTopManga ranks manga within a window by one of the metrics
// views, bookmarks or reading_lists.
func (s *Store) ListTopManga(metric, window string, limit int) ([]*model.TopManga, error) {
	cutoff := WindowCutoff(window, time.Now())

	var query string
	switch metric {
	case "bookmarks":
		query = `
		SELECT m.id, m.title, m.slug, COUNT(b.id) AS metric_count
		FROM bookmark b
		JOIN manga m ON m.id = b.manga_id
		WHERE b.created_ts >= ?
		GROUP BY m.id
		ORDER BY metric_count DESC, m.title ASC
		LIMIT ?
	`
	case "reading_lists":
		query = `
		SELECT m.id, m.title, m.slug, COUNT(rl.id) AS metric_count
		FROM reading_list rl
		JOIN manga m ON m.id = rl.manga_id
		WHERE rl.added_ts >= ?
		GROUP BY m.id
		ORDER BY metric_count DESC, m.title ASC
		LIMIT ?
	`
	default:
		query = `
		SELECT m.id, m.title, m.slug, COUNT(mv.id) AS metric_count
		FROM manga_view mv
		JOIN manga m ON m.id = mv.manga_id
		WHERE mv.viewed_ts >= ?
		GROUP BY m.id
		ORDER BY metric_count DESC, m.title ASC
		LIMIT ?
	`
	}
	rows, err := s.db.Query(query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.TopManga, 0)
	for rows.Next() {
		var top model.TopManga
		if err := rows.Scan(&top.MangaID, &top.MangaTitle, &top.MangaSlug, &top.Count); err != nil {
			return nil, err
		}
		top.Rank = len(list) + 1
		list = append(list, &top)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// ListUserGrowth returns daily registration counts for the last N days,
// oldest first, with a running total.
func (s *Store) ListUserGrowth(days int) ([]model.GrowthPoint, error) {
	cutoff := time.Now().AddDate(0, 0, -days).Unix()

	var baseline int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM user WHERE created_ts < ?", cutoff).Scan(&baseline); err != nil {
		return nil, err
	}

	query := `
		SELECT date(created_ts, 'unixepoch') AS day, COUNT(*)
		FROM user
		WHERE created_ts >= ?
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := s.db.Query(query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.GrowthPoint, 0)
	total := baseline
	for rows.Next() {
		var point model.GrowthPoint
		if err := rows.Scan(&point.Date, &point.NewUsers); err != nil {
			return nil, err
		}
		total += point.NewUsers
		point.TotalUsers = total
		list = append(list, point)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// ListPopularGenres ranks genres by how many series carry them.
func (s *Store) ListPopularGenres(limit int) ([]*model.Genre, error) {
	query := `
		SELECT g.id, g.name, g.slug, COUNT(mg.manga_id) AS manga_count
		FROM genre g
		JOIN manga_genre mg ON mg.genre_id = g.id
		GROUP BY g.id
		ORDER BY manga_count DESC, g.name ASC
		LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
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

// ListRecentActivity merges recent views and bookmarks into one feed,
// newest first. Anonymous views carry an empty username.
func (s *Store) ListRecentActivity(limit int) ([]*model.ActivityEntry, error) {
	query := `
		SELECT * FROM (
			SELECT 'view' AS type, COALESCE(u.username, '') AS username, m.title, mv.viewed_ts AS ts
			FROM manga_view mv
			JOIN manga m ON m.id = mv.manga_id
			LEFT JOIN user u ON u.id = mv.user_id
			UNION ALL
			SELECT 'bookmark' AS type, u.username, m.title, b.created_ts AS ts
			FROM bookmark b
			JOIN user u ON u.id = b.user_id
			JOIN manga m ON m.id = b.manga_id
		)
		ORDER BY ts DESC
		LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*model.ActivityEntry, 0)
	for rows.Next() {
		var entry model.ActivityEntry
		if err := rows.Scan(&entry.Type, &entry.Username, &entry.MangaTitle, &entry.Timestamp); err != nil {
			return nil, err
		}
		list = append(list, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
