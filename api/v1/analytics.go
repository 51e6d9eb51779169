package v1

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/yomu-app/yomu/http/request"
	"github.com/yomu-app/yomu/http/response"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

func (h *Handler) analyticsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.store.GetAnalyticsOverview()
	if err != nil {
		log.Error("Error building analytics overview", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, overview)
}

func (h *Handler) analyticsMangaViews(w http.ResponseWriter, r *http.Request) {
	page, pageSize := request.PageParams(r)
	stats, err := h.store.ListMangaViewStats(pageSize, (page-1)*pageSize)
	if err != nil {
		log.Error("Error listing manga view stats", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	total, err := h.store.CountManga(&model.FindManga{})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, newPaginatedResponse(stats, total, page, pageSize))
}

func (h *Handler) analyticsUserGrowth(w http.ResponseWriter, r *http.Request) {
	days := request.QueryIntParam(r, "days", 30)
	if days < 1 || days > 365 {
		response.BadRequest(w, r, errors.Errorf("days out of range: %d", days))
		return
	}
	growth, err := h.store.ListUserGrowth(days)
	if err != nil {
		log.Error("Error listing user growth", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, growth)
}

func (h *Handler) analyticsPopularGenres(w http.ResponseWriter, r *http.Request) {
	limit := request.QueryIntParam(r, "limit", 10)
	genres, err := h.store.ListPopularGenres(limit)
	if err != nil {
		log.Error("Error listing popular genres", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, genres)
}

func (h *Handler) analyticsTopManga(w http.ResponseWriter, r *http.Request) {
	metric := request.QueryStringParam(r, "metric", "views")
	switch metric {
	case "views", "bookmarks", "reading_lists":
	default:
		response.BadRequest(w, r, errors.Errorf("invalid metric: %q", metric))
		return
	}
	window := request.QueryStringParam(r, "period", "week")
	switch window {
	case "today", "week", "month", "year":
	default:
		response.BadRequest(w, r, errors.Errorf("invalid period: %q", window))
		return
	}
	limit := request.QueryIntParam(r, "limit", 10)

	top, err := h.store.ListTopManga(metric, window, limit)
	if err != nil {
		log.Error("Error listing top manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, top)
}

func (h *Handler) analyticsRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := request.QueryIntParam(r, "limit", 20)
	activity, err := h.store.ListRecentActivity(limit)
	if err != nil {
		log.Error("Error listing recent activity", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, activity)
}

func (h *Handler) pruneMangaViews(w http.ResponseWriter, r *http.Request) {
	h.pruneViewsOlderThan(w, r, model.ViewManga)
}

func (h *Handler) pruneChapterViews(w http.ResponseWriter, r *http.Request) {
	h.pruneViewsOlderThan(w, r, model.ViewChapter)
}

func (h *Handler) pruneViewsOlderThan(w http.ResponseWriter, r *http.Request, kind model.ViewKind) {
	days := request.QueryIntParam(r, "older_than_days", 0)
	if days < 1 {
		response.BadRequest(w, r, errors.New("older_than_days must be at least 1"))
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days).Unix()
	deleted, err := h.store.PruneViewsOlderThan(kind, cutoff)
	if err != nil {
		log.Error("Error pruning views", zap.Error(err), zap.String("kind", string(kind)))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]int64{"deleted_count": deleted})
}

func (h *Handler) pruneMangaViewsForManga(w http.ResponseWriter, r *http.Request) {
	h.pruneViewsForTarget(w, r, model.ViewManga)
}

func (h *Handler) pruneChapterViewsForChapter(w http.ResponseWriter, r *http.Request) {
	h.pruneViewsForTarget(w, r, model.ViewChapter)
}

func (h *Handler) pruneViewsForTarget(w http.ResponseWriter, r *http.Request, kind model.ViewKind) {
	targetID := int32(request.RouteIntParam(r, "id"))
	if targetID == 0 {
		response.BadRequest(w, r, errors.New("invalid id"))
		return
	}

	deleted, err := h.store.PruneViewsForTarget(kind, targetID)
	if err != nil {
		log.Error("Error pruning views", zap.Error(err), zap.String("kind", string(kind)))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]int64{"deleted_count": deleted})
}

func (h *Handler) pruneAllMangaViews(w http.ResponseWriter, r *http.Request) {
	h.pruneAllViews(w, r, model.ViewManga)
}

func (h *Handler) pruneAllChapterViews(w http.ResponseWriter, r *http.Request) {
	h.pruneAllViews(w, r, model.ViewChapter)
}

func (h *Handler) pruneAllViews(w http.ResponseWriter, r *http.Request, kind model.ViewKind) {
	if !request.QueryBoolParam(r, "confirm", false) {
		response.BadRequest(w, r, errors.New("confirm=true is required"))
		return
	}

	// A cutoff in the future deletes every row of the table.
	deleted, err := h.store.PruneViewsOlderThan(kind, time.Now().Unix()+1)
	if err != nil {
		log.Error("Error pruning views", zap.Error(err), zap.String("kind", string(kind)))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]int64{"deleted_count": deleted})
}
