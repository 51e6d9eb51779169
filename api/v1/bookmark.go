package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yomu-app/yomu/http/request"
	"github.com/yomu-app/yomu/http/response"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

func (h *Handler) addBookmark(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	bookmark, err := h.store.AddBookmark(userID, manga.ID)
	if err != nil {
		log.Error("Error adding bookmark", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, bookmark)
}

func (h *Handler) removeBookmark(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	removed, err := h.store.RemoveBookmark(userID, manga.ID)
	if err != nil {
		log.Error("Error removing bookmark", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if removed == 0 {
		response.NotFound(w, r)
		return
	}

	response.OK(w, r, map[string]string{"message": "bookmark removed"})
}

func (h *Handler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	page, pageSize := request.PageParams(r)

	total, err := h.store.CountBookmarks(userID)
	if err != nil {
		log.Error("Error counting bookmarks", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	find := &model.FindBookmark{
		UserID:    &userID,
		SortBy:    request.QueryStringParam(r, "sort_by", "created_at"),
		Ascending: request.QueryStringParam(r, "order", "desc") == "asc",
		Limit:     &limit,
		Offset:    &offset,
	}
	entries, err := h.store.ListBookmarks(find)
	if err != nil {
		log.Error("Error listing bookmarks", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, newPaginatedResponse(entries, total, page, pageSize))
}

func (h *Handler) checkBookmark(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	bookmarked, err := h.store.HasBookmark(userID, manga.ID)
	if err != nil {
		log.Error("Error checking bookmark", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]bool{"bookmarked": bookmarked})
}
