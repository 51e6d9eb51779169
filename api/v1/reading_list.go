package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/yomu-app/yomu/http/request"
	"github.com/yomu-app/yomu/http/response"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/validator"
)

func (h *Handler) upsertListEntry(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)

	upsert := &model.ReadingListRequest{}
	if err := json.NewDecoder(r.Body).Decode(upsert); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateReadingListRequest(upsert); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	manga, err := h.store.GetManga(&model.FindManga{Slug: &upsert.MangaSlug})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if manga == nil {
		response.NotFound(w, r)
		return
	}

	now := time.Now().Unix()
	entry, err := h.store.UpsertReadingListEntry(&model.ReadingListEntry{
		UserID:    userID,
		MangaID:   manga.ID,
		Status:    model.ListStatus(upsert.Status),
		Rating:    upsert.Rating,
		Notes:     upsert.Notes,
		AddedTs:   now,
		UpdatedTs: now,
	})
	if err != nil {
		log.Error("Error saving reading-list entry", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, entry)
}

func (h *Handler) removeListEntry(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	removed, err := h.store.RemoveReadingListEntry(userID, manga.ID)
	if err != nil {
		log.Error("Error removing reading-list entry", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if removed == 0 {
		response.NotFound(w, r)
		return
	}

	response.OK(w, r, map[string]string{"message": "entry removed"})
}

func (h *Handler) listListEntries(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	page, pageSize := request.PageParams(r)

	find := &model.FindReadingListEntry{
		UserID:    &userID,
		SortBy:    request.QueryStringParam(r, "sort_by", "updated_at"),
		Ascending: request.QueryStringParam(r, "order", "desc") == "asc",
	}
	if v := request.QueryStringParam(r, "status", ""); v != "" {
		status := model.ListStatus(v)
		if !status.IsValid() {
			response.BadRequest(w, r, errors.Errorf("invalid list status: %q", v))
			return
		}
		find.Status = &status
	}

	total, err := h.store.CountReadingListEntries(find)
	if err != nil {
		log.Error("Error counting reading-list entries", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	find.Limit = &limit
	find.Offset = &offset

	entries, err := h.store.ListReadingListEntries(find)
	if err != nil {
		log.Error("Error listing reading-list entries", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, newPaginatedResponse(entries, total, page, pageSize))
}

func (h *Handler) getListStatus(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	entry, err := h.store.GetReadingListEntry(userID, manga.ID)
	if err != nil {
		log.Error("Error getting reading-list entry", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]any{
		"in_list": entry != nil,
		"entry":   entry,
	})
}

func (h *Handler) getReadingStats(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)

	stats, err := h.store.GetReadingStats(userID)
	if err != nil {
		log.Error("Error getting reading stats", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, stats)
}
