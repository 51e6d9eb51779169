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

func (h *Handler) saveProgress(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)

	save := &model.SaveProgressRequest{}
	if err := json.NewDecoder(r.Body).Decode(save); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateSaveProgressRequest(save); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	manga, err := h.store.GetManga(&model.FindManga{Slug: &save.MangaSlug})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if manga == nil {
		response.NotFound(w, r)
		return
	}

	chapter, err := h.store.GetChapter(&model.FindChapter{Slug: &save.ChapterSlug})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if chapter == nil {
		response.NotFound(w, r)
		return
	}
	if chapter.MangaID != manga.ID {
		response.BadRequest(w, r, errors.Errorf("chapter %q does not belong to manga %q", save.ChapterSlug, save.MangaSlug))
		return
	}

	progress, err := h.store.UpsertReadingProgress(&model.ReadingProgress{
		UserID:     userID,
		MangaID:    manga.ID,
		ChapterID:  chapter.ID,
		PageNumber: save.PageNumber,
		LastReadTs: time.Now().Unix(),
	})
	if err != nil {
		log.Error("Error saving reading progress", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, progress)
}

func (h *Handler) getLastRead(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	entry, err := h.store.GetLastRead(userID, manga.ID)
	if err != nil {
		log.Error("Error getting last read", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if entry == nil {
		response.OK(w, r, map[string]any{"entry": nil})
		return
	}

	chapter, err := h.store.GetChapter(&model.FindChapter{ID: &entry.ChapterID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	var next *model.Chapter
	if chapter != nil {
		if next, err = h.nextChapter(chapter); err != nil {
			response.ServerError(w, r, err)
			return
		}
	}

	response.OK(w, r, map[string]any{
		"entry":        entry,
		"next_chapter": next,
	})
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	page, pageSize := request.PageParams(r)

	total, err := h.store.CountHistory(userID)
	if err != nil {
		log.Error("Error counting history", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	entries, err := h.store.ListHistory(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		log.Error("Error listing history", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, newPaginatedResponse(entries, total, page, pageSize))
}

func (h *Handler) deleteHistory(w http.ResponseWriter, r *http.Request) {
	userID := request.GetUserID(r)
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	deleted, err := h.store.DeleteHistoryForManga(userID, manga.ID)
	if err != nil {
		log.Error("Error deleting history", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]int64{"deleted_count": deleted})
}
