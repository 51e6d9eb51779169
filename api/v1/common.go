package v1

import (
	"net/http"

	"github.com/yomu-app/yomu/http/request"
	"github.com/yomu-app/yomu/http/response"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"

	"go.uber.org/zap"
)

// paginatedResponse is the envelope of every list endpoint.
type paginatedResponse struct {
	Items      interface{}      `json:"items"`
	Pagination model.Pagination `json:"pagination"`
}

func newPaginatedResponse(items interface{}, total, page, pageSize int) *paginatedResponse {
	return &paginatedResponse{
		Items:      items,
		Pagination: model.NewPagination(total, page, pageSize),
	}
}

// findMangaBySlug resolves a route slug to a manga, writing 404 when it
// does not exist. Returns nil after writing the response.
func (h *Handler) findMangaBySlug(w http.ResponseWriter, r *http.Request, param string) *model.Manga {
	slug := request.RouteStringParam(r, param)
	manga, err := h.store.GetManga(&model.FindManga{Slug: &slug})
	if err != nil {
		log.Error("Error getting manga", zap.Error(err), zap.String("slug", slug))
		response.ServerError(w, r, err)
		return nil
	}
	if manga == nil {
		response.NotFound(w, r)
		return nil
	}
	return manga
}
