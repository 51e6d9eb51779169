package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/yomu-app/yomu/config"
	"github.com/yomu-app/yomu/http/request"
	"github.com/yomu-app/yomu/http/response"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
	"github.com/yomu-app/yomu/storage"
	"github.com/yomu-app/yomu/util"
	"github.com/yomu-app/yomu/validator"
)

func (h *Handler) listManga(w http.ResponseWriter, r *http.Request) {
	page, pageSize := request.PageParams(r)

	find := &model.FindManga{}
	if v := request.QueryStringParam(r, "search", ""); v != "" {
		find.Search = &v
	}
	if v := request.QueryStringParam(r, "kind", ""); v != "" {
		find.Kind = &v
	}
	if v := request.QueryStringParam(r, "genre", ""); v != "" {
		find.Genre = &v
	}
	if v := request.QueryStringParam(r, "status", ""); v != "" {
		status := model.MangaStatus(v)
		if !status.IsValid() {
			response.BadRequest(w, r, errors.Errorf("invalid status: %q", v))
			return
		}
		find.Status = &status
	}
	if v := request.QueryStringParam(r, "sort_by", ""); v != "" {
		find.OrderBy = &v
	}
	find.Ascending = request.QueryStringParam(r, "order", "desc") == "asc"

	total, err := h.store.CountManga(find)
	if err != nil {
		log.Error("Error counting manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	find.Limit = &limit
	find.Offset = &offset

	list, err := h.store.ListManga(find)
	if err != nil {
		log.Error("Error listing manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, newPaginatedResponse(list, total, page, pageSize))
}

func (h *Handler) getManga(w http.ResponseWriter, r *http.Request) {
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}
	response.OK(w, r, manga)
}

func (h *Handler) listChapters(w http.ResponseWriter, r *http.Request) {
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	page, pageSize := request.PageParams(r)
	total, err := h.store.CountChapters(manga.ID)
	if err != nil {
		log.Error("Error counting chapters", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	find := &model.FindChapter{
		MangaID:    &manga.ID,
		Descending: request.QueryStringParam(r, "order", "asc") == "desc",
		Limit:      &limit,
		Offset:     &offset,
	}
	list, err := h.store.ListChapters(find)
	if err != nil {
		log.Error("Error listing chapters", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, newPaginatedResponse(list, total, page, pageSize))
}

type chapterDetailResponse struct {
	*model.Chapter
	MangaTitle  string         `json:"manga_title"`
	MangaSlug   string         `json:"manga_slug"`
	NextChapter *model.Chapter `json:"next_chapter"`
}

func (h *Handler) getChapter(w http.ResponseWriter, r *http.Request) {
	slug := request.RouteStringParam(r, "chapterSlug")
	chapter, err := h.store.GetChapter(&model.FindChapter{Slug: &slug})
	if err != nil {
		log.Error("Error getting chapter", zap.Error(err), zap.String("slug", slug))
		response.ServerError(w, r, err)
		return
	}
	if chapter == nil {
		response.NotFound(w, r)
		return
	}

	manga, err := h.store.GetManga(&model.FindManga{ID: &chapter.MangaID})
	if err != nil {
		log.Error("Error getting manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if manga == nil {
		response.NotFound(w, r)
		return
	}

	next, err := h.nextChapter(chapter)
	if err != nil {
		log.Error("Error finding next chapter", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, &chapterDetailResponse{
		Chapter:     chapter,
		MangaTitle:  manga.Title,
		MangaSlug:   manga.Slug,
		NextChapter: next,
	})
}

// nextChapter returns the chapter right after the given one in
// (chapter_main, chapter_sub) order, nil at the end of the series.
func (h *Handler) nextChapter(chapter *model.Chapter) (*model.Chapter, error) {
	chapters, err := h.store.ListChapters(&model.FindChapter{MangaID: &chapter.MangaID})
	if err != nil {
		return nil, err
	}
	for i, c := range chapters {
		if c.ID == chapter.ID && i+1 < len(chapters) {
			return chapters[i+1], nil
		}
	}
	return nil, nil
}

func (h *Handler) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.store.ListGenres()
	if err != nil {
		log.Error("Error listing genres", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, genres)
}

func (h *Handler) getCover(w http.ResponseWriter, r *http.Request) {
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}
	if manga.CoverPath == "" {
		response.NotFound(w, r)
		return
	}

	file, contentType, err := storage.OpenCover(manga.CoverPath)
	if err != nil {
		log.Error("Error opening cover", zap.Error(err), zap.String("path", manga.CoverPath))
		response.NotFound(w, r)
		return
	}
	defer file.Close()

	builder := response.New(w, r)
	builder.WithHeader("Content-Type", contentType)
	builder.WithHeader("Cache-Control", "public, max-age=604800")
	builder.WithBody(file)
	builder.Write()
}

func (h *Handler) createManga(w http.ResponseWriter, r *http.Request) {
	upsert := &model.MangaUpsertRequest{}
	if err := json.NewDecoder(r.Body).Decode(upsert); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateMangaUpsertRequest(upsert); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	slug := upsert.Slug
	if slug == "" {
		slug = upsert.Title
	}
	slug = util.NormalizeSlug(slug)
	if slug == "" {
		response.BadRequest(w, r, errors.New("title does not produce a valid slug"))
		return
	}

	if existed, err := h.store.GetManga(&model.FindManga{Slug: &slug}); err != nil {
		response.ServerError(w, r, err)
		return
	} else if existed != nil {
		response.BadRequest(w, r, errors.Errorf("slug already exists: %s", slug))
		return
	}

	status := model.MangaStatus(upsert.Status)
	if upsert.Status == "" {
		status = model.MangaOngoing
	}
	kind := upsert.Kind
	if kind == "" {
		kind = "manga"
	}

	manga, err := h.store.CreateManga(&model.Manga{
		Title:       upsert.Title,
		Slug:        slug,
		Description: upsert.Description,
		Kind:        kind,
		Status:      status,
	})
	if err != nil {
		log.Error("Error creating manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	if len(upsert.GenreSlugs) > 0 {
		if err := h.setGenres(manga.ID, upsert.GenreSlugs); err != nil {
			log.Error("Error setting genres", zap.Error(err))
			response.ServerError(w, r, err)
			return
		}
	}

	response.Created(w, r, manga)
}

func (h *Handler) updateManga(w http.ResponseWriter, r *http.Request) {
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	upsert := &model.MangaUpsertRequest{}
	if err := json.NewDecoder(r.Body).Decode(upsert); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateMangaUpsertRequest(upsert); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	manga.Title = upsert.Title
	if upsert.Description != "" {
		manga.Description = upsert.Description
	}
	if upsert.Kind != "" {
		manga.Kind = upsert.Kind
	}
	if upsert.Status != "" {
		manga.Status = model.MangaStatus(upsert.Status)
	}

	updated, err := h.store.UpdateManga(manga)
	if err != nil {
		log.Error("Error updating manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	if upsert.GenreSlugs != nil {
		if err := h.setGenres(updated.ID, upsert.GenreSlugs); err != nil {
			log.Error("Error setting genres", zap.Error(err))
			response.ServerError(w, r, err)
			return
		}
	}

	response.OK(w, r, updated)
}

func (h *Handler) setGenres(mangaID int32, names []string) error {
	genres := make([]*model.Genre, 0, len(names))
	for _, name := range names {
		slug := util.NormalizeSlug(name)
		if slug == "" {
			continue
		}
		genres = append(genres, &model.Genre{Name: name, Slug: slug})
	}
	return h.store.SetMangaGenres(mangaID, genres)
}

func (h *Handler) createGenre(w http.ResponseWriter, r *http.Request) {
	genre := &model.Genre{}
	if err := json.NewDecoder(r.Body).Decode(genre); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if genre.Name == "" {
		response.BadRequest(w, r, errors.New("name is empty"))
		return
	}
	genre.Slug = util.NormalizeSlug(genre.Name)
	if genre.Slug == "" {
		response.BadRequest(w, r, errors.New("name does not produce a valid slug"))
		return
	}

	created, err := h.store.UpsertGenre(genre)
	if err != nil {
		log.Error("Error creating genre", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.Created(w, r, created)
}

func (h *Handler) deleteManga(w http.ResponseWriter, r *http.Request) {
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	if err := h.store.DeleteManga(manga.ID); err != nil {
		log.Error("Error deleting manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if err := storage.RemoveCover(manga.CoverPath); err != nil {
		log.Warn("Error removing cover", zap.Error(err), zap.String("path", manga.CoverPath))
	}

	response.OK(w, r, map[string]string{"message": "manga deleted"})
}

func (h *Handler) uploadCover(w http.ResponseWriter, r *http.Request) {
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	if err := r.ParseMultipartForm(config.Opts.MaxUploadSize << 20); err != nil {
		log.Error("Max upload size exceeded", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		response.BadRequest(w, r, errors.New("exactly one file is required"))
		return
	}

	coverPath, err := storage.SaveCover(files[0], manga.Slug)
	if err != nil {
		log.Error("Error saving cover", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	manga.CoverPath = coverPath
	if _, err := h.store.UpdateManga(manga); err != nil {
		log.Error("Error updating manga", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]string{"cover_path": coverPath})
}

func (h *Handler) createChapter(w http.ResponseWriter, r *http.Request) {
	manga := h.findMangaBySlug(w, r, "mangaSlug")
	if manga == nil {
		return
	}

	create := &model.ChapterCreateRequest{}
	if err := json.NewDecoder(r.Body).Decode(create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateChapterCreateRequest(create); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	label := create.Label
	if label == "" {
		if create.ChapterSub > 0 {
			label = fmt.Sprintf("Chapter %d.%d", create.ChapterMain, create.ChapterSub)
		} else {
			label = fmt.Sprintf("Chapter %d", create.ChapterMain)
		}
	}
	kind := model.ChapterKind(create.Kind)
	if create.Kind == "" {
		kind = model.ChapterRegular
	}

	slug := util.NormalizeSlug(manga.Slug + " " + label)

	chapter, err := h.store.CreateChapter(&model.Chapter{
		MangaID:      manga.ID,
		ChapterMain:  create.ChapterMain,
		ChapterSub:   create.ChapterSub,
		Label:        label,
		Slug:         slug,
		FolderName:   create.FolderName,
		VolumeNumber: create.VolumeNumber,
		Kind:         kind,
		PageCount:    create.PageCount,
		UploadedBy:   request.GetUserID(r),
	})
	if err != nil {
		log.Error("Error creating chapter", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.Created(w, r, chapter)
}

func (h *Handler) deleteChapter(w http.ResponseWriter, r *http.Request) {
	chapterID := int32(request.RouteIntParam(r, "id"))
	if chapterID == 0 {
		response.BadRequest(w, r, errors.New("invalid chapter id"))
		return
	}

	chapter, err := h.store.GetChapter(&model.FindChapter{ID: &chapterID})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if chapter == nil {
		response.NotFound(w, r)
		return
	}

	if err := h.store.DeleteChapter(chapterID); err != nil {
		log.Error("Error deleting chapter", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, map[string]string{"message": "chapter deleted"})
}

