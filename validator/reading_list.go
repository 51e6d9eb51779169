package validator // import "github.com/yomu-app/yomu/validator"

import (
	"github.com/pkg/errors"

	"github.com/yomu-app/yomu/model"
)

func ValidateReadingListRequest(req *model.ReadingListRequest) error {
	if req == nil {
		return errors.New("request is nil")
	}
	if req.MangaSlug == "" {
		return errors.New("manga_slug is empty")
	}
	if !model.ListStatus(req.Status).IsValid() {
		return errors.Errorf("invalid status: %q", req.Status)
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 10) {
		return errors.Errorf("rating must be between 1 and 10, got %d", *req.Rating)
	}
	return nil
}

func ValidateSaveProgressRequest(req *model.SaveProgressRequest) error {
	if req == nil {
		return errors.New("request is nil")
	}
	if req.MangaSlug == "" {
		return errors.New("manga_slug is empty")
	}
	if req.ChapterSlug == "" {
		return errors.New("chapter_slug is empty")
	}
	if req.PageNumber < 1 {
		return errors.New("page_number must be positive")
	}
	return nil
}
