package validator // import "github.com/yomu-app/yomu/validator"

import (
	"github.com/pkg/errors"

	"github.com/yomu-app/yomu/model"
)

func ValidateMangaUpsertRequest(req *model.MangaUpsertRequest) error {
	if req == nil {
		return errors.New("request is nil")
	}
	if req.Title == "" {
		return errors.New("title is empty")
	}
	if req.Status != "" && !model.MangaStatus(req.Status).IsValid() {
		return errors.Errorf("invalid status: %q", req.Status)
	}
	return nil
}

func ValidateChapterCreateRequest(req *model.ChapterCreateRequest) error {
	if req == nil {
		return errors.New("request is nil")
	}
	if req.ChapterMain < 0 || req.ChapterSub < 0 {
		return errors.New("chapter number must not be negative")
	}
	if req.Kind != "" && !model.ChapterKind(req.Kind).IsValid() {
		return errors.Errorf("invalid chapter type: %q", req.Kind)
	}
	if req.PageCount < 0 {
		return errors.New("page_count must not be negative")
	}
	return nil
}
