package v1

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yomu-app/yomu/http/response"
	"github.com/yomu-app/yomu/log"
	"github.com/yomu-app/yomu/model"
)

func (h *Handler) setGeneralSettings(w http.ResponseWriter, r *http.Request) {
	settings := &model.SystemSettingGeneral{}
	if err := json.NewDecoder(r.Body).Decode(settings); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	newSettings, err := h.store.UpsetGeneralSettings(settings)
	if err != nil {
		log.Error("Failed to update general settings", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.OK(w, r, newSettings)
}
