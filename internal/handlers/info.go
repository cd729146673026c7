package handlers

import (
	"net/http"

	"chat-gateway/internal/config"
	"chat-gateway/internal/models"
)

type InfoHandler struct {
	info models.ServiceInfo
}

func NewInfoHandler(cfg *config.Config) *InfoHandler {
	return &InfoHandler{
		info: models.ServiceInfo{
			AppVersion: cfg.AppVersion,
			ModelID:    cfg.ReportedModelID,
		},
	}
}

func (h *InfoHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}
