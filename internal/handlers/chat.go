package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"chat-gateway/internal/middleware"
	"chat-gateway/internal/models"
	"chat-gateway/internal/services"
)

const maxChatBodyBytes = 1 << 20

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat streams the agent's reply to the prompt as chunked plain text.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Invalid request body",
			map[string]string{"body": "must be a JSON object with a prompt"}, r))
		return
	}

	log := logrus.WithField("request_id", r.Header.Get(middleware.RequestIDHeader))

	stream, err := h.chatService.Start(r.Context(), req)
	if err != nil {
		log.WithError(err).Error("Failed to start chat stream")
		handleServiceError(w, r, err)
		return
	}
	defer stream.Close()

	// Pull the first chunk before committing to 200 so an upstream failure
	// can still be reported as a server error.
	first, err := stream.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		log.WithError(err).WithField("model_id", stream.ModelID()).Error("Chat stream failed before first chunk")
		handleServiceError(w, r, &services.UpstreamError{Err: err})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err != nil {
		return
	}

	rc := http.NewResponseController(w)
	emit := func(text string) error {
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	}

	if err := emit(first); err != nil {
		log.WithError(err).Debug("Client went away")
		return
	}
	if err := stream.Relay(emit); err != nil {
		log.WithError(err).WithField("model_id", stream.ModelID()).Warn("Chat stream interrupted")
	}
}
