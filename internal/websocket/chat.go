package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"chat-gateway/internal/models"
	"chat-gateway/internal/services"
)

// ChatSocket serves chat over a WebSocket. Every text frame from the client
// is a chat request; the reply is a run of chunk messages closed by a
// completed or error message.
type ChatSocket struct {
	chatService *services.ChatService
	upgrader    websocket.Upgrader
}

func NewChatSocket(chatService *services.ChatService, frontendURL string) *ChatSocket {
	return &ChatSocket{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == frontendURL
			},
		},
	}
}

func (s *ChatSocket) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := logrus.WithField("remote", r.RemoteAddr)
	log.Info("WebSocket chat connected")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("WebSocket chat read failed")
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req models.ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := sendError(conn, "VALIDATION_ERROR", "Invalid request body"); err != nil {
				break
			}
			continue
		}

		if err := s.serve(r.Context(), conn, req); err != nil {
			log.WithError(err).Debug("WebSocket chat write failed")
			break
		}
	}

	log.Info("WebSocket chat disconnected")
}

// serve streams one reply. It only returns an error when the connection can
// no longer be written to.
func (s *ChatSocket) serve(ctx context.Context, conn *websocket.Conn, req models.ChatRequest) error {
	stream, err := s.chatService.Start(ctx, req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return sendError(conn, "VALIDATION_ERROR", "Prompt is required")
		}
		logrus.WithError(err).Error("Failed to start chat stream")
		return sendError(conn, "UPSTREAM_ERROR", "Failed to get AI response")
	}
	defer stream.Close()

	sent := 0
	var writeErr error
	err = stream.Relay(func(text string) error {
		sent++
		writeErr = conn.WriteJSON(models.WSMessage{
			Type:    models.WSTypeChunk,
			Payload: models.PartialContent{Chunk: text, TotalChunksSent: sent},
		})
		return writeErr
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		logrus.WithError(err).WithField("model_id", stream.ModelID()).Warn("Chat stream interrupted")
		return sendError(conn, "UPSTREAM_ERROR", "Failed to get AI response")
	}

	return conn.WriteJSON(models.WSMessage{
		Type:    models.WSTypeCompleted,
		Payload: models.CompletedEvent{ModelID: stream.ModelID(), TotalChunksSent: sent},
	})
}

func sendError(conn *websocket.Conn, code, message string) error {
	return conn.WriteJSON(models.WSMessage{
		Type:    models.WSTypeError,
		Payload: models.ErrorEvent{ErrorCode: code, ErrorMessage: message},
	})
}
