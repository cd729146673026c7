package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chat-gateway/internal/handlers"
	"chat-gateway/internal/middleware"
	"chat-gateway/internal/websocket"
)

// New assembles the HTTP surface. limiter may be nil to disable rate limiting
// of the chat routes.
func New(
	chatHandler *handlers.ChatHandler,
	infoHandler *handlers.InfoHandler,
	chatSocket *websocket.ChatSocket,
	limiter middleware.Limiter,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/info", infoHandler.Info)

	// ──── Chat Routes ────
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter))
		}
		r.Post("/chat", chatHandler.Chat)
		r.Get("/chat/ws", chatSocket.HandleWebSocket)
	})

	return r
}
