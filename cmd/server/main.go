package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"chat-gateway/internal/agent"
	"chat-gateway/internal/config"
	"chat-gateway/internal/database"
	"chat-gateway/internal/handlers"
	"chat-gateway/internal/logging"
	"chat-gateway/internal/middleware"
	"chat-gateway/internal/router"
	"chat-gateway/internal/services"
	"chat-gateway/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	logrus.Info("🚀 Starting Chat Gateway...")
	logrus.Info("✓ Environment variables loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Initialize Model Provider ────
	provider, closeProvider, err := services.NewProvider(ctx, cfg)
	if err != nil {
		logrus.Fatalf("✗ Model provider initialization failed: %v", err)
	}
	defer closeProvider()
	logrus.WithFields(logrus.Fields{
		"provider":      provider.Name(),
		"default_model": cfg.DefaultModelID,
		"slots":         cfg.ModelConcurrentReqs,
	}).Info("✓ Model provider initialized")

	chatService := services.NewChatService(provider, cfg.DefaultModelID, agent.WithSystemPrompt(cfg.SystemPrompt))

	// ──── Step 3: Initialize Rate Limiter ────
	var limiter middleware.Limiter
	switch {
	case cfg.RateLimitPerMin <= 0:
		logrus.Info("✓ Rate limiting disabled")
	case cfg.RedisURL != "":
		rdb, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer rdb.Close()
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitPerMin, time.Minute)
		logrus.Infof("✓ Redis rate limiter ready (%d req/min)", cfg.RateLimitPerMin)
	default:
		ml := middleware.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
		go ml.Run(ctx)
		limiter = ml
		logrus.Infof("✓ In-memory rate limiter ready (%d req/min)", cfg.RateLimitPerMin)
	}

	// ──── Step 4: Start HTTP Server ────
	r := router.New(
		handlers.NewChatHandler(chatService),
		handlers.NewInfoHandler(cfg),
		websocket.NewChatSocket(chatService, cfg.FrontendURL),
		limiter,
		cfg.FrontendURL,
	)

	// No WriteTimeout: chat responses stay open for as long as the model streams.
	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("Graceful shutdown incomplete")
		}
	}()

	logrus.Infof("✓ Chat Gateway ready on http://%s", cfg.Addr())
	logrus.Infof("  Chat: POST http://%s/chat", cfg.Addr())
	logrus.Infof("  WS:   ws://%s/chat/ws", cfg.Addr())

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logrus.Errorf("Server error: %v", err)
		stop()
		os.Exit(1)
	}
}
