package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"moyen/internal/domain"
)

const maxChatBodyBytes = 64 << 10

type chatService interface {
	HandleChat(ctx context.Context, req domain.ChatRequest) domain.ChatResponse
	ResetSession(ctx context.Context, sessionID string) error
}

type healthInfo struct {
	Intents      int
	SessionStore string
}

func newRouter(svc chatService, health healthInfo, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":            true,
			"intents":       health.Intents,
			"session_store": health.SessionStore,
		})
	})

	chat := func(w http.ResponseWriter, req *http.Request) {
		var chatReq domain.ChatRequest
		body := http.MaxBytesReader(w, req.Body, maxChatBodyBytes)
		if err := json.NewDecoder(body).Decode(&chatReq); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		writeJSON(w, http.StatusOK, svc.HandleChat(req.Context(), chatReq))
	}
	r.Post("/chat", chat)
	r.Post("/v1/chat", chat)

	r.Delete("/v1/sessions/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if err := svc.ResetSession(req.Context(), id); err != nil {
			logger.Error("reset session failed", "session_id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "reset failed"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
