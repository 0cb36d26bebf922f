// Package api provides HTTP handlers for the LegalLink assist API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/legallink/assist/internal/agent"
	"github.com/legallink/assist/internal/inference"
	"github.com/legallink/assist/internal/store"
)

// Handler provides common handler dependencies.
type Handler struct {
	orchestrator *agent.Orchestrator
	sessions     store.SessionStore
	legalModel   inference.Client
}

// NewHandler creates a new Handler.
func NewHandler(orchestrator *agent.Orchestrator, sessions store.SessionStore, legalModel inference.Client) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		sessions:     sessions,
		legalModel:   legalModel,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Health reports readiness of the session store and the legal model.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	healthy := true

	if err := h.sessions.Ping(ctx); err != nil {
		status["store"] = "unavailable"
		healthy = false
	} else {
		status["store"] = "ok"
	}

	if h.legalModel != nil {
		if err := h.legalModel.Ready(ctx); err != nil {
			status["legal_model"] = "unavailable"
			healthy = false
		} else {
			status["legal_model"] = "ok"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	JSON(w, http.StatusOK, status)
}
