package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/legallink/assist/internal/domain"
	"github.com/legallink/assist/internal/identity"
)

// maxRequestBody caps the chat request body size.
const maxRequestBody = 64 * 1024

// Chat handles a single REST conversation turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req domain.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		req.UserID = identity.UserIDFromContext(r.Context())
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	resp := h.orchestrator.HandleTurn(r.Context(), req)
	JSON(w, http.StatusOK, resp)
}

// RegisterRoutes mounts the API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", h.Chat)
	})
}
