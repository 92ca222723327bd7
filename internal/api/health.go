package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aztecedu/pathway-advisor/internal/llm"
	"github.com/aztecedu/pathway-advisor/internal/store"
)

// HealthHandler reports service readiness.
type HealthHandler struct {
	repo store.Repository
	llm  llm.Client
}

// NewHealthHandler creates a health handler. Either dependency may be nil.
func NewHealthHandler(repo store.Repository, llmClient llm.Client) *HealthHandler {
	return &HealthHandler{repo: repo, llm: llmClient}
}

// RegisterHealth mounts the readiness route. Liveness is served by the
// router's heartbeat middleware at /health.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.Ready)
}

// Ready handles GET /api/health. The database must answer; the generative
// backend is reported but never fails readiness because every reply has a
// deterministic fallback.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			JSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	if h.llm != nil {
		if h.llm.Available(r.Context()) {
			status["llm"] = "ok"
		} else {
			status["llm"] = "unavailable"
		}
	}

	JSON(w, http.StatusOK, status)
}
