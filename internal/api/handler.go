// Package api provides HTTP handlers for the Pathway Advisor API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aztecedu/pathway-advisor/internal/advisor"
	"github.com/aztecedu/pathway-advisor/internal/catalog"
	"github.com/aztecedu/pathway-advisor/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	svc     *advisor.Service
	repo    store.Repository
	cat     *catalog.Catalog
	limiter *RateLimiter
}

// NewHandler creates a new Handler with common dependencies. repo and cat
// may be nil; the routes that need them return 503 in that case.
func NewHandler(svc *advisor.Service, repo store.Repository, cat *catalog.Catalog, limiter *RateLimiter) *Handler {
	return &Handler{
		svc:     svc,
		repo:    repo,
		cat:     cat,
		limiter: limiter,
	}
}

// RegisterRoutes mounts all API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.Chat)
	r.Get("/api/conversations", h.ListConversations)
	r.Get("/api/conversations/{id}/messages", h.GetMessages)
	r.Get("/api/preferences", h.GetPreferences)
	r.Put("/api/preferences", h.UpdatePreferences)
	r.Get("/api/lessons/search", h.SearchLessons)
	r.Get("/api/courses/{course}/sequence", h.CourseSequence)
	r.Post("/api/tools/locator", h.ApplyLocator)
	r.Post("/api/tools/remediation", h.Remediation)
	r.Get("/api/tools/program-requirements", h.ProgramRequirements)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
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
