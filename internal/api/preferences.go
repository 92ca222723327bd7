package api

import (
	"encoding/json"
	"net/http"

	"github.com/aztecedu/pathway-advisor/internal/identity"
)

// GetPreferences handles GET /api/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusServiceUnavailable, "preferences are not available")
		return
	}

	learnerID := identity.LearnerIDFromContext(r.Context())
	prefs, err := h.repo.GetOrCreatePreferences(r.Context(), learnerID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	JSON(w, http.StatusOK, prefs)
}

// preferencesRequest is the wire shape for updating learner defaults.
type preferencesRequest struct {
	Pillar   string `json:"pillar"`
	Industry string `json:"industry"`
}

// UpdatePreferences handles PUT /api/preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusServiceUnavailable, "preferences are not available")
		return
	}

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Pillar == "" || req.Industry == "" {
		Error(w, http.StatusBadRequest, "pillar and industry are required")
		return
	}

	learnerID := identity.LearnerIDFromContext(r.Context())
	if err := h.repo.UpdatePreferences(r.Context(), learnerID, req.Pillar, req.Industry); err != nil {
		Error(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}

	prefs, err := h.repo.GetOrCreatePreferences(r.Context(), learnerID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	JSON(w, http.StatusOK, prefs)
}
