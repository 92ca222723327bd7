package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aztecedu/pathway-advisor/internal/catalog"
)

// maxSearchLimit bounds a single lesson search response.
const maxSearchLimit = 50

// SearchLessons handles GET /api/lessons/search?q=&pillar=&code=&limit=.
func (h *Handler) SearchLessons(w http.ResponseWriter, r *http.Request) {
	if h.cat == nil {
		Error(w, http.StatusServiceUnavailable, "lesson catalog is not loaded")
		return
	}

	q := r.URL.Query()
	limit := maxSearchLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < maxSearchLimit {
			limit = n
		}
	}

	lessons := h.cat.Search(q.Get("q"), catalog.SearchOptions{
		Pillar: catalog.Pillar(q.Get("pillar")),
		Code:   q.Get("code"),
		Limit:  limit,
	})
	if lessons == nil {
		lessons = []catalog.Lesson{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"lessons": lessons})
}

// CourseSequence handles GET /api/courses/{course}/sequence, returning the
// course's lessons grouped by subject and unit in prerequisite order.
func (h *Handler) CourseSequence(w http.ResponseWriter, r *http.Request) {
	if h.cat == nil {
		Error(w, http.StatusServiceUnavailable, "lesson catalog is not loaded")
		return
	}

	course := chi.URLParam(r, "course")
	sequence := h.cat.Sequence(course)
	if len(sequence) == 0 {
		Error(w, http.StatusNotFound, "course not found")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"course":   course,
		"sequence": sequence,
	})
}

// ApplyLocator handles POST /api/tools/locator, mapping placement scores to
// a course entry point.
func (h *Handler) ApplyLocator(w http.ResponseWriter, r *http.Request) {
	var scores catalog.LocatorScores
	if err := json.NewDecoder(r.Body).Decode(&scores); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	placement, err := catalog.ApplyLocator(scores)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, placement)
}

// remediationRequest carries per-domain exam scores for gap analysis.
type remediationRequest struct {
	Exam            string             `json:"exam"`
	DomainScores    map[string]float64 `json:"domain_scores"`
	MinReadingLevel string             `json:"min_reading_level"`
}

// Remediation handles POST /api/tools/remediation.
func (h *Handler) Remediation(w http.ResponseWriter, r *http.Request) {
	if h.cat == nil {
		Error(w, http.StatusServiceUnavailable, "lesson catalog is not loaded")
		return
	}

	var req remediationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Exam == "" || len(req.DomainScores) == 0 {
		Error(w, http.StatusBadRequest, "exam and domain_scores are required")
		return
	}

	plan := h.cat.RemediationFromGaps(req.Exam, req.DomainScores, req.MinReadingLevel)
	JSON(w, http.StatusOK, plan)
}

// ProgramRequirements handles GET /api/tools/program-requirements?exam=.
func (h *Handler) ProgramRequirements(w http.ResponseWriter, r *http.Request) {
	if h.cat == nil {
		Error(w, http.StatusServiceUnavailable, "lesson catalog is not loaded")
		return
	}

	exam := r.URL.Query().Get("exam")
	if exam == "" {
		exam = "CBCS"
	}
	JSON(w, http.StatusOK, h.cat.Requirements(exam))
}
