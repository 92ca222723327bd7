package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aztecedu/pathway-advisor/internal/domain"
	"github.com/aztecedu/pathway-advisor/internal/identity"
)

// ListConversations handles GET /api/conversations, returning the learner's
// conversations most recently updated first.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusServiceUnavailable, "conversation history is not available")
		return
	}

	learnerID := identity.LearnerIDFromContext(r.Context())
	conversations, err := h.repo.ListConversations(r.Context(), learnerID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if conversations == nil {
		conversations = []*domain.Conversation{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

// GetMessages handles GET /api/conversations/{id}/messages. Learners can only
// read their own conversations.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusServiceUnavailable, "conversation history is not available")
		return
	}

	learnerID := identity.LearnerIDFromContext(r.Context())
	conversationID := chi.URLParam(r, "id")

	conv, err := h.repo.GetConversation(r.Context(), conversationID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	if conv == nil || conv.LearnerID != learnerID {
		Error(w, http.StatusNotFound, "conversation not found")
		return
	}

	messages, err := h.repo.GetMessages(r.Context(), conversationID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []*domain.StoredMessage{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"conversation": conv,
		"messages":     messages,
	})
}
