package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aztecedu/pathway-advisor/internal/domain"
	"github.com/aztecedu/pathway-advisor/internal/identity"
)

// apologyReply is the fixed recovery message for any internal chat failure.
// The client renders it like a normal assistant turn, and because it never
// contains the plan marker or a follow-up tag, replaying a transcript that
// includes it is harmless.
const apologyReply = "Sorry, something went wrong. Please try again."

// chatRequest is the wire shape of a chat turn. Fields are raw JSON because
// misbehaving clients send all kinds of shapes here; normalization is total
// rather than rejecting.
type chatRequest struct {
	Messages       json.RawMessage `json:"messages"`
	ConversationID string          `json:"conversationId"`
}

// chatResponse carries the single assistant reply for a turn.
type chatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId,omitempty"`
}

// Chat handles POST /api/chat. The request body carries the full transcript;
// the response is exactly one assistant message. Malformed transcripts are
// normalized, never rejected: a broken messages field is an empty transcript,
// which yields the welcome message.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("chat handler panicked", "panic", rec)
			JSON(w, http.StatusInternalServerError, chatResponse{Reply: apologyReply})
		}
	}()

	learnerID := identity.LearnerIDFromContext(r.Context())
	if h.limiter != nil && !h.limiter.Allow(learnerID) {
		Error(w, http.StatusTooManyRequests, "too many requests, slow down")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = chatRequest{}
	}
	transcript := normalizeTranscript(req.Messages)

	result, err := h.svc.Reply(r.Context(), learnerID, req.ConversationID, transcript)
	if err != nil {
		slog.Error("chat reply failed", "learner_id", learnerID, "error", err)
		JSON(w, http.StatusInternalServerError, chatResponse{Reply: apologyReply})
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		Reply:          result.Reply,
		ConversationID: result.ConversationID,
	})
}

// normalizeTranscript converts whatever the client sent into a transcript.
// A non-array messages field becomes an empty transcript; a non-string
// content becomes an empty message; an unknown role is treated as learner
// input.
func normalizeTranscript(raw json.RawMessage) domain.Transcript {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make(domain.Transcript, 0, len(items))
	for _, item := range items {
		var msg struct {
			Role    json.RawMessage `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(item, &msg); err != nil {
			out = append(out, domain.Message{Role: domain.RoleLearner})
			continue
		}

		var role, content string
		_ = json.Unmarshal(msg.Role, &role)       // non-string role stays ""
		_ = json.Unmarshal(msg.Content, &content) // non-string content stays ""

		out = append(out, domain.Message{
			Role: domain.NormalizeRole(role),
			Text: content,
		})
	}
	return out
}
