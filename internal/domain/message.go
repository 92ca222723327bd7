// Package domain contains core domain types for the Pathway Advisor service.
package domain

import "strings"

// Role identifies who authored a message.
type Role string

const (
	RoleLearner   Role = "learner"
	RoleAssistant Role = "assistant"
)

// Message is a single exchange in a conversation. Messages are append-only;
// a message's position in the transcript is its only identity.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"content"`
}

// IsBlank returns true if the message carries no meaningful text.
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Text) == ""
}

// Transcript is the full ordered message log for one conversation. It is the
// sole conversational state: every request re-derives intake progress from it.
type Transcript []Message

// NormalizeRole maps wire-level role strings onto a known Role. The web client
// historically sent "user" for learner messages; anything unrecognized is
// treated as learner input.
func NormalizeRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAssistant)) {
		return RoleAssistant
	}
	return RoleLearner
}
