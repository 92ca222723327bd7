package domain

import "time"

// Conversation is a persisted chat thread for one learner.
type Conversation struct {
	ID        string    `json:"id"`
	LearnerID string    `json:"learner_id"`
	Title     string    `json:"title"`
	Pathway   string    `json:"pathway,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredMessage is a persisted message row. Persistence is an optimization
// for history views; intake correctness never depends on it because the
// client supplies the full transcript on every request.
type StoredMessage struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Text           string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Preferences holds per-learner defaults used to seed new conversations.
type Preferences struct {
	LearnerID string    `json:"learner_id"`
	Pillar    string    `json:"pillar"`
	Industry  string    `json:"industry"`
	UpdatedAt time.Time `json:"updated_at"`
}
