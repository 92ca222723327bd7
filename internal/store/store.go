// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/aztecedu/pathway-advisor/internal/domain"
)

// Repository defines the interface for persisting conversations, messages,
// and learner preferences. Persistence is an optimization for history views;
// intake correctness never depends on it because clients resend the full
// transcript with each request.
type Repository interface {
	// CreateConversation creates a new conversation for a learner.
	CreateConversation(ctx context.Context, learnerID, title string) (*domain.Conversation, error)

	// GetConversation retrieves a conversation by ID, or nil if absent.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// ListConversations returns a learner's conversations, most recently
	// updated first.
	ListConversations(ctx context.Context, learnerID string) ([]*domain.Conversation, error)

	// SetTitle updates a conversation's title.
	SetTitle(ctx context.Context, id, title string) error

	// SetPathway records the pathway a conversation resolved to.
	SetPathway(ctx context.Context, id, pathway string) error

	// AppendMessage appends one message to a conversation. Messages are
	// append-only; nothing ever mutates or deletes them.
	AppendMessage(ctx context.Context, conversationID string, role domain.Role, text string) (*domain.StoredMessage, error)

	// GetMessages returns a conversation's messages in append order.
	GetMessages(ctx context.Context, conversationID string) ([]*domain.StoredMessage, error)

	// GetOrCreatePreferences fetches a learner's preferences, creating the
	// default row on first sight.
	GetOrCreatePreferences(ctx context.Context, learnerID string) (*domain.Preferences, error)

	// UpdatePreferences overwrites a learner's pillar/industry defaults.
	UpdatePreferences(ctx context.Context, learnerID, pillar, industry string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
