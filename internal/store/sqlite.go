package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aztecedu/pathway-advisor/internal/domain"
	"github.com/aztecedu/pathway-advisor/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		learner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		pathway TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_learner ON conversations(learner_id, updated_at);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id);

	CREATE TABLE IF NOT EXISTS preferences (
		learner_id TEXT PRIMARY KEY,
		pillar TEXT NOT NULL,
		industry TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateConversation creates a new conversation for a learner.
func (s *SQLiteStore) CreateConversation(ctx context.Context, learnerID, title string) (*domain.Conversation, error) {
	now := time.Now()
	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		LearnerID: learnerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
	INSERT INTO conversations (id, learner_id, title, pathway, created_at, updated_at)
	VALUES (?, ?, ?, NULL, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		conv.ID, conv.LearnerID, conv.Title, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return conv, nil
}

// GetConversation retrieves a conversation by ID.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
		SELECT id, learner_id, title, pathway, created_at, updated_at
		FROM conversations WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	conv, err := scanConversation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation row: %w", err)
	}
	return conv, nil
}

// ListConversations returns a learner's conversations, most recent first.
func (s *SQLiteStore) ListConversations(ctx context.Context, learnerID string) ([]*domain.Conversation, error) {
	query := `
		SELECT id, learner_id, title, pathway, created_at, updated_at
		FROM conversations WHERE learner_id = ? ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close conversations rows", "error", closeErr)
		}
	}()

	var out []*domain.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		out = append(out, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

func scanConversation(scan func(dest ...any) error) (*domain.Conversation, error) {
	var conv domain.Conversation
	var pathway sql.NullString
	var createdAt, updatedAt int64

	if err := scan(&conv.ID, &conv.LearnerID, &conv.Title, &pathway, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	conv.Pathway = pathway.String
	conv.CreatedAt = time.Unix(createdAt, 0)
	conv.UpdatedAt = time.Unix(updatedAt, 0)
	return &conv, nil
}

// SetTitle updates a conversation's title.
func (s *SQLiteStore) SetTitle(ctx context.Context, id, title string) error {
	query := `UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, title, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("SetTitle affected 0 rows", "conversation_id", id)
	}
	return nil
}

// SetPathway records the pathway a conversation resolved to.
func (s *SQLiteStore) SetPathway(ctx context.Context, id, pathway string) error {
	query := `UPDATE conversations SET pathway = ?, updated_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, pathway, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("update pathway: %w", err)
	}
	return nil
}

// AppendMessage appends one message to a conversation, retrying briefly on
// SQLite concurrency conflicts.
func (s *SQLiteStore) AppendMessage(ctx context.Context, conversationID string, role domain.Role, text string) (*domain.StoredMessage, error) {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		msg, err := s.appendMessageOnce(ctx, conversationID, role, text)
		if err == nil {
			return msg, nil
		}
		lastErr = err

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("AppendMessage conflict, retrying",
				"conversation_id", conversationID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}
	return nil, fmt.Errorf("append message to %s: %w", conversationID, lastErr)
}

func (s *SQLiteStore) appendMessageOnce(ctx context.Context, conversationID string, role domain.Role, text string) (*domain.StoredMessage, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		conversationID, string(role), text, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("message insert id: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, now.Unix(), conversationID); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	return &domain.StoredMessage{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Text:           text,
		CreatedAt:      now,
	}, nil
}

// GetMessages returns a conversation's messages in append order.
func (s *SQLiteStore) GetMessages(ctx context.Context, conversationID string) ([]*domain.StoredMessage, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM messages WHERE conversation_id = ? ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close messages rows", "error", closeErr)
		}
	}()

	var out []*domain.StoredMessage
	for rows.Next() {
		var msg domain.StoredMessage
		var role string
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.Role = domain.Role(role)
		msg.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

// GetOrCreatePreferences fetches a learner's preferences, creating the
// default row on first sight.
func (s *SQLiteStore) GetOrCreatePreferences(ctx context.Context, learnerID string) (*domain.Preferences, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT learner_id, pillar, industry, updated_at FROM preferences WHERE learner_id = ?`, learnerID)

	var prefs domain.Preferences
	var updatedAt int64
	err := row.Scan(&prefs.LearnerID, &prefs.Pillar, &prefs.Industry, &updatedAt)
	if err == nil {
		prefs.UpdatedAt = time.Unix(updatedAt, 0)
		return &prefs, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("scan preferences: %w", err)
	}

	now := time.Now()
	prefs = domain.Preferences{
		LearnerID: learnerID,
		Pillar:    "academic",
		Industry:  "healthcare",
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO preferences (learner_id, pillar, industry, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(learner_id) DO NOTHING`,
		prefs.LearnerID, prefs.Pillar, prefs.Industry, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("insert default preferences: %w", err)
	}
	return &prefs, nil
}

// UpdatePreferences overwrites a learner's pillar/industry defaults.
func (s *SQLiteStore) UpdatePreferences(ctx context.Context, learnerID, pillar, industry string) error {
	query := `
	INSERT INTO preferences (learner_id, pillar, industry, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(learner_id) DO UPDATE SET
		pillar = excluded.pillar,
		industry = excluded.industry,
		updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, learnerID, pillar, industry, time.Now().Unix()); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
