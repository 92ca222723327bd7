package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecedu/pathway-advisor/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "advisor.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})
	return repo
}

func TestConversationLifecycle(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	conv, err := repo.CreateConversation(ctx, "anon_1", "CBCS intake")
	require.NoError(t, err)
	require.NotEmpty(t, conv.ID)
	assert.Equal(t, "anon_1", conv.LearnerID)
	assert.Equal(t, "CBCS intake", conv.Title)
	assert.Empty(t, conv.Pathway)

	got, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conv.ID, got.ID)

	require.NoError(t, repo.SetPathway(ctx, conv.ID, "cbcs"))
	require.NoError(t, repo.SetTitle(ctx, conv.ID, "renamed"))

	got, err = repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "cbcs", got.Pathway)
	assert.Equal(t, "renamed", got.Title)
}

func TestGetConversationMissingReturnsNil(t *testing.T) {
	repo := newTestStore(t)

	got, err := repo.GetConversation(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListConversationsScopedToLearner(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	_, err := repo.CreateConversation(ctx, "anon_a", "first")
	require.NoError(t, err)
	_, err = repo.CreateConversation(ctx, "anon_a", "second")
	require.NoError(t, err)
	_, err = repo.CreateConversation(ctx, "anon_b", "other learner")
	require.NoError(t, err)

	convs, err := repo.ListConversations(ctx, "anon_a")
	require.NoError(t, err)
	assert.Len(t, convs, 2)

	convs, err = repo.ListConversations(ctx, "anon_missing")
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestAppendAndGetMessages(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	conv, err := repo.CreateConversation(ctx, "anon_1", "intake")
	require.NoError(t, err)

	_, err = repo.AppendMessage(ctx, conv.ID, domain.RoleLearner, "CBCS")
	require.NoError(t, err)
	_, err = repo.AppendMessage(ctx, conv.ID, domain.RoleAssistant, "Great choice!")
	require.NoError(t, err)

	msgs, err := repo.GetMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleLearner, msgs[0].Role)
	assert.Equal(t, "CBCS", msgs[0].Text)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Less(t, msgs[0].ID, msgs[1].ID)
}

func TestGetOrCreatePreferencesDefaults(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	prefs, err := repo.GetOrCreatePreferences(ctx, "anon_1")
	require.NoError(t, err)
	assert.Equal(t, "academic", prefs.Pillar)
	assert.Equal(t, "healthcare", prefs.Industry)

	// Second call reads the stored row instead of re-creating it.
	again, err := repo.GetOrCreatePreferences(ctx, "anon_1")
	require.NoError(t, err)
	assert.Equal(t, prefs.Pillar, again.Pillar)
}

func TestUpdatePreferences(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.UpdatePreferences(ctx, "anon_1", "cte", "healthcare"))

	prefs, err := repo.GetOrCreatePreferences(ctx, "anon_1")
	require.NoError(t, err)
	assert.Equal(t, "cte", prefs.Pillar)
}

func TestPing(t *testing.T) {
	repo := newTestStore(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
