package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/storyforge/internal/domain/session"
	"github.com/rpggio/storyforge/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_TouchKeepsData(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Touch(ctx, &session.Session{
		ID: "s1", Data: map[string]any{"transport": "http"}, CreatedAt: first, LastAccessed: first,
	}))

	later := first.Add(time.Hour)
	require.NoError(t, repo.Touch(ctx, &session.Session{ID: "s1", CreatedAt: later, LastAccessed: later}))

	sess, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "http", sess.Data["transport"])
	require.True(t, sess.CreatedAt.Equal(first))
	require.True(t, sess.LastAccessed.Equal(later))

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepository_DeleteIdleSince(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-40 * 24 * time.Hour)
	require.NoError(t, repo.Touch(ctx, &session.Session{ID: "old", CreatedAt: old, LastAccessed: old}))
	require.NoError(t, repo.Touch(ctx, &session.Session{ID: "fresh", CreatedAt: now, LastAccessed: now}))

	removed, err := repo.DeleteIdleSince(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = repo.Get(ctx, "old")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.Get(ctx, "fresh")
	require.NoError(t, err)
}
