package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/workflow"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, workflow.ErrSessionNotFound)
	})

	t.Run("save and get", func(t *testing.T) {
		state := workflow.New("s1")
		require.NoError(t, store.Save(ctx, &state))

		got, err := store.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", got.ID)
	})

	t.Run("delete", func(t *testing.T) {
		state := workflow.New("s2")
		require.NoError(t, store.Save(ctx, &state))
		require.NoError(t, store.Delete(ctx, "s2"))

		_, err := store.Get(ctx, "s2")
		assert.ErrorIs(t, err, workflow.ErrSessionNotFound)
	})
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(30 * time.Minute)

	fresh := workflow.New("fresh")
	require.NoError(t, store.Save(ctx, &fresh))

	stale := workflow.New("stale")
	stale.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Save(ctx, &stale))

	t.Run("stale sessions read as missing", func(t *testing.T) {
		_, err := store.Get(ctx, "stale")
		assert.ErrorIs(t, err, workflow.ErrSessionNotFound)

		_, err = store.Get(ctx, "fresh")
		assert.NoError(t, err)
	})

	t.Run("purge removes only stale sessions", func(t *testing.T) {
		removed := store.Purge(time.Now())
		assert.Equal(t, []string{"stale"}, removed)

		assert.Empty(t, store.Purge(time.Now()))
		_, err := store.Get(ctx, "fresh")
		assert.NoError(t, err)
	})
}

func TestMemoryStoreZeroTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	old := workflow.New("old")
	old.UpdatedAt = time.Now().Add(-100 * time.Hour)
	require.NoError(t, store.Save(ctx, &old))

	// zero TTL disables expiry
	_, err := store.Get(ctx, "old")
	assert.NoError(t, err)
	assert.Empty(t, store.Purge(time.Now()))
}
