package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*RedisStore)(nil)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	id, reserved, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)

	id, reserved, err = store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved, "pending key must not be reserved twice")
	assert.Empty(t, id)

	require.NoError(t, store.Bind(ctx, "k1", "rec-1"))
	id, reserved, err = store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "rec-1", id)
}

func TestMemoryStore_ReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	_, reserved, _ := store.Reserve(ctx, "k1")
	require.True(t, reserved)
	require.NoError(t, store.Release(ctx, "k1"))

	_, reserved, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	_, _, _ = store.Reserve(ctx, "k1")
	require.NoError(t, store.Bind(ctx, "k1", "rec-1"))

	now = now.Add(2 * time.Minute)
	id, reserved, err := store.Reserve(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, id)
}
