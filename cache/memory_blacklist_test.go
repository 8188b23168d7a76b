package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	blacklist := NewMemoryBlacklist()
	t.Cleanup(func() { _ = blacklist.Close() })

	t.Run("unknown token is not blacklisted", func(t *testing.T) {
		found, err := blacklist.Contains(ctx, "never-added")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("added token is found until expiry", func(t *testing.T) {
		require.NoError(t, blacklist.Add(ctx, "revoked-token", time.Now().Add(time.Hour)))

		found, err := blacklist.Contains(ctx, "revoked-token")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("adding twice is a no-op", func(t *testing.T) {
		require.NoError(t, blacklist.Add(ctx, "revoked-token", time.Now().Add(time.Hour)))

		found, err := blacklist.Contains(ctx, "revoked-token")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("already-expired tokens are not stored", func(t *testing.T) {
		require.NoError(t, blacklist.Add(ctx, "stale-token", time.Now().Add(-time.Minute)))

		found, err := blacklist.Contains(ctx, "stale-token")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
