package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryBlacklist implements TokenBlacklist using ttlcache. Entries expire
// together with the token they shadow, so the set never grows past the number
// of live revoked tokens.
type MemoryBlacklist struct {
	cache *ttlcache.Cache[string, struct{}]
}

// NewMemoryBlacklist creates a new in-memory blacklist with automatic cleanup.
//
//nolint:ireturn
func NewMemoryBlacklist() TokenBlacklist {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)

	// Start the cleanup process
	go cache.Start()

	return &MemoryBlacklist{
		cache: cache,
	}
}

// Add implements TokenBlacklist.Add.
func (b *MemoryBlacklist) Add(_ context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past its natural expiry, signature validation rejects it anyway.
		return nil
	}
	b.cache.Set(HashToken(token), struct{}{}, ttl)
	return nil
}

// Contains implements TokenBlacklist.Contains.
func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	return b.cache.Get(HashToken(token)) != nil, nil
}

// Close stops the cleanup goroutine.
func (b *MemoryBlacklist) Close() error {
	b.cache.Stop()

	return nil
}
