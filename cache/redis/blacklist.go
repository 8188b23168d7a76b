package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/botforge/botforge/cache"
)

// Blacklist implements the TokenBlacklist interface using Redis.
type Blacklist struct {
	client *redis.Client
	prefix string // Optional prefix for keys
}

// NewBlacklist creates a new [Blacklist] instance.
func NewBlacklist(client *redis.Client, prefix string) *Blacklist {
	return &Blacklist{
		client: client,
		prefix: prefix,
	}
}

// redisKey returns the Redis key for a given token.
func (b *Blacklist) redisKey(token string) string {
	return fmt.Sprintf("%s:blacklist:%s", b.prefix, cache.HashToken(token))
}

// Add stores a revoked token with a TTL equal to its remaining lifetime.
// SET is last-write-wins, so re-adding the same token is a no-op.
func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, b.redisKey(token), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token in Redis: %w", err)
	}

	return nil
}

// Contains reports whether the token has been revoked.
func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, b.redisKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist in Redis: %w", err)
	}

	return n > 0, nil
}

// Close closes the underlying Redis client.
func (b *Blacklist) Close() error {
	return b.client.Close()
}

var _ cache.TokenBlacklist = (*Blacklist)(nil)
