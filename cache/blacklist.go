package cache

import (
	"context"
	"time"
)

// TokenBlacklist records revoked access tokens until their natural expiry.
// A token remains cryptographically valid after logout, so every guarded
// request has to consult the blacklist in addition to signature checks.
//
// Add is idempotent: re-adding a blacklisted token is a no-op for callers.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
	Close() error
}
