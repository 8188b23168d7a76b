package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botforge/botforge/cache"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	blacklist := cache.NewMemoryBlacklist()
	t.Cleanup(func() { _ = blacklist.Close() })
	return NewTokenService("test-secret", "botforge-test", blacklist, time.Hour, 24*time.Hour)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t)

	pair, err := svc.IssuePair("profile-1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	profileID, err := svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", profileID)

	profileID, err = svc.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", profileID)
}

func TestTokenService_RejectsWrongTokenType(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t)

	pair, err := svc.IssuePair("profile-1")
	require.NoError(t, err)

	// A refresh token must not authorize requests, and vice versa.
	_, err = svc.ValidateAccessToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.ParseRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t)

	blacklist := cache.NewMemoryBlacklist()
	t.Cleanup(func() { _ = blacklist.Close() })
	other := NewTokenService("other-secret", "botforge-test", blacklist, time.Hour, 24*time.Hour)

	pair, err := other.IssuePair("profile-1")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t)

	pair, err := svc.IssuePair("profile-1")
	require.NoError(t, err)

	// Valid before revocation.
	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.AccessToken))

	// The token is still well-formed and unexpired, but blacklisted.
	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revoking twice is observationally the same as once.
	require.NoError(t, svc.Revoke(ctx, pair.AccessToken))
	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Other tokens are unaffected.
	otherPair, err := svc.IssuePair("profile-2")
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(ctx, otherPair.AccessToken)
	assert.NoError(t, err)
}
