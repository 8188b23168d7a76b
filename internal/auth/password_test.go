package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordHasher(t *testing.T) {
	hasher := NewBcryptPasswordHasher(bcrypt.MinCost)

	t.Run("hash differs from plaintext and verifies", func(t *testing.T) {
		hash, err := hasher.Hash("secret123")
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", hash)

		assert.NoError(t, hasher.Verify(hash, "secret123"))
	})

	t.Run("wrong password fails verification", func(t *testing.T) {
		hash, err := hasher.Hash("secret123")
		require.NoError(t, err)

		assert.ErrorIs(t, hasher.Verify(hash, "wrong"), bcrypt.ErrMismatchedHashAndPassword)
	})

	t.Run("same password hashes differently each time", func(t *testing.T) {
		first, err := hasher.Hash("secret123")
		require.NoError(t, err)
		second, err := hasher.Hash("secret123")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestNewBcryptPasswordHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptPasswordHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.Cost)
}
