package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/botforge/botforge/domain"
	apierrors "github.com/botforge/botforge/errors"
)

func TestAccountService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and attaches the profile", func(t *testing.T) {
		repo := new(MockAccountRepository)
		hasher := new(MockPasswordHasher)
		svc := NewAccountService(repo, hasher)

		hasher.On("Hash", "secret123").Return("hashed_secret123", nil)
		repo.On("Create", ctx, mock.MatchedBy(func(a *domain.Account) bool {
			return a.Credentials.Password == "hashed_secret123" && a.ProfileID == "profile-1"
		})).Return(&domain.Account{
			ID:        "acc-1",
			Type:      domain.AccountTypeLocal,
			ProfileID: "profile-1",
			Credentials: domain.Credentials{
				Email:    "user@example.com",
				Password: "hashed_secret123",
			},
		}, nil)

		created, err := svc.Create(ctx, &domain.Account{
			Type:     domain.AccountTypeLocal,
			Username: "user",
			Credentials: domain.Credentials{
				Email:    "user@example.com",
				Password: "secret123",
			},
		}, "profile-1")

		require.NoError(t, err)
		assert.Equal(t, "acc-1", created.ID)
		assert.NotEqual(t, "secret123", created.Credentials.Password)
		assert.Equal(t, "profile-1", created.ProfileID)
		repo.AssertExpectations(t)
		hasher.AssertExpectations(t)
	})

	t.Run("duplicate key becomes a conflict", func(t *testing.T) {
		repo := new(MockAccountRepository)
		hasher := new(MockPasswordHasher)
		svc := NewAccountService(repo, hasher)

		hasher.On("Hash", "secret123").Return("hashed", nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, domain.ErrDuplicate)

		_, err := svc.Create(ctx, &domain.Account{
			Credentials: domain.Credentials{Email: "dup@example.com", Password: "secret123"},
		}, "profile-1")

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.CodeConflict, apiErr.Code)
	})

	t.Run("unrecognized store errors are not swallowed", func(t *testing.T) {
		repo := new(MockAccountRepository)
		hasher := new(MockPasswordHasher)
		svc := NewAccountService(repo, hasher)

		storeErr := errors.New("connection reset")
		hasher.On("Hash", "secret123").Return("hashed", nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, storeErr)

		created, err := svc.Create(ctx, &domain.Account{
			Credentials: domain.Credentials{Email: "x@example.com", Password: "secret123"},
		}, "profile-1")

		require.ErrorIs(t, err, storeErr)
		assert.Nil(t, created)
	})
}

func TestAccountService_FindByIDAndProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("strips password and profile back-reference", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		stored := &domain.Account{
			ID:        "acc-1",
			Type:      domain.AccountTypeLocal,
			ProfileID: "profile-1",
			Credentials: domain.Credentials{
				Email:    "user@example.com",
				Password: "bcrypt-hash",
			},
			Profile: &domain.Profile{
				ID:       "profile-1",
				Accounts: []string{"acc-1", "acc-2"},
			},
		}
		repo.On("FindByProfileAndType", ctx, "profile-1", domain.AccountTypeLocal).Return(stored, nil)

		account, err := svc.FindByIDAndProvider(ctx, "profile-1", domain.AccountTypeLocal)

		require.NoError(t, err)
		assert.Empty(t, account.Credentials.Password)
		require.NotNil(t, account.Profile)
		assert.Empty(t, account.Profile.Accounts)

		// The stored document must not have been mutated by the projection.
		assert.Equal(t, "bcrypt-hash", stored.Credentials.Password)
		assert.Len(t, stored.Profile.Accounts, 2)
	})

	t.Run("missing account is an explicit not found", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		repo.On("FindByProfileAndType", ctx, "profile-9", domain.AccountTypeGoogle).Return(nil, domain.ErrNotFound)

		_, err := svc.FindByIDAndProvider(ctx, "profile-9", domain.AccountTypeGoogle)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.CodeNotFound, apiErr.Code)
	})
}

func TestAccountService_FindAndDeleteRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token returns nil, not an error", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		repo.On("TakeRefreshToken", ctx, "unknown-token").Return(nil, domain.ErrNotFound)

		account, err := svc.FindAndDeleteRefreshToken(ctx, "unknown-token")

		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("held token is cleared and the account returned", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		repo.On("TakeRefreshToken", ctx, "held-token").Return(&domain.Account{ID: "acc-1"}, nil)

		account, err := svc.FindAndDeleteRefreshToken(ctx, "held-token")

		require.NoError(t, err)
		assert.Equal(t, "acc-1", account.ID)
	})
}

func TestAccountService_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	pair := &TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}

	t.Run("no account for the profile is unauthorized", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		repo.On("SetTokens", ctx, "ghost-profile", "new-access", "new-refresh").Return(nil, domain.ErrNotFound)

		_, err := svc.SaveRefreshToken(ctx, "ghost-profile", pair)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierrors.CodeUnauthorized, apiErr.Code)
	})

	t.Run("stores exactly the supplied pair and returns the profile", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		repo.On("SetTokens", ctx, "profile-1", "new-access", "new-refresh").Return(&domain.Account{
			ID:        "acc-1",
			ProfileID: "profile-1",
			Credentials: domain.Credentials{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
			},
			Profile: &domain.Profile{ID: "profile-1"},
		}, nil)

		profile, err := svc.SaveRefreshToken(ctx, "profile-1", pair)

		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "profile-1", profile.ID)
		repo.AssertExpectations(t)
	})
}

func TestAccountService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("patch password is hashed before the store sees it", func(t *testing.T) {
		repo := new(MockAccountRepository)
		hasher := new(MockPasswordHasher)
		svc := NewAccountService(repo, hasher)

		newPassword := "new-secret"
		hasher.On("Hash", "new-secret").Return("hashed_new", nil)
		repo.On("Update", ctx, "acc-1", "profile-1", mock.MatchedBy(func(u domain.AccountUpdate) bool {
			return u.Password != nil && *u.Password == "hashed_new"
		})).Return(&domain.Account{ID: "acc-1"}, nil)

		_, err := svc.Update(ctx, "acc-1", "profile-1", domain.AccountUpdate{Password: &newPassword})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("someone else's account reads as missing", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		newUsername := "hijacked"
		repo.On("Update", ctx, "acc-1", "intruder", mock.Anything).Return(nil, domain.ErrNotFound)

		_, err := svc.Update(ctx, "acc-1", "intruder", domain.AccountUpdate{Username: &newUsername})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAccountService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting someone else's account reads as missing", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		repo.On("Delete", ctx, "acc-1", "intruder").Return(nil, domain.ErrNotFound)

		_, err := svc.Remove(ctx, "acc-1", "intruder")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("own account is removed and returned", func(t *testing.T) {
		repo := new(MockAccountRepository)
		svc := NewAccountService(repo, new(MockPasswordHasher))

		repo.On("Delete", ctx, "acc-1", "profile-1").Return(&domain.Account{ID: "acc-1"}, nil)

		account, err := svc.Remove(ctx, "acc-1", "profile-1")

		require.NoError(t, err)
		assert.Equal(t, "acc-1", account.ID)
	})
}
