package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/botforge/botforge/domain"
	apierrors "github.com/botforge/botforge/errors"
)

// AccountService is the single source of truth for account CRUD, lookups by
// email/type/provider, and refresh-token rotation.
type AccountService struct {
	accounts domain.AccountRepository
	hasher   PasswordHasher
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts domain.AccountRepository, hasher PasswordHasher) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
	}
}

// Create hashes the plaintext password, attaches the profile reference, and
// persists the account. A uniqueness violation (duplicate username or email)
// surfaces as a Conflict; any other store error propagates as a server error
// instead of being swallowed.
func (s *AccountService) Create(ctx context.Context, account *domain.Account, profileID string) (*domain.Account, error) {
	if account.Credentials.Password != "" {
		hashed, err := s.hasher.Hash(account.Credentials.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.Credentials.Password = hashed
	}
	account.ProfileID = profileID

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apierrors.NewConflict("Пользователь с таким username или email уже существует")
		}
		log.Error().Err(err).Msg("Failed to create account")
		return nil, err
	}
	return created, nil
}

// FindAll returns every account with its profile relation resolved.
// No pagination: the admin surface is small enough that the full scan is
// tolerated for now.
func (s *AccountService) FindAll(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.FindAll(ctx)
}

// FindOne returns the account by id.
func (s *AccountService) FindOne(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// Update applies a partial update on the caller's own account and returns the
// post-update account with its profile resolved. A password in the patch is
// hashed before it reaches the store. An account owned by another profile is
// indistinguishable from a missing one.
func (s *AccountService) Update(ctx context.Context, id, profileID string, update domain.AccountUpdate) (*domain.Account, error) {
	if update.Password != nil {
		hashed, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update.Password = &hashed
	}

	updated, err := s.accounts.Update(ctx, id, profileID, update)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apierrors.NewConflict("Пользователь с таким username или email уже существует")
		}
		return nil, err
	}
	return updated, nil
}

// FindByEmail returns the account holding the email, with profile resolved.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.accounts.FindByEmail(ctx, email)
}

// FindByEmailAndType returns the account of the given provider type holding
// the email, with profile resolved.
func (s *AccountService) FindByEmailAndType(ctx context.Context, email string, accountType domain.AccountType) (*domain.Account, error) {
	return s.accounts.FindByEmailAndType(ctx, email, accountType)
}

// FindByIDAndProvider finds the account of a given provider type for a given
// profile. The result never carries a password hash or the profile's account
// back-reference; absence is an explicit NotFound, never a nil dereference.
func (s *AccountService) FindByIDAndProvider(ctx context.Context, profileID string, provider domain.AccountType) (*domain.Account, error) {
	account, err := s.accounts.FindByProfileAndType(ctx, profileID, provider)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apierrors.NewNotFound("Аккаунт не найден")
		}
		return nil, err
	}
	return SanitizeAccount(account), nil
}

// FindAndDeleteRefreshToken looks up the account holding refreshToken, clears
// the token field, and returns the account. A token not held by any account
// returns (nil, nil): absence is a normal outcome of rotation races, not an
// error, and nothing is mutated in that case.
func (s *AccountService) FindAndDeleteRefreshToken(ctx context.Context, refreshToken string) (*domain.Account, error) {
	account, err := s.accounts.TakeRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// Remove deletes the caller's own account by id and returns the deleted
// record.
func (s *AccountService) Remove(ctx context.Context, id, profileID string) (*domain.Account, error) {
	return s.accounts.Delete(ctx, id, profileID)
}

// SaveRefreshToken atomically sets both token fields on the account belonging
// to profileID and returns the associated profile. No account for the profile
// means the presented refresh token corresponds to no live session.
func (s *AccountService) SaveRefreshToken(ctx context.Context, profileID string, tokens *TokenPair) (*domain.Profile, error) {
	account, err := s.accounts.SetTokens(ctx, profileID, tokens.AccessToken, tokens.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apierrors.NewUnauthorized("Невалидный refreshToken")
		}
		return nil, err
	}
	return account.Profile, nil
}

// ClearTokens drops both token fields on the account belonging to profileID,
// moving its session sub-state back to logged out.
func (s *AccountService) ClearTokens(ctx context.Context, profileID string) error {
	return s.accounts.ClearTokens(ctx, profileID)
}

// SanitizeAccount is the projection applied to every account that leaves the
// service layer outward: it strips the password hash and the profile's
// cyclic account list. The copy is shallow except for the touched fields, so
// the stored document is never mutated.
func SanitizeAccount(account *domain.Account) *domain.Account {
	if account == nil {
		return nil
	}

	clean := *account
	clean.Credentials.Password = ""
	if account.Profile != nil {
		profile := *account.Profile
		profile.Accounts = nil
		clean.Profile = &profile
	}
	return &clean
}
