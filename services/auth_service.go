package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/botforge/botforge/domain"
	apierrors "github.com/botforge/botforge/errors"
)

// AuthService implements the session lifecycle: registration, login, refresh
// token rotation and logout. The session state machine per account is simply
// LoggedOut -> LoggedIn (token issuance) -> LoggedOut (logout or rotation
// clearing the refresh token).
type AuthService struct {
	accounts *AccountService
	profiles domain.ProfileRepository
	bots     domain.BotRepository
	tokens   *TokenService
	hasher   PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts *AccountService, profiles domain.ProfileRepository, bots domain.BotRepository, tokens *TokenService, hasher PasswordHasher) *AuthService {
	return &AuthService{
		accounts: accounts,
		profiles: profiles,
		bots:     bots,
		tokens:   tokens,
		hasher:   hasher,
	}
}

// SignUp creates a profile and its local account, then issues and persists a
// token pair. Duplicate username or email yields a Conflict; the freshly
// created profile is removed so the conflict leaves no orphan behind.
func (s *AuthService) SignUp(ctx context.Context, email, password, username string) (*domain.Account, *TokenPair, error) {
	profile, err := s.profiles.Create(ctx)
	if err != nil {
		return nil, nil, err
	}

	account := &domain.Account{
		Type:     domain.AccountTypeLocal,
		Username: username,
		Credentials: domain.Credentials{
			Email:    email,
			Password: password,
		},
	}

	created, err := s.accounts.Create(ctx, account, profile.ID)
	if err != nil {
		if delErr := s.profiles.Delete(ctx, profile.ID); delErr != nil {
			log.Error().Err(delErr).Str("profile_id", profile.ID).Msg("Failed to clean up profile after signup failure")
		}
		return nil, nil, err
	}

	if err := s.profiles.AddAccount(ctx, profile.ID, created.ID); err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to link account to profile")
	}

	// Bots shared with this email before registration become readable now.
	if err := s.bots.ResolveGrants(ctx, email, profile.ID); err != nil {
		log.Error().Err(err).Str("profile_id", profile.ID).Msg("Failed to resolve pending share grants")
	}

	pair, err := s.issueAndPersist(ctx, profile.ID)
	if err != nil {
		return nil, nil, err
	}

	created.Profile = profile
	return SanitizeAccount(created), pair, nil
}

// SignIn authenticates a local account by email and password and rotates its
// token pair. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Account, *TokenPair, error) {
	account, err := s.accounts.FindByEmailAndType(ctx, email, domain.AccountTypeLocal)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, apierrors.NewUnauthorized("Неверный email или пароль")
		}
		return nil, nil, err
	}

	if err := s.hasher.Verify(account.Credentials.Password, password); err != nil {
		return nil, nil, apierrors.NewUnauthorized("Неверный email или пароль")
	}

	pair, err := s.issueAndPersist(ctx, account.ProfileID)
	if err != nil {
		return nil, nil, err
	}

	return SanitizeAccount(account), pair, nil
}

// Refresh rotates the session of whichever account holds the presented
// refresh token. A token held by no account means no live session exists for
// it, which is an Unauthorized, not an internal error.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if _, err := s.tokens.ParseRefreshToken(refreshToken); err != nil {
		return nil, apierrors.NewUnauthorized("Невалидный refreshToken")
	}

	account, err := s.accounts.FindAndDeleteRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apierrors.NewUnauthorized("Невалидный refreshToken")
	}

	return s.issueAndPersist(ctx, account.ProfileID)
}

// Logout blacklists the presented access token and clears the stored token
// pair, ending the session even though the JWT itself stays valid until its
// natural expiry.
func (s *AuthService) Logout(ctx context.Context, profileID, accessToken string) error {
	if err := s.tokens.Revoke(ctx, accessToken); err != nil {
		return err
	}

	if err := s.accounts.ClearTokens(ctx, profileID); err != nil {
		// The blacklist entry already ends the session, so only log.
		log.Error().Err(err).Str("profile_id", profileID).Msg("Failed to clear stored tokens on logout")
	}
	return nil
}

func (s *AuthService) issueAndPersist(ctx context.Context, profileID string) (*TokenPair, error) {
	pair, err := s.tokens.IssuePair(profileID)
	if err != nil {
		return nil, err
	}

	if _, err := s.accounts.SaveRefreshToken(ctx, profileID, pair); err != nil {
		return nil, err
	}
	return pair, nil
}
