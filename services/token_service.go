package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/botforge/botforge/cache"
)

var (
	// ErrTokenInvalid covers malformed, mis-signed and expired tokens.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenRevoked is returned for tokens present in the blacklist.
	ErrTokenRevoked = errors.New("token has been revoked")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair is an access/refresh token pair issued for one profile.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues and validates HS256 JWT pairs and maintains the logout
// blacklist. A blacklisted token stays cryptographically valid until its
// natural expiry, so validation always consults the blacklist.
type TokenService struct {
	secret          []byte
	issuer          string
	blacklist       cache.TokenBlacklist
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewTokenService creates a new TokenService instance.
func NewTokenService(secret, issuer string, blacklist cache.TokenBlacklist, accessTokenTTL, refreshTokenTTL time.Duration) *TokenService {
	return &TokenService{
		secret:          []byte(secret),
		issuer:          issuer,
		blacklist:       blacklist,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// IssuePair creates a new access and refresh token pair for the profile.
func (s *TokenService) IssuePair(profileID string) (*TokenPair, error) {
	accessToken, err := s.sign(profileID, tokenTypeAccess, s.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.sign(profileID, tokenTypeRefresh, s.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *TokenService) sign(profileID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": profileID,
		"jti": uuid.NewString(),
		"iat": jwt.NewNumericDate(now).Unix(),
		"exp": jwt.NewNumericDate(now.Add(ttl)).Unix(),
		"typ": tokenType,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateAccessToken verifies the signature and expiry of an access token,
// rejects blacklisted tokens, and returns the profile id it was issued for.
func (s *TokenService) ValidateAccessToken(ctx context.Context, rawToken string) (string, error) {
	profileID, err := s.parse(rawToken, tokenTypeAccess)
	if err != nil {
		return "", err
	}

	revoked, err := s.blacklist.Contains(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("blacklist check failed: %w", err)
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	return profileID, nil
}

// ParseRefreshToken verifies the signature and expiry of a refresh token and
// returns the profile id. Possession of the token is checked against the
// account store separately.
func (s *TokenService) ParseRefreshToken(rawToken string) (string, error) {
	return s.parse(rawToken, tokenTypeRefresh)
}

func (s *TokenService) parse(rawToken, wantType string) (string, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenInvalid
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return "", fmt.Errorf("%w: wrong token type", ErrTokenInvalid)
	}

	profileID, err := claims.GetSubject()
	if err != nil || profileID == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return profileID, nil
}

// Revoke records the token in the blacklist until its natural expiry.
// Revoking an already-revoked token is a no-op.
func (s *TokenService) Revoke(ctx context.Context, rawToken string) error {
	expiresAt := time.Now().Add(s.accessTokenTTL)

	// Use the token's own exp when it can be read, so the blacklist entry
	// lives exactly as long as the token it shadows.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawToken, claims); err == nil {
		if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
			expiresAt = exp.Time
		}
	} else {
		log.Debug().Err(err).Msg("Revoking a token with unreadable claims, using default TTL")
	}

	if err := s.blacklist.Add(ctx, rawToken, expiresAt); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}
