package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	apierrors "github.com/botforge/botforge/errors"
	"github.com/botforge/botforge/services"
)

const (
	profileIDKey   = "auth_profile_id"
	accessTokenKey = "auth_access_token"
)

// RequireAuth returns echo middleware that authenticates every request via
// its Bearer token: header shape, signature, expiry, and blacklist membership
// are all checked before the handler runs. A malformed Authorization header
// is rejected before any token extraction happens.
func RequireAuth(tokens *services.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return apierrors.NewUnauthorized("Требуется авторизация")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				return apierrors.NewUnauthorized("Некорректный заголовок Authorization")
			}
			rawToken := parts[1]

			profileID, err := tokens.ValidateAccessToken(c.Request().Context(), rawToken)
			if err != nil {
				if errors.Is(err, services.ErrTokenRevoked) {
					return apierrors.NewUnauthorized("Токен отозван")
				}
				if errors.Is(err, services.ErrTokenInvalid) {
					return apierrors.NewUnauthorized("Невалидный токен")
				}
				log.Error().Err(err).Msg("Token validation failed")
				return apierrors.NewServerError("Внутренняя ошибка сервера")
			}

			c.Set(profileIDKey, profileID)
			c.Set(accessTokenKey, rawToken)
			return next(c)
		}
	}
}

// ProfileID returns the authenticated profile id set by RequireAuth.
func ProfileID(c echo.Context) string {
	id, _ := c.Get(profileIDKey).(string)
	return id
}

// AccessToken returns the raw bearer token set by RequireAuth.
func AccessToken(c echo.Context) string {
	token, _ := c.Get(accessTokenKey).(string)
	return token
}
