package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/botforge/botforge/dto"
	apierrors "github.com/botforge/botforge/errors"
	"github.com/botforge/botforge/middleware"
)

// SignUpHandler registers a new profile with a local account and returns the
// created account together with a fresh token pair.
func (a *API) SignUpHandler(c echo.Context) error {
	var req dto.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return apierrors.NewBadRequest("Поля email, password и username обязательны")
	}

	account, pair, err := a.auth.SignUp(c.Request().Context(), req.Email, req.Password, req.Username)
	if err != nil {
		return err
	}

	log.Info().Str("account_id", account.ID).Msg("Account registered")

	return c.JSON(http.StatusCreated, map[string]any{
		"account": dto.FromDomainAccount(account),
		"tokens":  pair,
	})
}

// SignInHandler authenticates a local account by email and password.
func (a *API) SignInHandler(c echo.Context) error {
	var req dto.SignInRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}

	account, pair, err := a.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"account": dto.FromDomainAccount(account),
		"tokens":  pair,
	})
}

// RefreshTokenHandler exchanges a refresh token for a new pair, rotating the
// stored session tokens.
func (a *API) RefreshTokenHandler(c echo.Context) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}
	if req.RefreshToken == "" {
		return apierrors.NewBadRequest("Не указан refreshToken")
	}

	pair, err := a.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pair)
}

// LogoutHandler revokes the presented access token. The token reaches this
// handler already validated by the auth middleware, so extraction cannot see
// a malformed header here.
func (a *API) LogoutHandler(c echo.Context) error {
	profileID := middleware.ProfileID(c)
	accessToken := middleware.AccessToken(c)

	if err := a.auth.Logout(c.Request().Context(), profileID, accessToken); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Пользователь успешно разлогинен",
	})
}
