package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	apierrors "github.com/botforge/botforge/errors"
	"github.com/botforge/botforge/middleware"
	"github.com/botforge/botforge/services"
)

// API struct to hold dependencies.
type API struct {
	auth     *services.AuthService
	accounts *services.AccountService
	bots     *services.BotService
	tokens   *services.TokenService
}

// NewAPI initializes the HTTP API.
func NewAPI(
	auth *services.AuthService,
	accounts *services.AccountService,
	bots *services.BotService,
	tokens *services.TokenService,
) *API {
	return &API{
		auth:     auth,
		accounts: accounts,
		bots:     bots,
		tokens:   tokens,
	}
}

// RegisterRoutes registers all routes on the echo instance. Everything below
// the public auth endpoints requires a valid, non-blacklisted bearer token.
func (a *API) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = errorHandler
	e.Use(echomw.Recover())

	e.POST("/signup", a.SignUpHandler)
	e.POST("/signin", a.SignInHandler)
	e.POST("/refresh-token", a.RefreshTokenHandler)

	guarded := e.Group("", middleware.RequireAuth(a.tokens))
	guarded.GET("/logout", a.LogoutHandler)

	accounts := guarded.Group("/accounts")
	accounts.GET("", a.ListAccountsHandler)
	accounts.GET("/:id", a.GetAccountHandler)
	accounts.PATCH("/:id", a.UpdateAccountHandler)
	accounts.DELETE("/:id", a.DeleteAccountHandler)

	bots := guarded.Group("/bots")
	bots.GET("", a.ListBotsHandler)
	bots.POST("", a.CreateBotHandler)
	bots.DELETE("/:id", a.DeleteBotHandler)
	bots.POST("/:id/copy", a.CopyBotHandler)
	bots.PATCH("/:id", a.RenameBotHandler)
	bots.GET("/:id", a.GetBotHandler)
	bots.POST("/:id/share", a.ShareBotHandler)
}

// errorHandler maps domain API errors to their status and body, keeps echo's
// own errors intact, and hides everything else behind a 500.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if jsonErr := c.JSON(apiErr.Status, apiErr); jsonErr != nil {
			log.Error().Err(jsonErr).Msg("Failed to write error response")
		}
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, _ := httpErr.Message.(string)
		if jsonErr := c.JSON(httpErr.Code, &apierrors.APIError{
			Status:  httpErr.Code,
			Code:    http.StatusText(httpErr.Code),
			Message: msg,
		}); jsonErr != nil {
			log.Error().Err(jsonErr).Msg("Failed to write error response")
		}
		return
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	serverErr := apierrors.NewServerError("Внутренняя ошибка сервера")
	if jsonErr := c.JSON(serverErr.Status, serverErr); jsonErr != nil {
		log.Error().Err(jsonErr).Msg("Failed to write error response")
	}
}
