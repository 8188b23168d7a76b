package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/botforge/botforge/dto"
	apierrors "github.com/botforge/botforge/errors"
	"github.com/botforge/botforge/middleware"
)

// ListBotsHandler lists the bots owned by the authenticated user.
func (a *API) ListBotsHandler(c echo.Context) error {
	bots, err := a.bots.FindAllByUser(c.Request().Context(), middleware.ProfileID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bots)
}

// CreateBotHandler creates a bot owned by the authenticated user.
func (a *API) CreateBotHandler(c echo.Context) error {
	var req dto.CreateBotRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}

	bot, err := a.bots.Create(c.Request().Context(), middleware.ProfileID(c), req.BotName, req.Settings)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bot)
}

// DeleteBotHandler deletes a bot owned by the authenticated user.
func (a *API) DeleteBotHandler(c echo.Context) error {
	bot, err := a.bots.Remove(c.Request().Context(), middleware.ProfileID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bot)
}

// CopyBotHandler duplicates a bot under the authenticated user.
func (a *API) CopyBotHandler(c echo.Context) error {
	var req dto.CopyBotRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}

	bot, err := a.bots.Copy(c.Request().Context(), middleware.ProfileID(c), c.Param("id"), req.BotName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bot)
}

// RenameBotHandler changes a bot's name.
func (a *API) RenameBotHandler(c echo.Context) error {
	var req dto.RenameBotRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}

	bot, err := a.bots.Update(c.Request().Context(), middleware.ProfileID(c), c.Param("id"), req.BotName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bot)
}

// GetBotHandler fetches a bot readable by the authenticated user: owned or
// shared with them.
func (a *API) GetBotHandler(c echo.Context) error {
	bot, err := a.bots.FindOne(c.Request().Context(), middleware.ProfileID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bot)
}

// ShareBotHandler grants access to a bot via an invitee email.
func (a *API) ShareBotHandler(c echo.Context) error {
	var req dto.ShareBotRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}

	message, err := a.bots.Share(c.Request().Context(), middleware.ProfileID(c), c.Param("id"), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.MessageResponse{Message: message})
}
