package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/botforge/botforge/domain"
	"github.com/botforge/botforge/dto"
	apierrors "github.com/botforge/botforge/errors"
	"github.com/botforge/botforge/middleware"
	"github.com/botforge/botforge/services"
)

// ListAccountsHandler returns every account with its profile resolved.
func (a *API) ListAccountsHandler(c echo.Context) error {
	accounts, err := a.accounts.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.FromDomainAccounts(sanitizeAll(accounts)))
}

// GetAccountHandler returns one account by id.
func (a *API) GetAccountHandler(c echo.Context) error {
	account, err := a.accounts.FindOne(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apierrors.NewNotFound("Аккаунт не найден")
		}
		return err
	}
	return c.JSON(http.StatusOK, dto.FromDomainAccount(services.SanitizeAccount(account)))
}

// UpdateAccountHandler applies a partial update to one of the caller's own
// accounts and returns the result.
func (a *API) UpdateAccountHandler(c echo.Context) error {
	var req dto.AccountUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.NewBadRequest("Некорректное тело запроса")
	}

	account, err := a.accounts.Update(c.Request().Context(), c.Param("id"), middleware.ProfileID(c), req.ToAccountUpdate())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apierrors.NewNotFound("Аккаунт не найден")
		}
		return err
	}
	return c.JSON(http.StatusOK, dto.FromDomainAccount(services.SanitizeAccount(account)))
}

// DeleteAccountHandler removes one of the caller's own accounts and returns
// the deleted record.
func (a *API) DeleteAccountHandler(c echo.Context) error {
	account, err := a.accounts.Remove(c.Request().Context(), c.Param("id"), middleware.ProfileID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apierrors.NewNotFound("Аккаунт не найден")
		}
		return err
	}
	return c.JSON(http.StatusOK, dto.FromDomainAccount(services.SanitizeAccount(account)))
}

func sanitizeAll(accounts []*domain.Account) []*domain.Account {
	clean := make([]*domain.Account, len(accounts))
	for i, account := range accounts {
		clean[i] = services.SanitizeAccount(account)
	}
	return clean
}
