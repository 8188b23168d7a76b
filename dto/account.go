package dto

import (
	"time"

	"github.com/botforge/botforge/domain"
)

// AccountUpdateRequest defines the payload for partially updating an account.
// All fields are optional.
type AccountUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"` // Raw password, to be hashed by the service
}

// ToAccountUpdate converts the request to the domain patch.
func (r AccountUpdateRequest) ToAccountUpdate() domain.AccountUpdate {
	return domain.AccountUpdate{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
}

// ProfileResponse is the profile shape embedded in account responses. The
// account back-reference is always omitted to avoid cyclic payloads.
type ProfileResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AccountResponse defines the structure for API responses containing account
// information. Password hashes and provider tokens are never included.
type AccountResponse struct {
	ID        string             `json:"id"`
	Type      domain.AccountType `json:"type"`
	Username  string             `json:"username"`
	Email     string             `json:"email,omitempty"`
	Profile   *ProfileResponse   `json:"profile,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// FromDomainAccount converts a domain.Account to an AccountResponse.
func FromDomainAccount(account *domain.Account) *AccountResponse {
	if account == nil {
		return nil
	}

	resp := &AccountResponse{
		ID:        account.ID,
		Type:      account.Type,
		Username:  account.Username,
		Email:     account.Credentials.Email,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
	if account.Profile != nil {
		resp.Profile = &ProfileResponse{
			ID:        account.Profile.ID,
			CreatedAt: account.Profile.CreatedAt,
			UpdatedAt: account.Profile.UpdatedAt,
		}
	}
	return resp
}

// FromDomainAccounts converts a slice of domain.Account to responses.
func FromDomainAccounts(accounts []*domain.Account) []*AccountResponse {
	if accounts == nil {
		return nil
	}
	responses := make([]*AccountResponse, len(accounts))
	for i, account := range accounts {
		responses[i] = FromDomainAccount(account)
	}
	return responses
}
