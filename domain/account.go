package domain

import "time"

// AccountType discriminates the provider an account was registered through.
type AccountType string

const (
	AccountTypeLocal  AccountType = "local"
	AccountTypeGoogle AccountType = "google"
	AccountTypeYandex AccountType = "yandex"
	AccountTypeVK     AccountType = "vk"
)

// Credentials is the credential sub-document exclusively owned by an Account.
// All fields are optional depending on the account type: OAuth accounts carry
// no password, local accounts carry no provider tokens until login.
type Credentials struct {
	Email        string `bson:"email,omitempty"        json:"email,omitempty"`
	Password     string `bson:"password,omitempty"     json:"password,omitempty"` // bcrypt hash, scrubbed before leaving the service layer
	AccessToken  string `bson:"accessToken,omitempty"  json:"-"`
	RefreshToken string `bson:"refreshToken,omitempty" json:"-"`
}

// Account is a credential-holding identity record linked to exactly one
// Profile. Uniqueness of username and of the (credentials.email, type) pair is
// enforced by indexes at the store, not by application-level locking.
type Account struct {
	ID          string      `bson:"_id,omitempty" json:"id"`
	Type        AccountType `bson:"type"          json:"type"`
	Username    string      `bson:"username"      json:"username"`
	Credentials Credentials `bson:"credentials"   json:"credentials"`
	ProfileID   string      `bson:"profile"       json:"-"`
	Profile     *Profile    `bson:"-"             json:"profile,omitempty"` // resolved by the repository, never stored inline
	CreatedAt   time.Time   `bson:"created_at"    json:"createdAt"`
	UpdatedAt   time.Time   `bson:"updated_at"    json:"updatedAt"`
}

// AccountUpdate is a partial update applied to an account. Nil fields are
// left untouched.
type AccountUpdate struct {
	Username *string
	Email    *string
	Password *string // already hashed by the service layer
}
