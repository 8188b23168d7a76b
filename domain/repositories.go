package domain

import "context"

// AccountRepository defines persistence for accounts. Implementations resolve
// the Profile relation on reads and translate duplicate-key violations into
// ErrDuplicate and absent documents into ErrNotFound. Update and Delete carry
// the owning profile in the filter, so a caller touching someone else's
// account observes ErrNotFound.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	FindAll(ctx context.Context) ([]*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Update(ctx context.Context, id, profileID string, update AccountUpdate) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByEmailAndType(ctx context.Context, email string, accountType AccountType) (*Account, error)
	FindByProfileAndType(ctx context.Context, profileID string, accountType AccountType) (*Account, error)

	// TakeRefreshToken atomically finds the account holding refreshToken and
	// clears the token field, returning the pre-rotation account.
	TakeRefreshToken(ctx context.Context, refreshToken string) (*Account, error)

	// SetTokens atomically sets both token fields on the account belonging to
	// profileID and returns the post-update account with its profile resolved.
	SetTokens(ctx context.Context, profileID, accessToken, refreshToken string) (*Account, error)

	// ClearTokens drops both token fields on the account belonging to profileID.
	ClearTokens(ctx context.Context, profileID string) error

	Delete(ctx context.Context, id, profileID string) (*Account, error)
}

// ProfileRepository defines persistence for profiles.
type ProfileRepository interface {
	Create(ctx context.Context) (*Profile, error)
	FindByID(ctx context.Context, id string) (*Profile, error)
	AddAccount(ctx context.Context, profileID, accountID string) error
	Delete(ctx context.Context, id string) error
}

// BotRepository defines persistence for bots. Mutating operations are scoped
// by owner in the filter itself, so a non-owner observes ErrNotFound rather
// than an existence oracle.
type BotRepository interface {
	Insert(ctx context.Context, bot *Bot) (*Bot, error)
	FindAllByOwner(ctx context.Context, ownerID string) ([]*Bot, error)
	FindByID(ctx context.Context, id string) (*Bot, error)
	Rename(ctx context.Context, id, ownerID, name string) (*Bot, error)
	Delete(ctx context.Context, id, ownerID string) (*Bot, error)
	AddGrant(ctx context.Context, id, ownerID string, grant ShareGrant) (*Bot, error)

	// ResolveGrants binds every pending share grant for the email to the
	// profile, so invitations issued before the invitee registered become
	// effective.
	ResolveGrants(ctx context.Context, email, profileID string) error
}
