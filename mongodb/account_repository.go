package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/botforge/botforge/domain"
)

// AccountRepositoryMongo implements domain.AccountRepository using MongoDB.
// Reads resolve the Profile relation with a second lookup, mirroring the
// populate step of the document model.
type AccountRepositoryMongo struct {
	accounts *mongo.Collection
	profiles *mongo.Collection
}

// NewAccountRepository creates the repository and ensures the unique indexes
// that back the account uniqueness invariants: username, and the compound
// (credentials.email, type) pair.
func NewAccountRepository(ctx context.Context, db *mongo.Database) (*AccountRepositoryMongo, error) {
	repo := &AccountRepositoryMongo{
		accounts: db.Collection(AccountsCollection),
		profiles: db.Collection(ProfilesCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "credentials.email", Value: 1},
				{Key: "type", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "profile", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "credentials.refreshToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := repo.accounts.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create account indexes: %w", err)
	}

	return repo, nil
}

// Create inserts a new account. A unique index violation surfaces as
// domain.ErrDuplicate; every other write error propagates untouched.
func (r *AccountRepositoryMongo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.ID == "" {
		account.ID = NewObjectID()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	if _, err := r.accounts.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		log.Error().Err(err).Msg("Error inserting account")
		return nil, err
	}

	return account, nil
}

func (r *AccountRepositoryMongo) FindAll(ctx context.Context) ([]*domain.Account, error) {
	cursor, err := r.accounts.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []*domain.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}

	for _, account := range accounts {
		if err := r.resolveProfile(ctx, account); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (r *AccountRepositoryMongo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Update applies a partial update and returns the post-update account with
// its profile resolved. The owning profile is part of the filter, so an
// account held by a different profile reads as missing.
func (r *AccountRepositoryMongo) Update(ctx context.Context, id, profileID string, update domain.AccountUpdate) (*domain.Account, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Email != nil {
		set["credentials.email"] = *update.Email
	}
	if update.Password != nil {
		set["credentials.password"] = *update.Password
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var account domain.Account
	err := r.accounts.FindOneAndUpdate(ctx, bson.M{"_id": id, "profile": profileID}, bson.M{"$set": set}, opts).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, err
	}

	if err := r.resolveProfile(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryMongo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"credentials.email": email})
}

func (r *AccountRepositoryMongo) FindByEmailAndType(ctx context.Context, email string, accountType domain.AccountType) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"credentials.email": email, "type": accountType})
}

func (r *AccountRepositoryMongo) FindByProfileAndType(ctx context.Context, profileID string, accountType domain.AccountType) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"profile": profileID, "type": accountType})
}

// TakeRefreshToken atomically claims the account holding refreshToken and
// unsets the token field. Concurrent presenters of the same token race here,
// exactly one of them observes the account.
func (r *AccountRepositoryMongo) TakeRefreshToken(ctx context.Context, refreshToken string) (*domain.Account, error) {
	update := bson.M{
		"$unset": bson.M{"credentials.refreshToken": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}

	var account domain.Account
	err := r.accounts.FindOneAndUpdate(ctx, bson.M{"credentials.refreshToken": refreshToken}, update).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.resolveProfile(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SetTokens rotates both token fields on the account belonging to profileID
// in a single atomic update-and-fetch.
func (r *AccountRepositoryMongo) SetTokens(ctx context.Context, profileID, accessToken, refreshToken string) (*domain.Account, error) {
	update := bson.M{
		"$set": bson.M{
			"credentials.accessToken":  accessToken,
			"credentials.refreshToken": refreshToken,
			"updated_at":               time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var account domain.Account
	err := r.accounts.FindOneAndUpdate(ctx, bson.M{"profile": profileID}, update, opts).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.resolveProfile(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryMongo) ClearTokens(ctx context.Context, profileID string) error {
	update := bson.M{
		"$unset": bson.M{
			"credentials.accessToken":  "",
			"credentials.refreshToken": "",
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.accounts.UpdateOne(ctx, bson.M{"profile": profileID}, update)
	return err
}

// Delete removes an account owned by profileID and returns the deleted
// document.
func (r *AccountRepositoryMongo) Delete(ctx context.Context, id, profileID string) (*domain.Account, error) {
	var account domain.Account
	err := r.accounts.FindOneAndDelete(ctx, bson.M{"_id": id, "profile": profileID}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryMongo) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var account domain.Account
	err := r.accounts.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.resolveProfile(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// resolveProfile loads the referenced profile onto the account. A dangling
// reference is not an error: the account is returned without a profile.
func (r *AccountRepositoryMongo) resolveProfile(ctx context.Context, account *domain.Account) error {
	if account.ProfileID == "" {
		return nil
	}

	var profile domain.Profile
	err := r.profiles.FindOne(ctx, bson.M{"_id": account.ProfileID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Warn().Str("account_id", account.ID).Str("profile_id", account.ProfileID).
				Msg("Account references a missing profile")
			return nil
		}
		return err
	}

	account.Profile = &profile
	return nil
}

var _ domain.AccountRepository = (*AccountRepositoryMongo)(nil)
