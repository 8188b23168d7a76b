package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/botforge/botforge/domain"
)

// ProfileRepositoryMongo implements domain.ProfileRepository using MongoDB.
type ProfileRepositoryMongo struct {
	profiles *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepositoryMongo {
	return &ProfileRepositoryMongo{
		profiles: db.Collection(ProfilesCollection),
	}
}

func (r *ProfileRepositoryMongo) Create(ctx context.Context) (*domain.Profile, error) {
	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:        NewObjectID(),
		Accounts:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.profiles.InsertOne(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *ProfileRepositoryMongo) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// AddAccount appends an account id to the profile's back-reference list.
func (r *ProfileRepositoryMongo) AddAccount(ctx context.Context, profileID, accountID string) error {
	update := bson.M{
		"$addToSet": bson.M{"accounts": accountID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.profiles.UpdateOne(ctx, bson.M{"_id": profileID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileRepositoryMongo) Delete(ctx context.Context, id string) error {
	_, err := r.profiles.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

var _ domain.ProfileRepository = (*ProfileRepositoryMongo)(nil)
