package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/botforge/botforge/domain"
)

// BotRepositoryMongo implements domain.BotRepository using MongoDB. Mutating
// operations carry the owner in the filter, so ownership is checked and the
// write applied in one round trip.
type BotRepositoryMongo struct {
	bots *mongo.Collection
}

func NewBotRepository(ctx context.Context, db *mongo.Database) (*BotRepositoryMongo, error) {
	repo := &BotRepositoryMongo{
		bots: db.Collection(BotsCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "shared_with.profile", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := repo.bots.Indexes().CreateMany(ctx, indexModels); err != nil {
		return nil, fmt.Errorf("failed to create bot indexes: %w", err)
	}

	return repo, nil
}

func (r *BotRepositoryMongo) Insert(ctx context.Context, bot *domain.Bot) (*domain.Bot, error) {
	if bot.ID == "" {
		bot.ID = NewObjectID()
	}
	now := time.Now().UTC()
	bot.CreatedAt = now
	bot.UpdatedAt = now

	if _, err := r.bots.InsertOne(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (r *BotRepositoryMongo) FindAllByOwner(ctx context.Context, ownerID string) ([]*domain.Bot, error) {
	cursor, err := r.bots.Find(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bots []*domain.Bot
	if err := cursor.All(ctx, &bots); err != nil {
		return nil, err
	}
	return bots, nil
}

func (r *BotRepositoryMongo) FindByID(ctx context.Context, id string) (*domain.Bot, error) {
	var bot domain.Bot
	err := r.bots.FindOne(ctx, bson.M{"_id": id}).Decode(&bot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &bot, nil
}

func (r *BotRepositoryMongo) Rename(ctx context.Context, id, ownerID, name string) (*domain.Bot, error) {
	update := bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var bot domain.Bot
	err := r.bots.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner": ownerID}, update, opts).Decode(&bot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &bot, nil
}

func (r *BotRepositoryMongo) Delete(ctx context.Context, id, ownerID string) (*domain.Bot, error) {
	var bot domain.Bot
	err := r.bots.FindOneAndDelete(ctx, bson.M{"_id": id, "owner": ownerID}).Decode(&bot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &bot, nil
}

// AddGrant appends a share grant unless the email is already granted.
func (r *BotRepositoryMongo) AddGrant(ctx context.Context, id, ownerID string, grant domain.ShareGrant) (*domain.Bot, error) {
	filter := bson.M{
		"_id":               id,
		"owner":             ownerID,
		"shared_with.email": bson.M{"$ne": grant.Email},
	}
	update := bson.M{
		"$push": bson.M{"shared_with": grant},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var bot domain.Bot
	err := r.bots.FindOneAndUpdate(ctx, filter, update, opts).Decode(&bot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either not owned by ownerID, or the grant already exists.
			// Distinguish by re-reading with the ownership filter only.
			existing, findErr := r.findOwned(ctx, id, ownerID)
			if findErr != nil {
				return nil, findErr
			}
			return existing, nil
		}
		return nil, err
	}
	return &bot, nil
}

// ResolveGrants fills in the profile on every grant issued to the email
// before its owner registered. Grants that already carry a profile are left
// untouched.
func (r *BotRepositoryMongo) ResolveGrants(ctx context.Context, email, profileID string) error {
	filter := bson.M{"shared_with.email": email}
	update := bson.M{"$set": bson.M{"shared_with.$[g].profile": profileID}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{
			"g.email":   email,
			"g.profile": bson.M{"$exists": false},
		}},
	})

	_, err := r.bots.UpdateMany(ctx, filter, update, opts)
	return err
}

func (r *BotRepositoryMongo) findOwned(ctx context.Context, id, ownerID string) (*domain.Bot, error) {
	var bot domain.Bot
	err := r.bots.FindOne(ctx, bson.M{"_id": id, "owner": ownerID}).Decode(&bot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &bot, nil
}

var _ domain.BotRepository = (*BotRepositoryMongo)(nil)
