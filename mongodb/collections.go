package mongodb

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	AccountsCollection = "accounts" // Account credentials, one per provider per profile
	ProfilesCollection = "profiles" // User-facing identities
	BotsCollection     = "bots"     // Owned bot resources
)

// NewObjectID generates a new MongoDB ObjectID as a string.
func NewObjectID() string {
	return primitive.NewObjectID().Hex()
}
