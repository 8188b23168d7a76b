package domain

import "time"

// ShareGrant records access to a bot granted to another user, keyed by the
// invitee email. ProfileID is resolved at grant time when the invitee already
// has an account, and stays empty otherwise.
type ShareGrant struct {
	Email     string    `bson:"email"             json:"email"`
	ProfileID string    `bson:"profile,omitempty" json:"profile,omitempty"`
	GrantedAt time.Time `bson:"granted_at"        json:"grantedAt"`
}

// Bot is the product's core owned resource: a configurable chatbot. Settings
// are opaque to the backend and stored as-is.
type Bot struct {
	ID         string         `bson:"_id,omitempty"         json:"id"`
	OwnerID    string         `bson:"owner"                 json:"owner"`
	Name       string         `bson:"name"                  json:"botName"`
	Settings   map[string]any `bson:"settings,omitempty"    json:"settings,omitempty"`
	SharedWith []ShareGrant   `bson:"shared_with,omitempty" json:"sharedWith,omitempty"`
	CreatedAt  time.Time      `bson:"created_at"            json:"createdAt"`
	UpdatedAt  time.Time      `bson:"updated_at"            json:"updatedAt"`
}

// AccessibleBy reports whether the given profile owns the bot or holds a
// resolved share grant on it.
func (b *Bot) AccessibleBy(profileID string) bool {
	if b.OwnerID == profileID {
		return true
	}
	for _, grant := range b.SharedWith {
		if grant.ProfileID != "" && grant.ProfileID == profileID {
			return true
		}
	}
	return false
}
