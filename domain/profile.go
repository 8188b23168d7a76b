package domain

import "time"

// Profile is the user-facing identity that one or more accounts authenticate
// into (e.g. a local and a Google account sharing one profile). The Accounts
// back-reference is cleared before a profile is returned inside an account
// payload to avoid cyclic responses.
type Profile struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Accounts  []string  `bson:"accounts"      json:"accounts,omitempty"`
	CreatedAt time.Time `bson:"created_at"    json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at"    json:"updatedAt"`
}
