package models

import "time"

// User is the profile row kept next to an identity-provider account.
// ID is the provider's uid.
type User struct {
	ID        string    `bson:"_id"        json:"id"`
	Email     string    `bson:"email"      json:"email"`
	Name      string    `bson:"name"       json:"name"`
	Tagline   string    `bson:"tagline"    json:"tagline"`
	Location  string    `bson:"location"   json:"location"`
	ImageURL  string    `bson:"image_url"  json:"image_url"`
	JoinedAt  time.Time `bson:"joined_at"  json:"joined_at"`
	Favorites []string  `bson:"favorites"  json:"favorites"`
}
