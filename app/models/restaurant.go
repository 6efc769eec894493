package models

import "time"

// Restaurant is a locally created restaurant. Restaurants built from Yelp
// results share this shape but carry the Yelp id and are never stored.
type Restaurant struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name"          json:"name"`
	Address     string    `bson:"address"       json:"address"`
	CuisineType string    `bson:"cuisine_type"  json:"cuisine_type"`
	Description string    `bson:"description"   json:"description"`
	Phone       string    `bson:"phone"         json:"phone"`
	ImageURL    string    `bson:"image_url"     json:"image_url"`
	CreatedAt   time.Time `bson:"created_at"    json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"    json:"updated_at"`
}
