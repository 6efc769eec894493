package models

import "time"

type Review struct {
	ID                string    `bson:"_id,omitempty"                json:"id"`
	RestaurantID      string    `bson:"restaurant_id"                json:"restaurant_id"`
	UserID            string    `bson:"user_id"                      json:"user_id"`
	Rating            float64   `bson:"rating"                       json:"rating"`
	Text              string    `bson:"text,omitempty"               json:"text,omitempty"`
	FoodRating        *float64  `bson:"food_rating,omitempty"        json:"food_rating,omitempty"`
	AmbienceRating    *float64  `bson:"ambience_rating,omitempty"    json:"ambience_rating,omitempty"`
	ServiceRating     *float64  `bson:"service_rating,omitempty"     json:"service_rating,omitempty"`
	RecommendedDishes []string  `bson:"recommended_dishes,omitempty" json:"recommended_dishes,omitempty"`
	PriceRange        string    `bson:"price_range,omitempty"        json:"price_range,omitempty"`
	CreatedAt         time.Time `bson:"created_at"                   json:"created_at"`
}

// UserReview is a review in a user's history, labelled with the name of the
// restaurant it was written for.
type UserReview struct {
	Review
	RestaurantName string `json:"restaurant_name"`
}
