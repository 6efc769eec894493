package services

import (
	"context"
	"fmt"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/app/repositories"
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/collection"
	"github.com/crowdfork/crowdfork/pkg/identity"
)

const unknownRestaurant = "Unknown Restaurant"

// ReviewInput is the body of POST /restaurants/{id}/reviews. Rating bounds
// are checked by the service, after the restaurant lookup.
type ReviewInput struct {
	RestaurantID      string   `json:"restaurant_id"      validate:"required"`
	Rating            *float64 `json:"rating"             validate:"required"`
	Text              string   `json:"text"`
	FoodRating        *float64 `json:"food_rating"`
	AmbienceRating    *float64 `json:"ambience_rating"`
	ServiceRating     *float64 `json:"service_rating"`
	RecommendedDishes []string `json:"recommended_dishes"`
	PriceRange        string   `json:"price_range"        validate:"nullable,in=$,$$,$$$,$$$$"`
}

type ReviewService struct {
	reviews     *repositories.ReviewRepository
	restaurants *repositories.RestaurantRepository
	now         clock
}

func NewReviewService(reviews *repositories.ReviewRepository, restaurants *repositories.RestaurantRepository) *ReviewService {
	return &ReviewService{reviews: reviews, restaurants: restaurants, now: utcNow}
}

// Create checks, in order: path and body ids agree, the restaurant exists,
// every rating is within [0, 5]. The author is always the caller.
func (s *ReviewService) Create(ctx context.Context, p identity.Principal, restaurantID string, in ReviewInput) (models.Review, error) {
	if in.RestaurantID != restaurantID {
		return models.Review{}, apperror.Validation("Restaurant ID in path does not match the one in request body")
	}

	exists, err := s.restaurants.Exists(ctx, restaurantID)
	if err != nil {
		return models.Review{}, apperror.Upstream("Failed to create review", err)
	}
	if !exists {
		return models.Review{}, apperror.NotFound(fmt.Sprintf("Restaurant with ID %s not found", restaurantID))
	}

	if err := checkRatings(in); err != nil {
		return models.Review{}, err
	}

	review := models.Review{
		RestaurantID:      restaurantID,
		UserID:            p.UserID,
		Rating:            *in.Rating,
		Text:              in.Text,
		FoodRating:        in.FoodRating,
		AmbienceRating:    in.AmbienceRating,
		ServiceRating:     in.ServiceRating,
		RecommendedDishes: in.RecommendedDishes,
		PriceRange:        in.PriceRange,
		CreatedAt:         s.now(),
	}
	if err := s.reviews.Create(ctx, &review); err != nil {
		return models.Review{}, apperror.Upstream("Failed to create review", err)
	}
	return review, nil
}

func checkRatings(in ReviewInput) error {
	if in.Rating == nil {
		return apperror.Validation("Rating is required")
	}
	if !inRange(*in.Rating) {
		return apperror.Validation("Rating must be between 0 and 5")
	}

	subs := []struct {
		name  string
		value *float64
	}{
		{"food_rating", in.FoodRating},
		{"ambience_rating", in.AmbienceRating},
		{"service_rating", in.ServiceRating},
	}
	for _, sub := range subs {
		if sub.value != nil && !inRange(*sub.value) {
			return apperror.Validation(fmt.Sprintf("%s must be between 0 and 5", sub.name))
		}
	}
	return nil
}

func inRange(v float64) bool { return v >= 0 && v <= 5 }

// Delete removes a review written by the caller.
func (s *ReviewService) Delete(ctx context.Context, p identity.Principal, id string) error {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return err
		}
		return apperror.Upstream("Failed to delete review", err)
	}

	if review.UserID != p.UserID {
		return apperror.Forbidden("You can only delete your own reviews")
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return apperror.Upstream("Failed to delete review", err)
	}
	return nil
}

// ForUser lists the caller's reviews, newest first, each labelled with its
// restaurant's name. Restaurants are fetched in one batch; a deleted one is
// shown as "Unknown Restaurant".
func (s *ReviewService) ForUser(ctx context.Context, p identity.Principal, limit int) ([]models.UserReview, error) {
	reviews, err := s.reviews.ListByUser(ctx, p.UserID, limit)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch reviews", err)
	}

	ids := collection.Unique(collection.Map(reviews, func(r models.Review) string { return r.RestaurantID }))
	byID, err := s.restaurants.BatchGet(ctx, ids)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch reviews", err)
	}

	out := make([]models.UserReview, 0, len(reviews))
	for _, r := range reviews {
		name := unknownRestaurant
		if restaurant, ok := byID[r.RestaurantID]; ok {
			name = restaurant.Name
		}
		out = append(out, models.UserReview{Review: r, RestaurantName: name})
	}
	return out, nil
}

// ForRestaurant lists a restaurant's reviews, newest first.
func (s *ReviewService) ForRestaurant(ctx context.Context, restaurantID string, limit int) ([]models.Review, error) {
	exists, err := s.restaurants.Exists(ctx, restaurantID)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch reviews", err)
	}
	if !exists {
		return nil, apperror.NotFound(fmt.Sprintf("Restaurant with ID %s not found", restaurantID))
	}

	reviews, err := s.reviews.ListByRestaurant(ctx, restaurantID, limit)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch reviews", err)
	}
	return reviews, nil
}
