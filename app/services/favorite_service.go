package services

import (
	"context"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/app/repositories"
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/identity"
)

// FavoriteService keeps the favorites set on the user profile. Adding and
// removing are idempotent.
type FavoriteService struct {
	users       *repositories.UserRepository
	restaurants *repositories.RestaurantRepository
}

func NewFavoriteService(users *repositories.UserRepository, restaurants *repositories.RestaurantRepository) *FavoriteService {
	return &FavoriteService{users: users, restaurants: restaurants}
}

func (s *FavoriteService) Add(ctx context.Context, p identity.Principal, restaurantID string) error {
	return storeError("Failed to add favorite", s.users.AddFavorite(ctx, p.UserID, restaurantID))
}

func (s *FavoriteService) Remove(ctx context.Context, p identity.Principal, restaurantID string) error {
	return storeError("Failed to remove favorite", s.users.RemoveFavorite(ctx, p.UserID, restaurantID))
}

func (s *FavoriteService) IDs(ctx context.Context, p identity.Principal) ([]string, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, storeError("Failed to fetch favorites", err)
	}
	return user.Favorites, nil
}

// List resolves the favorites in one batch read. Ids whose restaurant no
// longer exists are dropped.
func (s *FavoriteService) List(ctx context.Context, p identity.Principal) ([]models.Restaurant, error) {
	ids, err := s.IDs(ctx, p)
	if err != nil {
		return nil, err
	}

	byID, err := s.restaurants.BatchGet(ctx, ids)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch favorites", err)
	}

	out := make([]models.Restaurant, 0, len(byID))
	for _, id := range ids {
		if restaurant, ok := byID[id]; ok {
			out = append(out, restaurant)
		}
	}
	return out, nil
}
