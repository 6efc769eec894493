package repositories

import (
	"context"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/pkg/docstore"
)

type UserRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	_, err := r.store.Create(ctx, UsersCollection, user)
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.store.Get(ctx, UsersCollection, id, &user)
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	return user, notFound(err, "User not found")
}

// Update merges fields into the profile.
func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return notFound(r.store.Update(ctx, UsersCollection, id, fields), "User not found")
}

func (r *UserRepository) AddFavorite(ctx context.Context, id, restaurantID string) error {
	return notFound(r.store.AddToSet(ctx, UsersCollection, id, "favorites", restaurantID), "User not found")
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, id, restaurantID string) error {
	return notFound(r.store.RemoveFromSet(ctx, UsersCollection, id, "favorites", restaurantID), "User not found")
}
