package repositories

import (
	"context"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/collection"
	"github.com/crowdfork/crowdfork/pkg/docstore"
)

type RestaurantRepository struct {
	store docstore.Store
}

func NewRestaurantRepository(store docstore.Store) *RestaurantRepository {
	return &RestaurantRepository{store: store}
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	id, err := r.store.Create(ctx, RestaurantsCollection, restaurant)
	if err != nil {
		return err
	}
	restaurant.ID = id
	return nil
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id string) (models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.store.Get(ctx, RestaurantsCollection, id, &restaurant)
	return restaurant, notFound(err, "Restaurant not found")
}

// Exists reports whether id is stored. Store failures are returned, not
// folded into false.
func (r *RestaurantRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.FindByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if apperror.Is(err, apperror.KindNotFound) {
		return false, nil
	}
	return false, err
}

// List returns restaurants newest first, optionally filtered by cuisine.
func (r *RestaurantRepository) List(ctx context.Context, cuisineType string, limit int) ([]models.Restaurant, error) {
	q := docstore.Query{Limit: limit}
	if cuisineType != "" {
		q.Field, q.Value = "cuisine_type", cuisineType
	}

	restaurants := []models.Restaurant{}
	if err := r.store.List(ctx, RestaurantsCollection, q, &restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// BatchGet resolves ids in one round trip. Missing ids are absent from the map.
func (r *RestaurantRepository) BatchGet(ctx context.Context, ids []string) (map[string]models.Restaurant, error) {
	var found []models.Restaurant
	if len(ids) > 0 {
		if err := r.store.GetMany(ctx, RestaurantsCollection, ids, &found); err != nil {
			return nil, err
		}
	}

	return collection.KeyBy(found, func(r models.Restaurant) string { return r.ID }), nil
}

func (r *RestaurantRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return notFound(r.store.Update(ctx, RestaurantsCollection, id, fields), "Restaurant not found")
}

func (r *RestaurantRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, RestaurantsCollection, id)
}
