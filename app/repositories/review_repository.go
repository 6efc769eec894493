package repositories

import (
	"context"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/pkg/docstore"
)

type ReviewRepository struct {
	store docstore.Store
}

func NewReviewRepository(store docstore.Store) *ReviewRepository {
	return &ReviewRepository{store: store}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	id, err := r.store.Create(ctx, ReviewsCollection, review)
	if err != nil {
		return err
	}
	review.ID = id
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (models.Review, error) {
	var review models.Review
	err := r.store.Get(ctx, ReviewsCollection, id, &review)
	return review, notFound(err, "Review not found")
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ReviewsCollection, id)
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Review, error) {
	return r.list(ctx, "user_id", userID, limit)
}

func (r *ReviewRepository) ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]models.Review, error) {
	return r.list(ctx, "restaurant_id", restaurantID, limit)
}

// DeleteByRestaurant removes every review of a restaurant and returns how many
// were deleted.
func (r *ReviewRepository) DeleteByRestaurant(ctx context.Context, restaurantID string) (int64, error) {
	return r.store.DeleteWhere(ctx, ReviewsCollection, "restaurant_id", restaurantID)
}

func (r *ReviewRepository) list(ctx context.Context, field, value string, limit int) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.store.List(ctx, ReviewsCollection, docstore.Query{Field: field, Value: value, Limit: limit}, &reviews)
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
