package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/docstore/docstoretest"
)

func TestRestaurantBatchGetDropsMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewRestaurantRepository(docstoretest.New())

	a := &models.Restaurant{Name: "A", CreatedAt: time.Now()}
	b := &models.Restaurant{Name: "B", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.BatchGet(ctx, []string{a.ID, "missing", b.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "A", got[a.ID].Name)
	assert.Equal(t, "B", got[b.ID].Name)

	empty, err := repo.BatchGet(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRestaurantExists(t *testing.T) {
	ctx := context.Background()
	repo := NewRestaurantRepository(docstoretest.New())

	r := &models.Restaurant{Name: "A"}
	require.NoError(t, repo.Create(ctx, r))

	ok, err := repo.Exists(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestaurantListFiltersByCuisine(t *testing.T) {
	ctx := context.Background()
	repo := NewRestaurantRepository(docstoretest.New())
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &models.Restaurant{Name: "Pho", CuisineType: "Vietnamese", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &models.Restaurant{Name: "Pizza", CuisineType: "Italian", CreatedAt: now.Add(time.Second)}))

	got, err := repo.List(ctx, "Italian", 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pizza", got[0].Name)
}

func TestReviewFindByIDNotFound(t *testing.T) {
	repo := NewReviewRepository(docstoretest.New())

	_, err := repo.FindByID(context.Background(), "nope")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "Review not found", err.Error())
}

func TestUserFavoritesOnMissingProfile(t *testing.T) {
	repo := NewUserRepository(docstoretest.New())

	err := repo.AddFavorite(context.Background(), "ghost", "r1")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUserCreateInitialisesFavorites(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(docstoretest.New())

	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Email: "a@b.co"}))
	require.NoError(t, repo.AddFavorite(ctx, "u1", "r1"))

	u, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, u.Favorites)
}
