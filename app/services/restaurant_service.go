package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crowdfork/crowdfork/app/clients/yelp"
	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/app/repositories"
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/collection"
	"github.com/crowdfork/crowdfork/pkg/docstore"
	"github.com/crowdfork/crowdfork/pkg/logger"
)

const defaultRestaurantLimit = 20

type RestaurantInput struct {
	Name        string `json:"name"         validate:"required,max=200"`
	Address     string `json:"address"      validate:"required,max=300"`
	CuisineType string `json:"cuisine_type" validate:"max=100"`
	Description string `json:"description"`
	Phone       string `json:"phone"        validate:"max=40"`
	ImageURL    string `json:"image_url"    validate:"nullable,url"`
}

// RestaurantUpdate merges non-nil fields.
type RestaurantUpdate struct {
	Name        *string `json:"name"         validate:"nullable,max=200"`
	Address     *string `json:"address"      validate:"nullable,max=300"`
	CuisineType *string `json:"cuisine_type" validate:"nullable,max=100"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"        validate:"nullable,max=40"`
	ImageURL    *string `json:"image_url"    validate:"nullable,url"`
}

type RestaurantService struct {
	store       docstore.Store
	restaurants *repositories.RestaurantRepository
	reviews     *repositories.ReviewRepository
	yelp        *yelp.Client
	location    string
	now         clock
}

// NewRestaurantService wires the service. fallbackLocation is the Yelp
// search location used when the local listing fails.
func NewRestaurantService(store docstore.Store, restaurants *repositories.RestaurantRepository, reviews *repositories.ReviewRepository, client *yelp.Client, fallbackLocation string) *RestaurantService {
	return &RestaurantService{
		store:       store,
		restaurants: restaurants,
		reviews:     reviews,
		yelp:        client,
		location:    fallbackLocation,
		now:         utcNow,
	}
}

func (s *RestaurantService) Create(ctx context.Context, in RestaurantInput) (models.Restaurant, error) {
	now := s.now()
	restaurant := models.Restaurant{
		Name:        in.Name,
		Address:     in.Address,
		CuisineType: in.CuisineType,
		Description: in.Description,
		Phone:       in.Phone,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.restaurants.Create(ctx, &restaurant); err != nil {
		return models.Restaurant{}, apperror.Upstream("Failed to create restaurant", err)
	}
	return restaurant, nil
}

func (s *RestaurantService) Get(ctx context.Context, id string) (models.Restaurant, error) {
	restaurant, err := s.restaurants.FindByID(ctx, id)
	if err != nil && !apperror.Is(err, apperror.KindNotFound) {
		return models.Restaurant{}, apperror.Upstream("Failed to fetch restaurant", err)
	}
	return restaurant, err
}

// List reads the local store first. When that fails the listing is served
// from a Yelp search instead; only when both fail is an error returned.
func (s *RestaurantService) List(ctx context.Context, cuisineType string, limit int) ([]models.Restaurant, error) {
	restaurants, err := s.restaurants.List(ctx, cuisineType, limit)
	if err == nil {
		return restaurants, nil
	}

	logger.WithCtx(ctx).Warn("local restaurant listing failed, falling back to yelp", "error", err)

	term := cuisineType
	if term == "" {
		term = "restaurants"
	}
	res, yerr := s.yelp.Search(ctx, yelp.SearchParams{Term: term, Location: s.location, Limit: limit})
	if yerr != nil {
		return nil, apperror.Upstream("Failed to fetch restaurants", fmt.Errorf("%v; yelp fallback: %w", err, yerr))
	}

	now := s.now()
	return collection.Map(res.Businesses, func(b yelp.Business) models.Restaurant { return fromBusiness(b, now) }), nil
}

func fromBusiness(b yelp.Business, now time.Time) models.Restaurant {
	cuisine := "Unknown"
	if len(b.Categories) > 0 {
		cuisine = b.Categories[0].Title
	}
	return models.Restaurant{
		ID:          b.ID,
		Name:        b.Name,
		Address:     strings.Join(b.Location.DisplayAddress, ", "),
		CuisineType: cuisine,
		Description: fmt.Sprintf("Rated %g/5 from %d reviews", b.Rating, b.ReviewCount),
		Phone:       b.DisplayPhone,
		ImageURL:    b.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Update merges the non-nil fields and refreshes updated_at.
func (s *RestaurantService) Update(ctx context.Context, id string, in RestaurantUpdate) (models.Restaurant, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Restaurant{}, err
	}

	fields := map[string]interface{}{"updated_at": s.now()}
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set("name", in.Name)
	set("address", in.Address)
	set("cuisine_type", in.CuisineType)
	set("description", in.Description)
	set("phone", in.Phone)
	set("image_url", in.ImageURL)

	if err := s.restaurants.Update(ctx, id, fields); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return models.Restaurant{}, err
		}
		return models.Restaurant{}, apperror.Upstream("Failed to update restaurant", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the restaurant's reviews, then the restaurant. Both steps
// run in one transaction when the store supports it.
func (s *RestaurantService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.reviews.DeleteByRestaurant(ctx, id)
		if err != nil {
			return err
		}
		logger.WithCtx(ctx).Debug("cascade deleted reviews", "restaurant_id", id, "count", n)
		return s.restaurants.Delete(ctx, id)
	})
	if err != nil {
		return apperror.Upstream("Failed to delete restaurant", err)
	}
	return nil
}
