package seeders

import (
	"context"
	"time"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/app/repositories"
	"github.com/crowdfork/crowdfork/pkg/docstore"
)

func init() {
	Register("restaurants", SeedRestaurants)
}

var demoRestaurants = []models.Restaurant{
	{Name: "Joe's Pizza", Address: "7 Carmine St, New York, NY", CuisineType: "Italian", Description: "Best pizza in town!", Phone: "+1-555-0123"},
	{Name: "Pho Bang", Address: "157 Mott St, New York, NY", CuisineType: "Vietnamese", Description: "Brisket pho and broken rice.", Phone: "+1-555-0144"},
	{Name: "Katz's Delicatessen", Address: "205 E Houston St, New York, NY", CuisineType: "Delis", Description: "Pastrami on rye since 1888.", Phone: "+1-555-0188"},
	{Name: "Xi'an Famous Foods", Address: "45 Bayard St, New York, NY", CuisineType: "Chinese", Description: "Hand-pulled noodles.", Phone: "+1-555-0199"},
}

// SeedRestaurants inserts the demo restaurants, skipping any whose name is
// already stored.
func SeedRestaurants(ctx context.Context, store docstore.Store) error {
	repo := repositories.NewRestaurantRepository(store)

	existing, err := repo.List(ctx, "", 0)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Name] = true
	}

	now := time.Now().UTC()
	for i, r := range demoRestaurants {
		if have[r.Name] {
			continue
		}
		r.CreatedAt = now.Add(time.Duration(i) * time.Second)
		r.UpdatedAt = r.CreatedAt
		if err := repo.Create(ctx, &r); err != nil {
			return err
		}
	}
	return nil
}
