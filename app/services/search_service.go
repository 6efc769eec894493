package services

import (
	"context"
	"strings"

	"github.com/crowdfork/crowdfork/app/clients/yelp"
	"github.com/crowdfork/crowdfork/pkg/apperror"
)

const (
	defaultSearchLimit = 10
	defaultNearbyLimit = 20
)

// SearchQuery is the query string of the Yelp proxy routes.
type SearchQuery struct {
	Term      string
	Location  string
	Latitude  *float64
	Longitude *float64
	Limit     int
}

func (q SearchQuery) hasTermAndLocation() bool {
	return strings.TrimSpace(q.Term) != "" && strings.TrimSpace(q.Location) != ""
}

func (q SearchQuery) hasCoordinates() bool { return q.Latitude != nil && q.Longitude != nil }

func (q SearchQuery) limitOr(def int) int {
	if q.Limit > 0 {
		return q.Limit
	}
	return def
}

// SearchService proxies Yelp. Every method makes at most one Yelp call and
// rejects parameter combinations Yelp would not answer meaningfully.
type SearchService struct {
	yelp *yelp.Client
}

func NewSearchService(client *yelp.Client) *SearchService {
	return &SearchService{yelp: client}
}

// Restaurants needs a term and a location, or a latitude and a longitude.
func (s *SearchService) Restaurants(ctx context.Context, q SearchQuery) (*yelp.SearchResponse, error) {
	if !q.hasTermAndLocation() && !q.hasCoordinates() {
		return nil, apperror.Validation("Provide term and location, or latitude and longitude")
	}

	res, err := s.yelp.Search(ctx, yelp.SearchParams{
		Term:      q.Term,
		Location:  q.Location,
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		Limit:     q.limitOr(defaultSearchLimit),
	})
	if err != nil {
		return nil, apperror.Upstream("Failed to search restaurants", err)
	}
	return res, nil
}

func (s *SearchService) Nearby(ctx context.Context, q SearchQuery) (*yelp.SearchResponse, error) {
	if !q.hasCoordinates() {
		return nil, apperror.Validation("latitude and longitude are required")
	}

	res, err := s.yelp.Search(ctx, yelp.SearchParams{
		Term:      "restaurants",
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		Limit:     q.limitOr(defaultNearbyLimit),
	})
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch nearby restaurants", err)
	}
	return res, nil
}

// LocalPicks is Nearby ordered by rating.
func (s *SearchService) LocalPicks(ctx context.Context, q SearchQuery) (*yelp.SearchResponse, error) {
	if !q.hasCoordinates() {
		return nil, apperror.Validation("latitude and longitude are required")
	}

	res, err := s.yelp.Search(ctx, yelp.SearchParams{
		Term:      "restaurants",
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		SortBy:    "rating",
		Limit:     q.limitOr(defaultNearbyLimit),
	})
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch local picks", err)
	}
	return res, nil
}

// Autocomplete answers an empty result for blank text without calling Yelp.
func (s *SearchService) Autocomplete(ctx context.Context, text string, lat, lon *float64) (*yelp.AutocompleteResponse, error) {
	if strings.TrimSpace(text) == "" {
		return yelp.EmptyAutocomplete(), nil
	}

	res, err := s.yelp.Autocomplete(ctx, text, lat, lon)
	if err != nil {
		return nil, apperror.Upstream("Failed to autocomplete restaurants", err)
	}
	return res, nil
}

func (s *SearchService) Business(ctx context.Context, id string) (*yelp.BusinessDetail, error) {
	res, err := s.yelp.Business(ctx, id)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch restaurant details", err)
	}
	return res, nil
}
