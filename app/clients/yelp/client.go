// Package yelp is the client for the Yelp Fusion business search API.
//
// Each call is one GET with bearer auth. Failures are returned as-is: the
// client neither retries nor caches.
package yelp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crowdfork/crowdfork/config"
	"github.com/crowdfork/crowdfork/pkg/http"
	"github.com/crowdfork/crowdfork/pkg/logger"
	"github.com/crowdfork/crowdfork/pkg/metrics"
)

const (
	searchPath       = "/v3/businesses/search"
	autocompletePath = "/v3/autocomplete"
	businessPath     = "/v3/businesses/"
)

var ErrMissingAPIKey = errors.New("yelp: YELP_API_KEY is not set")

// APIError is a non-2xx answer from Yelp.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yelp %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// SearchParams maps onto the search endpoint's query string. Zero values are
// left out. The client does not check that the combination makes sense.
type SearchParams struct {
	Term       string
	Location   string
	Latitude   *float64
	Longitude  *float64
	SortBy     string
	Attributes string
	Limit      int
}

type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.yelp.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
	}
}

// NewFromConfig builds a client from YELP_API_KEY, YELP_API_HOST and
// YELP_TIMEOUT. A missing key only surfaces when a call is made.
func NewFromConfig() *Client {
	return New(Options{
		APIKey:  config.YelpAPIKey(),
		BaseURL: config.YelpAPIHost(),
		Timeout: config.YelpTimeout(),
	})
}

func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	q := map[string]string{
		"term":       p.Term,
		"location":   p.Location,
		"latitude":   formatCoord(p.Latitude),
		"longitude":  formatCoord(p.Longitude),
		"sort_by":    p.SortBy,
		"attributes": p.Attributes,
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}

	var out SearchResponse
	if err := c.get(ctx, "search", searchPath, q, &out); err != nil {
		return nil, err
	}
	if out.Businesses == nil {
		out.Businesses = []Business{}
	}
	return &out, nil
}

func (c *Client) Autocomplete(ctx context.Context, text string, lat, lon *float64) (*AutocompleteResponse, error) {
	q := map[string]string{
		"text":      text,
		"latitude":  formatCoord(lat),
		"longitude": formatCoord(lon),
	}

	out := EmptyAutocomplete()
	if err := c.get(ctx, "autocomplete", autocompletePath, q, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Business fetches one business. When Yelp returns no photos but the
// business has a summary image, Photos becomes that single image.
func (c *Client) Business(ctx context.Context, id string) (*BusinessDetail, error) {
	var out BusinessDetail
	if err := c.get(ctx, "business", businessPath+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Photos) == 0 {
		if out.ImageURL != "" {
			out.Photos = []string{out.ImageURL}
		} else {
			out.Photos = []string{}
		}
	}
	if out.Hours == nil {
		out.Hours = []Hours{}
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query map[string]string, dest interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	req := http.Get(c.baseURL + path).
		WithContext(ctx).
		Bearer(c.apiKey).
		Timeout(c.timeout)
	for k, v := range query {
		req.Query(k, v)
	}

	start := time.Now()
	resp, err := req.Send()
	if err != nil {
		metrics.RecordYelpRequest(endpoint, 0)
		return fmt.Errorf("yelp %s: %w", endpoint, err)
	}
	metrics.RecordYelpRequest(endpoint, resp.StatusCode)

	logger.WithCtx(ctx).Debug("yelp request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if !resp.OK() {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: resp.Text()}
	}
	if err := resp.JSON(dest); err != nil {
		return fmt.Errorf("yelp %s: %w", endpoint, err)
	}
	return nil
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
