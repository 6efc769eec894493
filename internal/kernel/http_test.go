package kernel

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfork/crowdfork/app/clients/yelp"
	"github.com/crowdfork/crowdfork/app/routes"
	"github.com/crowdfork/crowdfork/pkg/docstore/docstoretest"
	"github.com/crowdfork/crowdfork/pkg/identity/identitytest"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T, yelpURL string) (*apiClient, *identitytest.Static, *docstoretest.Memory) {
	t.Helper()
	store := docstoretest.New()
	ids := identitytest.New()
	k := NewHTTPKernel(routes.Deps{
		Store:           store,
		Identity:        ids,
		Yelp:            yelp.New(yelp.Options{APIKey: "k", BaseURL: yelpURL}),
		DefaultLocation: "New York, NY",
	})
	return &apiClient{t: t, handler: k.Handler()}, ids, store
}

func (a *apiClient) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var obj map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &obj)
	return rec, obj
}

func (a *apiClient) list(method, path, token string) []map[string]any {
	a.t.Helper()
	rec, _ := a.do(method, path, token, nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var out []map[string]any
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLiveness(t *testing.T) {
	api, _, _ := newAPI(t, "http://127.0.0.1:0")
	rec, body := api.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "World", body["Hello"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, body = api.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["code"])
}

func TestRestaurantReviewFlow(t *testing.T) {
	api, ids, _ := newAPI(t, "http://127.0.0.1:0")
	alice := ids.Token("alice", "alice@example.com")
	bob := ids.Token("bob", "bob@example.com")

	rec, restaurant := api.do(http.MethodPost, "/restaurants", "", map[string]any{
		"name": "Joe's Pizza", "address": "123 Main St", "cuisine_type": "Italian",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := restaurant["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, restaurant["created_at"], restaurant["updated_at"])

	// Auth is checked before the body.
	rec, _ = api.do(http.MethodPost, "/restaurants/"+id+"/reviews", "", map[string]any{"restaurant_id": id, "rating": 4.5})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := api.do(http.MethodPost, "/restaurants/"+id+"/reviews", alice, map[string]any{"restaurant_id": "other", "rating": 4.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["code"])

	rec, _ = api.do(http.MethodPost, "/restaurants/"+id+"/reviews", alice, map[string]any{"restaurant_id": id, "rating": 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(http.MethodPost, "/restaurants/"+id+"/reviews", alice, map[string]any{"restaurant_id": id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, review := api.do(http.MethodPost, "/restaurants/"+id+"/reviews", alice, map[string]any{
		"restaurant_id": id, "rating": 4.5, "text": "Great", "price_range": "$$",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", review["user_id"])
	reviewID := review["id"].(string)

	reviews := api.list(http.MethodGet, "/restaurants/"+id+"/reviews", "")
	require.Len(t, reviews, 1)
	assert.Equal(t, reviewID, reviews[0]["id"])
	assert.Len(t, api.list(http.MethodGet, "/restaurant/"+id+"/reviews", ""), 1)

	rec, _ = api.do(http.MethodGet, "/restaurants/"+id+"/reviews?limit=ten", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mine := api.list(http.MethodGet, "/users/me/reviews", alice)
	require.Len(t, mine, 1)
	assert.Equal(t, "Joe's Pizza", mine[0]["restaurant_name"])

	rec, body = api.do(http.MethodDelete, "/reviews/"+reviewID, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can only delete your own reviews", body["detail"])

	rec, body = api.do(http.MethodPut, "/restaurants/"+id, "", map[string]any{"phone": "+1-555-0123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Joe's Pizza", body["name"])
	assert.Equal(t, "+1-555-0123", body["phone"])

	rec, body = api.do(http.MethodDelete, "/restaurants/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Restaurant and associated reviews deleted successfully", body["message"])

	rec, body = api.do(http.MethodGet, "/restaurants/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Restaurant not found", body["detail"])

	rec, body = api.do(http.MethodDelete, "/reviews/"+reviewID, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Review not found", body["detail"])
}

func TestAccountsAndFavorites(t *testing.T) {
	api, _, _ := newAPI(t, "http://127.0.0.1:0")

	rec, body := api.do(http.MethodPost, "/signup", "", map[string]any{"email": "ann@example.com", "password": "hunter22", "name": "Ann"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "User account successfully for User uid-1", body["message"])

	rec, body = api.do(http.MethodPost, "/signup", "", map[string]any{"email": "ann@example.com", "password": "hunter22"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Account already created for the email ann@example.com", body["detail"])

	rec, body = api.do(http.MethodPost, "/login", "", map[string]any{"email": "ann@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid username or password", body["detail"])

	rec, body = api.do(http.MethodPost, "/login", "", map[string]any{"email": "ann@example.com", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := body["token"].(string)

	rec, body = api.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann", body["name"])

	rec, body = api.do(http.MethodPut, "/users/me", token, map[string]any{"tagline": "noodles"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "noodles", body["tagline"])

	_, restaurant := api.do(http.MethodPost, "/restaurants", "", map[string]any{"name": "Pho", "address": "1 Mott St"})
	rid := restaurant["id"].(string)

	for i := 0; i < 2; i++ {
		rec, _ = api.do(http.MethodPost, "/favorites/"+rid, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, body = api.do(http.MethodGet, "/users/me/favorites/ids", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{rid}, body["favorite_ids"])

	favs := api.list(http.MethodGet, "/users/me/favorites", token)
	require.Len(t, favs, 1)
	assert.Equal(t, "Pho", favs[0]["name"])

	rec, _ = api.do(http.MethodDelete, "/favorites/"+rid, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, api.list(http.MethodGet, "/users/me/favorites", token))

	rec, _ = api.do(http.MethodGet, "/users/me/favorites/ids", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchProxies(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		switch r.URL.Path {
		case "/v3/businesses/b1":
			_, _ = w.Write([]byte(`{"id":"b1","name":"Katz's","image_url":"http://img/k.jpg"}`))
		default:
			_, _ = w.Write([]byte(`{"businesses":[{"id":"b1","name":"Katz's"}],"total":1}`))
		}
	}))
	defer srv.Close()
	api, _, _ := newAPI(t, srv.URL)

	rec, _ := api.do(http.MethodGet, "/search/restaurants?term=pizza", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := api.do(http.MethodGet, "/search/restaurants?term=pizza&location=NYC", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])

	rec, _ = api.do(http.MethodGet, "/recommendations/nearby?latitude=40.7", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = api.do(http.MethodGet, "/recommendations/localpicks?latitude=40.7&longitude=-73.9&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = api.do(http.MethodGet, "/autocomplete/restaurants?text=", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["terms"])

	rec, body = api.do(http.MethodGet, "/yelp/restaurants/b1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"http://img/k.jpg"}, body["photos"])

	require.Len(t, paths, 3)
	assert.Contains(t, paths[1], "sort_by=rating")
}
