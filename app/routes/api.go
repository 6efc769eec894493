// Package routes mounts the CrowdFork HTTP API.
package routes

import (
	"github.com/crowdfork/crowdfork/app/clients/yelp"
	"github.com/crowdfork/crowdfork/app/controllers"
	"github.com/crowdfork/crowdfork/app/repositories"
	"github.com/crowdfork/crowdfork/app/services"
	"github.com/crowdfork/crowdfork/pkg/ctx"
	"github.com/crowdfork/crowdfork/pkg/docstore"
	"github.com/crowdfork/crowdfork/pkg/identity"
	"github.com/crowdfork/crowdfork/pkg/middleware"
	"github.com/crowdfork/crowdfork/pkg/router"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Store           docstore.Store
	Identity        identity.Provider
	Yelp            *yelp.Client
	DefaultLocation string
}

func RegisterAPI(r *router.Router, d Deps) {
	users := repositories.NewUserRepository(d.Store)
	restaurants := repositories.NewRestaurantRepository(d.Store)
	reviews := repositories.NewReviewRepository(d.Store)

	userCtl := controllers.NewUserController(services.NewUserService(users, d.Identity))
	favoriteCtl := controllers.NewFavoriteController(services.NewFavoriteService(users, restaurants))
	reviewCtl := controllers.NewReviewController(services.NewReviewService(reviews, restaurants))
	restaurantCtl := controllers.NewRestaurantController(
		services.NewRestaurantService(d.Store, restaurants, reviews, d.Yelp, d.DefaultLocation),
	)
	searchCtl := controllers.NewSearchController(services.NewSearchService(d.Yelp))

	auth := middleware.Authenticate(d.Identity)

	// Accounts
	r.Post("/signup", "auth.signup", ctx.Wrap(userCtl.Signup))
	r.Post("/login", "auth.login", ctx.Wrap(userCtl.Login))
	r.Post("/ping", "auth.ping", ctx.Wrap(userCtl.Ping), auth)

	me := r.Group("/users/me", auth)
	me.Get("/", "users.me", ctx.Wrap(userCtl.Me))
	me.Put("/", "users.update", ctx.Wrap(userCtl.UpdateMe))
	me.Get("/reviews", "users.reviews", ctx.Wrap(reviewCtl.Mine))
	me.Get("/favorites", "favorites.index", ctx.Wrap(favoriteCtl.Index))
	me.Get("/favorites/ids", "favorites.ids", ctx.Wrap(favoriteCtl.IDs))

	favorites := r.Group("/favorites", auth)
	favorites.Post("/{restaurant_id}", "favorites.add", ctx.Wrap(favoriteCtl.Add))
	favorites.Delete("/{restaurant_id}", "favorites.remove", ctx.Wrap(favoriteCtl.Remove))

	// Restaurants and reviews
	rs := r.Group("/restaurants")
	rs.Get("/", "restaurants.index", ctx.Wrap(restaurantCtl.Index))
	rs.Post("/", "restaurants.store", ctx.Wrap(restaurantCtl.Store))
	rs.Get("/{id}", "restaurants.show", ctx.Wrap(restaurantCtl.Show))
	rs.Put("/{id}", "restaurants.update", ctx.Wrap(restaurantCtl.Update))
	rs.Delete("/{id}", "restaurants.destroy", ctx.Wrap(restaurantCtl.Destroy))
	rs.Get("/{id}/reviews", "restaurants.reviews", ctx.Wrap(reviewCtl.ForRestaurant))
	rs.Post("/{id}/reviews", "reviews.store", ctx.Wrap(reviewCtl.Store), auth)

	// Older clients use the singular path.
	r.Get("/restaurant/{id}/reviews", "", ctx.Wrap(reviewCtl.ForRestaurant))

	r.Delete("/reviews/{id}", "reviews.destroy", ctx.Wrap(reviewCtl.Destroy), auth)

	// Yelp proxies
	r.Get("/search/restaurants", "search.restaurants", ctx.Wrap(searchCtl.Restaurants))
	r.Get("/autocomplete/restaurants", "search.autocomplete", ctx.Wrap(searchCtl.Autocomplete))
	r.Get("/recommendations/nearby", "recommendations.nearby", ctx.Wrap(searchCtl.Nearby))
	r.Get("/recommendations/localpicks", "recommendations.localpicks", ctx.Wrap(searchCtl.LocalPicks))
	r.Get("/yelp/restaurants/{id}", "yelp.show", ctx.Wrap(searchCtl.Business))
}
