package repositories

import (
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/docstore"
)

const (
	UsersCollection       = "users"
	RestaurantsCollection = "restaurants"
	ReviewsCollection     = "reviews"
)

// notFound turns docstore.ErrNotFound into a typed 404 with msg and passes
// any other error through.
func notFound(err error, msg string) error {
	if docstore.IsNotFound(err) {
		return apperror.NotFound(msg)
	}
	return err
}
