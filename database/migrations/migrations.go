// Package migrations registers the index migrations. It is imported by
// the CLI so its init runs before `crowdfork migrate`.
package migrations

import (
	"github.com/crowdfork/crowdfork/app/repositories"
	"github.com/crowdfork/crowdfork/pkg/docstore"
	"github.com/crowdfork/crowdfork/pkg/identity"
	"github.com/crowdfork/crowdfork/pkg/migration"
)

func init() {
	migration.Register("20240501000000_review_indexes", migration.Indexes(repositories.ReviewsCollection,
		docstore.IndexSpec{
			Name: "reviews_restaurant_created",
			Keys: []docstore.IndexKey{{Field: "restaurant_id"}, {Field: "created_at", Desc: true}},
		},
		docstore.IndexSpec{
			Name: "reviews_user_created",
			Keys: []docstore.IndexKey{{Field: "user_id"}, {Field: "created_at", Desc: true}},
		},
	))

	migration.Register("20240501000001_restaurant_indexes", migration.Indexes(repositories.RestaurantsCollection,
		docstore.IndexSpec{
			Name: "restaurants_created",
			Keys: []docstore.IndexKey{{Field: "created_at", Desc: true}},
		},
		docstore.IndexSpec{
			Name: "restaurants_cuisine_created",
			Keys: []docstore.IndexKey{{Field: "cuisine_type"}, {Field: "created_at", Desc: true}},
		},
	))

	migration.Register("20240501000002_account_indexes",
		migration.Indexes(identity.AccountsCollection, identity.AccountIndexes()...))
}
