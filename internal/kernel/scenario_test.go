package kernel

import (
	"testing"

	"github.com/crowdfork/crowdfork/app/clients/yelp"
	"github.com/crowdfork/crowdfork/app/routes"
	"github.com/crowdfork/crowdfork/pkg/docstore/docstoretest"
	"github.com/crowdfork/crowdfork/pkg/identity/identitytest"
	"github.com/crowdfork/crowdfork/pkg/testkit"
)

// TestScenarios replays testdata/*.json with Yelp answered by mock steps.
func TestScenarios(t *testing.T) {
	k := NewHTTPKernel(routes.Deps{
		Store:           docstoretest.New(),
		Identity:        identitytest.New(),
		Yelp:            yelp.New(yelp.Options{APIKey: "k", BaseURL: "https://api.yelp.test"}),
		DefaultLocation: "New York, NY",
	})
	testkit.RunDir(t, k.Handler(), "testdata")
}
