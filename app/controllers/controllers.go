// Package controllers adapts HTTP requests to service calls.
package controllers

import (
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/ctx"
	"github.com/crowdfork/crowdfork/pkg/identity"
)

// principal returns the authenticated caller. Routes using it are mounted
// behind middleware.Authenticate, so a missing principal is a wiring bug
// and is answered as unauthenticated.
func principal(c *ctx.Context) (identity.Principal, bool) {
	p, ok := c.Principal()
	if !ok {
		c.Fail(apperror.Unauthorized("Not authenticated"))
	}
	return p, ok
}
