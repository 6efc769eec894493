// Package services holds the request rules between the HTTP handlers and
// the repositories, identity provider and Yelp client.
package services

import (
	"strings"
	"time"

	"github.com/crowdfork/crowdfork/pkg/apperror"
)

const defaultReviewLimit = 10

// clock is swapped in tests.
type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// storeError passes not-found errors through and reports anything else as
// a failed op.
func storeError(op string, err error) error {
	if err == nil || apperror.Is(err, apperror.KindNotFound) {
		return err
	}
	return apperror.Upstream(op, err)
}

// normalizeEmail matches how the identity providers store emails.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
