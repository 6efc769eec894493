// Package identity verifies bearer tokens and manages accounts at the
// identity provider. Two drivers exist: a local one backed by the document
// store and one backed by Firebase Authentication.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crowdfork/crowdfork/pkg/apperror"
)

// Principal is the authenticated caller. Token is the raw bearer token; it
// is needed by providers that act on behalf of the user.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"-"`
}

type Provider interface {
	// Verify checks a bearer token on every call; results are not cached.
	Verify(ctx context.Context, token string) (Principal, error)
	// CreateAccount returns the new account, or a conflict error when the
	// email is already registered. Token is set only by providers that hand
	// one out at sign-up.
	CreateAccount(ctx context.Context, email, password string) (Principal, error)
	// SignIn exchanges credentials for a bearer token. Every failure is the
	// same credentials error.
	SignIn(ctx context.Context, email, password string) (string, error)
	UpdateEmail(ctx context.Context, p Principal, email string) error
	// DeleteAccount removes an account returned by CreateAccount.
	DeleteAccount(ctx context.Context, p Principal) error
}

const (
	msgInvalidToken = "Invalid authentication token. Please login again."
	msgExpiredToken = "Authentication token has expired. Please login again."
)

// EmailTaken is the conflict returned for a second sign-up with one email.
func EmailTaken(email string) *apperror.Error {
	return apperror.Conflict(fmt.Sprintf("Account already created for the email %s", email))
}

// tokenError maps a jwt parse failure to a 401.
func tokenError(err error) *apperror.Error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperror.Unauthorized(msgExpiredToken)
	}
	return apperror.Unauthorized(msgInvalidToken)
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
