package middleware

import (
	"net/http"
	"strings"

	"github.com/crowdfork/crowdfork/pkg/identity"
	"github.com/crowdfork/crowdfork/pkg/logger"
	"github.com/crowdfork/crowdfork/pkg/response"
)

const msgNotAuthenticated = "Not authenticated"

// Authenticate verifies the bearer token with provider and stores the
// principal in the request context. Requests without a valid token never
// reach next.
func Authenticate(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				response.Unauthorized(w, msgNotAuthenticated)
				return
			}

			p, err := provider.Verify(r.Context(), token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
				response.Error(w, err)
				return
			}
			p.Token = token

			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
