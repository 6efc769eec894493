package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/identity"
)

type staticProvider struct{ token string }

func (s staticProvider) Verify(_ context.Context, token string) (identity.Principal, error) {
	if token != s.token {
		return identity.Principal{}, apperror.Unauthorized("Invalid authentication token. Please login again.")
	}
	return identity.Principal{UserID: "u1", Email: "a@b.c"}, nil
}

func (staticProvider) CreateAccount(context.Context, string, string) (identity.Principal, error) {
	return identity.Principal{}, nil
}
func (staticProvider) SignIn(context.Context, string, string) (string, error)        { return "", nil }
func (staticProvider) UpdateEmail(context.Context, identity.Principal, string) error { return nil }
func (staticProvider) DeleteAccount(context.Context, identity.Principal) error       { return nil }

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	d, _ := body["detail"].(string)
	return d
}

func TestAuthenticate(t *testing.T) {
	var seen identity.Principal
	h := Authenticate(staticProvider{token: "good"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}

	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, "good", seen.Token)
}

func TestAuthenticateRejectsBeforeHandler(t *testing.T) {
	called := false
	h := Authenticate(staticProvider{token: "good"})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/favorites/r1", nil))

	assert.False(t, called)
	assert.Equal(t, msgNotAuthenticated, detail(t, rec))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(DefaultCORSOptions())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/restaurants", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func trustProxies(t *testing.T, entries ...string) {
	t.Helper()
	require.NoError(t, TrustProxies(entries))
	t.Cleanup(func() { _ = TrustProxies(nil) })
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.0.2.1", clientIP(req), "untrusted peer")

	trustProxies(t, "10.0.0.0/8", "192.0.2.1")
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req), "nearest untrusted hop")

	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", clientIP(req))
}

func TestTrustProxiesRejectsGarbage(t *testing.T) {
	assert.Error(t, TrustProxies([]string{"not-an-ip"}))
	assert.Error(t, TrustProxies([]string{"10.0.0.0/99"}))
	assert.NoError(t, TrustProxies(nil))
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	h := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	blocked := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.20:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Equal(t, 8, blocked)
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	trustProxies(t, "10.0.0.0/8")
	h := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for _, client := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestLimiterEvictsIdleBuckets(t *testing.T) {
	l := &limiter{max: 1, window: time.Minute, buckets: map[string]*bucket{}}
	start := time.Now()
	l.swept = start

	for i := 0; i < 50; i++ {
		l.get(fmt.Sprintf("198.51.100.%d", i), start)
	}
	require.Len(t, l.buckets, 50)

	later := start.Add(2 * time.Minute)
	l.get("198.51.100.200", later)
	assert.Len(t, l.buckets, 1)
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", detail(t, rec))
}

func TestLoggerKeepsStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/restaurants", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
