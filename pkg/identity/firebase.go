package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/cache"
	"github.com/crowdfork/crowdfork/pkg/http"
	"github.com/crowdfork/crowdfork/pkg/logger"
	"github.com/crowdfork/crowdfork/pkg/metrics"
)

const (
	defaultToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	defaultCertsURL   = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

	certCacheKey = "identity:firebase:certs"
	certCacheTTL = time.Hour

	// minCertRefresh spaces out refetches forced by unknown key ids.
	minCertRefresh = time.Minute
)

type FirebaseOptions struct {
	APIKey     string
	ProjectID  string
	ToolkitURL string
	CertsURL   string
	Timeout    time.Duration
}

// Firebase talks to the Identity Toolkit REST API and verifies ID tokens
// against Google's published signing certificates. The certificate set is
// kept in redis for an hour; verified tokens are never cached. A token
// signed with a key id missing from the cached set triggers one refetch,
// at most once per minute.
type Firebase struct {
	opts FirebaseOptions

	mu          sync.Mutex
	lastRefresh time.Time
}

func NewFirebase(opts FirebaseOptions) *Firebase {
	if opts.ToolkitURL == "" {
		opts.ToolkitURL = defaultToolkitURL
	}
	if opts.CertsURL == "" {
		opts.CertsURL = defaultCertsURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	opts.ToolkitURL = strings.TrimRight(opts.ToolkitURL, "/")
	return &Firebase{opts: opts}
}

type firebaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (f *Firebase) Verify(ctx context.Context, token string) (Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &firebaseClaims{}, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		keys, err := f.publicKeys(ctx, false)
		if err != nil {
			return nil, err
		}
		if key, ok := keys[kid]; ok {
			return key, nil
		}
		if !f.allowRefresh() {
			return nil, fmt.Errorf("identity: unknown key id %q", kid)
		}
		keys, err = f.publicKeys(ctx, true)
		if err != nil {
			return nil, err
		}
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("identity: unknown key id %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer("https://securetoken.google.com/"+f.opts.ProjectID),
		jwt.WithAudience(f.opts.ProjectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		logger.WithCtx(ctx).Debug("firebase token rejected", "error", err)
		return Principal{}, tokenError(err)
	}

	claims, ok := parsed.Claims.(*firebaseClaims)
	if !ok || claims.Subject == "" {
		return Principal{}, apperror.Unauthorized(msgInvalidToken)
	}
	return Principal{UserID: claims.Subject, Email: claims.Email, Token: token}, nil
}

// CreateAccount keeps the ID token handed out at sign-up so the account can
// be deleted again without a service account.
func (f *Firebase) CreateAccount(ctx context.Context, email, password string) (Principal, error) {
	var out struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
		IDToken string `json:"idToken"`
	}
	err := f.call(ctx, "signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return Principal{}, toolkitFailure(err, email)
	}
	if out.Email == "" {
		out.Email = email
	}
	return Principal{UserID: out.LocalID, Email: out.Email, Token: out.IDToken}, nil
}

// DeleteAccount needs the account's own ID token.
func (f *Firebase) DeleteAccount(ctx context.Context, p Principal) error {
	if p.Token == "" {
		return fmt.Errorf("identity: delete %s: no id token", p.UserID)
	}
	err := f.call(ctx, "delete", map[string]interface{}{"idToken": p.Token}, nil)
	if err != nil {
		return toolkitFailure(err, p.Email)
	}
	return nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (string, error) {
	var out struct {
		IDToken string `json:"idToken"`
	}
	err := f.call(ctx, "signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil || out.IDToken == "" {
		return "", apperror.Credentials()
	}
	return out.IDToken, nil
}

// UpdateEmail acts with the caller's own ID token, so no service account
// is needed.
func (f *Firebase) UpdateEmail(ctx context.Context, p Principal, email string) error {
	err := f.call(ctx, "update", map[string]interface{}{
		"idToken":           p.Token,
		"email":             email,
		"returnSecureToken": false,
	}, nil)
	if err != nil {
		return toolkitFailure(err, email)
	}
	return nil
}

// ToolkitError is an error answer from the Identity Toolkit API, e.g.
// EMAIL_EXISTS or "WEAK_PASSWORD : Password should be at least 6 characters".
type ToolkitError struct {
	StatusCode int
	Message    string
}

func (e *ToolkitError) Error() string {
	return fmt.Sprintf("identity toolkit: status %d: %s", e.StatusCode, e.Message)
}

func toolkitFailure(err error, email string) error {
	var te *ToolkitError
	if !errors.As(err, &te) {
		return err
	}
	switch {
	case te.Message == "EMAIL_EXISTS":
		return EmailTaken(email)
	case strings.HasPrefix(te.Message, "WEAK_PASSWORD"), te.Message == "INVALID_EMAIL", te.Message == "MISSING_PASSWORD":
		return apperror.Validation(te.Message)
	case strings.HasPrefix(te.Message, "INVALID_ID_TOKEN"), te.Message == "TOKEN_EXPIRED", te.Message == "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return apperror.Unauthorized(msgExpiredToken)
	}
	return err
}

func (f *Firebase) call(ctx context.Context, method string, body interface{}, dest interface{}) error {
	resp, err := http.Post(f.opts.ToolkitURL+"/accounts:"+method).
		WithContext(ctx).
		Query("key", f.opts.APIKey).
		Body(body).
		Timeout(f.opts.Timeout).
		Send()
	if err != nil {
		return err
	}
	if !resp.OK() {
		var e struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = resp.JSON(&e)
		return &ToolkitError{StatusCode: resp.StatusCode, Message: e.Error.Message}
	}
	if dest == nil {
		return nil
	}
	return resp.JSON(dest)
}

func (f *Firebase) allowRefresh() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastRefresh) < minCertRefresh {
		return false
	}
	f.lastRefresh = time.Now()
	return true
}

// publicKeys returns the signing keys by key id, from redis unless refresh
// is set, in which case the cached set is dropped and fetched again.
func (f *Firebase) publicKeys(ctx context.Context, refresh bool) (map[string]*rsa.PublicKey, error) {
	var pems map[string]string
	if refresh {
		if err := cache.Del(ctx, certCacheKey); err != nil {
			logger.WithCtx(ctx).Warn("firebase cert cache drop failed", "error", err)
		}
	}
	if !refresh && cache.Get(ctx, certCacheKey, &pems) && len(pems) > 0 {
		metrics.CacheHit("firebase_certs")
	} else {
		metrics.CacheMiss("firebase_certs")

		resp, err := http.Get(f.opts.CertsURL).WithContext(ctx).Timeout(f.opts.Timeout).Send()
		if err != nil {
			return nil, fmt.Errorf("identity: fetch certs: %w", err)
		}
		if err := resp.Throw(); err != nil {
			return nil, fmt.Errorf("identity: fetch certs: %w", err)
		}
		if err := resp.JSON(&pems); err != nil {
			return nil, err
		}
		if err := cache.Set(ctx, certCacheKey, pems, certCacheTTL); err != nil {
			logger.WithCtx(ctx).Warn("firebase cert cache write failed", "error", err)
		}
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, p := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(p))
		if err != nil {
			return nil, fmt.Errorf("identity: parse cert %s: %w", kid, err)
		}
		keys[kid] = key
	}
	return keys, nil
}
