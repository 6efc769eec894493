// Package identitytest provides an in-memory identity.Provider for tests.
package identitytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/identity"
)

// Static issues the token "token-<uid>" for every account it knows.
type Static struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]account // by email
	tokens   map[string]identity.Principal
	// EmailUpdates records every UpdateEmail call as uid → email.
	EmailUpdates map[string]string
	// Deleted records every DeleteAccount call by uid.
	Deleted []string
}

type account struct {
	uid      string
	password string
}

func New() *Static {
	return &Static{
		accounts:     map[string]account{},
		tokens:       map[string]identity.Principal{},
		EmailUpdates: map[string]string{},
	}
}

// Token returns the bearer token for uid, registering it if needed.
func (s *Static) Token(uid, email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := "token-" + uid
	s.tokens[t] = identity.Principal{UserID: uid, Email: email}
	return t
}

func (s *Static) Verify(_ context.Context, token string) (identity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.tokens[token]
	if !ok {
		return identity.Principal{}, apperror.Unauthorized("Invalid authentication token. Please login again.")
	}
	return p, nil
}

func (s *Static) CreateAccount(_ context.Context, email, password string) (identity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return identity.Principal{}, identity.EmailTaken(email)
	}
	s.seq++
	uid := fmt.Sprintf("uid-%d", s.seq)
	s.accounts[email] = account{uid: uid, password: password}
	return identity.Principal{UserID: uid, Email: email}, nil
}

func (s *Static) DeleteAccount(_ context.Context, p identity.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, a := range s.accounts {
		if a.uid == p.UserID {
			delete(s.accounts, email)
		}
	}
	s.Deleted = append(s.Deleted, p.UserID)
	return nil
}

// Has reports whether an account exists for email.
func (s *Static) Has(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[email]
	return ok
}

func (s *Static) SignIn(_ context.Context, email, password string) (string, error) {
	s.mu.Lock()
	a, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok || a.password != password {
		return "", apperror.Credentials()
	}
	return s.Token(a.uid, email), nil
}

func (s *Static) UpdateEmail(_ context.Context, p identity.Principal, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return identity.EmailTaken(email)
	}
	s.EmailUpdates[p.UserID] = email
	return nil
}
