package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/auth"
	"github.com/crowdfork/crowdfork/pkg/docstore"
)

const AccountsCollection = "accounts"

type account struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Local keeps accounts in the document store and issues HS256 tokens.
type Local struct {
	store  docstore.Store
	secret []byte
	ttl    time.Duration
}

func NewLocal(store docstore.Store, secret string) *Local {
	return &Local{store: store, secret: []byte(secret), ttl: 24 * time.Hour}
}

// AccountIndexes back the one-account-per-email rule; the unique email index
// is what settles concurrent sign-ups.
func AccountIndexes() []docstore.IndexSpec {
	return []docstore.IndexSpec{{
		Name:   "accounts_email_unique",
		Keys:   []docstore.IndexKey{{Field: "email"}},
		Unique: true,
	}}
}

// EnsureIndexes creates AccountIndexes. It is idempotent.
func (l *Local) EnsureIndexes(ctx context.Context) error {
	for _, spec := range AccountIndexes() {
		if err := l.store.EnsureIndex(ctx, AccountsCollection, spec); err != nil {
			return err
		}
	}
	return nil
}

func (l *Local) Verify(_ context.Context, token string) (Principal, error) {
	claims, err := auth.ValidateToken(l.secret, token)
	if err != nil {
		return Principal{}, tokenError(err)
	}
	return Principal{UserID: claims.Subject, Email: claims.Email, Token: token}, nil
}

func (l *Local) CreateAccount(ctx context.Context, email, password string) (Principal, error) {
	email = normalizeEmail(email)

	if _, err := l.findByEmail(ctx, email); err == nil {
		return Principal{}, EmailTaken(email)
	} else if !docstore.IsNotFound(err) {
		return Principal{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Principal{}, err
	}

	acc := account{ID: uuid.NewString(), Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if _, err := l.store.Create(ctx, AccountsCollection, acc); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return Principal{}, EmailTaken(email)
		}
		return Principal{}, err
	}
	return Principal{UserID: acc.ID, Email: acc.Email}, nil
}

func (l *Local) DeleteAccount(ctx context.Context, p Principal) error {
	err := l.store.Delete(ctx, AccountsCollection, p.UserID)
	if docstore.IsNotFound(err) {
		return nil
	}
	return err
}

func (l *Local) SignIn(ctx context.Context, email, password string) (string, error) {
	acc, err := l.findByEmail(ctx, normalizeEmail(email))
	if err != nil || !auth.CheckPassword(acc.PasswordHash, password) {
		return "", apperror.Credentials()
	}

	token, err := auth.GenerateToken(l.secret, acc.ID, acc.Email, l.ttl)
	if err != nil {
		return "", apperror.Credentials()
	}
	return token, nil
}

func (l *Local) UpdateEmail(ctx context.Context, p Principal, email string) error {
	email = normalizeEmail(email)

	existing, err := l.findByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != p.UserID:
		return EmailTaken(email)
	case err == nil:
		return nil
	case !docstore.IsNotFound(err):
		return err
	}

	err = l.store.Update(ctx, AccountsCollection, p.UserID, map[string]interface{}{"email": email})
	switch {
	case docstore.IsNotFound(err):
		return apperror.NotFound("Account not found")
	case errors.Is(err, docstore.ErrDuplicate):
		return EmailTaken(email)
	}
	return err
}

func (l *Local) findByEmail(ctx context.Context, email string) (account, error) {
	var found []account
	if err := l.store.List(ctx, AccountsCollection, docstore.Query{Field: "email", Value: email, Limit: 1}, &found); err != nil {
		return account{}, err
	}
	if len(found) == 0 {
		return account{}, docstore.ErrNotFound
	}
	return found[0], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
