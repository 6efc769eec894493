package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/auth"
	"github.com/crowdfork/crowdfork/pkg/docstore"
	"github.com/crowdfork/crowdfork/pkg/docstore/docstoretest"
)

func TestLocalSignUpSignInVerify(t *testing.T) {
	ctx := context.Background()
	p := NewLocal(docstoretest.New(), "secret")

	created, err := p.CreateAccount(ctx, "Ada@Example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, created.UserID)
	assert.Equal(t, "ada@example.com", created.Email)

	token, err := p.SignIn(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	principal, err := p.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, principal.UserID)
	assert.Equal(t, "ada@example.com", principal.Email)
	assert.Equal(t, token, principal.Token)
}

func TestLocalDuplicateSignUp(t *testing.T) {
	ctx := context.Background()
	p := NewLocal(docstoretest.New(), "secret")

	_, err := p.CreateAccount(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, "ada@example.com", "other-pass")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, "Account already created for the email ada@example.com", err.Error())
}

func TestLocalSignInFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	p := NewLocal(docstoretest.New(), "secret")
	_, err := p.CreateAccount(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, wrongPass := p.SignIn(ctx, "ada@example.com", "nope")
	_, unknown := p.SignIn(ctx, "who@example.com", "hunter22")

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
	assert.Equal(t, apperror.InvalidCredentials, unknown.Error())
}

func TestLocalVerifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	p := NewLocal(docstoretest.New(), "secret")

	_, err := p.Verify(ctx, "not-a-jwt")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	expired, err := auth.GenerateToken([]byte("secret"), "u1", "a@b.co", -time.Minute)
	require.NoError(t, err)
	_, err = p.Verify(ctx, expired)
	require.Error(t, err)
	assert.Equal(t, msgExpiredToken, err.Error())

	foreign, err := auth.GenerateToken([]byte("other"), "u1", "a@b.co", time.Hour)
	require.NoError(t, err)
	_, err = p.Verify(ctx, foreign)
	assert.Equal(t, msgInvalidToken, err.Error())
}

func TestLocalUpdateEmail(t *testing.T) {
	ctx := context.Background()
	p := NewLocal(docstoretest.New(), "secret")

	ada, err := p.CreateAccount(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	_, err = p.CreateAccount(ctx, "bob@example.com", "hunter22")
	require.NoError(t, err)

	err = p.UpdateEmail(ctx, ada, "bob@example.com")
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	require.NoError(t, p.UpdateEmail(ctx, ada, "ada@new.example.com"))
	_, err = p.SignIn(ctx, "ada@new.example.com", "hunter22")
	assert.NoError(t, err)
}

func TestLocalConcurrentSignUpCreatesOneAccount(t *testing.T) {
	ctx := context.Background()
	store := docstoretest.New()
	p := NewLocal(store, "secret")
	require.NoError(t, p.EnsureIndexes(ctx))

	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.CreateAccount(ctx, "race@example.com", "hunter22")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case apperror.Is(err, apperror.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, store.Count(AccountsCollection))
}

// staleReads hides every account from lookups, the way a concurrent writer
// does between the email check and the write.
type staleReads struct{ *docstoretest.Memory }

func (staleReads) List(context.Context, string, docstore.Query, interface{}) error { return nil }

func TestLocalDuplicateKeyIsConflict(t *testing.T) {
	ctx := context.Background()
	mem := docstoretest.New()
	p := NewLocal(staleReads{mem}, "secret")
	require.NoError(t, p.EnsureIndexes(ctx))

	_, err := p.CreateAccount(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	bob, err := p.CreateAccount(ctx, "bob@example.com", "hunter22")
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, "ada@example.com", "hunter22")
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, "Account already created for the email ada@example.com", err.Error())

	err = p.UpdateEmail(ctx, bob, "ADA@example.com")
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 2, mem.Count(AccountsCollection))
}

func TestLocalDeleteAccount(t *testing.T) {
	ctx := context.Background()
	store := docstoretest.New()
	p := NewLocal(store, "secret")
	require.NoError(t, p.EnsureIndexes(ctx))

	ada, err := p.CreateAccount(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, p.DeleteAccount(ctx, ada))
	require.NoError(t, p.DeleteAccount(ctx, ada), "deleting twice is a no-op")
	assert.Zero(t, store.Count(AccountsCollection))

	_, err = p.SignIn(ctx, "ada@example.com", "hunter22")
	assert.Equal(t, apperror.InvalidCredentials, err.Error())

	_, err = p.CreateAccount(ctx, "ada@example.com", "hunter22")
	assert.NoError(t, err, "email is free again after delete")
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "u1"})
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", p.UserID)
}
