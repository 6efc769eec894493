package kernel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdfork/crowdfork/config"
	"github.com/crowdfork/crowdfork/pkg/docstore/docstoretest"
	"github.com/crowdfork/crowdfork/pkg/identity"
)

func useConfig(t *testing.T, key, value string) {
	t.Helper()
	old := config.Get(key, "")
	config.Set(key, value)
	t.Cleanup(func() { config.Set(key, old) })
}

func TestNewIdentityLocalCreatesEmailIndex(t *testing.T) {
	useConfig(t, "IDENTITY_DRIVER", "local")
	useConfig(t, "APP_ENV", "local")
	store := docstoretest.New()

	p, err := NewIdentity(context.Background(), store)
	require.NoError(t, err)
	assert.IsType(t, &identity.Local{}, p)
	assert.True(t, store.HasUniqueIndex(identity.AccountsCollection, "email"))
}

func TestNewIdentityFailsWithoutEmailIndex(t *testing.T) {
	useConfig(t, "IDENTITY_DRIVER", "local")
	useConfig(t, "APP_ENV", "local")
	store := docstoretest.New()
	store.Fail("ensure_index", errors.New("not primary"))

	_, err := NewIdentity(context.Background(), store)
	assert.ErrorContains(t, err, "account indexes")
}

func TestNewIdentityRejectsDefaultSecretInProduction(t *testing.T) {
	useConfig(t, "IDENTITY_DRIVER", "local")
	useConfig(t, "APP_ENV", "production")
	useConfig(t, "JWT_SECRET", config.DefaultJWTSecret)

	_, err := NewIdentity(context.Background(), docstoretest.New())
	assert.ErrorContains(t, err, "JWT_SECRET")
}
