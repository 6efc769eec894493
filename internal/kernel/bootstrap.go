package kernel

import (
	"context"
	"fmt"

	"github.com/crowdfork/crowdfork/app/clients/yelp"
	"github.com/crowdfork/crowdfork/app/routes"
	"github.com/crowdfork/crowdfork/config"
	"github.com/crowdfork/crowdfork/pkg/cache"
	"github.com/crowdfork/crowdfork/pkg/docstore"
	"github.com/crowdfork/crowdfork/pkg/identity"
	"github.com/crowdfork/crowdfork/pkg/logger"
)

// App holds the connections opened at boot.
type App struct {
	Store    docstore.Store
	Identity identity.Provider
	Yelp     *yelp.Client
}

// Boot loads config and connects to MongoDB. Redis is optional: without it
// the firebase certificate set is fetched on every verification.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if uri := config.LogMongoURI(); uri != "" {
		if err := logger.AttachMongo(uri, config.MongoDatabase()); err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		}
	}

	store, err := docstore.Open(ctx, docstore.MongoOptions{
		URI:          config.MongoURI(),
		Database:     config.MongoDatabase(),
		Transactions: config.MongoTransactions(),
	})
	if err != nil {
		return nil, err
	}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "error", err)
	}

	provider, err := NewIdentity(ctx, store)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	logger.Info("booted",
		"env", config.AppEnv(),
		"database", config.MongoDatabase(),
		"identity", config.IdentityDriver(),
	)

	return &App{Store: store, Identity: provider, Yelp: yelp.NewFromConfig()}, nil
}

// NewIdentity picks the provider named by IDENTITY_DRIVER. The local driver
// does not start without its unique email index.
func NewIdentity(ctx context.Context, store docstore.Store) (identity.Provider, error) {
	switch config.IdentityDriver() {
	case "firebase":
		if config.FirebaseAPIKey() == "" || config.FirebaseProjectID() == "" {
			return nil, fmt.Errorf("identity: firebase driver needs FIREBASE_API_KEY and FIREBASE_PROJECT_ID")
		}
		return identity.NewFirebase(identity.FirebaseOptions{
			APIKey:    config.FirebaseAPIKey(),
			ProjectID: config.FirebaseProjectID(),
		}), nil
	default:
		if config.IsProduction() && config.JWTSecret() == config.DefaultJWTSecret {
			return nil, fmt.Errorf("identity: JWT_SECRET must be set in production")
		}
		local := identity.NewLocal(store, config.JWTSecret())
		if err := local.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("identity: account indexes: %w", err)
		}
		return local, nil
	}
}

func (a *App) Deps() routes.Deps {
	return routes.Deps{
		Store:           a.Store,
		Identity:        a.Identity,
		Yelp:            a.Yelp,
		DefaultLocation: config.DefaultSearchLocation(),
	}
}

// Close releases every connection and flushes the log sink.
func (a *App) Close(ctx context.Context) {
	if err := a.Store.Close(ctx); err != nil {
		logger.Warn("closing store", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warn("closing redis", "error", err)
	}
	logger.Shutdown()
}
