package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crowdfork/crowdfork/config"
	"github.com/crowdfork/crowdfork/database/seeders"
	"github.com/crowdfork/crowdfork/pkg/docstore"
	"github.com/crowdfork/crowdfork/pkg/migration"
)

// openStore loads config and connects to MongoDB.
func openStore(ctx context.Context) (docstore.Store, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return docstore.Open(ctx, docstore.MongoOptions{
		URI:          config.MongoURI(),
		Database:     config.MongoDatabase(),
		Transactions: config.MongoTransactions(),
	})
}

// withStore runs fn with an open store and closes it afterwards.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store docstore.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	return fn(ctx, store)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the collection indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store docstore.Store) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running migrations...")
			return migration.New(store, cmd.OutOrStdout()).Run(ctx)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show which migrations have run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store docstore.Store) error {
			return migration.New(store, cmd.OutOrStdout()).Status(ctx)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo restaurants",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store docstore.Store) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Seeding...")
			return seeders.RunAll(ctx, store, cmd.OutOrStdout())
		})
	},
}
