// Package migration runs named, ordered schema steps against the document
// store and records which ones have run.
//
//	func init() {
//	    migration.Register("20240501000000_review_indexes", migration.Indexes(
//	        "reviews", docstore.IndexSpec{...},
//	    ))
//	}
//
// Run from the CLI with `crowdfork migrate`.
package migration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/crowdfork/crowdfork/pkg/docstore"
	"github.com/crowdfork/crowdfork/pkg/logger"
)

// Collection records applied migrations, one document per name.
const Collection = "migrations"

type Migration interface {
	Up(ctx context.Context, store docstore.Store) error
}

// Func adapts a plain function to Migration.
type Func func(ctx context.Context, store docstore.Store) error

func (f Func) Up(ctx context.Context, store docstore.Store) error { return f(ctx, store) }

// Indexes is a migration that ensures idx on coll.
func Indexes(coll string, idx ...docstore.IndexSpec) Migration {
	return Func(func(ctx context.Context, store docstore.Store) error {
		for _, spec := range idx {
			if err := store.EnsureIndex(ctx, coll, spec); err != nil {
				return fmt.Errorf("index %s.%s: %w", coll, spec.Name, err)
			}
		}
		return nil
	})
}

type record struct {
	Name  string    `bson:"_id"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"created_at"`
}

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration. Names are timestamp-prefixed so that sorting
// them gives the run order.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
}

type Runner struct {
	store      docstore.Store
	migrations []registered
	out        io.Writer
}

// New returns a runner over every registered migration, printing progress
// to out.
func New(store docstore.Store, out io.Writer) *Runner {
	return &Runner{store: store, migrations: append([]registered(nil), registry...), out: out}
}

func (r *Runner) applied(ctx context.Context) ([]record, error) {
	var ran []record
	if err := r.store.List(ctx, Collection, docstore.Query{}, &ran); err != nil {
		return nil, err
	}
	return ran, nil
}

// Pending returns the migrations not yet run, in name order.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	list, _, err := r.pending(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list))
	for i, reg := range list {
		names[i] = reg.name
	}
	return names, nil
}

func (r *Runner) pending(ctx context.Context) ([]registered, int, error) {
	ran, err := r.applied(ctx)
	if err != nil {
		return nil, 0, err
	}

	done := make(map[string]bool, len(ran))
	batch := 0
	for _, rec := range ran {
		done[rec.Name] = true
		if rec.Batch > batch {
			batch = rec.Batch
		}
	}

	var out []registered
	for _, reg := range r.migrations {
		if !done[reg.name] {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, batch + 1, nil
}

// Run applies every pending migration as one batch, stopping at the first
// failure. Migrations that already ran stay recorded.
func (r *Runner) Run(ctx context.Context) error {
	pending, batch, err := r.pending(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}

	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	for _, reg := range pending {
		logger.Info("migration: running", "name", reg.name)
		if err := reg.m.Up(ctx, r.store); err != nil {
			return fmt.Errorf("migration: %s: %w", reg.name, err)
		}

		rec := record{Name: reg.name, Batch: batch, RunAt: time.Now().UTC()}
		if _, err := r.store.Create(ctx, Collection, rec); err != nil {
			return fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		fmt.Fprintf(r.out, "  Migrated: %s\n", reg.name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Status prints every migration with its batch, or "pending".
func (r *Runner) Status(ctx context.Context) error {
	ran, err := r.applied(ctx)
	if err != nil {
		return err
	}
	batches := make(map[string]int, len(ran))
	for _, rec := range ran {
		batches[rec.Name] = rec.Batch
	}

	names := make([]string, 0, len(r.migrations))
	for _, reg := range r.migrations {
		names = append(names, reg.name)
	}
	sort.Strings(names)

	for _, name := range names {
		if b, ok := batches[name]; ok {
			fmt.Fprintf(r.out, "  [batch %d] %s\n", b, name)
		} else {
			fmt.Fprintf(r.out, "  [pending] %s\n", name)
		}
	}
	return nil
}
