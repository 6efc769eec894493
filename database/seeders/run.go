// Package seeders holds demo data loaded by `crowdfork seed`.
//
//	func init() {
//	    seeders.Register("restaurants", SeedRestaurants)
//	}
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/crowdfork/crowdfork/pkg/docstore"
)

type SeederFunc func(ctx context.Context, store docstore.Store) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll runs every seeder in registration order and stops at the first
// error.
func RunAll(ctx context.Context, store docstore.Store, out io.Writer) error {
	mu.Lock()
	current := append([]seederEntry(nil), entries...)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}

	for _, e := range current {
		fmt.Fprintf(out, "  Running seeder: %s ... ", e.name)
		if err := e.fn(ctx, store); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
