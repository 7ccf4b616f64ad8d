package storage

import (
	"context"
	"sort"
	"strings"

	"finance/internal/core"
)

// Store is the read/write contract for transactions. The importer, the
// service layer and the HTTP handlers depend on this interface only.
type Store interface {
	// Initialize ensures the schema exists. Safe to call on every startup.
	Initialize(ctx context.Context) error
	Add(ctx context.Context, t core.NewTransaction) (int64, error)
	Get(ctx context.Context, id int64) (core.Transaction, error)
	// GetAll returns every transaction, newest date first; equal dates keep insertion order.
	GetAll(ctx context.Context) ([]core.Transaction, error)
	// GetByDateRange applies inclusive bounds on date with the GetAll ordering.
	GetByDateRange(ctx context.Context, start, end string) ([]core.Transaction, error)
	UpdateFields(ctx context.Context, id int64, p core.Patch) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	// Generation changes after every committed mutation, including writes
	// made through another handle on the same database.
	Generation(ctx context.Context) (int64, error)
}

// DistinctCategories trims names, drops duplicates and blanks, and sorts.
func DistinctCategories(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
