package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finance/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "finance.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func mustAdd(t *testing.T, s Store, n core.NewTransaction) int64 {
	t.Helper()
	id, err := s.Add(context.Background(), n)
	if err != nil {
		t.Fatalf("add %+v: %v", n, err)
	}
	return id
}

func mustCount(t *testing.T, s Store) int64 {
	t.Helper()
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAddAndGetAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := core.NewTransaction{
		Date:        "2024-10-01",
		Category:    "Groceries",
		Amount:      core.Money{Cents: 5025},
		Description: "Weekly groceries",
		Type:        core.Expense,
	}
	id := mustAdd(t, s, in)
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(all))
	}
	got := all[0]
	if got.ID != id || got.Fields() != in {
		t.Fatalf("unexpected transaction: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at should be set at insert")
	}

	second := mustAdd(t, s, in)
	if second == id {
		t.Fatalf("ids must be unique, got %d twice", id)
	}
}

func TestAddRejectsInvalidWithoutWriting(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, core.NewTransaction{Date: "2024-01-01", Category: "Salary", Amount: core.Money{Cents: 100}, Type: core.Income})

	bads := []core.NewTransaction{
		{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: 0}, Type: core.Expense},
		{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: -500}, Type: core.Expense},
		{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: 500}, Type: "transfer"},
		{Date: "2024-01-01", Category: "", Amount: core.Money{Cents: 500}, Type: core.Income},
	}
	for i, n := range bads {
		before := mustCount(t, s)
		_, err := s.Add(context.Background(), n)
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
		if after := mustCount(t, s); after != before {
			t.Fatalf("case %d: row count changed %d -> %d", i, before, after)
		}
	}
}

func TestOrderingAndDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustAdd(t, s, core.NewTransaction{Date: "2024-01-15", Category: "A", Amount: core.Money{Cents: 100}, Type: core.Expense})
	b := mustAdd(t, s, core.NewTransaction{Date: "2024-03-01", Category: "B", Amount: core.Money{Cents: 100}, Type: core.Expense})
	c := mustAdd(t, s, core.NewTransaction{Date: "2024-01-15", Category: "C", Amount: core.Money{Cents: 100}, Type: core.Income})
	d := mustAdd(t, s, core.NewTransaction{Date: "2024-02-10", Category: "D", Amount: core.Money{Cents: 100}, Type: core.Income})

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	want := []int64{b, d, a, c}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d (%+v)", i, id, all[i].ID, all)
		}
	}

	rng, err := s.GetByDateRange(ctx, "2024-01-15", "2024-02-10")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(rng) != 3 || rng[0].ID != d || rng[1].ID != a || rng[2].ID != c {
		t.Fatalf("unexpected range result: %+v", rng)
	}

	empty, err := s.GetByDateRange(ctx, "2024-12-01", "2024-01-01")
	if err != nil || len(empty) != 0 {
		t.Fatalf("inverted range should be empty, got %v err=%v", empty, err)
	}
}

func TestUpdateFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, core.NewTransaction{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: 1000}, Description: "orig", Type: core.Expense})

	amt := core.Money{Cents: 2550}
	cat := "Dining Out"
	if err := s.UpdateFields(ctx, id, core.Patch{Amount: &amt, Category: &cat}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 2550 || got.Category != "Dining Out" || got.Description != "orig" || got.Date != "2024-01-01" || got.Type != core.Expense {
		t.Fatalf("unexpected after update: %+v", got)
	}

	neg := core.Money{Cents: -500}
	if err := s.UpdateFields(ctx, id, core.Patch{Amount: &neg}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	unchanged, _ := s.Get(ctx, id)
	if unchanged.Fields() != got.Fields() {
		t.Fatalf("row modified by rejected update: %+v", unchanged)
	}

	if err := s.UpdateFields(ctx, id+100, core.Patch{Amount: &amt}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.UpdateFields(ctx, id+100, core.Patch{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on empty patch, got %v", err)
	}
	if err := s.UpdateFields(ctx, id, core.Patch{}); err != nil {
		t.Fatalf("empty patch on existing id: %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, core.NewTransaction{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: 1000}, Type: core.Expense})
	keep := mustAdd(t, s, core.NewTransaction{Date: "2024-01-02", Category: "B", Amount: core.Money{Cents: 1000}, Type: core.Income})

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ := s.GetAll(ctx)
	for _, tx := range all {
		if tx.ID == id {
			t.Fatalf("deleted id %d still present", id)
		}
	}
	if len(all) != 1 || all[0].ID != keep {
		t.Fatalf("unexpected remaining rows: %+v", all)
	}

	before := mustCount(t, s)
	if err := s.Delete(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if after := mustCount(t, s); after != before {
		t.Fatalf("row count changed on missing delete")
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on get, got %v", err)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	mustAdd(t, s, core.NewTransaction{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: 1}, Type: core.Income})
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	// A fresh handle on the same file sees the same single row.
	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Initialize(ctx); err != nil {
		t.Fatalf("initialize reopened: %v", err)
	}
	if n := mustCount(t, reopened); n != 1 {
		t.Fatalf("expected 1 row after repeated initialize, got %d", n)
	}
}

func mustGeneration(t *testing.T, s Store) int64 {
	t.Helper()
	g, err := s.Generation(context.Background())
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	return g
}

func TestGenerationAndCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g0 := mustGeneration(t, s)
	id := mustAdd(t, s, core.NewTransaction{Date: "2024-01-01", Category: "Utilities", Amount: core.Money{Cents: 1}, Type: core.Expense})
	mustAdd(t, s, core.NewTransaction{Date: "2024-01-01", Category: "Groceries", Amount: core.Money{Cents: 1}, Type: core.Expense})
	mustAdd(t, s, core.NewTransaction{Date: "2024-01-01", Category: " Groceries ", Amount: core.Money{Cents: 1}, Type: core.Expense})
	if g := mustGeneration(t, s); g != g0+3 {
		t.Fatalf("expected generation %d, got %d", g0+3, g)
	}
	_ = s.Delete(ctx, id+99)
	_ = s.UpdateFields(ctx, id, core.Patch{})
	if mustGeneration(t, s) != g0+3 {
		t.Fatalf("failed delete and empty patch must not bump generation")
	}
	cat := "Power"
	if err := s.UpdateFields(ctx, id, core.Patch{Category: &cat}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if g := mustGeneration(t, s); g != g0+5 {
		t.Fatalf("expected generation %d after update and delete, got %d", g0+5, g)
	}

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 1 || cats[0] != "Groceries" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestGenerationSeesWritesFromAnotherHandle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finance.db")
	open := func() *SQLiteStore {
		s, err := NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		if err := s.Initialize(ctx); err != nil {
			t.Fatalf("initialize: %v", err)
		}
		return s
	}
	server, writer := open(), open()

	before := mustGeneration(t, server)
	mustAdd(t, writer, core.NewTransaction{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: 1}, Type: core.Income})
	if after := mustGeneration(t, server); after == before {
		t.Fatalf("generation did not change after a write through another handle")
	}
}

func TestNewSQLiteStoreUnavailable(t *testing.T) {
	// A regular file in place of the parent directory cannot be created.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	_, err := NewSQLiteStore(filepath.Join(blocker, "finance.db"))
	if !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}
