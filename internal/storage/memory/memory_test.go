package memory

import (
	"context"
	"errors"
	"testing"

	"finance/internal/core"
)

func TestMemoryStoreContract(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.Add(ctx, core.NewTransaction{Date: "2024-01-15", Category: "A", Amount: core.Money{Cents: 100}, Type: core.Expense})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, _ := s.Add(ctx, core.NewTransaction{Date: "2024-02-01", Category: "B", Amount: core.Money{Cents: 200}, Type: core.Income})
	c, _ := s.Add(ctx, core.NewTransaction{Date: "2024-01-15", Category: "A", Amount: core.Money{Cents: 300}, Type: core.Income})

	all, _ := s.GetAll(ctx)
	if len(all) != 3 || all[0].ID != b || all[1].ID != a || all[2].ID != c {
		t.Fatalf("unexpected order: %+v", all)
	}

	if _, err := s.Add(ctx, core.NewTransaction{Date: "2024-01-15", Category: "A", Amount: core.Money{Cents: 0}, Type: core.Expense}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n, _ := s.Count(ctx); n != 3 {
		t.Fatalf("count changed after rejected add: %d", n)
	}

	rng, _ := s.GetByDateRange(ctx, "2024-01-01", "2024-01-31")
	if len(rng) != 2 {
		t.Fatalf("unexpected range: %+v", rng)
	}

	desc := "updated"
	if err := s.UpdateFields(ctx, a, core.Patch{Description: &desc}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, a)
	if got.Description != "updated" || got.Amount.Cents != 100 {
		t.Fatalf("unexpected update result: %+v", got)
	}

	if err := s.Delete(ctx, a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, a); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.UpdateFields(ctx, a, core.Patch{Description: &desc}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	cats, _ := s.Categories(ctx)
	if len(cats) != 2 || cats[0] != "A" || cats[1] != "B" {
		t.Fatalf("unexpected categories: %v", cats)
	}
	if g, err := s.Generation(ctx); err != nil || g != 5 {
		t.Fatalf("expected generation 5, got %d err=%v", g, err)
	}
}

func TestCategoriesTrimmed(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, c := range []string{"Food", " Food ", "Rent"} {
		if _, err := s.Add(ctx, core.NewTransaction{Date: "2024-01-01", Category: c, Amount: core.Money{Cents: 1}, Type: core.Expense}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	cats, _ := s.Categories(ctx)
	if len(cats) != 2 || cats[0] != "Food" || cats[1] != "Rent" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestNewSeededSkipsInvalid(t *testing.T) {
	s := NewSeeded([]core.NewTransaction{
		{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: 1}, Type: core.Income},
		{Date: "2024-01-01", Category: "A", Amount: core.Money{Cents: -1}, Type: core.Income},
	})
	if n, _ := s.Count(context.Background()); n != 1 {
		t.Fatalf("expected 1 seeded row, got %d", n)
	}
}
