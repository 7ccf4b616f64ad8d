package memory

import (
	"context"
	"testing"

	"finance/internal/core"
)

func TestMirrorUpsertRemoveRewrite(t *testing.T) {
	ctx := context.Background()
	m := New()

	_ = m.Upsert(ctx, core.Transaction{ID: 2, Category: "B"})
	_ = m.Upsert(ctx, core.Transaction{ID: 1, Category: "A"})
	_ = m.Upsert(ctx, core.Transaction{ID: 2, Category: "B2"})
	rows := m.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].Category != "B2" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	_ = m.Remove(ctx, 1)
	_ = m.Remove(ctx, 99)
	if rows := m.Rows(); len(rows) != 1 || rows[0].ID != 2 {
		t.Fatalf("unexpected rows after remove: %+v", rows)
	}

	_ = m.Rewrite(ctx, []core.Transaction{{ID: 5}, {ID: 6}})
	if rows := m.Rows(); len(rows) != 2 || rows[0].ID != 5 {
		t.Fatalf("unexpected rows after rewrite: %+v", rows)
	}
	if m.Writes() != 6 {
		t.Fatalf("expected 6 writes, got %d", m.Writes())
	}
}

func TestMirrorReadValuesCopies(t *testing.T) {
	m := NewWithValues([][]string{{"Date", "Amount"}, {"2024-01-01", "-1"}})
	got, err := m.ReadValues(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got[1][1] = "changed"
	again, _ := m.ReadValues(context.Background())
	if again[1][1] != "-1" {
		t.Fatalf("ReadValues must return a copy")
	}
}
