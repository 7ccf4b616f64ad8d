package memory

import (
	"context"
	"sort"
	"sync"

	"finance/internal/core"
	ports "finance/internal/sheets"
)

// Mirror is an in-process TransactionMirror and RowReader used when no
// spreadsheet is configured and in tests.
type Mirror struct {
	mu     sync.Mutex
	rows   map[int64]core.Transaction
	values [][]string
	writes int
}

var (
	_ ports.TransactionMirror = (*Mirror)(nil)
	_ ports.RowReader         = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{rows: map[int64]core.Transaction{}}
}

// NewWithValues returns a mirror whose ReadValues yields values.
func NewWithValues(values [][]string) *Mirror {
	m := New()
	m.values = values
	return m
}

func (m *Mirror) Upsert(_ context.Context, t core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = t
	m.writes++
	return nil
}

func (m *Mirror) Remove(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	m.writes++
	return nil
}

func (m *Mirror) Rewrite(_ context.Context, txs []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[int64]core.Transaction, len(txs))
	for _, t := range txs {
		m.rows[t.ID] = t
	}
	m.writes++
	return nil
}

func (m *Mirror) ReadValues(_ context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.values))
	for i, row := range m.values {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// Rows returns the mirrored transactions ordered by id.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Transaction, 0, len(m.rows))
	for _, t := range m.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Writes counts mutating calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
