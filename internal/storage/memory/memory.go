package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finance/internal/core"
	"finance/internal/storage"
)

// Store keeps transactions in process memory. It honors the same contract as
// the SQLite store and backs tests and DATA_BACKEND=memory.
type Store struct {
	mu         sync.Mutex
	nextID     int64
	items      []core.Transaction // insertion order
	generation int64
	now        func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

// NewSeeded returns a store pre-filled with seed transactions; invalid
// seeds are skipped.
func NewSeeded(seed []core.NewTransaction) *Store {
	s := New()
	for _, n := range seed {
		_, _ = s.Add(context.Background(), n)
	}
	return s
}

func (s *Store) Initialize(_ context.Context) error {
	return nil
}

func (s *Store) Add(_ context.Context, n core.NewTransaction) (int64, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.items = append(s.items, core.Transaction{
		ID:          id,
		Date:        n.Date,
		Category:    n.Category,
		Amount:      n.Amount,
		Description: n.Description,
		Type:        n.Type,
		CreatedAt:   s.now(),
	})
	s.generation++
	return id, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

func (s *Store) GetAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.items, func(core.Transaction) bool { return true }), nil
}

func (s *Store) GetByDateRange(_ context.Context, start, end string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.items, func(t core.Transaction) bool {
		return t.Date >= start && t.Date <= end
	}), nil
}

func (s *Store) UpdateFields(_ context.Context, id int64, p core.Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
	}
	if p.IsEmpty() {
		return nil
	}
	s.items[i] = p.Apply(s.items[i])
	s.generation++
	return nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete transaction %d: %w", id, core.ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.generation++
	return nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.items)), nil
}

func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.items))
	for i, t := range s.items {
		names[i] = t.Category
	}
	return storage.DistinctCategories(names), nil
}

func (s *Store) Generation(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation, nil
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// sorted copies the matching items ordered by date desc. The stable sort
// keeps insertion order for equal dates.
func sorted(items []core.Transaction, keep func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(items))
	for _, t := range items {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
