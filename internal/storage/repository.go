package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finance/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists transactions in a single SQLite file. Every operation
// checks out its own connection and returns it before exiting.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at dbPath, creating its directory if
// needed. It does not touch the schema; call Initialize before use.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", core.ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %w", core.ErrStorageUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", core.ErrStorageUnavailable, err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Initialize runs the embedded migrations.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	if err := RunMigrations(s.path); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorageUnavailable, err)
	}
	slog.InfoContext(ctx, "SQLite schema ready", "component", "storage", "path", s.path)
	return nil
}

// withConn scopes a pooled connection to fn and releases it on every path.
func (s *SQLiteStore) withConn(ctx context.Context, fn func(q *Queries) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire connection: %w", core.ErrStorageUnavailable, err)
	}
	defer conn.Close()
	return fn(New(conn))
}

func (s *SQLiteStore) Add(ctx context.Context, t core.NewTransaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.withConn(ctx, func(q *Queries) error {
		var err error
		id, err = q.CreateTransaction(ctx, CreateTransactionParams{
			Date:        t.Date,
			Category:    t.Category,
			Amount:      t.Amount.Float(),
			Description: t.Description,
			Type:        t.Type.String(),
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"component", "storage",
		"id", id,
		"date", t.Date,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"type", t.Type)

	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (core.Transaction, error) {
	var row TransactionRow
	err := s.withConn(ctx, func(q *Queries) error {
		var err error
		row, err = q.GetTransaction(ctx, id)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return toCore(row), nil
}

func (s *SQLiteStore) GetAll(ctx context.Context) ([]core.Transaction, error) {
	var rows []TransactionRow
	err := s.withConn(ctx, func(q *Queries) error {
		var err error
		rows, err = q.ListTransactions(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreSlice(rows), nil
}

func (s *SQLiteStore) GetByDateRange(ctx context.Context, start, end string) ([]core.Transaction, error) {
	var rows []TransactionRow
	err := s.withConn(ctx, func(q *Queries) error {
		var err error
		rows, err = q.ListTransactionsByDateRange(ctx, start, end)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions between %s and %s: %w", start, end, err)
	}
	return toCoreSlice(rows), nil
}

// UpdateFields overwrites only the fields present in p.
func (s *SQLiteStore) UpdateFields(ctx context.Context, id int64, p core.Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}

	err := s.withConn(ctx, func(q *Queries) error {
		if p.IsEmpty() {
			exists, err := q.TransactionExists(ctx, id)
			if err != nil {
				return err
			}
			if !exists {
				return core.ErrNotFound
			}
			return nil
		}

		params := UpdateTransactionParams{
			ID:          id,
			Date:        p.Date,
			Category:    p.Category,
			Description: p.Description,
		}
		if p.Amount != nil {
			v := p.Amount.Float()
			params.Amount = &v
		}
		n, err := q.UpdateTransaction(ctx, params)
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction updated", "component", "storage", "id", id)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	err := s.withConn(ctx, func(q *Queries) error {
		n, err := q.DeleteTransaction(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "component", "storage", "id", id)
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.withConn(ctx, func(q *Queries) error {
		var err error
		n, err = q.CountTransactions(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// Categories returns the distinct trimmed categories in use, sorted.
func (s *SQLiteStore) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := s.withConn(ctx, func(q *Queries) error {
		var err error
		cats, err = q.ListCategories(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return DistinctCategories(cats), nil
}

// Generation reads the database change counter, so writes from another
// process on the same file are seen too.
func (s *SQLiteStore) Generation(ctx context.Context) (int64, error) {
	var n int64
	err := s.withConn(ctx, func(q *Queries) error {
		var err error
		n, err = q.GetGeneration(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read generation: %w", err)
	}
	return n, nil
}

func toCore(r TransactionRow) core.Transaction {
	return core.Transaction{
		ID:          r.ID,
		Date:        r.Date,
		Category:    r.Category,
		Amount:      core.MoneyFromFloat(r.Amount),
		Description: r.Description.String,
		Type:        core.Type(r.Type),
		CreatedAt:   parseCreatedAt(r.CreatedAt),
	}
}

func toCoreSlice(rows []TransactionRow) []core.Transaction {
	out := make([]core.Transaction, len(rows))
	for i, r := range rows {
		out[i] = toCore(r)
	}
	return out
}
