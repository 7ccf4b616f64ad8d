package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBTX is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// TransactionRow mirrors the transactions table.
type TransactionRow struct {
	ID          int64
	Date        string
	Category    string
	Amount      float64
	Description sql.NullString
	Type        string
	CreatedAt   sql.NullString
}

type CreateTransactionParams struct {
	Date        string
	Category    string
	Amount      float64
	Description string
	Type        string
}

const transactionColumns = `id, date, category, amount, description, type, created_at`

const createTransaction = `
INSERT INTO transactions (date, category, amount, description, type)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.Date,
		arg.Category,
		arg.Amount,
		arg.Description,
		arg.Type,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listTransactions = `
SELECT ` + transactionColumns + ` FROM transactions
ORDER BY date DESC, id ASC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const listTransactionsByDateRange = `
SELECT ` + transactionColumns + ` FROM transactions
WHERE date BETWEEN ? AND ?
ORDER BY date DESC, id ASC
`

func (q *Queries) ListTransactionsByDateRange(ctx context.Context, start, end string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByDateRange, start, end)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

const getTransaction = `
SELECT ` + transactionColumns + ` FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var t TransactionRow
	err := row.Scan(&t.ID, &t.Date, &t.Category, &t.Amount, &t.Description, &t.Type, &t.CreatedAt)
	return t, err
}

const transactionExists = `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = ?)`

func (q *Queries) TransactionExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, transactionExists, id).Scan(&exists)
	return exists, err
}

// UpdateTransactionParams carries the columns to overwrite. Nil fields are
// left out of the SET clause.
type UpdateTransactionParams struct {
	ID          int64
	Date        *string
	Category    *string
	Amount      *float64
	Description *string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	var (
		sets []string
		args []interface{}
	)
	if arg.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *arg.Date)
	}
	if arg.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *arg.Category)
	}
	if arg.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *arg.Amount)
	}
	if arg.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *arg.Description)
	}
	if len(sets) == 0 {
		return 0, fmt.Errorf("update transaction %d: no columns to set", arg.ID)
	}
	args = append(args, arg.ID)

	query := "UPDATE transactions SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countTransactions = `SELECT COUNT(*) FROM transactions`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTransactions).Scan(&n)
	return n, err
}

const getGeneration = `SELECT generation FROM change_counter WHERE id = 1`

// GetGeneration reads the counter maintained by the transactions triggers.
func (q *Queries) GetGeneration(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, getGeneration).Scan(&n)
	return n, err
}

const listCategories = `SELECT DISTINCT category FROM transactions ORDER BY category`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanTransactions(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var t TransactionRow
		if err := rows.Scan(&t.ID, &t.Date, &t.Category, &t.Amount, &t.Description, &t.Type, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// sqliteTimestamp is the CURRENT_TIMESTAMP format, always UTC.
const sqliteTimestamp = "2006-01-02 15:04:05"

func parseCreatedAt(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	if t, err := time.Parse(sqliteTimestamp, s.String); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s.String); err == nil {
		return t
	}
	return time.Time{}
}
