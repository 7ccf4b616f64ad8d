// Package importer turns tabular rows into transactions through the store.
//
// Rows are processed one at a time and in order. A failing row is recorded
// and skipped; it never aborts the batch and never leaves a partial write.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finance/internal/core"

	"github.com/google/uuid"
)

// Row is one data line keyed by column name.
type Row map[string]string

// Adder is the part of the store the importer writes through.
type Adder interface {
	Add(ctx context.Context, t core.NewTransaction) (int64, error)
}

// RowFailure describes a row that was not imported. Row is 1-based over
// data rows (the header is not counted).
type RowFailure struct {
	Row int
	Err error
}

func (f RowFailure) Error() string {
	return fmt.Sprintf("row %d: %v", f.Row, f.Err)
}

func (f RowFailure) Unwrap() error {
	return f.Err
}

// RowWarning notes an imported row whose date was kept verbatim.
type RowWarning struct {
	Row     int
	Message string
}

type Result struct {
	BatchID  string
	Imported int
	Failed   int
	IDs      []int64
	Failures []RowFailure
	Warnings []RowWarning
}

// Summary renders at most limit failure lines and how many were left out.
func (r Result) Summary(limit int) (lines []string, more int) {
	for i, f := range r.Failures {
		if limit >= 0 && i >= limit {
			return lines, len(r.Failures) - limit
		}
		lines = append(lines, f.Error())
	}
	return lines, 0
}

type Importer struct {
	store  Adder
	logger *slog.Logger
}

func New(store Adder, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, logger: logger.With("component", "importer")}
}

// Import validates roles against header, then normalizes and adds every row.
// The returned error is non-nil only for batch-level problems: invalid roles
// or a cancelled context, in which case the partial result is still returned.
func (im *Importer) Import(ctx context.Context, header []string, rows []Row, roles Roles) (Result, error) {
	res := Result{BatchID: uuid.NewString()}

	roles, err := roles.Validate(header)
	if err != nil {
		return res, err
	}

	im.logger.InfoContext(ctx, "Import started",
		"batch_id", res.BatchID,
		"rows", len(rows),
		"date_policy", roles.DatePolicy.String())

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			im.logger.WarnContext(ctx, "Import cancelled", "batch_id", res.BatchID, "at_row", i+1, "error", err)
			return res, fmt.Errorf("import cancelled at row %d: %w", i+1, err)
		}

		n := i + 1
		tx, warning, err := normalize(row, roles)
		if err == nil {
			var id int64
			id, err = im.store.Add(ctx, tx)
			if err == nil {
				res.Imported++
				res.IDs = append(res.IDs, id)
				if warning != "" {
					res.Warnings = append(res.Warnings, RowWarning{Row: n, Message: warning})
				}
				continue
			}
		}

		res.Failed++
		res.Failures = append(res.Failures, RowFailure{Row: n, Err: err})
		im.logger.DebugContext(ctx, "Import row failed", "batch_id", res.BatchID, "row", n, "error", err)
	}

	im.logger.InfoContext(ctx, "Import completed",
		"batch_id", res.BatchID,
		"imported", res.Imported,
		"failed", res.Failed,
		"warnings", len(res.Warnings))

	return res, nil
}

// normalize resolves one row into insert fields.
func normalize(row Row, roles Roles) (core.NewTransaction, string, error) {
	var warning string

	rawDate := strings.TrimSpace(row[roles.Date])
	parseDate := core.NormalizeDate
	if roles.DayFirst {
		parseDate = core.NormalizeDateDayFirst
	}
	date, err := parseDate(rawDate)
	if err != nil {
		if roles.DatePolicy == DateStrict || errors.Is(err, core.ErrEmptyDate) {
			return core.NewTransaction{}, "", fmt.Errorf("date %q: %w", rawDate, err)
		}
		date = rawDate
		warning = fmt.Sprintf("date %q kept as text", rawDate)
	}

	rawAmount := row[roles.Amount]
	amount, err := core.ParseSignedAmount(rawAmount)
	if err != nil {
		return core.NewTransaction{}, "", fmt.Errorf("amount %q: %w", strings.TrimSpace(rawAmount), err)
	}
	typ := core.Income
	if amount.Cents < 0 {
		typ = core.Expense
	}

	description := ""
	if roles.Description != "" {
		description = strings.TrimSpace(row[roles.Description])
	}

	category := roles.DefaultCategory
	if roles.Category != "" {
		if c := strings.TrimSpace(row[roles.Category]); c != "" {
			category = c
		}
	}

	return core.NewTransaction{
		Date:        date,
		Category:    category,
		Amount:      amount.Abs(),
		Description: description,
		Type:        typ,
	}, warning, nil
}
