package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"finance/internal/aggregate"
	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/importer"
	"finance/internal/sheets"
	"finance/internal/storage"
)

// EventPublisher announces committed changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, op amqp.Op, id int64) error
}

// TransactionService orchestrates transaction operations across the store
// and the event bus. The store commit is authoritative: a failed publish is
// logged and never fails the call.
type TransactionService struct {
	store     storage.Store
	publisher EventPublisher
	logger    *slog.Logger
}

func NewTransactionService(store storage.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    slog.Default().With("component", "service"),
	}
}

func (s *TransactionService) Store() storage.Store {
	return s.store
}

func (s *TransactionService) Add(ctx context.Context, t core.NewTransaction) (int64, error) {
	id, err := s.store.Add(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.OpCreate, id)
	return id, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

func (s *TransactionService) GetAll(ctx context.Context) ([]core.Transaction, error) {
	return s.store.GetAll(ctx)
}

func (s *TransactionService) GetByDateRange(ctx context.Context, start, end string) ([]core.Transaction, error) {
	return s.store.GetByDateRange(ctx, start, end)
}

func (s *TransactionService) UpdateFields(ctx context.Context, id int64, p core.Patch) error {
	if err := s.store.UpdateFields(ctx, id, p); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if !p.IsEmpty() {
		s.publish(ctx, amqp.OpUpdate, id)
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.OpDelete, id)
	return nil
}

func (s *TransactionService) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// ImportBatch imports rows through the service so every row emits an event.
func (s *TransactionService) ImportBatch(ctx context.Context, header []string, rows []importer.Row, roles importer.Roles) (importer.Result, error) {
	res, err := importer.New(s, s.logger).Import(ctx, header, rows, roles)
	if err != nil {
		return res, fmt.Errorf("import batch: %w", err)
	}
	return res, nil
}

// ImportCSV reads a CSV document and imports it with ImportBatch.
func (s *TransactionService) ImportCSV(ctx context.Context, r io.Reader, roles importer.Roles) (importer.Result, error) {
	header, rows, err := importer.ReadCSV(r)
	if err != nil {
		return importer.Result{}, err
	}
	return s.ImportBatch(ctx, header, rows, roles)
}

// ImportSheet reads a spreadsheet range, header row first, and imports it
// with ImportBatch.
func (s *TransactionService) ImportSheet(ctx context.Context, src sheets.RowReader, roles importer.Roles) (importer.Result, error) {
	values, err := src.ReadValues(ctx)
	if err != nil {
		return importer.Result{}, fmt.Errorf("read sheet range: %w", err)
	}
	header, rows := importer.RowsFromValues(values)
	if len(header) == 0 {
		return importer.Result{}, fmt.Errorf("%w: sheet range is empty", core.ErrParse)
	}
	return s.ImportBatch(ctx, header, rows, roles)
}

func (s *TransactionService) CategoryTotals(ctx context.Context, typ core.Type) ([]core.CategoryTotal, error) {
	if !typ.Valid() {
		return nil, core.ErrInvalidType
	}
	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return aggregate.CategoryTotals(snapshot, typ), nil
}

// CategoryQuery narrows a category breakdown. Year and Month are both zero
// for all time; Limit <= 0 keeps every category.
type CategoryQuery struct {
	Type  core.Type
	Year  int
	Month int
	Limit int
}

// CategoryBreakdown returns the top categories for q, largest first.
func (s *TransactionService) CategoryBreakdown(ctx context.Context, q CategoryQuery) ([]core.CategoryTotal, error) {
	if !q.Type.Valid() {
		return nil, core.ErrInvalidType
	}
	if q.Year != 0 || q.Month != 0 {
		if q.Month < 1 || q.Month > 12 || q.Year < 1 {
			return nil, fmt.Errorf("%w: invalid month %04d-%02d", core.ErrValidation, q.Year, q.Month)
		}
	}
	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if q.Year != 0 {
		snapshot = aggregate.FilterByMonth(snapshot, q.Year, q.Month)
	}
	return aggregate.TopCategories(snapshot, q.Type, q.Limit), nil
}

func (s *TransactionService) MonthlySummary(ctx context.Context) ([]core.MonthSummary, error) {
	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return aggregate.MonthlySummary(snapshot), nil
}

func (s *TransactionService) MonthlyTrendSeries(ctx context.Context) ([]core.TrendPoint, error) {
	snapshot, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return aggregate.MonthlyTrendSeries(snapshot), nil
}

func (s *TransactionService) publish(ctx context.Context, op amqp.Op, id int64) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping event", "op", op, "id", id)
		return
	}
	if err := s.publisher.PublishEvent(ctx, op, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event", "op", op, "id", id, "error", err)
	}
}
