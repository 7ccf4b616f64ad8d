package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finance/internal/amqp"
	"finance/internal/services"
	"finance/internal/storage"
	"finance/internal/storage/memory"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger.With("component", "backend")}
}

// CreateBackend opens and initializes the configured store, connects the
// optional event bus and wires the transaction service on top.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   storage.Store
		closers []func() error
	)
	switch config.Type {
	case SQLiteBackend:
		sqliteStore, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		closers = append(closers, sqliteStore.Close)
		store = sqliteStore
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if err := store.Initialize(ctx); err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	result := &BackendResult{Store: store}

	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Events = client
			publisher = client
			closers = append([]func() error{client.Close}, closers...)
		}
	}

	result.Service = services.NewTransactionService(store, publisher)
	result.Cleanup = func() error { return closeAll(closers) }

	f.logger.InfoContext(ctx, "Backend ready",
		"type", config.Type,
		"amqp_enabled", result.Events != nil)

	return result, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
