package backend

import (
	"context"

	"finance/internal/amqp"
	"finance/internal/services"
	"finance/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult bundles everything a binary needs to serve transactions.
type BackendResult struct {
	Store   storage.Store
	Service *services.TransactionService
	// Events is nil when no broker is configured or reachable.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP is optional for both backends
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType selects the transaction store implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
