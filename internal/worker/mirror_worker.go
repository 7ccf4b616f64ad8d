package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/sheets"
)

// Source is the read side of the store the worker mirrors from.
type Source interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
	GetAll(ctx context.Context) ([]core.Transaction, error)
}

// MirrorWorker replays transaction events onto a spreadsheet mirror.
type MirrorWorker struct {
	source Source
	mirror sheets.TransactionMirror
	logger *slog.Logger
}

func NewMirrorWorker(source Source, mirror sheets.TransactionMirror) *MirrorWorker {
	return &MirrorWorker{
		source: source,
		mirror: mirror,
		logger: slog.Default().With("component", "worker"),
	}
}

// HandleEvent applies one event. Returned errors are transient and the
// delivery should be retried.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		"event_id", ev.EventID,
		"op", ev.Op,
		"id", ev.ID)

	switch ev.Op {
	case amqp.OpCreate, amqp.OpUpdate:
		t, err := w.source.Get(ctx, ev.ID)
		if errors.Is(err, core.ErrNotFound) {
			// Deleted before this event was consumed.
			w.logger.InfoContext(ctx, "Transaction gone, removing from mirror", "id", ev.ID)
			return w.remove(ctx, ev.ID)
		}
		if err != nil {
			return fmt.Errorf("get transaction %d: %w", ev.ID, err)
		}
		if err := w.mirror.Upsert(ctx, t); err != nil {
			return fmt.Errorf("upsert transaction %d: %w", ev.ID, err)
		}
		return nil
	case amqp.OpDelete:
		return w.remove(ctx, ev.ID)
	default:
		w.logger.WarnContext(ctx, "Ignoring event with unknown op", "op", ev.Op, "id", ev.ID)
		return nil
	}
}

func (w *MirrorWorker) remove(ctx context.Context, id int64) error {
	if err := w.mirror.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove transaction %d: %w", id, err)
	}
	return nil
}

// Resync rewrites the mirror from a full snapshot. It recovers from events
// lost while the worker was down.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	all, err := w.source.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if err := w.mirror.Rewrite(ctx, all); err != nil {
		return fmt.Errorf("rewrite mirror: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirror resynced", "rows", len(all))
	return nil
}

// RunPeriodicResync calls Resync every interval until ctx is done. Failures
// are logged and retried on the next tick.
func (w *MirrorWorker) RunPeriodicResync(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic resync failed", "error", err)
			}
		}
	}
}
