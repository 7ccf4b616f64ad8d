package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// IntoContext returns ctx carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from ctx, falling back to the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return FromSlog(slog.Default(), "unknown")
}

// StructuredLogger emits the standard request and domain records.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a completed request at a level derived from the status.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP)

	FromContext(ctx).WithComponent(ComponentHTTP).LogContext(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, id int64, category string, amountCents int64, typ string) {
	fields := NewFields().
		WithTransaction(id, category, amountCents, typ).
		WithOperation(OpCreate)
	sl.from(ctx).InfoContext(ctx, "Transaction created", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogImportCompleted(ctx context.Context, batchID string, imported, failed int) {
	fields := NewFields().
		WithImport(batchID, imported, failed).
		WithOperation(OpImport)
	sl.from(ctx).InfoContext(ctx, "Import completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string) {
	fields := NewFields().
		WithError(err).
		WithOperation(operation)
	sl.from(ctx).ErrorContext(ctx, msg, fields.ToSlice()...)
}

// from prefers the request-scoped logger so records carry the request id.
func (sl *StructuredLogger) from(ctx context.Context) *Logger {
	if l, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return l.WithComponent(sl.logger.component)
	}
	return sl.logger
}
