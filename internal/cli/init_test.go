package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"finance/internal/config"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("debug")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug level should be enabled")
	}
	if slog.Default() != logger {
		t.Fatalf("logger should be installed as default")
	}

	logger = SetupLogger("chatty")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("unknown level should fall back to info")
	}
}

func TestSetupLoggerOutput(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupLoggerOutput("warn", &buf).Warn("disk almost full")
	slog.Info("hidden")
	out := buf.String()
	if !strings.Contains(out, "disk almost full") || strings.Contains(out, "hidden") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInitBackend(t *testing.T) {
	ctx := context.Background()
	res, err := InitBackend(ctx, slog.Default(), &config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("init backend: %v", err)
	}
	defer res.Cleanup()
	if n, err := res.Store.Count(ctx); err != nil || n != 0 {
		t.Fatalf("expected empty store, got %d err=%v", n, err)
	}

	if _, err := InitBackend(ctx, slog.Default(), &config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
