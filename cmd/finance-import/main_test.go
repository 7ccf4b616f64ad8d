package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finance/internal/config"
	"finance/internal/importer"
	"finance/internal/services"
	"finance/internal/storage/memory"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"file", []string{"-file", "bank.csv"}, false},
		{"template", []string{"-template"}, false},
		{"none", nil, true},
		{"two modes", []string{"-export", "-sheet"}, true},
		{"unknown flag", []string{"-verbose"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestOptionsRoles(t *testing.T) {
	cfg := &config.Config{ImportDefaultCategory: "Misc", ImportStrictDates: true}

	o, _ := parseFlags([]string{"-file", "x.csv"})
	r := o.roles(cfg)
	if r.Date != importer.ColDate || r.DefaultCategory != "Misc" || r.DatePolicy != importer.DateStrict {
		t.Fatalf("unexpected template roles: %+v", r)
	}

	o, _ = parseFlags([]string{"-file", "x.csv", "-date", "When", "-amount", "Value", "-strict=false"})
	r = o.roles(cfg)
	if r.Date != "When" || r.Amount != "Value" || r.Category != "" || r.DatePolicy != importer.DateFallbackRaw {
		t.Fatalf("flags should override config: %+v", r)
	}
}

func TestRunImportAndExport(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := services.NewTransactionService(store, nil)
	cfg := &config.Config{ImportDefaultCategory: "Uncategorized", ImportPreviewLimit: 10}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	path := filepath.Join(t.TempDir(), "bank.csv")
	csv := "Date,Amount,Category,Description\n2024-10-01,-12.50,Food,lunch\n2024-10-02,oops,Food,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	var out bytes.Buffer
	if err := run(ctx, logger, cfg, svc, options{file: path}, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 1, failed 1") || !strings.Contains(out.String(), "row 2: ") {
		t.Fatalf("unexpected report: %q", out.String())
	}

	out.Reset()
	if err := run(ctx, logger, cfg, svc, options{export: true}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out.String(), "2024-10-01,-12.50,Food,lunch") {
		t.Fatalf("unexpected export: %q", out.String())
	}

	if err := run(ctx, logger, cfg, svc, options{sheet: true}, &out); err == nil {
		t.Fatalf("sheet import without spreadsheet config should fail")
	}
}
