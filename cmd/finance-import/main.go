// Command finance-import loads a CSV file or a spreadsheet range into the
// transaction store, and writes the import template or a full export.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"finance/internal/cli"
	"finance/internal/config"
	"finance/internal/importer"
	"finance/internal/services"
	gsheet "finance/internal/sheets/google"
)

type options struct {
	file            string
	sheet           bool
	date            string
	amount          string
	description     string
	category        string
	defaultCategory string
	strict          bool
	strictSet       bool
	dayFirst        bool
	dayFirstSet     bool
	template        bool
	export          bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("finance-import", flag.ContinueOnError)
	fs.StringVar(&o.file, "file", "", "CSV file to import, or - for stdin")
	fs.BoolVar(&o.sheet, "sheet", false, "import GOOGLE_IMPORT_RANGE from GOOGLE_SPREADSHEET_ID")
	fs.StringVar(&o.date, "date", "", "column holding the date")
	fs.StringVar(&o.amount, "amount", "", "column holding the signed amount")
	fs.StringVar(&o.description, "description", "", "column holding the description")
	fs.StringVar(&o.category, "category", "", "column holding the category")
	fs.StringVar(&o.defaultCategory, "default-category", "", "category for rows without one")
	fs.BoolVar(&o.strict, "strict", false, "fail rows whose date cannot be parsed")
	fs.BoolVar(&o.dayFirst, "day-first", false, "read ambiguous dates as DD/MM instead of MM/DD")
	fs.BoolVar(&o.template, "template", false, "write the import template to stdout and exit")
	fs.BoolVar(&o.export, "export", false, "write all transactions as CSV to stdout and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			o.strictSet = true
		case "day-first":
			o.dayFirstSet = true
		}
	})

	modes := 0
	for _, on := range []bool{o.file != "", o.sheet, o.template, o.export} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		return o, fmt.Errorf("exactly one of -file, -sheet, -template or -export is required")
	}
	return o, nil
}

// roles maps the column flags onto importer roles. Without date and amount
// columns the template layout is assumed.
func (o options) roles(cfg *config.Config) importer.Roles {
	r := importer.Roles{
		Date:            o.date,
		Amount:          o.amount,
		Description:     o.description,
		Category:        o.category,
		DefaultCategory: o.defaultCategory,
	}
	if r.Date == "" && r.Amount == "" {
		tmpl := importer.TemplateRoles()
		tmpl.DefaultCategory = r.DefaultCategory
		r = tmpl
	}
	if r.DefaultCategory == "" {
		r.DefaultCategory = cfg.ImportDefaultCategory
	}
	strict := cfg.ImportStrictDates
	if o.strictSet {
		strict = o.strict
	}
	if strict {
		r.DatePolicy = importer.DateStrict
	}
	r.DayFirst = cfg.ImportDayFirst
	if o.dayFirstSet {
		r.DayFirst = o.dayFirst
	}
	return r
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.template {
		if err := importer.WriteTemplate(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cli.LoadEnvFile()
	// Logs go to stderr so stdout stays clean for exports.
	logger := cli.SetupLoggerOutput(os.Getenv("LOG_LEVEL"), os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	res, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}

	err = run(ctx, logger, cfg, res.Service, opts, os.Stdout)
	if cerr := res.Cleanup(); cerr != nil {
		logger.Error("Backend cleanup error", "error", cerr)
	}
	if err != nil {
		logger.Error("Import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, svc *services.TransactionService, opts options, out io.Writer) error {
	if opts.export {
		all, err := svc.GetAll(ctx)
		if err != nil {
			return err
		}
		return importer.ExportCSV(out, all)
	}

	roles := opts.roles(cfg)
	var (
		result importer.Result
		err    error
	)
	switch {
	case opts.sheet:
		result, err = importSheet(ctx, cfg, svc, roles)
	default:
		result, err = importFile(ctx, svc, opts.file, roles)
	}
	if err != nil {
		return err
	}

	logger.Info("Import completed",
		"batch_id", result.BatchID,
		"imported", result.Imported,
		"failed", result.Failed,
		"warnings", len(result.Warnings))
	printResult(out, result, cfg.ImportPreviewLimit)
	return nil
}

func importFile(ctx context.Context, svc *services.TransactionService, path string, roles importer.Roles) (importer.Result, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return importer.Result{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	return svc.ImportCSV(ctx, r, roles)
}

func importSheet(ctx context.Context, cfg *config.Config, svc *services.TransactionService, roles importer.Roles) (importer.Result, error) {
	if cfg.GoogleSpreadsheetID == "" || cfg.GoogleImportRange == "" {
		return importer.Result{}, fmt.Errorf("-sheet needs GOOGLE_SPREADSHEET_ID and GOOGLE_IMPORT_RANGE")
	}
	client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleImportRange)
	if err != nil {
		return importer.Result{}, err
	}
	return svc.ImportSheet(ctx, client, roles)
}

func printResult(w io.Writer, r importer.Result, limit int) {
	fmt.Fprintf(w, "batch %s: imported %d, failed %d\n", r.BatchID, r.Imported, r.Failed)
	lines, more := r.Summary(limit)
	for _, l := range lines {
		fmt.Fprintln(w, "  "+l)
	}
	if more > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", more)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning row %d: %s\n", warn.Row, warn.Message)
	}
}
