package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"finance/internal/core"
)

// Template column names.
const (
	ColDate        = "Date"
	ColAmount      = "Amount"
	ColCategory    = "Category"
	ColDescription = "Description"
)

var templateHeader = []string{ColDate, ColAmount, ColCategory, ColDescription}

var templateRows = [][]string{
	{"2024-10-01", "-50.25", "Groceries", "Weekly groceries"},
	{"2024-10-05", "-120.00", "Utilities", "Electric bill"},
	{"2024-10-10", "2500.00", "Salary", "Monthly salary"},
	{"2024-10-15", "-35.99", "Dining Out", "Dinner with friends"},
}

// TemplateRoles maps the template columns to their roles.
func TemplateRoles() Roles {
	return Roles{
		Date:            ColDate,
		Amount:          ColAmount,
		Category:        ColCategory,
		Description:     ColDescription,
		DefaultCategory: DefaultCategory,
	}
}

// ReadCSV reads a header row followed by data rows. Cells are trimmed and
// short rows are padded with empty cells.
func ReadCSV(r io.Reader) ([]string, []Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: missing header row", core.ErrParse)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read header: %w", core.ErrParse, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: read row %d: %w", core.ErrParse, len(rows)+1, err)
		}
		if isBlank(rec) {
			continue
		}
		rows = append(rows, toRow(header, rec))
	}
	return header, rows, nil
}

// RowsFromValues converts a values matrix whose first line is the header,
// as returned by spreadsheet APIs.
func RowsFromValues(values [][]string) ([]string, []Row) {
	if len(values) == 0 {
		return nil, nil
	}
	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(h)
	}
	var rows []Row
	for _, rec := range values[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, toRow(header, rec))
	}
	return header, rows
}

// ImportCSV reads r and imports it with roles.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader, roles Roles) (Result, error) {
	header, rows, err := ReadCSV(r)
	if err != nil {
		return Result{}, err
	}
	return im.Import(ctx, header, rows, roles)
}

// WriteTemplate writes the example import file.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(templateHeader); err != nil {
		return fmt.Errorf("write template header: %w", err)
	}
	if err := cw.WriteAll(templateRows); err != nil {
		return fmt.Errorf("write template rows: %w", err)
	}
	return nil
}

// ExportCSV writes transactions in template form, expenses as negative
// amounts, so the output can be imported back with TemplateRoles.
func ExportCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(templateHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, t := range txs {
		rec := []string{t.Date, t.Signed().String(), t.Category, t.Description}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write transaction %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRow(header, rec []string) Row {
	row := make(Row, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(rec) {
			row[h] = strings.TrimSpace(rec[i])
		} else {
			row[h] = ""
		}
	}
	return row
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
