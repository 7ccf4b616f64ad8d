package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"finance/internal/core"
	ports "finance/internal/sheets"

	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Transactions"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	// importRange is read by ReadValues, e.g. "Bank!A:F".
	importRange string
}

var (
	_ ports.TransactionMirror = (*Client)(nil)
	_ ports.RowReader         = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Transactions"), GOOGLE_IMPORT_RANGE.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	return New(ctx, spreadsheetID, os.Getenv("GOOGLE_SHEET_NAME"), os.Getenv("GOOGLE_IMPORT_RANGE"))
}

func New(ctx context.Context, spreadsheetID, sheetName, importRange string) (*Client, error) {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		importRange:   strings.TrimSpace(importRange),
	}, nil
}

// WithImportRange returns a copy of c reading rows from rng.
func (c *Client) WithImportRange(rng string) *Client {
	cp := *c
	cp.importRange = strings.TrimSpace(rng)
	return &cp
}

// newSheetsService authorizes a pooled HTTP client with the configured
// credentials: a saved OAuth user token (see cmd/finance-sheets-auth) or a
// Service Account from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	ts, kind, err := tokenSourceFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Creating Google Sheets service",
		"component", "sheets",
		"credentials", kind,
		"scope", gsheet.SpreadsheetsScope)

	base := newHTTPClientWithPooling()
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
	client.Timeout = base.Timeout

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm between
// mirror writes.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// ReadValues returns the import range as strings, header row first.
func (c *Client) ReadValues(ctx context.Context) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if c.importRange == "" {
		return nil, errors.New("no import range configured")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.importRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.importRange, err)
	}
	return toMatrix(resp.Values), nil
}

// Upsert overwrites the row for t.ID, appending one when absent.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := c.locate(ctx, t.ID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{mirrorRow(t)}}

	if row == 0 {
		rng := sheetRange(c.sheetName, "A:F")
		_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append row for %d: %w", t.ID, err)
		}
		slog.InfoContext(ctx, "Appended transaction to sheet", "component", "sheets", "id", t.ID, "sheet", c.sheetName)
		return nil
	}

	rng := sheetRange(c.sheetName, fmt.Sprintf("A%d:F%d", row, row))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d for %d: %w", row, t.ID, err)
	}
	slog.InfoContext(ctx, "Updated transaction in sheet", "component", "sheets", "id", t.ID, "row", row)
	return nil
}

// Remove deletes the row for id. A missing row is not an error.
func (c *Client) Remove(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := c.locate(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		slog.DebugContext(ctx, "Transaction not in sheet, nothing to remove", "component", "sheets", "id", id)
		return nil
	}

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d for %d: %w", row, id, err)
	}
	slog.InfoContext(ctx, "Removed transaction from sheet", "component", "sheets", "id", id, "row", row)
	return nil
}

// Rewrite clears the mirror sheet and writes the header plus txs.
func (c *Client) Rewrite(ctx context.Context, txs []core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	all := sheetRange(c.sheetName, "A:F")
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", all, err)
	}

	vr := &gsheet.ValueRange{Values: mirrorValues(txs)}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheetRange(c.sheetName, "A1"), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", c.sheetName, err)
	}
	slog.InfoContext(ctx, "Rewrote transaction sheet", "component", "sheets", "rows", len(txs), "sheet", c.sheetName)
	return nil
}

func (c *Client) locate(ctx context.Context, id int64) (int, error) {
	rng := sheetRange(c.sheetName, "A:A")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return findRow(resp.Values, id), nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet properties: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", c.sheetName)
}
