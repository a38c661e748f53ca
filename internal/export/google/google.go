// Package google writes month exports to a Google Sheets spreadsheet
// using Service Account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bluepay/internal/core"
	"bluepay/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ export.SheetWriter = (*Client)(nil)

// New creates a Sheets client for the given spreadsheet.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// TabName returns the sheet tab a month export is written to.
func TabName(year, month int) string {
	return fmt.Sprintf("BluePay %04d-%02d", year, month)
}

// BuildValues converts transactions into the value grid written to the tab,
// header row included. Amounts are written as decimal strings so the sheet
// never loses cents to float formatting.
func BuildValues(txs []core.Transaction) [][]any {
	values := make([][]any, 0, len(txs)+1)
	header := make([]any, len(export.Header))
	for i, h := range export.Header {
		header[i] = h
	}
	values = append(values, header)
	for _, t := range txs {
		row := export.Row(t)
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		values = append(values, cells)
	}
	return values
}

// WriteMonth replaces the month's tab content with the given transactions.
// The tab is created on first export and cleared before every write, so a
// re-export always reflects the current ledger state.
func (c *Client) WriteMonth(ctx context.Context, user core.User, year, month int, txs []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("invalid month: %d", month)
	}

	tab := TabName(year, month)
	if err := c.ensureTab(ctx, tab); err != nil {
		return "", err
	}

	clearRange := fmt.Sprintf("%s!A:E", tab)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := BuildValues(txs)
	writeRange := fmt.Sprintf("%s!A1:E%d", tab, len(values))
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("update %s: %w", writeRange, err)
	}

	slog.InfoContext(ctx, "Month written to spreadsheet",
		"user_id", user.ID, "tab", tab, "rows", len(txs))
	return writeRange, nil
}

// ensureTab creates the tab if it does not exist yet. The AddSheet request
// fails when the tab is already present, which is fine.
func (c *Client) ensureTab(ctx context.Context, tab string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: tab},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", tab, err)
	}
	return nil
}
