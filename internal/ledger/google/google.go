// Package google mirrors purchases into a Google Sheets ledger.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"spendwatch/internal/core"
	"spendwatch/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ledger.PurchaseWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: LEDGER_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: LEDGER_SHEET_NAME (default "Purchases"); the current year is
// prefixed so each year gets its own tab.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("LEDGER_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing LEDGER_SPREADSHEET_ID")
	}

	base := strings.TrimSpace(os.Getenv("LEDGER_SHEET_NAME"))
	if base == "" {
		base = "Purchases"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     fmt.Sprintf("%d %s", time.Now().Year(), base),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
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

// Append writes one purchase row to the ledger sheet. Columns:
// Date, Platform, Description, Category, Amount, Currency, URL, ID.
func (c *Client) Append(ctx context.Context, p core.Purchase) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := p.Amount.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	row := []any{
		p.When().Format("2006-01-02 15:04"),
		p.Platform,
		p.Description,
		p.Category,
		p.Amount.Float(),
		p.Currency,
		p.URL,
		p.ID,
	}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}
