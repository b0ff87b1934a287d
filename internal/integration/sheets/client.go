// Package sheets imports the legacy spreadsheet ledger into PostgreSQL.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Reader fetches rectangular ranges of cell values.
type Reader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Config locates the spreadsheet and the service account credentials.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	SalesRange      string
	CostsRange      string
}

// Client reads a spreadsheet through the Google Sheets API.
type Client struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *slog.Logger
}

// NewClient builds a read-only Sheets client.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.CredentialsFile == "" || cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets: credentials file and spreadsheet id are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("sheets: init client: %w", err)
	}
	return &Client{service: service, spreadsheetID: cfg.SpreadsheetID, logger: logger}, nil
}

// ReadRange implements Reader.
func (c *Client) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, errors.New("sheets: range must not be empty")
	}
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read range %s: %w", sheetRange, err)
	}
	c.logger.Debug("sheet range read", slog.String("range", sheetRange), slog.Int("rows", len(resp.Values)))
	return resp.Values, nil
}
