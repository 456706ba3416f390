// Package google writes profit reports to a Google Sheets spreadsheet
// using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kasirpos/internal/export"
	"kasirpos/internal/report"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.ReportWriter = (*Client)(nil)

// Options configures the sheet destination and credentials. Exactly one
// of CredentialsJSON or CredentialsFile must be set.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Profit Report"
	}

	var creds []byte
	switch {
	case opts.CredentialsJSON != "":
		creds = []byte(opts.CredentialsJSON)
	case opts.CredentialsFile != "":
		var err error
		creds, err = os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	default:
		return nil, errors.New("missing sheet credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
	}, nil
}

// WriteProfitReport replaces the sheet contents with the report rows.
func (c *Client) WriteProfitReport(ctx context.Context, title string, buckets []report.PeriodBucket, sum report.Summary) error {
	values := buildRows(title, buckets, sum)

	clearRange := c.sheetName + "!A:Z"
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, c.sheetName+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}

	slog.InfoContext(ctx, "Profit report written to sheet",
		"sheets_ref", c.spreadsheetID,
		"rows", len(values))

	return nil
}

// buildRows lays the report out as spreadsheet rows: a title, the
// per-period table, then the summary block.
func buildRows(title string, buckets []report.PeriodBucket, sum report.Summary) [][]any {
	rows := [][]any{
		{title},
		{},
		{"Period", "Revenue", "COGS", "Gross Profit", "Operational Expenses", "Net Profit", "Transactions", "Items Sold"},
	}

	for _, b := range buckets {
		rows = append(rows, []any{
			b.Period, b.Revenue, b.Cogs, b.GrossProfit,
			b.OperationalExpenses, b.NetProfit, b.TransactionCount, b.ItemsSold,
		})
	}

	rows = append(rows,
		[]any{},
		[]any{"Total Revenue", sum.TotalRevenue},
		[]any{"Total COGS", sum.TotalCogs},
		[]any{"Total Gross Profit", sum.TotalGrossProfit},
		[]any{"Total Operational Expenses", sum.TotalOperationalExpenses},
		[]any{"Total Net Profit", sum.TotalNetProfit},
		[]any{"Gross Profit Margin", formatMargin(sum.GrossProfitMargin)},
		[]any{"Net Profit Margin", formatMargin(sum.NetProfitMargin)},
	)

	return rows
}

func formatMargin(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 2, 64) + "%"
}
