package google

import (
	"context"
	"testing"

	"kasirpos/internal/report"
)

func TestBuildRows(t *testing.T) {
	buckets := []report.PeriodBucket{
		{Period: "Mar 2024"},
		{Period: "Apr 2024", Revenue: 100000, Cogs: 60000, GrossProfit: 40000, OperationalExpenses: 20000, NetProfit: 20000, TransactionCount: 1, ItemsSold: 2},
	}
	sum := report.Summary{
		TotalRevenue: 100000, TotalCogs: 60000, TotalGrossProfit: 40000,
		TotalOperationalExpenses: 20000, TotalNetProfit: 20000,
		GrossProfitMargin: 40, NetProfitMargin: 20,
		TotalTransactions: 1, TotalItemsSold: 2,
	}

	rows := buildRows("Profit report (monthly)", buckets, sum)

	// title + blank + header + 2 buckets + blank + 7 summary rows
	if len(rows) != 13 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0] != "Profit report (monthly)" {
		t.Fatalf("title row = %v", rows[0])
	}
	if rows[2][0] != "Period" || len(rows[2]) != 8 {
		t.Fatalf("header row = %v", rows[2])
	}
	if rows[4][1] != int64(100000) || rows[4][5] != int64(20000) {
		t.Fatalf("bucket row = %v", rows[4])
	}
	if rows[12][1] != "20.00%" {
		t.Fatalf("net margin row = %v", rows[12])
	}
}

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, Options{}); err == nil {
		t.Error("missing spreadsheet ID should fail")
	}
	if _, err := NewClient(ctx, Options{SpreadsheetID: "sheet"}); err == nil {
		t.Error("missing credentials should fail")
	}
}
