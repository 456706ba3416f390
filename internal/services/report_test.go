package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"kasirpos/internal/core"
	"kasirpos/internal/export"
	"kasirpos/internal/memstore"
	"kasirpos/internal/report"
	"kasirpos/internal/store"
)

func seedSales(t *testing.T, st store.Store, now time.Time) {
	t.Helper()
	ctx := context.Background()

	if err := st.CreateProduct(ctx, core.Product{ID: "p1", Name: "Liquid", Category: "liquid", Price: 30000, SellingPrice: 50000, Stock: 100}); err != nil {
		t.Fatal(err)
	}

	sell := func(at time.Time, qty int64) {
		id := uuid.NewString()
		tx := core.Transaction{
			ID: id, Code: core.NewTransactionCode(at), Total: 50000 * qty,
			PaymentMethod: core.SalePaymentCash, CustomerPaid: 50000 * qty, CreatedAt: at,
			Items: []core.TransactionItem{{
				ID: uuid.NewString(), TransactionID: id, ProductID: "p1",
				ProductName: "Liquid", ProductPrice: 50000, Quantity: qty, Subtotal: 50000 * qty,
			}},
		}
		if err := st.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}
	sell(now.AddDate(0, 0, -1), 2)
	sell(now.AddDate(0, -1, 0), 1)

	if err := st.CreateExpense(ctx, core.OperationalExpense{
		ID: "e1", Description: "Sewa toko", Amount: 20000, Category: "rent",
		ExpenseDate: core.DateOnly(now), CreatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestProfitReportDefaults(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	st := memstore.New()
	seedSales(t, st, now)

	svc := NewReportService(st, 0.7, nil)
	svc.now = func() time.Time { return now }

	buckets, sum, err := svc.Profit(context.Background(), report.Range{}, report.Monthly)
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 6 {
		t.Fatalf("default range buckets = %d", len(buckets))
	}
	// Both sales fall in the window: 150000 revenue, 90000 recorded cost.
	if sum.TotalRevenue != 150000 || sum.TotalCogs != 90000 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.TotalNetProfit != 150000-90000-20000 {
		t.Fatalf("net = %d", sum.TotalNetProfit)
	}

	april := buckets[5]
	if april.Period != "Apr 2024" || april.Revenue != 100000 || april.OperationalExpenses != 20000 {
		t.Fatalf("april bucket = %+v", april)
	}

	if _, _, err := svc.Profit(context.Background(), report.Range{}, "weekly"); err == nil {
		t.Fatal("invalid granularity accepted")
	}
}

func TestExportProfit(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	st := memstore.New()
	seedSales(t, st, now)

	writer := export.NewMemoryWriter()
	svc := NewReportService(st, 0.7, writer)
	svc.now = func() time.Time { return now }

	if err := svc.ExportProfit(context.Background(), report.Range{}, report.Monthly); err != nil {
		t.Fatal(err)
	}
	if len(writer.Reports) != 1 {
		t.Fatalf("reports written = %d", len(writer.Reports))
	}
	if got := writer.Reports[0]; len(got.Buckets) != 6 || got.Summary.TotalRevenue != 150000 {
		t.Fatalf("written report = %+v", got.Summary)
	}

	noExport := NewReportService(st, 0.7, nil)
	if err := noExport.ExportProfit(context.Background(), report.Range{}, report.Monthly); err == nil {
		t.Fatal("export without writer should fail")
	}
}

func TestDashboardAndSales(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	st := memstore.New()
	seedSales(t, st, now)

	svc := NewReportService(st, 0.7, nil)
	svc.now = func() time.Time { return now }

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// Yesterday's sale is outside today but inside the weekly window.
	if stats.TodaySales != 0 || len(stats.RecentTransactions) != 1 {
		t.Fatalf("dashboard = %+v", stats)
	}

	sales, err := svc.Sales(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if sales.Revenue != 150000 || sales.ItemsSold != 3 {
		t.Fatalf("sales = %+v", sales)
	}
}
