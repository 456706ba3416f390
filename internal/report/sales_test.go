package report

import (
	"testing"
	"time"

	"kasirpos/internal/core"
)

func TestSales(t *testing.T) {
	txs := []core.Transaction{
		tx(april(1), 150000,
			core.TransactionItem{ProductID: "p1", ProductName: "Liquid", ProductPrice: 50000, Quantity: 2, Subtotal: 100000},
			core.TransactionItem{ProductID: "p2", ProductName: "Coil", ProductPrice: 50000, Quantity: 1, Subtotal: 50000},
		),
		tx(april(2), 50000,
			core.TransactionItem{ProductID: "p2", ProductName: "Coil", ProductPrice: 50000, Quantity: 1, Subtotal: 50000},
		),
	}

	sum := Sales(txs)
	if sum.Revenue != 200000 || sum.TransactionCount != 2 || sum.ItemsSold != 4 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(sum.ByProduct) != 2 {
		t.Fatalf("expected 2 products, got %d", len(sum.ByProduct))
	}
	// Sorted by quantity, ties by name; Liquid (2) and Coil (2) tie.
	if sum.ByProduct[0].ProductName != "Coil" {
		t.Fatalf("first product = %q", sum.ByProduct[0].ProductName)
	}
	for _, ps := range sum.ByProduct {
		if ps.Quantity != 2 {
			t.Fatalf("%s quantity = %d, want 2", ps.ProductName, ps.Quantity)
		}
	}
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, time.April, 10, 14, 0, 0, 0, time.UTC)
	today := []core.Transaction{
		tx(now.Add(-2*time.Hour), 75000, item("p1", 1, 75000)),
		tx(now.Add(-26*time.Hour), 99999, item("p1", 1, 99999)), // yesterday, ignored
	}
	var window []core.Transaction
	for i := 0; i < 8; i++ {
		window = append(window, tx(now.Add(-time.Duration(i)*time.Hour), 1000, item("p1", 1, 1000)))
	}

	stats := Dashboard(now, today, window)
	if stats.TodaySales != 75000 || stats.TodayTransactions != 1 {
		t.Fatalf("today = %d/%d", stats.TodaySales, stats.TodayTransactions)
	}
	if len(stats.RecentTransactions) != 5 {
		t.Fatalf("recent = %d, want 5", len(stats.RecentTransactions))
	}
	if !stats.RecentTransactions[0].CreatedAt.After(stats.RecentTransactions[4].CreatedAt) {
		t.Fatal("recent transactions not newest-first")
	}
	if len(stats.TopProducts) != 1 || stats.TopProducts[0].Quantity != 8 {
		t.Fatalf("top products = %+v", stats.TopProducts)
	}
}
