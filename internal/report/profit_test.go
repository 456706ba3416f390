package report

import (
	"testing"
	"time"

	"kasirpos/internal/core"
)

func tx(created time.Time, total int64, items ...core.TransactionItem) core.Transaction {
	return core.Transaction{Total: total, CreatedAt: created, Items: items}
}

func item(productID string, qty, salePrice int64) core.TransactionItem {
	return core.TransactionItem{
		ProductID:    productID,
		ProductName:  "item",
		ProductPrice: salePrice,
		Quantity:     qty,
		Subtotal:     salePrice * qty,
	}
}

func april(day int) time.Time {
	return time.Date(2024, time.April, day, 10, 0, 0, 0, time.UTC)
}

func aprilRange() Range {
	return Range{
		Start: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.April, 30, 23, 59, 59, 0, time.UTC),
	}
}

// Scenario: single month, known product, one expense.
func TestProfitSingleMonth(t *testing.T) {
	buckets, sum := Profit(ProfitInput{
		Range:        aprilRange(),
		Granularity:  Monthly,
		Transactions: []core.Transaction{tx(april(10), 100000, item("P1", 2, 50000))},
		Products:     []core.Product{{ID: "P1", Price: 30000, SellingPrice: 50000}},
		Expenses: []core.OperationalExpense{
			{Amount: 20000, Category: "rent", ExpenseDate: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		},
	})

	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	b := buckets[0]
	if b.Period != "Apr 2024" {
		t.Fatalf("period label = %q", b.Period)
	}
	if b.Revenue != 100000 || b.Cogs != 60000 || b.GrossProfit != 40000 {
		t.Fatalf("revenue/cogs/gross = %d/%d/%d", b.Revenue, b.Cogs, b.GrossProfit)
	}
	if b.OperationalExpenses != 20000 || b.NetProfit != 20000 {
		t.Fatalf("opex/net = %d/%d", b.OperationalExpenses, b.NetProfit)
	}
	if b.TransactionCount != 1 || b.ItemsSold != 2 {
		t.Fatalf("count/items = %d/%d", b.TransactionCount, b.ItemsSold)
	}
	if sum.TotalNetProfit != 20000 {
		t.Fatalf("summary net = %d", sum.TotalNetProfit)
	}
}

// Scenario: product lookup misses, COGS falls back to 70% of sale price.
func TestProfitCogsFallback(t *testing.T) {
	buckets, _ := Profit(ProfitInput{
		Range:        aprilRange(),
		Granularity:  Monthly,
		Transactions: []core.Transaction{tx(april(10), 100000, item("P1", 2, 50000))},
	})

	b := buckets[0]
	if want := int64(70000); b.Cogs != want {
		t.Fatalf("fallback cogs = %d, want %d", b.Cogs, want)
	}
	if b.GrossProfit != 30000 {
		t.Fatalf("gross = %d, want 30000", b.GrossProfit)
	}
	if b.NetProfit != 30000 {
		t.Fatalf("net = %d, want 30000", b.NetProfit)
	}
}

func TestProfitCogsFallbackConfigurableRatio(t *testing.T) {
	buckets, _ := Profit(ProfitInput{
		Range:             aprilRange(),
		Granularity:       Monthly,
		Transactions:      []core.Transaction{tx(april(10), 100000, item("P1", 2, 50000))},
		CogsFallbackRatio: 0.5,
	})
	if got := buckets[0].Cogs; got != 50000 {
		t.Fatalf("cogs with ratio 0.5 = %d, want 50000", got)
	}
}

// Items without a product reference always use the fallback, even when
// the catalog is non-empty.
func TestProfitCogsFallbackEmptyProductID(t *testing.T) {
	buckets, _ := Profit(ProfitInput{
		Range:        aprilRange(),
		Granularity:  Monthly,
		Transactions: []core.Transaction{tx(april(10), 30000, item("", 1, 30000))},
		Products:     []core.Product{{ID: "P1", Price: 10}},
	})
	if got := buckets[0].Cogs; got != 21000 {
		t.Fatalf("cogs = %d, want 21000", got)
	}
}

// Scenario: empty three-month range yields three zero buckets and zero
// margins, never NaN.
func TestProfitEmptyRange(t *testing.T) {
	buckets, sum := Profit(ProfitInput{
		Range: Range{
			Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		Granularity: Monthly,
	})

	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	wantLabels := []string{"Jan 2024", "Feb 2024", "Mar 2024"}
	for i, b := range buckets {
		if b.Period != wantLabels[i] {
			t.Fatalf("bucket %d label = %q, want %q", i, b.Period, wantLabels[i])
		}
		if b.Revenue != 0 || b.Cogs != 0 || b.NetProfit != 0 || b.TransactionCount != 0 {
			t.Fatalf("bucket %d not zero-valued: %+v", i, b)
		}
	}
	if sum.GrossProfitMargin != 0 || sum.NetProfitMargin != 0 {
		t.Fatalf("margins should be 0 on zero revenue, got %v/%v", sum.GrossProfitMargin, sum.NetProfitMargin)
	}
}

// Scenario: two transactions in the same month share a bucket.
func TestProfitSameMonthAccumulates(t *testing.T) {
	buckets, _ := Profit(ProfitInput{
		Range:       aprilRange(),
		Granularity: Monthly,
		Transactions: []core.Transaction{
			tx(april(10), 100000, item("P1", 2, 50000)),
			tx(april(20), 50000, item("P1", 1, 50000)),
		},
		Products: []core.Product{{ID: "P1", Price: 30000}},
	})
	b := buckets[0]
	if b.Revenue != 150000 || b.TransactionCount != 2 {
		t.Fatalf("revenue/count = %d/%d, want 150000/2", b.Revenue, b.TransactionCount)
	}
}

// Completeness and conservation over a wider range: every month gets a
// bucket, in order, and revenue/expense totals are conserved.
func TestProfitCompletenessAndConservation(t *testing.T) {
	rng := Range{
		Start: time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.April, 30, 23, 59, 59, 0, time.UTC),
	}
	txs := []core.Transaction{
		tx(time.Date(2023, 11, 5, 8, 0, 0, 0, time.UTC), 40000, item("P1", 1, 40000)),
		tx(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), 80000, item("P1", 2, 40000)),
		tx(april(1), 120000, item("P1", 3, 40000)),
	}
	exps := []core.OperationalExpense{
		{Amount: 5000, ExpenseDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: 7000, ExpenseDate: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
	}

	buckets, sum := Profit(ProfitInput{Range: rng, Granularity: Monthly, Transactions: txs, Expenses: exps})

	if len(buckets) != 6 {
		t.Fatalf("expected 6 buckets, got %d", len(buckets))
	}
	want := []string{"Nov 2023", "Dec 2023", "Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024"}
	for i, b := range buckets {
		if b.Period != want[i] {
			t.Fatalf("bucket %d = %q, want %q", i, b.Period, want[i])
		}
		if b.GrossProfit != b.Revenue-b.Cogs {
			t.Fatalf("bucket %q gross invariant broken", b.Period)
		}
		if b.NetProfit != b.GrossProfit-b.OperationalExpenses {
			t.Fatalf("bucket %q net invariant broken", b.Period)
		}
	}

	var revenue, opex int64
	for _, b := range buckets {
		revenue += b.Revenue
		opex += b.OperationalExpenses
	}
	if revenue != 240000 {
		t.Fatalf("revenue not conserved: %d", revenue)
	}
	if opex != 12000 {
		t.Fatalf("expenses not conserved: %d", opex)
	}
	if sum.TotalRevenue != revenue || sum.TotalOperationalExpenses != opex {
		t.Fatalf("summary disagrees with buckets: %+v", sum)
	}
}

// Records dated outside the initialized buckets are dropped silently.
func TestProfitOutOfRangeDropped(t *testing.T) {
	buckets, sum := Profit(ProfitInput{
		Range:        aprilRange(),
		Granularity:  Monthly,
		Transactions: []core.Transaction{tx(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 99999, item("P1", 1, 99999))},
		Expenses:     []core.OperationalExpense{{Amount: 12345, ExpenseDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)}},
	})
	if buckets[0].Revenue != 0 || buckets[0].OperationalExpenses != 0 {
		t.Fatalf("out-of-range records leaked into bucket: %+v", buckets[0])
	}
	if sum.TotalRevenue != 0 {
		t.Fatalf("summary revenue = %d, want 0", sum.TotalRevenue)
	}
}

func TestProfitInvertedRange(t *testing.T) {
	buckets, sum := Profit(ProfitInput{
		Range: Range{
			Start: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		Granularity:  Monthly,
		Transactions: []core.Transaction{tx(april(10), 100000, item("P1", 2, 50000))},
	})
	if len(buckets) != 0 {
		t.Fatalf("inverted range should yield no buckets, got %d", len(buckets))
	}
	if sum != (Summary{}) {
		t.Fatalf("inverted range should yield zero summary, got %+v", sum)
	}
}

func TestProfitYearly(t *testing.T) {
	buckets, _ := Profit(ProfitInput{
		Range: Range{
			Start: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
		Granularity: Yearly,
		Transactions: []core.Transaction{
			tx(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), 10000, item("P1", 1, 10000)),
			tx(april(1), 20000, item("P1", 2, 10000)),
		},
		Products: []core.Product{{ID: "P1", Price: 4000}},
	})

	if len(buckets) != 2 {
		t.Fatalf("expected 2 yearly buckets, got %d", len(buckets))
	}
	if buckets[0].Period != "2023" || buckets[1].Period != "2024" {
		t.Fatalf("labels = %q/%q", buckets[0].Period, buckets[1].Period)
	}
	if buckets[1].Revenue != 20000 || buckets[1].Cogs != 8000 {
		t.Fatalf("2024 revenue/cogs = %d/%d", buckets[1].Revenue, buckets[1].Cogs)
	}
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, time.April, 18, 15, 0, 0, 0, time.UTC)

	m := DefaultRange(now, Monthly)
	if got := m.Start; !got.Equal(time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("monthly start = %v", got)
	}
	if m.End.Month() != time.April || m.End.Day() != 30 {
		t.Fatalf("monthly end = %v", m.End)
	}
	if buckets, _ := Profit(ProfitInput{Range: m, Granularity: Monthly}); len(buckets) != 6 {
		t.Fatalf("default monthly range spans %d buckets, want 6", len(buckets))
	}

	y := DefaultRange(now, Yearly)
	if y.Start.Year() != 2024 || y.Start.Month() != time.January || y.End.Month() != time.December {
		t.Fatalf("yearly range = %+v", y)
	}
}

// Transactions right at a month boundary land in the month of their UTC
// timestamp.
func TestProfitMonthBoundary(t *testing.T) {
	rng := Range{
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.April, 30, 23, 59, 59, 0, time.UTC),
	}
	buckets, _ := Profit(ProfitInput{
		Range:       rng,
		Granularity: Monthly,
		Transactions: []core.Transaction{
			tx(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), 100, item("", 1, 100)),
			tx(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 200, item("", 1, 200)),
		},
	})
	if buckets[0].Revenue != 100 || buckets[1].Revenue != 200 {
		t.Fatalf("boundary bucketing wrong: %d/%d", buckets[0].Revenue, buckets[1].Revenue)
	}
}
