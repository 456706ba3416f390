// Package report computes sales and profit figures from already-fetched
// domain records. Every routine here is a pure function: no I/O, no
// shared state, safe to call from concurrent requests. Calendar
// bucketing is done in UTC.
package report

import (
	"math"
	"time"

	"kasirpos/internal/core"
)

type Granularity string

const (
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// Range is an inclusive date range.
type Range struct {
	Start time.Time
	End   time.Time
}

// DefaultCogsFallbackRatio estimates the cost of a sold item whose
// product no longer exists as a fraction of its sale price.
const DefaultCogsFallbackRatio = 0.7

// DefaultRange returns the last six calendar months for monthly reports
// and the current calendar year for yearly ones.
func DefaultRange(now time.Time, g Granularity) Range {
	now = now.UTC()
	if g == Yearly {
		return Range{
			Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, time.UTC),
		}
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0).Add(-time.Second)
	return Range{Start: start, End: end}
}

// PeriodBucket holds one calendar period's aggregated figures.
type PeriodBucket struct {
	Period              string `json:"period"`
	Revenue             int64  `json:"revenue"`
	Cogs                int64  `json:"cogs"`
	GrossProfit         int64  `json:"gross_profit"`
	OperationalExpenses int64  `json:"operational_expenses"`
	NetProfit           int64  `json:"net_profit"`
	TransactionCount    int64  `json:"transaction_count"`
	ItemsSold           int64  `json:"items_sold"`
}

type Summary struct {
	TotalRevenue             int64   `json:"total_revenue"`
	TotalCogs                int64   `json:"total_cogs"`
	TotalGrossProfit         int64   `json:"total_gross_profit"`
	TotalOperationalExpenses int64   `json:"total_operational_expenses"`
	TotalNetProfit           int64   `json:"total_net_profit"`
	GrossProfitMargin        float64 `json:"gross_profit_margin"`
	NetProfitMargin          float64 `json:"net_profit_margin"`
	TotalTransactions        int64   `json:"total_transactions"`
	TotalItemsSold           int64   `json:"total_items_sold"`
}

// ProfitInput carries the pre-fetched records a profit report is built
// from. Products serve only as a cost-price lookup.
type ProfitInput struct {
	Range        Range
	Granularity  Granularity
	Transactions []core.Transaction
	Products     []core.Product
	Expenses     []core.OperationalExpense

	// CogsFallbackRatio is applied to the recorded sale price when a
	// line item's product is missing from the lookup. Zero means
	// DefaultCogsFallbackRatio.
	CogsFallbackRatio float64
}

// Profit buckets transactions and expenses into calendar periods and
// derives gross and net profit per bucket plus a rolled-up summary.
//
// Every period between Range.Start and Range.End gets exactly one
// bucket, zero-filled when nothing happened in it. Records dated
// outside the range are dropped. An inverted range yields no buckets
// and a zero summary.
func Profit(in ProfitInput) ([]PeriodBucket, Summary) {
	ratio := in.CogsFallbackRatio
	if ratio == 0 {
		ratio = DefaultCogsFallbackRatio
	}

	keys := periodKeys(in.Range, in.Granularity)
	buckets := make(map[string]*PeriodBucket, len(keys))
	for _, k := range keys {
		buckets[k.key] = &PeriodBucket{Period: k.label}
	}

	costs := make(map[string]int64, len(in.Products))
	for _, p := range in.Products {
		costs[p.ID] = p.Price
	}

	for _, tx := range in.Transactions {
		b, ok := buckets[periodKey(tx.CreatedAt, in.Granularity)]
		if !ok {
			continue
		}
		b.TransactionCount++
		b.Revenue += tx.Total
		for _, item := range tx.Items {
			b.ItemsSold += item.Quantity
			if cost, found := itemCost(item, costs); found {
				b.Cogs += cost * item.Quantity
			} else {
				b.Cogs += int64(math.Round(float64(item.ProductPrice*item.Quantity) * ratio))
			}
		}
	}

	for _, exp := range in.Expenses {
		b, ok := buckets[periodKey(exp.ExpenseDate, in.Granularity)]
		if !ok {
			continue
		}
		b.OperationalExpenses += exp.Amount
	}

	out := make([]PeriodBucket, 0, len(keys))
	var sum Summary
	for _, k := range keys {
		b := buckets[k.key]
		b.GrossProfit = b.Revenue - b.Cogs
		b.NetProfit = b.GrossProfit - b.OperationalExpenses
		out = append(out, *b)

		sum.TotalRevenue += b.Revenue
		sum.TotalCogs += b.Cogs
		sum.TotalGrossProfit += b.GrossProfit
		sum.TotalOperationalExpenses += b.OperationalExpenses
		sum.TotalNetProfit += b.NetProfit
		sum.TotalTransactions += b.TransactionCount
		sum.TotalItemsSold += b.ItemsSold
	}

	if sum.TotalRevenue > 0 {
		sum.GrossProfitMargin = float64(sum.TotalGrossProfit) / float64(sum.TotalRevenue) * 100
		sum.NetProfitMargin = float64(sum.TotalNetProfit) / float64(sum.TotalRevenue) * 100
	}

	return out, sum
}

func itemCost(item core.TransactionItem, costs map[string]int64) (int64, bool) {
	if item.ProductID == "" {
		return 0, false
	}
	cost, ok := costs[item.ProductID]
	return cost, ok
}

type period struct {
	key   string
	label string
}

// periodKeys enumerates the calendar periods the range spans, earliest
// first. An end before the start yields nil.
func periodKeys(r Range, g Granularity) []period {
	start := r.Start.UTC()
	end := r.End.UTC()
	if end.Before(start) {
		return nil
	}

	if g == Yearly {
		keys := make([]period, 0, end.Year()-start.Year()+1)
		for y := start.Year(); y <= end.Year(); y++ {
			t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			keys = append(keys, period{key: t.Format("2006"), label: t.Format("2006")})
		}
		return keys
	}

	var keys []period
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		keys = append(keys, period{key: cur.Format("2006-01"), label: cur.Format("Jan 2006")})
		cur = cur.AddDate(0, 1, 0)
	}
	return keys
}

func periodKey(t time.Time, g Granularity) string {
	if g == Yearly {
		return t.UTC().Format("2006")
	}
	return t.UTC().Format("2006-01")
}
