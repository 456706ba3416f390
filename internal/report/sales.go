package report

import (
	"sort"
	"time"

	"kasirpos/internal/core"
)

// ProductSales is a per-product sold-quantity tally.
type ProductSales struct {
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Revenue     int64  `json:"revenue"`
}

type SalesSummary struct {
	Revenue          int64          `json:"revenue"`
	TransactionCount int64          `json:"transaction_count"`
	ItemsSold        int64          `json:"items_sold"`
	ByProduct        []ProductSales `json:"by_product"`
}

// Sales tallies revenue and per-product quantities over the given
// transactions. Products are keyed by name so items whose product was
// deleted still count.
func Sales(txs []core.Transaction) SalesSummary {
	var sum SalesSummary
	byName := make(map[string]*ProductSales)
	for _, tx := range txs {
		sum.TransactionCount++
		sum.Revenue += tx.Total
		for _, item := range tx.Items {
			sum.ItemsSold += item.Quantity
			ps, ok := byName[item.ProductName]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
				byName[item.ProductName] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue += item.Subtotal
		}
	}

	sum.ByProduct = make([]ProductSales, 0, len(byName))
	for _, ps := range byName {
		sum.ByProduct = append(sum.ByProduct, *ps)
	}
	sort.Slice(sum.ByProduct, func(i, j int) bool {
		if sum.ByProduct[i].Quantity != sum.ByProduct[j].Quantity {
			return sum.ByProduct[i].Quantity > sum.ByProduct[j].Quantity
		}
		return sum.ByProduct[i].ProductName < sum.ByProduct[j].ProductName
	})
	return sum
}

// DashboardStats is the landing-page snapshot: today's figures, the
// best-selling products and the latest transactions.
type DashboardStats struct {
	TodaySales         int64              `json:"today_sales"`
	TodayTransactions  int64              `json:"today_transactions"`
	TopProducts        []ProductSales     `json:"top_products"`
	RecentTransactions []core.Transaction `json:"recent_transactions"`
}

// Dashboard computes stats from transactions of the current day (for
// today's figures) plus a wider window used for top products and the
// recent list. "Today" is the UTC calendar day containing now.
func Dashboard(now time.Time, today, window []core.Transaction) DashboardStats {
	day := core.DateOnly(now)
	var stats DashboardStats
	for _, tx := range today {
		if !core.DateOnly(tx.CreatedAt).Equal(day) {
			continue
		}
		stats.TodaySales += tx.Total
		stats.TodayTransactions++
	}

	sum := Sales(window)
	top := sum.ByProduct
	if len(top) > 5 {
		top = top[:5]
	}
	stats.TopProducts = top

	recent := make([]core.Transaction, len(window))
	copy(recent, window)
	sort.Slice(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentTransactions = recent
	return stats
}
