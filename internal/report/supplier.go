package report

import (
	"sort"

	"kasirpos/internal/core"
)

// SupplierPaymentRow is one purchase's payment standing.
type SupplierPaymentRow struct {
	PurchaseID    string             `json:"purchase_id"`
	PurchaseCode  string             `json:"purchase_code"`
	SupplierID    string             `json:"supplier_id,omitempty"`
	SupplierName  string             `json:"supplier_name,omitempty"`
	Total         int64              `json:"total"`
	PaidAmount    int64              `json:"paid_amount"`
	Outstanding   int64              `json:"outstanding"`
	PaymentStatus core.PaymentStatus `json:"payment_status"`
}

type SupplierPaymentSummary struct {
	TotalPurchases   int64                `json:"total_purchases"`
	TotalAmount      int64                `json:"total_amount"`
	TotalPaid        int64                `json:"total_paid"`
	TotalOutstanding int64                `json:"total_outstanding"`
	CountByStatus    map[string]int64     `json:"count_by_status"`
	Rows             []SupplierPaymentRow `json:"rows"`
}

// SupplierPayments reports paid versus outstanding amounts per
// purchase, unpaid purchases first.
func SupplierPayments(purchases []core.Purchase, suppliers []core.Supplier) SupplierPaymentSummary {
	names := make(map[string]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}

	sum := SupplierPaymentSummary{
		CountByStatus: map[string]int64{
			string(core.PaymentPending): 0,
			string(core.PaymentPartial): 0,
			string(core.PaymentPaid):    0,
		},
	}
	for _, p := range purchases {
		row := SupplierPaymentRow{
			PurchaseID:    p.ID,
			PurchaseCode:  p.Code,
			SupplierID:    p.SupplierID,
			SupplierName:  names[p.SupplierID],
			Total:         p.Total,
			PaidAmount:    p.PaidAmount,
			Outstanding:   p.Total - p.PaidAmount,
			PaymentStatus: p.PaymentStatus,
		}
		sum.TotalPurchases++
		sum.TotalAmount += row.Total
		sum.TotalPaid += row.PaidAmount
		sum.TotalOutstanding += row.Outstanding
		sum.CountByStatus[string(p.PaymentStatus)]++
		sum.Rows = append(sum.Rows, row)
	}

	sort.Slice(sum.Rows, func(i, j int) bool {
		if (sum.Rows[i].Outstanding > 0) != (sum.Rows[j].Outstanding > 0) {
			return sum.Rows[i].Outstanding > 0
		}
		return sum.Rows[i].PurchaseCode < sum.Rows[j].PurchaseCode
	})
	return sum
}
