package core

import (
	"strings"
	"testing"
	"time"
)

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		paid, total int64
		want        PaymentStatus
	}{
		{0, 100000, PaymentPending},
		{-5, 100000, PaymentPending},
		{1, 100000, PaymentPartial},
		{99999, 100000, PaymentPartial},
		{100000, 100000, PaymentPaid},
		{100001, 100000, PaymentPaid},
	}
	for _, tc := range cases {
		if got := DerivePaymentStatus(tc.paid, tc.total); got != tc.want {
			t.Fatalf("DerivePaymentStatus(%d, %d) = %q, want %q", tc.paid, tc.total, got, tc.want)
		}
	}
}

func TestEnumParsing(t *testing.T) {
	if _, err := ParseRole("admin"); err != nil {
		t.Fatalf("admin should be a valid role: %v", err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("superuser should not parse as a role")
	}
	if _, err := ParseSalePaymentMethod("qris"); err != nil {
		t.Fatalf("qris should be a valid sale payment method: %v", err)
	}
	if _, err := ParseSalePaymentMethod("transfer"); err == nil {
		t.Fatal("transfer is not a sale payment method")
	}
	if _, err := ParsePurchasePaymentMethod("transfer"); err != nil {
		t.Fatalf("transfer should be a valid purchase payment method: %v", err)
	}
	if _, err := ParsePurchasePaymentMethod("qris"); err == nil {
		t.Fatal("qris is not a purchase payment method")
	}
	if _, err := ParsePaymentStatus("partial"); err != nil {
		t.Fatalf("partial should be a valid payment status: %v", err)
	}
	if _, err := ParsePaymentStatus("overdue"); err == nil {
		t.Fatal("overdue is not a payment status")
	}
}

func TestTransactionValidate(t *testing.T) {
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	valid := Transaction{
		Code:          "TRX-20240410-0001",
		CashierName:   "kasir",
		Total:         100000,
		PaymentMethod: SalePaymentCash,
		CreatedAt:     now,
		Items: []TransactionItem{
			{ProductID: "p1", ProductName: "Liquid 60ml", ProductPrice: 50000, Quantity: 2, Subtotal: 100000},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	noItems := valid
	noItems.Items = nil
	if err := noItems.Validate(); err != ErrEmptyItems {
		t.Fatalf("expected ErrEmptyItems, got %v", err)
	}

	badTotal := valid
	badTotal.Total = 99999
	if err := badTotal.Validate(); err == nil {
		t.Fatal("mismatched total should be rejected")
	}

	badQty := valid
	badQty.Items = []TransactionItem{{ProductName: "x", ProductPrice: 10, Quantity: 0, Subtotal: 0}}
	badQty.Total = 0
	if err := badQty.Validate(); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestPurchaseValidate(t *testing.T) {
	now := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	p := Purchase{
		Code:          "PO-20240410-0001",
		Total:         150000,
		PaidAmount:    50000,
		PaymentStatus: PaymentPartial,
		PurchaseDate:  now,
		Items: []PurchaseItem{
			{ProductName: "Cotton bacon", Quantity: 3, UnitPrice: 50000, Subtotal: 150000},
		},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid purchase rejected: %v", err)
	}

	overpaid := p
	overpaid.PaidAmount = 200000
	if err := overpaid.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for overpayment, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	e := OperationalExpense{
		Description: "Sewa toko",
		Amount:      2000000,
		Category:    "rent",
		ExpenseDate: DateOnly(time.Date(2024, 4, 15, 18, 30, 0, 0, time.UTC)),
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}
	if h := e.ExpenseDate.Hour(); h != 0 {
		t.Fatalf("DateOnly should zero the time of day, got hour %d", h)
	}

	e.Amount = 0
	if err := e.Validate(); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCodes(t *testing.T) {
	now := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)
	code := NewTransactionCode(now)
	if !strings.HasPrefix(code, "TRX-20240410-") {
		t.Fatalf("unexpected transaction code %q", code)
	}
	if len(code) != len("TRX-20240410-0000") {
		t.Fatalf("unexpected transaction code length: %q", code)
	}
	po := NewPurchaseCode(now)
	if !strings.HasPrefix(po, "PO-20240410-") {
		t.Fatalf("unexpected purchase code %q", po)
	}
}
