package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kasirpos/internal/core"
	"kasirpos/internal/store"
)

// PurchaseService manages supplier purchases and their payments.
type PurchaseService struct {
	store store.Store
	now   func() time.Time
}

func NewPurchaseService(s store.Store) *PurchaseService {
	return &PurchaseService{store: s, now: time.Now}
}

type PurchaseLine struct {
	// ProductID links the line to the catalog; leave empty for ad-hoc
	// goods. Catalog lines get their stock incremented on receipt.
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type PurchaseInput struct {
	SupplierID   string         `json:"supplier_id,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	PurchaseDate time.Time      `json:"purchase_date"`
	CreatedBy    string         `json:"created_by,omitempty"`
	Lines        []PurchaseLine `json:"lines"`
}

type PaymentInput struct {
	Amount        int64                      `json:"amount"`
	PaymentDate   time.Time                  `json:"payment_date"`
	PaymentMethod core.PurchasePaymentMethod `json:"payment_method"`
	Notes         string                     `json:"notes,omitempty"`
	CreatedBy     string                     `json:"created_by,omitempty"`
}

// CreatePurchase records a supplier purchase. New purchases start
// unpaid; money flows in later through RecordPayment.
func (s *PurchaseService) CreatePurchase(ctx context.Context, in PurchaseInput) (core.Purchase, error) {
	if len(in.Lines) == 0 {
		return core.Purchase{}, core.ErrEmptyItems
	}
	if in.SupplierID != "" {
		if _, err := s.store.GetSupplier(ctx, in.SupplierID); err != nil {
			return core.Purchase{}, fmt.Errorf("supplier %s: %w", in.SupplierID, err)
		}
	}

	now := s.now().UTC()
	purchaseDate := in.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}

	poID := uuid.NewString()
	var total int64
	items := make([]core.PurchaseItem, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return core.Purchase{}, core.ErrInvalidQuantity
		}
		if line.UnitPrice < 0 {
			return core.Purchase{}, core.ErrInvalidPrice
		}
		name := line.ProductName
		if line.ProductID != "" {
			p, err := s.store.GetProduct(ctx, line.ProductID)
			if err != nil {
				return core.Purchase{}, fmt.Errorf("product %s: %w", line.ProductID, err)
			}
			name = p.Name
		}
		if name == "" {
			return core.Purchase{}, core.ErrEmptyName
		}
		subtotal := line.UnitPrice * line.Quantity
		items = append(items, core.PurchaseItem{
			ID:          uuid.NewString(),
			PurchaseID:  poID,
			ProductID:   line.ProductID,
			ProductName: name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    subtotal,
		})
		total += subtotal
	}

	p := core.Purchase{
		ID:            poID,
		Code:          core.NewPurchaseCode(now),
		SupplierID:    in.SupplierID,
		Total:         total,
		PaidAmount:    0,
		PaymentStatus: core.PaymentPending,
		Notes:         in.Notes,
		PurchaseDate:  purchaseDate,
		CreatedBy:     in.CreatedBy,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.Validate(); err != nil {
		return core.Purchase{}, err
	}

	if err := s.store.CreatePurchase(ctx, p); err != nil {
		return core.Purchase{}, fmt.Errorf("persist purchase: %w", err)
	}

	slog.InfoContext(ctx, "Purchase recorded",
		"purchase_id", p.ID,
		"purchase_code", p.Code,
		"supplier_id", p.SupplierID,
		"total", p.Total,
		"items", len(p.Items))

	return p, nil
}

// RecordPayment applies a payment against a purchase. The amount must
// not exceed what is still outstanding; the store re-derives the paid
// amount and status.
func (s *PurchaseService) RecordPayment(ctx context.Context, purchaseID string, in PaymentInput) (core.Purchase, error) {
	if in.Amount <= 0 {
		return core.Purchase{}, core.ErrInvalidAmount
	}
	if err := in.PaymentMethod.Validate(); err != nil {
		return core.Purchase{}, err
	}

	p, err := s.store.GetPurchase(ctx, purchaseID)
	if err != nil {
		return core.Purchase{}, err
	}
	if outstanding := p.Total - p.PaidAmount; in.Amount > outstanding {
		return core.Purchase{}, fmt.Errorf("%w: outstanding %d, payment %d", ErrOverpayment, outstanding, in.Amount)
	}

	now := s.now().UTC()
	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	payment := core.SupplierPayment{
		ID:            uuid.NewString(),
		PurchaseID:    purchaseID,
		Amount:        in.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     now,
	}
	if err := payment.Validate(); err != nil {
		return core.Purchase{}, err
	}

	updated, err := s.store.AddSupplierPayment(ctx, payment)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("record payment: %w", err)
	}

	slog.InfoContext(ctx, "Supplier payment recorded",
		"purchase_id", purchaseID,
		"amount", in.Amount,
		"payment_method", string(in.PaymentMethod),
		"paid_amount", updated.PaidAmount,
		"payment_status", string(updated.PaymentStatus))

	return updated, nil
}

// DeletePayment removes a recorded payment; the purchase's paid amount
// and status roll back accordingly.
func (s *PurchaseService) DeletePayment(ctx context.Context, purchaseID, paymentID string) (core.Purchase, error) {
	updated, err := s.store.DeleteSupplierPayment(ctx, purchaseID, paymentID)
	if err != nil {
		return core.Purchase{}, err
	}

	slog.InfoContext(ctx, "Supplier payment deleted",
		"purchase_id", purchaseID,
		"paid_amount", updated.PaidAmount,
		"payment_status", string(updated.PaymentStatus))

	return updated, nil
}

// UpdateStatus overrides a purchase's payment status, e.g. marking a
// written-off purchase as paid.
func (s *PurchaseService) UpdateStatus(ctx context.Context, purchaseID string, status core.PaymentStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}
	return s.store.UpdatePurchaseStatus(ctx, purchaseID, status)
}
