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

// CheckoutService turns a cart into a persisted sale.
type CheckoutService struct {
	store store.Store
	now   func() time.Time
}

func NewCheckoutService(s store.Store) *CheckoutService {
	return &CheckoutService{store: s, now: time.Now}
}

type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CheckoutInput struct {
	CashierID     string                 `json:"cashier_id"`
	CashierName   string                 `json:"cashier_name"`
	PaymentMethod core.SalePaymentMethod `json:"payment_method"`
	CustomerPaid  int64                  `json:"customer_paid"`
	Lines         []CheckoutLine         `json:"lines"`
}

// Checkout prices every line at the product's current selling price,
// validates the payment and persists the sale. Stock is decremented
// atomically by the store; a failed checkout changes nothing.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (core.Transaction, error) {
	if err := in.PaymentMethod.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if len(in.Lines) == 0 {
		return core.Transaction{}, core.ErrEmptyItems
	}

	now := s.now().UTC()
	txID := uuid.NewString()

	var total int64
	items := make([]core.TransactionItem, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return core.Transaction{}, core.ErrInvalidQuantity
		}
		p, err := s.store.GetProduct(ctx, line.ProductID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("product %s: %w", line.ProductID, err)
		}
		subtotal := p.SellingPrice * line.Quantity
		items = append(items, core.TransactionItem{
			ID:            uuid.NewString(),
			TransactionID: txID,
			ProductID:     p.ID,
			ProductName:   p.Name,
			ProductPrice:  p.SellingPrice,
			Quantity:      line.Quantity,
			Subtotal:      subtotal,
		})
		total += subtotal
	}

	paid := in.CustomerPaid
	var change int64
	if in.PaymentMethod == core.SalePaymentCash {
		if paid < total {
			return core.Transaction{}, ErrInsufficientPayment
		}
		change = paid - total
	} else {
		// Card and QRIS charge the exact amount.
		paid = total
	}

	tx := core.Transaction{
		ID:            txID,
		Code:          core.NewTransactionCode(now),
		CashierID:     in.CashierID,
		CashierName:   in.CashierName,
		Total:         total,
		PaymentMethod: in.PaymentMethod,
		CustomerPaid:  paid,
		Change:        change,
		CreatedAt:     now,
		Items:         items,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("persist transaction: %w", err)
	}

	slog.InfoContext(ctx, "Checkout completed",
		"transaction_id", tx.ID,
		"receipt_code", tx.Code,
		"total", tx.Total,
		"payment_method", string(tx.PaymentMethod),
		"items", len(tx.Items))

	return tx, nil
}
