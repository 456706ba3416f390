package core

import (
	"errors"
	"strings"
	"time"
)

// All monetary amounts are whole-unit rupiah stored as int64.
// The domain has no minor currency units.

type (
	Product struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Category     string    `json:"category"`
		Price        int64     `json:"price"` // cost price (harga beli)
		SellingPrice int64     `json:"selling_price"`
		Stock        int64     `json:"stock"`
		Image        string    `json:"image,omitempty"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	TransactionItem struct {
		ID            string `json:"id"`
		TransactionID string `json:"transaction_id"`
		ProductID     string `json:"product_id,omitempty"` // empty when the product has been deleted
		ProductName   string `json:"product_name"`
		ProductPrice  int64  `json:"product_price"` // selling price at the time of sale
		Quantity      int64  `json:"quantity"`
		Subtotal      int64  `json:"subtotal"`
	}

	Transaction struct {
		ID            string            `json:"id"`
		Code          string            `json:"code"` // receipt code, e.g. TRX-20240410-0042
		CashierID     string            `json:"cashier_id,omitempty"`
		CashierName   string            `json:"cashier_name,omitempty"`
		Total         int64             `json:"total"`
		PaymentMethod SalePaymentMethod `json:"payment_method"`
		CustomerPaid  int64             `json:"customer_paid"`
		Change        int64             `json:"change"`
		CreatedAt     time.Time         `json:"created_at"`
		Items         []TransactionItem `json:"items"`
	}

	Supplier struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Phone     string    `json:"phone,omitempty"`
		Address   string    `json:"address,omitempty"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	PurchaseItem struct {
		ID          string `json:"id"`
		PurchaseID  string `json:"purchase_id"`
		ProductID   string `json:"product_id,omitempty"` // empty for ad-hoc items not in the catalog
		ProductName string `json:"product_name"`
		Quantity    int64  `json:"quantity"`
		UnitPrice   int64  `json:"unit_price"`
		Subtotal    int64  `json:"subtotal"`
	}

	SupplierPayment struct {
		ID            string                `json:"id"`
		PurchaseID    string                `json:"purchase_id"`
		Amount        int64                 `json:"amount"`
		PaymentDate   time.Time             `json:"payment_date"`
		PaymentMethod PurchasePaymentMethod `json:"payment_method"`
		Notes         string                `json:"notes,omitempty"`
		CreatedBy     string                `json:"created_by,omitempty"`
		CreatedAt     time.Time             `json:"created_at"`
	}

	Purchase struct {
		ID            string            `json:"id"`
		Code          string            `json:"code"` // e.g. PO-20240410-0042
		SupplierID    string            `json:"supplier_id,omitempty"`
		Total         int64             `json:"total"`
		PaidAmount    int64             `json:"paid_amount"`
		PaymentStatus PaymentStatus     `json:"payment_status"`
		Notes         string            `json:"notes,omitempty"`
		PurchaseDate  time.Time         `json:"purchase_date"`
		CreatedBy     string            `json:"created_by,omitempty"`
		Items         []PurchaseItem    `json:"items"`
		Payments      []SupplierPayment `json:"payments"`
		CreatedAt     time.Time         `json:"created_at"`
		UpdatedAt     time.Time         `json:"updated_at"`
	}

	OperationalExpense struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      int64     `json:"amount"`
		Category    string    `json:"category"`
		ExpenseDate time.Time `json:"expense_date"` // calendar date, time-of-day is always midnight UTC
		CreatedBy   string    `json:"created_by,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		Role         Role      `json:"role"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrNegativeStock    = errors.New("negative stock")
	ErrEmptyItems       = errors.New("no line items")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrZeroDate         = errors.New("date cannot be zero")
)

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Price < 0 || p.SellingPrice < 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

func (i TransactionItem) Validate() error {
	if strings.TrimSpace(i.ProductName) == "" {
		return ErrEmptyName
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.ProductPrice < 0 {
		return ErrInvalidPrice
	}
	if i.Subtotal != i.ProductPrice*i.Quantity {
		return errors.New("subtotal does not match price and quantity")
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.PaymentMethod.Validate(); err != nil {
		return err
	}
	if len(t.Items) == 0 {
		return ErrEmptyItems
	}
	var sum int64
	for _, item := range t.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		sum += item.Subtotal
	}
	if t.Total != sum {
		return errors.New("total does not match item subtotals")
	}
	if t.CreatedAt.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (i PurchaseItem) Validate() error {
	if strings.TrimSpace(i.ProductName) == "" {
		return ErrEmptyName
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.UnitPrice < 0 {
		return ErrInvalidPrice
	}
	if i.Subtotal != i.UnitPrice*i.Quantity {
		return errors.New("subtotal does not match unit price and quantity")
	}
	return nil
}

func (p SupplierPayment) Validate() error {
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := p.PaymentMethod.Validate(); err != nil {
		return err
	}
	if p.PaymentDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (p Purchase) Validate() error {
	if len(p.Items) == 0 {
		return ErrEmptyItems
	}
	var sum int64
	for _, item := range p.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		sum += item.Subtotal
	}
	if p.Total != sum {
		return errors.New("total does not match item subtotals")
	}
	if p.PaidAmount < 0 || p.PaidAmount > p.Total {
		return ErrInvalidAmount
	}
	if err := p.PaymentStatus.Validate(); err != nil {
		return err
	}
	if p.PurchaseDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (e OperationalExpense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.ExpenseDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	return u.Role.Validate()
}

// DateOnly truncates t to midnight UTC. Expense dates carry no
// time-of-day component.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
