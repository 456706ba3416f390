package core

import "errors"

// Closed enumerations for role, payment method and payment status.
// These were free-form strings in earlier iterations of the system;
// keeping them as typed constants makes every switch exhaustive.

type (
	Role                  string
	SalePaymentMethod     string
	PurchasePaymentMethod string
	PaymentStatus         string
)

const (
	RoleAdmin Role = "admin"
	RoleKasir Role = "kasir"
)

const (
	SalePaymentCash SalePaymentMethod = "cash"
	SalePaymentCard SalePaymentMethod = "card"
	SalePaymentQRIS SalePaymentMethod = "qris"
)

const (
	PurchasePaymentCash     PurchasePaymentMethod = "cash"
	PurchasePaymentTransfer PurchasePaymentMethod = "transfer"
	PurchasePaymentCard     PurchasePaymentMethod = "card"
)

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

var (
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleKasir:
		return nil
	default:
		return ErrInvalidRole
	}
}

func ParseSalePaymentMethod(s string) (SalePaymentMethod, error) {
	m := SalePaymentMethod(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m SalePaymentMethod) Validate() error {
	switch m {
	case SalePaymentCash, SalePaymentCard, SalePaymentQRIS:
		return nil
	default:
		return ErrInvalidPaymentMethod
	}
}

func ParsePurchasePaymentMethod(s string) (PurchasePaymentMethod, error) {
	m := PurchasePaymentMethod(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m PurchasePaymentMethod) Validate() error {
	switch m {
	case PurchasePaymentCash, PurchasePaymentTransfer, PurchasePaymentCard:
		return nil
	default:
		return ErrInvalidPaymentMethod
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return nil
	default:
		return ErrInvalidPaymentStatus
	}
}

// DerivePaymentStatus maps an amount already paid against the purchase
// total: nothing paid is pending, anything up to the total is partial,
// the full total is paid.
func DerivePaymentStatus(paid, total int64) PaymentStatus {
	switch {
	case paid <= 0:
		return PaymentPending
	case paid < total:
		return PaymentPartial
	default:
		return PaymentPaid
	}
}
