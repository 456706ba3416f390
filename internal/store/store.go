// Package store defines the repository ports the application is built
// against. Callers receive these capabilities explicitly; there is no
// package-level shared state.
package store

import (
	"context"
	"errors"
	"time"

	"kasirpos/internal/core"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("record already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]core.Product, error)
	GetProduct(ctx context.Context, id string) (core.Product, error)
	CreateProduct(ctx context.Context, p core.Product) error
	UpdateProduct(ctx context.Context, p core.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type TransactionStore interface {
	// CreateTransaction persists the transaction with its items and
	// decrements stock for every referenced product atomically. Fails
	// with ErrInsufficientStock when any product lacks stock.
	CreateTransaction(ctx context.Context, t core.Transaction) error
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	// ListTransactions returns transactions created in [from, to]
	// inclusive, with items, oldest first.
	ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error)
}

type SupplierStore interface {
	ListSuppliers(ctx context.Context) ([]core.Supplier, error)
	GetSupplier(ctx context.Context, id string) (core.Supplier, error)
	CreateSupplier(ctx context.Context, s core.Supplier) error
	UpdateSupplier(ctx context.Context, s core.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error
}

type PurchaseStore interface {
	// CreatePurchase persists the purchase with its items and
	// increments stock for every catalog-referenced item atomically.
	CreatePurchase(ctx context.Context, p core.Purchase) error
	GetPurchase(ctx context.Context, id string) (core.Purchase, error)
	// ListPurchases returns purchases with items and payments, newest
	// purchase date first.
	ListPurchases(ctx context.Context) ([]core.Purchase, error)
	UpdatePurchaseStatus(ctx context.Context, id string, status core.PaymentStatus) error
	// AddSupplierPayment records the payment and recomputes the parent
	// purchase's paid amount and derived status in the same write.
	AddSupplierPayment(ctx context.Context, p core.SupplierPayment) (core.Purchase, error)
	// DeleteSupplierPayment removes the payment and recomputes the
	// parent purchase the same way.
	DeleteSupplierPayment(ctx context.Context, purchaseID, paymentID string) (core.Purchase, error)
}

type ExpenseStore interface {
	// ListExpenses returns expenses whose date falls in [from, to]
	// inclusive, newest first. Zero times mean no bound.
	ListExpenses(ctx context.Context, from, to time.Time) ([]core.OperationalExpense, error)
	GetExpense(ctx context.Context, id string) (core.OperationalExpense, error)
	CreateExpense(ctx context.Context, e core.OperationalExpense) error
	UpdateExpense(ctx context.Context, e core.OperationalExpense) error
	DeleteExpense(ctx context.Context, id string) error
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]core.User, error)
	GetUser(ctx context.Context, id string) (core.User, error)
	// GetUserByName does a case-insensitive lookup.
	GetUserByName(ctx context.Context, name string) (core.User, error)
	CreateUser(ctx context.Context, u core.User) error
	UpdateUser(ctx context.Context, u core.User) error
	DeleteUser(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, passwordHash string) error
}

// Store is the full capability set a backend provides.
type Store interface {
	ProductStore
	TransactionStore
	SupplierStore
	PurchaseStore
	ExpenseStore
	UserStore

	// Snapshot reads every table for backup export.
	Snapshot(ctx context.Context) (Snapshot, error)
	// Restore bulk-upserts every record of the snapshot, preserving IDs.
	Restore(ctx context.Context, s Snapshot) error

	Close() error
}

// Snapshot is the versioned full-database backup document.
type Snapshot struct {
	Version    string                    `json:"version"`
	ExportedAt time.Time                 `json:"exported_at"`
	Summary    SnapshotSummary           `json:"summary"`
	Products   []core.Product            `json:"products"`
	Txns       []core.Transaction        `json:"transactions"`
	Suppliers  []core.Supplier           `json:"suppliers"`
	Purchases  []core.Purchase           `json:"purchases"`
	Expenses   []core.OperationalExpense `json:"operational_expenses"`
	Users      []core.User               `json:"users"`
}

type SnapshotSummary struct {
	Products         int `json:"products"`
	Transactions     int `json:"transactions"`
	TransactionItems int `json:"transaction_items"`
	Suppliers        int `json:"suppliers"`
	Purchases        int `json:"purchases"`
	PurchaseItems    int `json:"purchase_items"`
	SupplierPayments int `json:"supplier_payments"`
	Expenses         int `json:"expenses"`
	Users            int `json:"users"`
}

// SnapshotVersion is the current backup document version.
const SnapshotVersion = "1"

// Summarize fills the record counts from the snapshot's contents.
func (s *Snapshot) Summarize() {
	s.Summary = SnapshotSummary{
		Products:     len(s.Products),
		Transactions: len(s.Txns),
		Suppliers:    len(s.Suppliers),
		Purchases:    len(s.Purchases),
		Expenses:     len(s.Expenses),
		Users:        len(s.Users),
	}
	for _, t := range s.Txns {
		s.Summary.TransactionItems += len(t.Items)
	}
	for _, p := range s.Purchases {
		s.Summary.PurchaseItems += len(p.Items)
		s.Summary.SupplierPayments += len(p.Payments)
	}
}

// TotalRecords counts every record in the snapshot.
func (s SnapshotSummary) TotalRecords() int {
	return s.Products + s.Transactions + s.TransactionItems + s.Suppliers +
		s.Purchases + s.PurchaseItems + s.SupplierPayments + s.Expenses + s.Users
}
