// Package memstore is the in-memory backend used for demo mode and
// tests. All maps are guarded by a single RWMutex; methods copy data in
// and out so callers never share slices with the store.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kasirpos/internal/core"
	"kasirpos/internal/store"
)

type Store struct {
	mu        sync.RWMutex
	products  map[string]core.Product
	txns      map[string]core.Transaction
	suppliers map[string]core.Supplier
	purchases map[string]core.Purchase
	expenses  map[string]core.OperationalExpense
	users     map[string]core.User
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		products:  map[string]core.Product{},
		txns:      map[string]core.Transaction{},
		suppliers: map[string]core.Supplier{},
		purchases: map[string]core.Purchase{},
		expenses:  map[string]core.OperationalExpense{},
		users:     map[string]core.User{},
	}
}

func (s *Store) Close() error { return nil }

// Products

func (s *Store) ListProducts(ctx context.Context) ([]core.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (core.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return core.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return store.ErrConflict
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Transactions

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txns[t.ID]; exists {
		return store.ErrConflict
	}

	// Check stock for every referenced product before mutating anything.
	for _, item := range t.Items {
		if item.ProductID == "" {
			continue
		}
		p, ok := s.products[item.ProductID]
		if !ok {
			return store.ErrNotFound
		}
		if p.Stock < item.Quantity {
			return store.ErrInsufficientStock
		}
	}
	for _, item := range t.Items {
		if item.ProductID == "" {
			continue
		}
		p := s.products[item.ProductID]
		p.Stock -= item.Quantity
		p.UpdatedAt = t.CreatedAt
		s.products[item.ProductID] = p
	}

	t.Items = copyItems(t.Items)
	s.txns[t.ID] = t
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	t.Items = copyItems(t.Items)
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		if inRange(t.CreatedAt, from, to) {
			t.Items = copyItems(t.Items)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Suppliers

func (s *Store) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetSupplier(ctx context.Context, id string) (core.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sup, ok := s.suppliers[id]
	if !ok {
		return core.Supplier{}, store.ErrNotFound
	}
	return sup, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup core.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.suppliers[sup.ID]; exists {
		return store.ErrConflict
	}
	s.suppliers[sup.ID] = sup
	return nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sup core.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[sup.ID]; !ok {
		return store.ErrNotFound
	}
	s.suppliers[sup.ID] = sup
	return nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.suppliers, id)
	return nil
}

// Purchases

func (s *Store) CreatePurchase(ctx context.Context, p core.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.purchases[p.ID]; exists {
		return store.ErrConflict
	}

	// Check every referenced product before mutating anything.
	for _, item := range p.Items {
		if item.ProductID == "" {
			continue
		}
		if _, ok := s.products[item.ProductID]; !ok {
			return store.ErrNotFound
		}
	}
	for _, item := range p.Items {
		if item.ProductID == "" {
			continue
		}
		prod := s.products[item.ProductID]
		prod.Stock += item.Quantity
		prod.UpdatedAt = p.CreatedAt
		s.products[item.ProductID] = prod
	}

	p.Items = copyPurchaseItems(p.Items)
	p.Payments = copyPayments(p.Payments)
	s.purchases[p.ID] = p
	return nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (core.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return core.Purchase{}, store.ErrNotFound
	}
	return clonePurchase(p), nil
}

func (s *Store) ListPurchases(ctx context.Context) ([]core.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		out = append(out, clonePurchase(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseDate.After(out[j].PurchaseDate) })
	return out, nil
}

func (s *Store) UpdatePurchaseStatus(ctx context.Context, id string, status core.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return store.ErrNotFound
	}
	p.PaymentStatus = status
	p.UpdatedAt = time.Now().UTC()
	s.purchases[id] = p
	return nil
}

func (s *Store) AddSupplierPayment(ctx context.Context, payment core.SupplierPayment) (core.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[payment.PurchaseID]
	if !ok {
		return core.Purchase{}, store.ErrNotFound
	}
	p.Payments = append(copyPayments(p.Payments), payment)
	recomputePaid(&p)
	s.purchases[p.ID] = p
	return clonePurchase(p), nil
}

func (s *Store) DeleteSupplierPayment(ctx context.Context, purchaseID, paymentID string) (core.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[purchaseID]
	if !ok {
		return core.Purchase{}, store.ErrNotFound
	}
	kept := make([]core.SupplierPayment, 0, len(p.Payments))
	found := false
	for _, pay := range p.Payments {
		if pay.ID == paymentID {
			found = true
			continue
		}
		kept = append(kept, pay)
	}
	if !found {
		return core.Purchase{}, store.ErrNotFound
	}
	p.Payments = kept
	recomputePaid(&p)
	s.purchases[p.ID] = p
	return clonePurchase(p), nil
}

func recomputePaid(p *core.Purchase) {
	var paid int64
	for _, pay := range p.Payments {
		paid += pay.Amount
	}
	p.PaidAmount = paid
	p.PaymentStatus = core.DerivePaymentStatus(paid, p.Total)
	p.UpdatedAt = time.Now().UTC()
}

// Expenses

func (s *Store) ListExpenses(ctx context.Context, from, to time.Time) ([]core.OperationalExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.OperationalExpense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if inRange(e.ExpenseDate, from, to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseDate.After(out[j].ExpenseDate) })
	return out, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (core.OperationalExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return core.OperationalExpense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.OperationalExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[e.ID]; exists {
		return store.ErrConflict
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) UpdateExpense(ctx context.Context, e core.OperationalExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[e.ID]; !ok {
		return store.ErrNotFound
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// Users

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByName(ctx context.Context, name string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return store.ErrConflict
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Name, u.Name) {
			return store.ErrConflict
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) SetPassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

// Backup

func (s *Store) Snapshot(ctx context.Context) (store.Snapshot, error) {
	snap := store.Snapshot{Version: store.SnapshotVersion, ExportedAt: time.Now().UTC()}

	var err error
	if snap.Products, err = s.ListProducts(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Txns, err = s.ListTransactions(ctx, time.Time{}, time.Time{}); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Suppliers, err = s.ListSuppliers(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Purchases, err = s.ListPurchases(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Expenses, err = s.ListExpenses(ctx, time.Time{}, time.Time{}); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Users, err = s.ListUsers(ctx); err != nil {
		return store.Snapshot{}, err
	}
	snap.Summarize()
	return snap, nil
}

func (s *Store) Restore(ctx context.Context, snap store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range snap.Products {
		s.products[p.ID] = p
	}
	for _, t := range snap.Txns {
		t.Items = copyItems(t.Items)
		s.txns[t.ID] = t
	}
	for _, sup := range snap.Suppliers {
		s.suppliers[sup.ID] = sup
	}
	for _, p := range snap.Purchases {
		s.purchases[p.ID] = clonePurchase(p)
	}
	for _, e := range snap.Expenses {
		s.expenses[e.ID] = e
	}
	for _, u := range snap.Users {
		// Backups never carry hashes; keep the password an existing
		// account already has.
		if u.PasswordHash == "" {
			if existing, ok := s.users[u.ID]; ok {
				u.PasswordHash = existing.PasswordHash
			}
		}
		s.users[u.ID] = u
	}
	return nil
}

// helpers

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

func copyItems(items []core.TransactionItem) []core.TransactionItem {
	out := make([]core.TransactionItem, len(items))
	copy(out, items)
	return out
}

func copyPurchaseItems(items []core.PurchaseItem) []core.PurchaseItem {
	out := make([]core.PurchaseItem, len(items))
	copy(out, items)
	return out
}

func copyPayments(payments []core.SupplierPayment) []core.SupplierPayment {
	out := make([]core.SupplierPayment, len(payments))
	copy(out, payments)
	return out
}

func clonePurchase(p core.Purchase) core.Purchase {
	p.Items = copyPurchaseItems(p.Items)
	p.Payments = copyPayments(p.Payments)
	return p
}
