package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kasirpos/internal/core"
	"kasirpos/internal/store"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width RFC3339 UTC strings so that
// lexicographic comparison in SQL matches chronological order.
// Expense dates carry no time of day and are stored as yyyy-mm-dd.
const (
	timeLayout = "2006-01-02T15:04:05Z"
	dateLayout = "2006-01-02"
)

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }
func fmtDate(t time.Time) string { return t.UTC().Format(dateLayout) }
func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- products ---

const productColumns = "id, name, category, price, selling_price, stock, image, created_at, updated_at"

func scanProduct(row interface{ Scan(...any) error }) (core.Product, error) {
	var p core.Product
	var created, updated string
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.SellingPrice, &p.Stock, &p.Image, &created, &updated)
	if err != nil {
		return core.Product{}, err
	}
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []core.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetProduct(ctx context.Context, id string) (core.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Product{}, store.ErrNotFound
	}
	if err != nil {
		return core.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreateProduct(ctx context.Context, p core.Product) error {
	if err := r.ensureAbsent(ctx, "products", p.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Category, p.Price, p.SellingPrice, p.Stock, p.Image, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateProduct(ctx context.Context, p core.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = ?, category = ?, price = ?, selling_price = ?, stock = ?, image = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Category, p.Price, p.SellingPrice, p.Stock, p.Image, fmtTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireAffected(res)
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, item := range t.Items {
		if item.ProductID == "" {
			continue
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?",
			item.Quantity, fmtTime(t.CreatedAt), item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)", item.ProductID).Scan(&exists); err != nil {
				return fmt.Errorf("check product: %w", err)
			}
			if !exists {
				return fmt.Errorf("product %s: %w", item.ProductID, store.ErrNotFound)
			}
			return fmt.Errorf("product %s: %w", item.ProductID, store.ErrInsufficientStock)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, code, cashier_id, cashier_name, total, payment_method, customer_paid, change_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Code, t.CashierID, t.CashierName, t.Total, string(t.PaymentMethod), t.CustomerPaid, t.Change, fmtTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for _, item := range t.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transaction_items (id, transaction_id, product_id, product_name, product_price, quantity, subtotal)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, t.ID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity, item.Subtotal)
		if err != nil {
			return fmt.Errorf("insert transaction item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := r.scanTransactionRow(r.db.QueryRowContext(ctx,
		"SELECT id, code, cashier_id, cashier_name, total, payment_method, customer_paid, change_amount, created_at FROM transactions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.Items, err = r.transactionItems(ctx, t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to time.Time) ([]core.Transaction, error) {
	q := "SELECT id, code, cashier_id, cashier_name, total, payment_method, customer_paid, change_amount, created_at FROM transactions"
	var args []any
	var conds []string
	if !from.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, fmtTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, fmtTime(to))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := r.scanTransactionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Items, err = r.transactionItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteRepository) scanTransactionRow(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var method, created string
	err := row.Scan(&t.ID, &t.Code, &t.CashierID, &t.CashierName, &t.Total, &method, &t.CustomerPaid, &t.Change, &created)
	if err != nil {
		return core.Transaction{}, err
	}
	t.PaymentMethod = core.SalePaymentMethod(method)
	t.CreatedAt = parseTime(created)
	return t, nil
}

func (r *SQLiteRepository) transactionItems(ctx context.Context, txID string) ([]core.TransactionItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, transaction_id, product_id, product_name, product_price, quantity, subtotal FROM transaction_items WHERE transaction_id = ? ORDER BY id", txID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()

	var out []core.TransactionItem
	for rows.Next() {
		var it core.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// --- suppliers ---

func (r *SQLiteRepository) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, phone, address, created_at, updated_at FROM suppliers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []core.Supplier
	for rows.Next() {
		var s core.Supplier
		var created, updated string
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		s.CreatedAt = parseTime(created)
		s.UpdatedAt = parseTime(updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetSupplier(ctx context.Context, id string) (core.Supplier, error) {
	var s core.Supplier
	var created, updated string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, phone, address, created_at, updated_at FROM suppliers WHERE id = ?", id).
		Scan(&s.ID, &s.Name, &s.Phone, &s.Address, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Supplier{}, store.ErrNotFound
	}
	if err != nil {
		return core.Supplier{}, fmt.Errorf("get supplier: %w", err)
	}
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)
	return s, nil
}

func (r *SQLiteRepository) CreateSupplier(ctx context.Context, s core.Supplier) error {
	if err := r.ensureAbsent(ctx, "suppliers", s.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO suppliers (id, name, phone, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		s.ID, s.Name, s.Phone, s.Address, fmtTime(s.CreatedAt), fmtTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateSupplier(ctx context.Context, s core.Supplier) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE suppliers SET name = ?, phone = ?, address = ?, updated_at = ? WHERE id = ?",
		s.Name, s.Phone, s.Address, fmtTime(s.UpdatedAt), s.ID)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteSupplier(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM suppliers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return requireAffected(res)
}

// --- purchases ---

func (r *SQLiteRepository) CreatePurchase(ctx context.Context, p core.Purchase) error {
	if err := r.ensureAbsent(ctx, "purchases", p.ID); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchases (id, code, supplier_id, total, paid_amount, payment_status, notes, purchase_date, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.SupplierID, p.Total, p.PaidAmount, string(p.PaymentStatus), p.Notes,
		fmtTime(p.PurchaseDate), p.CreatedBy, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	for _, item := range p.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO purchase_items (id, purchase_id, product_id, product_name, quantity, unit_price, subtotal)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, p.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
		if item.ProductID == "" {
			continue
		}
		// Received goods raise stock for catalog products.
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?",
			item.Quantity, fmtTime(p.CreatedAt), item.ProductID)
		if err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("product %s: %w", item.ProductID, store.ErrNotFound)
		}
	}

	for _, pay := range p.Payments {
		if err := insertPayment(ctx, tx, pay); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, id string) (core.Purchase, error) {
	p, err := r.scanPurchaseRow(r.db.QueryRowContext(ctx, purchaseSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Purchase{}, store.ErrNotFound
	}
	if err != nil {
		return core.Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	if err := r.loadPurchaseChildren(ctx, &p); err != nil {
		return core.Purchase{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) ListPurchases(ctx context.Context) ([]core.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, purchaseSelect+" ORDER BY purchase_date DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []core.Purchase
	for rows.Next() {
		p, err := r.scanPurchaseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadPurchaseChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteRepository) UpdatePurchaseStatus(ctx context.Context, id string, status core.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE purchases SET payment_status = ?, updated_at = ? WHERE id = ?",
		string(status), fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) AddSupplierPayment(ctx context.Context, p core.SupplierPayment) (core.Purchase, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM purchases WHERE id = ?)", p.PurchaseID).Scan(&exists); err != nil {
		return core.Purchase{}, fmt.Errorf("check purchase: %w", err)
	}
	if !exists {
		return core.Purchase{}, store.ErrNotFound
	}

	if err := insertPayment(ctx, tx, p); err != nil {
		return core.Purchase{}, err
	}
	if err := recomputePaid(ctx, tx, p.PurchaseID); err != nil {
		return core.Purchase{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Purchase{}, err
	}
	return r.GetPurchase(ctx, p.PurchaseID)
}

func (r *SQLiteRepository) DeleteSupplierPayment(ctx context.Context, purchaseID, paymentID string) (core.Purchase, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM supplier_payments WHERE id = ? AND purchase_id = ?", paymentID, purchaseID)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("delete payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Purchase{}, err
	}
	if n == 0 {
		return core.Purchase{}, store.ErrNotFound
	}

	if err := recomputePaid(ctx, tx, purchaseID); err != nil {
		return core.Purchase{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Purchase{}, err
	}
	return r.GetPurchase(ctx, purchaseID)
}

const purchaseSelect = "SELECT id, code, supplier_id, total, paid_amount, payment_status, notes, purchase_date, created_by, created_at, updated_at FROM purchases"

func (r *SQLiteRepository) scanPurchaseRow(row interface{ Scan(...any) error }) (core.Purchase, error) {
	var p core.Purchase
	var status, purchased, created, updated string
	err := row.Scan(&p.ID, &p.Code, &p.SupplierID, &p.Total, &p.PaidAmount, &status, &p.Notes, &purchased, &p.CreatedBy, &created, &updated)
	if err != nil {
		return core.Purchase{}, err
	}
	p.PaymentStatus = core.PaymentStatus(status)
	p.PurchaseDate = parseTime(purchased)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

func (r *SQLiteRepository) loadPurchaseChildren(ctx context.Context, p *core.Purchase) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, purchase_id, product_id, product_name, quantity, unit_price, subtotal FROM purchase_items WHERE purchase_id = ? ORDER BY id", p.ID)
	if err != nil {
		return fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it core.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan purchase item: %w", err)
		}
		p.Items = append(p.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	payRows, err := r.db.QueryContext(ctx,
		"SELECT id, purchase_id, amount, payment_date, payment_method, notes, created_by, created_at FROM supplier_payments WHERE purchase_id = ? ORDER BY payment_date, id", p.ID)
	if err != nil {
		return fmt.Errorf("list supplier payments: %w", err)
	}
	defer payRows.Close()
	for payRows.Next() {
		var pay core.SupplierPayment
		var method, payDate, created string
		if err := payRows.Scan(&pay.ID, &pay.PurchaseID, &pay.Amount, &payDate, &method, &pay.Notes, &pay.CreatedBy, &created); err != nil {
			return fmt.Errorf("scan supplier payment: %w", err)
		}
		pay.PaymentMethod = core.PurchasePaymentMethod(method)
		pay.PaymentDate = parseTime(payDate)
		pay.CreatedAt = parseTime(created)
		p.Payments = append(p.Payments, pay)
	}
	return payRows.Err()
}

func insertPayment(ctx context.Context, tx *sql.Tx, p core.SupplierPayment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO supplier_payments (id, purchase_id, amount, payment_date, payment_method, notes, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PurchaseID, p.Amount, fmtTime(p.PaymentDate), string(p.PaymentMethod), p.Notes, p.CreatedBy, fmtTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert supplier payment: %w", err)
	}
	return nil
}

// recomputePaid re-derives paid_amount and payment_status from the
// surviving payments of the purchase.
func recomputePaid(ctx context.Context, tx *sql.Tx, purchaseID string) error {
	var paid, total int64
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE((SELECT SUM(amount) FROM supplier_payments WHERE purchase_id = ?), 0), total FROM purchases WHERE id = ?",
		purchaseID, purchaseID).Scan(&paid, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sum payments: %w", err)
	}

	status := core.DerivePaymentStatus(paid, total)
	_, err = tx.ExecContext(ctx,
		"UPDATE purchases SET paid_amount = ?, payment_status = ?, updated_at = ? WHERE id = ?",
		paid, string(status), fmtTime(time.Now()), purchaseID)
	if err != nil {
		return fmt.Errorf("update paid amount: %w", err)
	}
	return nil
}

// --- operational expenses ---

func (r *SQLiteRepository) ListExpenses(ctx context.Context, from, to time.Time) ([]core.OperationalExpense, error) {
	q := "SELECT id, description, amount, category, expense_date, created_by, created_at, updated_at FROM operational_expenses"
	var args []any
	var conds []string
	if !from.IsZero() {
		conds = append(conds, "expense_date >= ?")
		args = append(args, fmtDate(from))
	}
	if !to.IsZero() {
		conds = append(conds, "expense_date <= ?")
		args = append(args, fmtDate(to))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY expense_date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.OperationalExpense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.OperationalExpense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		"SELECT id, description, amount, category, expense_date, created_by, created_at, updated_at FROM operational_expenses WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.OperationalExpense{}, store.ErrNotFound
	}
	if err != nil {
		return core.OperationalExpense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func scanExpense(row interface{ Scan(...any) error }) (core.OperationalExpense, error) {
	var e core.OperationalExpense
	var date, created, updated string
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &date, &e.CreatedBy, &created, &updated)
	if err != nil {
		return core.OperationalExpense{}, err
	}
	e.ExpenseDate = parseDate(date)
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.OperationalExpense) error {
	if err := r.ensureAbsent(ctx, "operational_expenses", e.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operational_expenses (id, description, amount, category, expense_date, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount, e.Category, fmtDate(e.ExpenseDate), e.CreatedBy, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.OperationalExpense) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE operational_expenses SET description = ?, amount = ?, category = ?, expense_date = ?, updated_at = ? WHERE id = ?",
		e.Description, e.Amount, e.Category, fmtDate(e.ExpenseDate), fmtTime(e.UpdatedAt), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM operational_expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res)
}

// --- users ---

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, email, role, password_hash, created_at, updated_at FROM users ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var u core.User
	var role, created, updated string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &created, &updated)
	if err != nil {
		return core.User{}, err
	}
	u.Role = core.Role(role)
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, name, email, role, password_hash, created_at, updated_at FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByName(ctx context.Context, name string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, name, email, role, password_hash, created_at, updated_at FROM users WHERE name = ? COLLATE NOCASE", name))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by name: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = ? OR name = ? COLLATE NOCASE)", u.ID, u.Name).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if taken {
		return store.ErrConflict
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, role, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash, fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, role = ?, updated_at = ? WHERE id = ?",
		u.Name, u.Email, string(u.Role), fmtTime(u.UpdatedAt), u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return requireAffected(res)
}

// --- backup ---

func (r *SQLiteRepository) Snapshot(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot
	var err error

	snap.Version = store.SnapshotVersion
	snap.ExportedAt = time.Now().UTC()

	if snap.Products, err = r.ListProducts(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Txns, err = r.ListTransactions(ctx, time.Time{}, time.Time{}); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Suppliers, err = r.ListSuppliers(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Purchases, err = r.ListPurchases(ctx); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Expenses, err = r.ListExpenses(ctx, time.Time{}, time.Time{}); err != nil {
		return store.Snapshot{}, err
	}
	if snap.Users, err = r.ListUsers(ctx); err != nil {
		return store.Snapshot{}, err
	}

	snap.Summarize()
	return snap, nil
}

func (r *SQLiteRepository) Restore(ctx context.Context, snap store.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, p := range snap.Products {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, category = excluded.category,
			 price = excluded.price, selling_price = excluded.selling_price, stock = excluded.stock,
			 image = excluded.image, updated_at = excluded.updated_at`,
			p.ID, p.Name, p.Category, p.Price, p.SellingPrice, p.Stock, p.Image, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("restore product %s: %w", p.ID, err)
		}
	}

	for _, t := range snap.Txns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, code, cashier_id, cashier_name, total, payment_method, customer_paid, change_amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET code = excluded.code, cashier_id = excluded.cashier_id,
			 cashier_name = excluded.cashier_name, total = excluded.total, payment_method = excluded.payment_method,
			 customer_paid = excluded.customer_paid, change_amount = excluded.change_amount, created_at = excluded.created_at`,
			t.ID, t.Code, t.CashierID, t.CashierName, t.Total, string(t.PaymentMethod), t.CustomerPaid, t.Change, fmtTime(t.CreatedAt))
		if err != nil {
			return fmt.Errorf("restore transaction %s: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM transaction_items WHERE transaction_id = ?", t.ID); err != nil {
			return fmt.Errorf("clear transaction items %s: %w", t.ID, err)
		}
		for _, it := range t.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO transaction_items (id, transaction_id, product_id, product_name, product_price, quantity, subtotal)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				it.ID, t.ID, it.ProductID, it.ProductName, it.ProductPrice, it.Quantity, it.Subtotal)
			if err != nil {
				return fmt.Errorf("restore transaction item %s: %w", it.ID, err)
			}
		}
	}

	for _, s := range snap.Suppliers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO suppliers (id, name, phone, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, phone = excluded.phone,
			 address = excluded.address, updated_at = excluded.updated_at`,
			s.ID, s.Name, s.Phone, s.Address, fmtTime(s.CreatedAt), fmtTime(s.UpdatedAt))
		if err != nil {
			return fmt.Errorf("restore supplier %s: %w", s.ID, err)
		}
	}

	for _, p := range snap.Purchases {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO purchases (id, code, supplier_id, total, paid_amount, payment_status, notes, purchase_date, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET code = excluded.code, supplier_id = excluded.supplier_id,
			 total = excluded.total, paid_amount = excluded.paid_amount, payment_status = excluded.payment_status,
			 notes = excluded.notes, purchase_date = excluded.purchase_date, updated_at = excluded.updated_at`,
			p.ID, p.Code, p.SupplierID, p.Total, p.PaidAmount, string(p.PaymentStatus), p.Notes,
			fmtTime(p.PurchaseDate), p.CreatedBy, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("restore purchase %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM purchase_items WHERE purchase_id = ?", p.ID); err != nil {
			return fmt.Errorf("clear purchase items %s: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM supplier_payments WHERE purchase_id = ?", p.ID); err != nil {
			return fmt.Errorf("clear supplier payments %s: %w", p.ID, err)
		}
		for _, it := range p.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO purchase_items (id, purchase_id, product_id, product_name, quantity, unit_price, subtotal)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				it.ID, p.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Subtotal)
			if err != nil {
				return fmt.Errorf("restore purchase item %s: %w", it.ID, err)
			}
		}
		for _, pay := range p.Payments {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO supplier_payments (id, purchase_id, amount, payment_date, payment_method, notes, created_by, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				pay.ID, p.ID, pay.Amount, fmtTime(pay.PaymentDate), string(pay.PaymentMethod), pay.Notes, pay.CreatedBy, fmtTime(pay.CreatedAt))
			if err != nil {
				return fmt.Errorf("restore supplier payment %s: %w", pay.ID, err)
			}
		}
	}

	for _, e := range snap.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO operational_expenses (id, description, amount, category, expense_date, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET description = excluded.description, amount = excluded.amount,
			 category = excluded.category, expense_date = excluded.expense_date, updated_at = excluded.updated_at`,
			e.ID, e.Description, e.Amount, e.Category, fmtDate(e.ExpenseDate), e.CreatedBy, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt))
		if err != nil {
			return fmt.Errorf("restore expense %s: %w", e.ID, err)
		}
	}

	for _, u := range snap.Users {
		// Backups never carry password hashes; keep the existing hash on
		// conflict so restored users keep their credentials.
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, role, password_hash, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email,
			 role = excluded.role, updated_at = excluded.updated_at,
			 password_hash = CASE WHEN excluded.password_hash = '' THEN users.password_hash ELSE excluded.password_hash END`,
			u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash, fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
		if err != nil {
			return fmt.Errorf("restore user %s: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

// --- helpers ---

func (r *SQLiteRepository) ensureAbsent(ctx context.Context, table, id string) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if exists {
		return store.ErrConflict
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
