// Package http exposes the JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kasirpos/internal/auth"
	"kasirpos/internal/cache"
	"kasirpos/internal/core"
	applog "kasirpos/internal/log"
	"kasirpos/internal/report"
	"kasirpos/internal/services"
	"kasirpos/internal/store"
)

// Deps carries everything the server needs. All fields are required
// except Reports' exporter, which may be absent inside the service.
type Deps struct {
	Store     store.Store
	Sessions  *auth.Manager
	Checkout  *services.CheckoutService
	Purchases *services.PurchaseService
	Users     *services.UserService
	Backups   *services.BackupService
	Reports   *services.ReportService

	RateLimitRPM int
}

type Server struct {
	http.Server

	store     store.Store
	sessions  *auth.Manager
	checkout  *services.CheckoutService
	purchases *services.PurchaseService
	users     *services.UserService
	backups   *services.BackupService
	reports   *services.ReportService

	rateLimiter *rateLimiter
	httpLog     *applog.StructuredLogger

	// Hot read paths only. Report endpoints are always computed fresh.
	productCache   *cache.LRUCache[[]core.Product]
	dashboardCache *cache.LRUCache[report.DashboardStats]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()
	logger := applog.New(applog.DefaultConfig())

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(logger)(mux),
		},
		store:          deps.Store,
		sessions:       deps.Sessions,
		checkout:       deps.Checkout,
		purchases:      deps.Purchases,
		users:          deps.Users,
		backups:        deps.Backups,
		reports:        deps.Reports,
		rateLimiter:    newRateLimiter(deps.RateLimitRPM),
		httpLog:        applog.NewStructuredLogger(logger),
		productCache:   cache.NewLRUCache[[]core.Product](1, 30*time.Second),
		dashboardCache: cache.NewLRUCache[report.DashboardStats](1, 30*time.Second),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.productCache)
	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("POST /api/login", s.public(s.handleLogin))
	mux.HandleFunc("POST /api/password-reset", s.public(s.handlePasswordReset))

	mux.HandleFunc("POST /api/logout", s.authed(s.handleLogout))
	mux.HandleFunc("GET /api/me", s.authed(s.handleMe))
	mux.HandleFunc("POST /api/me/password", s.authed(s.handleChangePassword))

	mux.HandleFunc("GET /api/products", s.authed(s.handleListProducts))
	mux.HandleFunc("GET /api/products/{id}", s.authed(s.handleGetProduct))
	mux.HandleFunc("POST /api/products", s.admin(s.handleCreateProduct))
	mux.HandleFunc("PUT /api/products/{id}", s.admin(s.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", s.admin(s.handleDeleteProduct))

	mux.HandleFunc("POST /api/transactions", s.authed(s.handleCheckout))
	mux.HandleFunc("GET /api/transactions", s.authed(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.authed(s.handleGetTransaction))

	mux.HandleFunc("GET /api/suppliers", s.authed(s.handleListSuppliers))
	mux.HandleFunc("POST /api/suppliers", s.admin(s.handleCreateSupplier))
	mux.HandleFunc("PUT /api/suppliers/{id}", s.admin(s.handleUpdateSupplier))
	mux.HandleFunc("DELETE /api/suppliers/{id}", s.admin(s.handleDeleteSupplier))

	mux.HandleFunc("GET /api/purchases", s.admin(s.handleListPurchases))
	mux.HandleFunc("GET /api/purchases/{id}", s.admin(s.handleGetPurchase))
	mux.HandleFunc("POST /api/purchases", s.admin(s.handleCreatePurchase))
	mux.HandleFunc("PATCH /api/purchases/{id}/status", s.admin(s.handleUpdatePurchaseStatus))
	mux.HandleFunc("POST /api/purchases/{id}/payments", s.admin(s.handleAddPayment))
	mux.HandleFunc("DELETE /api/purchases/{id}/payments/{paymentID}", s.admin(s.handleDeletePayment))

	mux.HandleFunc("GET /api/expenses", s.admin(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.admin(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.admin(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.admin(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/users", s.admin(s.handleListUsers))
	mux.HandleFunc("POST /api/users", s.admin(s.handleCreateUser))
	mux.HandleFunc("PUT /api/users/{id}", s.admin(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/users/{id}", s.admin(s.handleDeleteUser))

	mux.HandleFunc("GET /api/dashboard", s.authed(s.handleDashboard))
	mux.HandleFunc("GET /api/reports/profit", s.admin(s.handleProfitReport))
	mux.HandleFunc("POST /api/reports/profit/export", s.admin(s.handleProfitExport))
	mux.HandleFunc("GET /api/reports/sales", s.admin(s.handleSalesReport))
	mux.HandleFunc("GET /api/reports/supplier-payments", s.admin(s.handleSupplierPaymentReport))

	mux.HandleFunc("GET /api/data/summary", s.admin(s.handleDataSummary))
	mux.HandleFunc("GET /api/data/export", s.admin(s.handleDataExport))
	mux.HandleFunc("POST /api/data/import", s.admin(s.handleDataImport))

	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidateReadCaches drops cached catalog and dashboard data after
// any write that could affect them.
func (s *Server) invalidateReadCaches() {
	s.productCache.Purge()
	s.dashboardCache.Purge()
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
