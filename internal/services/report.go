package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kasirpos/internal/core"
	"kasirpos/internal/export"
	"kasirpos/internal/report"
	"kasirpos/internal/store"
)

// ReportService fetches the records a report needs and delegates the
// arithmetic to the report package. Results are computed fresh on every
// call; nothing here is cached.
type ReportService struct {
	store     store.Store
	cogsRatio float64
	exporter  export.ReportWriter
	now       func() time.Time
}

// NewReportService builds a report service. exporter may be nil, which
// disables sheet export.
func NewReportService(s store.Store, cogsRatio float64, exporter export.ReportWriter) *ReportService {
	return &ReportService{store: s, cogsRatio: cogsRatio, exporter: exporter, now: time.Now}
}

// Profit computes the period-bucketed profit report. A zero range means
// the default range for the granularity.
func (s *ReportService) Profit(ctx context.Context, rng report.Range, g report.Granularity) ([]report.PeriodBucket, report.Summary, error) {
	if g != report.Monthly && g != report.Yearly {
		return nil, report.Summary{}, fmt.Errorf("invalid granularity %q", g)
	}
	if rng.Start.IsZero() && rng.End.IsZero() {
		rng = report.DefaultRange(s.now(), g)
	}

	txs, err := s.store.ListTransactions(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, report.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, report.Summary{}, fmt.Errorf("list products: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, report.Summary{}, fmt.Errorf("list expenses: %w", err)
	}

	buckets, sum := report.Profit(report.ProfitInput{
		Range:             rng,
		Granularity:       g,
		Transactions:      txs,
		Products:          products,
		Expenses:          expenses,
		CogsFallbackRatio: s.cogsRatio,
	})

	slog.DebugContext(ctx, "Profit report computed",
		"granularity", string(g),
		"period_start", rng.Start,
		"period_end", rng.End,
		"buckets", len(buckets))

	return buckets, sum, nil
}

// ExportProfit writes the profit report for the range to the configured
// sheet.
func (s *ReportService) ExportProfit(ctx context.Context, rng report.Range, g report.Granularity) error {
	if s.exporter == nil {
		return fmt.Errorf("sheet export is not configured")
	}

	buckets, sum, err := s.Profit(ctx, rng, g)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Profit report (%s) generated %s", g, s.now().UTC().Format("2006-01-02 15:04"))
	if err := s.exporter.WriteProfitReport(ctx, title, buckets, sum); err != nil {
		return fmt.Errorf("write profit report: %w", err)
	}

	slog.InfoContext(ctx, "Profit report exported", "granularity", string(g), "buckets", len(buckets))
	return nil
}

// Sales summarizes sold quantity and revenue per product over the
// range. Zero bounds mean all time.
func (s *ReportService) Sales(ctx context.Context, from, to time.Time) (report.SalesSummary, error) {
	txs, err := s.store.ListTransactions(ctx, from, to)
	if err != nil {
		return report.SalesSummary{}, fmt.Errorf("list transactions: %w", err)
	}
	return report.Sales(txs), nil
}

// SupplierPayments reports outstanding supplier debt per purchase.
func (s *ReportService) SupplierPayments(ctx context.Context) (report.SupplierPaymentSummary, error) {
	purchases, err := s.store.ListPurchases(ctx)
	if err != nil {
		return report.SupplierPaymentSummary{}, fmt.Errorf("list purchases: %w", err)
	}
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return report.SupplierPaymentSummary{}, fmt.Errorf("list suppliers: %w", err)
	}
	return report.SupplierPayments(purchases, suppliers), nil
}

// Dashboard assembles today's totals, recent sales and the week's top
// products.
func (s *ReportService) Dashboard(ctx context.Context) (report.DashboardStats, error) {
	now := s.now().UTC()
	dayStart := core.DateOnly(now)

	today, err := s.store.ListTransactions(ctx, dayStart, now)
	if err != nil {
		return report.DashboardStats{}, fmt.Errorf("list today's transactions: %w", err)
	}
	window, err := s.store.ListTransactions(ctx, now.AddDate(0, 0, -7), now)
	if err != nil {
		return report.DashboardStats{}, fmt.Errorf("list window transactions: %w", err)
	}

	return report.Dashboard(now, today, window), nil
}
