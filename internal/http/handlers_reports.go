package http

import (
	"net/http"

	"kasirpos/internal/report"
)

const dashboardCacheKey = "stats"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if stats, ok := s.dashboardCache.Get(dashboardCacheKey); ok {
		respondJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := s.reports.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.dashboardCache.Set(dashboardCacheKey, stats)
	respondJSON(w, http.StatusOK, stats)
}

func profitParams(r *http.Request) (report.Range, report.Granularity, error) {
	g := report.Granularity(r.URL.Query().Get("granularity"))
	if g == "" {
		g = report.Monthly
	}
	from, to, err := parseRangeQuery(r)
	if err != nil {
		return report.Range{}, "", err
	}
	return report.Range{Start: from, End: to}, g, nil
}

type profitResponse struct {
	Granularity report.Granularity    `json:"granularity"`
	Buckets     []report.PeriodBucket `json:"buckets"`
	Summary     report.Summary        `json:"summary"`
}

func (s *Server) handleProfitReport(w http.ResponseWriter, r *http.Request) {
	rng, g, err := profitParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	buckets, sum, err := s.reports.Profit(r.Context(), rng, g)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, profitResponse{Granularity: g, Buckets: buckets, Summary: sum})
}

func (s *Server) handleProfitExport(w http.ResponseWriter, r *http.Request) {
	rng, g, err := profitParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.reports.ExportProfit(r.Context(), rng, g); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "exported"})
}

func (s *Server) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRangeQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sales, err := s.reports.Sales(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (s *Server) handleSupplierPaymentReport(w http.ResponseWriter, r *http.Request) {
	sum, err := s.reports.SupplierPayments(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}
