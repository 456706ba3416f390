package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"kasirpos/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRangeQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.store.ListExpenses(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

type expenseRequest struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	ExpenseDate string `json:"expense_date"` // YYYY-MM-DD
}

func (req expenseRequest) date() (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, req.ExpenseDate, time.UTC)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := req.date()
	if err != nil {
		respondError(w, http.StatusBadRequest, "expense_date must be YYYY-MM-DD")
		return
	}

	now := time.Now().UTC()
	e := core.OperationalExpense{
		ID:          uuid.NewString(),
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		ExpenseDate: date,
		CreatedBy:   sessionFrom(r.Context()).UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.store.CreateExpense(r.Context(), e); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := req.date()
	if err != nil {
		respondError(w, http.StatusBadRequest, "expense_date must be YYYY-MM-DD")
		return
	}

	e, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	e.Description = req.Description
	e.Amount = req.Amount
	e.Category = req.Category
	e.ExpenseDate = date
	e.UpdatedAt = time.Now().UTC()
	if err := e.Validate(); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.store.UpdateExpense(r.Context(), e); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
