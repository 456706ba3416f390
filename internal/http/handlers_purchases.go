package http

import (
	"net/http"

	"kasirpos/internal/core"
	"kasirpos/internal/services"
)

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := s.store.ListPurchases(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, purchases)
}

func (s *Server) handleGetPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPurchase(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var in services.PurchaseInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.CreatedBy = sessionFrom(r.Context()).UserID

	p, err := s.purchases.CreatePurchase(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateReadCaches()
	respondJSON(w, http.StatusCreated, p)
}

type purchaseStatusRequest struct {
	PaymentStatus core.PaymentStatus `json:"payment_status"`
}

func (s *Server) handleUpdatePurchaseStatus(w http.ResponseWriter, r *http.Request) {
	var req purchaseStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	if err := s.purchases.UpdateStatus(r.Context(), id, req.PaymentStatus); err != nil {
		respondServiceError(w, err)
		return
	}

	p, err := s.store.GetPurchase(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var in services.PaymentInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.CreatedBy = sessionFrom(r.Context()).UserID

	p, err := s.purchases.RecordPayment(r.Context(), r.PathValue("id"), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.purchases.DeletePayment(r.Context(), r.PathValue("id"), r.PathValue("paymentID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
