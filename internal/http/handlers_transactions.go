package http

import (
	"net/http"

	"kasirpos/internal/services"
)

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var in services.CheckoutInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The cashier is always the authenticated user.
	session := sessionFrom(r.Context())
	in.CashierID = session.UserID
	in.CashierName = session.UserName

	tx, err := s.checkout.Checkout(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateReadCaches()
	respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRangeQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}
