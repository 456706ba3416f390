package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"kasirpos/internal/core"
)

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.store.ListSuppliers(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}

type supplierRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (s *Server) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	sup := core.Supplier{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sup.Validate(); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.store.CreateSupplier(r.Context(), sup); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sup)
}

func (s *Server) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sup, err := s.store.GetSupplier(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sup.Name = req.Name
	sup.Phone = req.Phone
	sup.Address = req.Address
	sup.UpdatedAt = time.Now().UTC()
	if err := sup.Validate(); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.store.UpdateSupplier(r.Context(), sup); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sup)
}

func (s *Server) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSupplier(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
