package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"kasirpos/internal/core"
)

const productCacheKey = "catalog"

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	if products, ok := s.productCache.Get(productCacheKey); ok {
		respondJSON(w, http.StatusOK, products)
		return
	}

	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.productCache.Set(productCacheKey, products)
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type productRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        int64  `json:"price"`
	SellingPrice int64  `json:"selling_price"`
	Stock        int64  `json:"stock"`
	Image        string `json:"image,omitempty"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	p := core.Product{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Category:     req.Category,
		Price:        req.Price,
		SellingPrice: req.SellingPrice,
		Stock:        req.Stock,
		Image:        req.Image,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.store.CreateProduct(r.Context(), p); err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateReadCaches()
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	p.Name = req.Name
	p.Category = req.Category
	p.Price = req.Price
	p.SellingPrice = req.SellingPrice
	p.Stock = req.Stock
	p.Image = req.Image
	p.UpdatedAt = time.Now().UTC()
	if err := p.Validate(); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := s.store.UpdateProduct(r.Context(), p); err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateReadCaches()
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateReadCaches()
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
