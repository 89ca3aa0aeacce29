package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

type restockRequest struct {
	Amount int `json:"amount"`
}

type scanResponse struct {
	Matched  int                  `json:"matched"`
	Products []*inventory.Product `json:"products"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.inventorySvc.ListProducts(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "list products")
		return
	}
	if products == nil {
		products = []*inventory.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p inventory.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	p.ID = ""

	created, err := s.inventorySvc.CreateProduct(r.Context(), &p)
	if err != nil {
		s.writeServiceError(w, err, "create product")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.inventorySvc.GetProduct(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err, "get product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p inventory.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	updated, err := s.inventorySvc.UpdateProduct(r.Context(), id, &p)
	if err != nil {
		s.writeServiceError(w, err, "update product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.inventorySvc.DeleteProduct(r.Context(), id); err != nil {
		s.writeServiceError(w, err, "delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRestock adds stock to a product. The restock notification is sent
// asynchronously by the event listener, so a mail failure does not fail the request.
func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	p, err := s.inventorySvc.Restock(r.Context(), id, req.Amount)
	if err != nil {
		s.writeServiceError(w, err, "restock product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleScanLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := s.inventorySvc.ScanLowStock(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "scan low stock")
		return
	}
	if products == nil {
		products = []*inventory.Product{}
	}
	writeJSON(w, http.StatusAccepted, scanResponse{Matched: len(products), Products: products})
}
