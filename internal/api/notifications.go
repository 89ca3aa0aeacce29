package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

type sendRestockRequest struct {
	Product       inventory.Product `json:"product"`
	CurrentStock  int               `json:"current_stock"`
	RestockAmount int               `json:"restock_amount"`
}

type sendLowStockRequest struct {
	Product inventory.Product `json:"product"`
}

// handleSendRestock sends a restock confirmation synchronously and returns
// the Message-ID assigned to it.
func (s *Server) handleSendRestock(w http.ResponseWriter, r *http.Request) {
	var req sendRestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	receipt, err := s.notificationSvc.SendRestock(r.Context(), req.Product, req.CurrentStock, req.RestockAmount)
	if err != nil {
		s.writeServiceError(w, err, "send restock notification")
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleSendLowStock sends a low-stock order suggestion synchronously.
func (s *Server) handleSendLowStock(w http.ResponseWriter, r *http.Request) {
	var req sendLowStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}

	receipt, err := s.notificationSvc.SendLowStock(r.Context(), req.Product)
	if err != nil {
		s.writeServiceError(w, err, "send low stock notification")
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleListNotificationLog returns recent notification delivery log entries.
// Accepts an optional ?limit=N query parameter; otherwise the service default applies.
func (s *Server) handleListNotificationLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.notificationSvc.ListLog(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notification log")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
