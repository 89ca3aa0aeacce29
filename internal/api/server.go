package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/stocknotify/internal/mail"
	"github.com/shaharia-lab/stocknotify/internal/service"
)

const errInvalidJSONBody = "invalid JSON body"

// Server holds all dependencies for the REST API handlers.
type Server struct {
	inventorySvc    service.InventoryService
	notificationSvc service.NotificationService
	logger          *slog.Logger
}

// New creates a new API Server backed by the provided services.
func New(inventorySvc service.InventoryService, notificationSvc service.NotificationService, logger *slog.Logger) *Server {
	return &Server{
		inventorySvc:    inventorySvc,
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	// Product catalog
	r.Get("/products", s.handleListProducts)
	r.Post("/products", s.handleCreateProduct)
	r.Post("/products/scan-low-stock", s.handleScanLowStock)
	r.Get("/products/{id}", s.handleGetProduct)
	r.Put("/products/{id}", s.handleUpdateProduct)
	r.Delete("/products/{id}", s.handleDeleteProduct)
	r.Post("/products/{id}/restock", s.handleRestock)

	// Notifications
	r.Post("/notifications/restock", s.handleSendRestock)
	r.Post("/notifications/low-stock", s.handleSendLowStock)
	r.Get("/notifications/log", s.handleListNotificationLog)

	r.Get("/version", s.handleVersion)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP status codes.
// Unclassified errors are logged and reported as "failed to <op>".
func (s *Server) writeServiceError(w http.ResponseWriter, err error, op string) {
	var (
		ve  *service.ValidationError
		nfe *service.NotFoundError
		ce  *service.ConflictError
		te  *mail.TransportError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nfe):
		writeError(w, http.StatusNotFound, nfe.Error())
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, ce.Error())
	case errors.As(err, &te):
		writeError(w, http.StatusBadGateway, te.Error())
	case errors.Is(err, service.ErrMailNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}
