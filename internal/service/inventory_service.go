package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shaharia-lab/stocknotify/internal/eventbus"
	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/metrics"
	"github.com/shaharia-lab/stocknotify/internal/storage"
)

// InventoryService defines the business logic interface for the product catalog.
type InventoryService interface {
	ListProducts(ctx context.Context) ([]*inventory.Product, error)
	GetProduct(ctx context.Context, id string) (*inventory.Product, error)
	CreateProduct(ctx context.Context, p *inventory.Product) (*inventory.Product, error)
	UpdateProduct(ctx context.Context, id string, p *inventory.Product) (*inventory.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// ImportProducts creates every product in order. Products whose SKU already
	// exists are skipped and counted.
	ImportProducts(ctx context.Context, products []inventory.Product) (ImportResult, error)
	// Restock adds amount units to the product and publishes a restocked event.
	Restock(ctx context.Context, id string, amount int) (*inventory.Product, error)
	// ScanLowStock publishes a low-stock event for every product at or below
	// its threshold and returns those products. It waits for the publisher to
	// accept each event; if ctx ends first it returns the products published
	// so far with the error.
	ScanLowStock(ctx context.Context) ([]*inventory.Product, error)
}

// ImportResult summarizes an ImportProducts call.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type inventoryService struct {
	repo      storage.ProductStore
	publisher EventPublisher
	logger    *slog.Logger
}

// NewInventoryService returns a new InventoryService backed by the given
// ProductStore. Events are published through publisher.
func NewInventoryService(repo storage.ProductStore, publisher EventPublisher, logger *slog.Logger) InventoryService {
	return &inventoryService{repo: repo, publisher: publisher, logger: logger}
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]*inventory.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id string) (*inventory.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	if p == nil {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	return p, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, p *inventory.Product) (*inventory.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, &ConflictError{Resource: "product sku", ID: p.SKUOr("")}
		}
		return nil, fmt.Errorf("creating product: %w", err)
	}

	s.logger.Info("product created", "id", p.ID, "name", p.Name)
	return p, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id string, p *inventory.Product) (*inventory.Product, error) {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up product: %w", err)
	}
	if existing == nil {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}

	p.ID = id
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicate):
			return nil, &ConflictError{Resource: "product sku", ID: p.SKUOr("")}
		case errors.Is(err, storage.ErrNotFound):
			return nil, &NotFoundError{Resource: "product", ID: id}
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	s.logger.Info("product updated", "id", id, "name", p.Name)
	return p, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: id}
		}
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	s.logger.Info("product deleted", "id", id)
	return nil
}

func (s *inventoryService) ImportProducts(ctx context.Context, products []inventory.Product) (ImportResult, error) {
	var res ImportResult
	for i := range products {
		p := products[i]
		if _, err := s.CreateProduct(ctx, &p); err != nil {
			var ce *ConflictError
			if errors.As(err, &ce) {
				s.logger.Warn("product import skipped", "name", p.Name, "sku", p.SKUOr(""))
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("importing product %d (%q): %w", i+1, p.Name, err)
		}
		res.Created++
	}
	return res, nil
}

func (s *inventoryService) Restock(ctx context.Context, id string, amount int) (*inventory.Product, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}

	p, err := s.repo.AdjustStock(ctx, id, amount)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id}
		}
		return nil, fmt.Errorf("restocking product %q: %w", id, err)
	}

	previous := p.Stock - amount
	payload := p.Payload()
	payload[eventbus.KeyPreviousStock] = strconv.Itoa(previous)
	payload[eventbus.KeyRestockAmount] = strconv.Itoa(amount)
	s.publisher.Publish(eventbus.EventProductRestocked, payload)

	s.logger.Info("product restocked", "id", id, "name", p.Name, "previous_stock", previous, "amount", amount)
	return p, nil
}

func (s *inventoryService) ScanLowStock(ctx context.Context) ([]*inventory.Product, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		metrics.LowStockScans.WithLabelValues(metrics.StatusFailed).Inc()
		return nil, fmt.Errorf("scanning low stock: %w", err)
	}

	// Every match must reach the listener, so wait for buffer space rather
	// than dropping suggestions from large scans.
	for i, p := range products {
		if err := s.publisher.PublishWait(ctx, eventbus.EventProductLowStock, p.Payload()); err != nil {
			metrics.LowStockScans.WithLabelValues(metrics.StatusFailed).Inc()
			s.logger.Warn("low stock scan interrupted", "matched", len(products), "published", i, "error", err)
			return products[:i], fmt.Errorf("publishing low stock event for %q: %w", p.Name, err)
		}
	}

	metrics.LowStockScans.WithLabelValues(metrics.StatusOK).Inc()
	metrics.LowStockProducts.Set(float64(len(products)))
	s.logger.Info("low stock scan completed", "matched", len(products))
	return products, nil
}

func validateProduct(p *inventory.Product) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if p.Stock < 0 {
		return &ValidationError{Field: "stock", Message: "stock must not be negative"}
	}
	if p.LowStockThreshold < 0 {
		return &ValidationError{Field: "low_stock_threshold", Message: "threshold must not be negative"}
	}
	if p.CostPrice != nil && p.CostPrice.IsNegative() {
		return &ValidationError{Field: "cost_price", Message: "cost price must not be negative"}
	}
	if p.SKU != nil && *p.SKU == "" {
		p.SKU = nil
	}
	return nil
}
