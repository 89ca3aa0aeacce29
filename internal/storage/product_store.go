package storage

import (
	"context"
	"errors"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

// ErrNotFound is returned by mutating operations that target a missing row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("already exists")

// ProductStore defines the interface for persisting the product catalog.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]*inventory.Product, error)
	// GetProduct returns the product with the given ID, or nil if it does not exist.
	GetProduct(ctx context.Context, id string) (*inventory.Product, error)
	// CreateProduct inserts p, assigning an ID when p.ID is empty.
	CreateProduct(ctx context.Context, p *inventory.Product) error
	UpdateProduct(ctx context.Context, p *inventory.Product) error
	DeleteProduct(ctx context.Context, id string) error
	// AdjustStock adds delta to the stock of the product and returns the updated row.
	AdjustStock(ctx context.Context, id string, delta int) (*inventory.Product, error)
	// ListLowStock returns products whose stock is at or below their threshold.
	ListLowStock(ctx context.Context) ([]*inventory.Product, error)
}
