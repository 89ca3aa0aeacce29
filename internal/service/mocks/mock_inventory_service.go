package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/service"
)

// MockInventoryService is a mock implementation of service.InventoryService.
type MockInventoryService struct {
	mock.Mock
}

//nolint:revive
func (m *MockInventoryService) ListProducts(ctx context.Context) ([]*inventory.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockInventoryService) GetProduct(ctx context.Context, id string) (*inventory.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockInventoryService) CreateProduct(ctx context.Context, p *inventory.Product) (*inventory.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockInventoryService) UpdateProduct(ctx context.Context, id string, p *inventory.Product) (*inventory.Product, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockInventoryService) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

//nolint:revive
func (m *MockInventoryService) ImportProducts(ctx context.Context, products []inventory.Product) (service.ImportResult, error) {
	args := m.Called(ctx, products)
	return args.Get(0).(service.ImportResult), args.Error(1)
}

//nolint:revive
func (m *MockInventoryService) Restock(ctx context.Context, id string, amount int) (*inventory.Product, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockInventoryService) ScanLowStock(ctx context.Context) ([]*inventory.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Product), args.Error(1)
}
