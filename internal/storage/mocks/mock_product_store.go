package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

// MockProductStore is a mock implementation of storage.ProductStore.
type MockProductStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockProductStore) ListProducts(ctx context.Context) ([]*inventory.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockProductStore) GetProduct(ctx context.Context, id string) (*inventory.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockProductStore) CreateProduct(ctx context.Context, p *inventory.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

//nolint:revive
func (m *MockProductStore) UpdateProduct(ctx context.Context, p *inventory.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

//nolint:revive
func (m *MockProductStore) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

//nolint:revive
func (m *MockProductStore) AdjustStock(ctx context.Context, id string, delta int) (*inventory.Product, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Product), args.Error(1)
}

//nolint:revive
func (m *MockProductStore) ListLowStock(ctx context.Context) ([]*inventory.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Product), args.Error(1)
}
