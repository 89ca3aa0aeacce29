package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/mail"
	"github.com/shaharia-lab/stocknotify/internal/storage"
)

// MockNotificationService is a mock implementation of service.NotificationService.
type MockNotificationService struct {
	mock.Mock
}

//nolint:revive
func (m *MockNotificationService) SendRestock(
	ctx context.Context, product inventory.Product, currentStock, restockAmount int,
) (mail.Receipt, error) {
	args := m.Called(ctx, product, currentStock, restockAmount)
	return args.Get(0).(mail.Receipt), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) SendLowStock(ctx context.Context, product inventory.Product) (mail.Receipt, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(mail.Receipt), args.Error(1)
}

//nolint:revive
func (m *MockNotificationService) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.NotificationLogEntry), args.Error(1)
}
