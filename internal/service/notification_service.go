package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/mail"
	"github.com/shaharia-lab/stocknotify/internal/notification"
	"github.com/shaharia-lab/stocknotify/internal/storage"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// ErrMailNotConfigured is returned by send operations when no mail channel
// was configured at startup.
var ErrMailNotConfigured = errors.New("mail channel is not configured")

// Notifier is the subset of *notification.Notifier the service depends on.
type Notifier interface {
	SendRestockNotification(
		ctx context.Context, product inventory.Product, currentStock, restockAmount int,
	) (mail.Receipt, error)
	SendLowStockOrderSuggestion(ctx context.Context, product inventory.Product) (mail.Receipt, error)
}

// NotificationService sends notifications on demand and exposes the delivery log.
type NotificationService interface {
	// SendRestock sends a restock confirmation for product.
	SendRestock(ctx context.Context, product inventory.Product, currentStock, restockAmount int) (mail.Receipt, error)
	// SendLowStock sends a low-stock order suggestion for product.
	SendLowStock(ctx context.Context, product inventory.Product) (mail.Receipt, error)
	// ListLog returns the most recent notification log entries.
	ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error)
}

// notificationServiceImpl implements NotificationService.
type notificationServiceImpl struct {
	notifier Notifier
	store    storage.NotificationStore
}

// NewNotificationService creates a new NotificationService. notifier may be
// nil when mail is not configured; sends then fail with ErrMailNotConfigured.
func NewNotificationService(notifier Notifier, store storage.NotificationStore) NotificationService {
	return &notificationServiceImpl{
		notifier: notifier,
		store:    store,
	}
}

func (s *notificationServiceImpl) SendRestock(
	ctx context.Context, product inventory.Product, currentStock, restockAmount int,
) (mail.Receipt, error) {
	if s.notifier == nil {
		return mail.Receipt{}, ErrMailNotConfigured
	}
	receipt, err := s.notifier.SendRestockNotification(ctx, product, currentStock, restockAmount)
	return receipt, translateNotifyError(err)
}

func (s *notificationServiceImpl) SendLowStock(ctx context.Context, product inventory.Product) (mail.Receipt, error) {
	if s.notifier == nil {
		return mail.Receipt{}, ErrMailNotConfigured
	}
	receipt, err := s.notifier.SendLowStockOrderSuggestion(ctx, product)
	return receipt, translateNotifyError(err)
}

// ListLog returns the most recent notification log entries, newest first.
func (s *notificationServiceImpl) ListLog(ctx context.Context, limit int) ([]storage.NotificationLogEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	entries, err := s.store.ListNotifications(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notification log: %w", err)
	}
	return entries, nil
}

// translateNotifyError maps notifier validation failures onto the service
// taxonomy. Transport errors pass through unchanged.
func translateNotifyError(err error) error {
	var ve *notification.ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Field: ve.Field, Message: ve.Message}
	}
	return err
}
