package notification

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shaharia-lab/stocknotify/internal/eventbus"
	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

const defaultHandlerTimeout = 30 * time.Second

// Handler subscribes the Notifier to inventory events on the event bus.
type Handler struct {
	notifier *Notifier
	logger   *slog.Logger
	timeout  time.Duration
}

// NewHandler creates a new Handler. timeout bounds each send; zero means 30s.
func NewHandler(notifier *Notifier, logger *slog.Logger, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{notifier: notifier, logger: logger, timeout: timeout}
}

// Handle processes an event. Unknown event types are ignored. Send failures
// are logged and recorded by the Notifier and go no further.
func (h *Handler) Handle(e eventbus.Event) {
	if e.Type != eventbus.EventProductRestocked && e.Type != eventbus.EventProductLowStock {
		return
	}

	product, err := inventory.ProductFromPayload(e.Payload)
	if err != nil {
		h.logger.Error("notification: invalid event payload", "event", e.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	switch e.Type {
	case eventbus.EventProductRestocked:
		previous, perr := strconv.Atoi(e.Payload[eventbus.KeyPreviousStock])
		amount, aerr := strconv.Atoi(e.Payload[eventbus.KeyRestockAmount])
		if perr != nil || aerr != nil {
			h.logger.Error("notification: invalid restock payload", "event", e.Type, "product", product.Name)
			return
		}
		_, err = h.notifier.SendRestockNotification(ctx, product, previous, amount)
	case eventbus.EventProductLowStock:
		_, err = h.notifier.SendLowStockOrderSuggestion(ctx, product)
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		h.logger.Warn("notification: event skipped", "event", e.Type, "error", err)
	}
}
