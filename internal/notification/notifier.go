// Package notification formats stock notifications and dispatches them
// through the mail channel to the management recipient.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/mail"
	"github.com/shaharia-lab/stocknotify/internal/metrics"
	"github.com/shaharia-lab/stocknotify/internal/storage"
)

// Kind identifies the notification type in logs, metrics and the delivery log.
type Kind string

// Notification kinds.
const (
	KindRestock  Kind = "restock"
	KindLowStock Kind = "low_stock"
)

const tracerName = "github.com/shaharia-lab/stocknotify/internal/notification"

// notAvailable is rendered for absent optional product fields.
const notAvailable = "N/A"

// Config identifies the sender and the fixed management recipient.
type Config struct {
	FromName    string
	FromAddress string
	Recipient   string
}

// From returns the formatted From header value, "Name <address>".
func (c Config) From() string {
	if c.FromName == "" {
		return c.FromAddress
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromAddress)
}

// ValidationError is returned when a product record cannot be rendered.
// No send is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// Notifier builds stock notification emails and submits them through a
// mail.Channel. Each call makes exactly one send attempt; the outcome is
// logged, counted, recorded in the delivery log and returned.
type Notifier struct {
	channel mail.Channel
	config  Config
	store   storage.NotificationStore // optional
	logger  *slog.Logger
}

// New creates a Notifier. store may be nil to skip the delivery log.
func New(channel mail.Channel, config Config, store storage.NotificationStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{channel: channel, config: config, store: store, logger: logger}
}

// SendRestockNotification tells management that product received
// restockAmount units on top of currentStock.
func (n *Notifier) SendRestockNotification(ctx context.Context, product inventory.Product, currentStock, restockAmount int) (mail.Receipt, error) {
	if err := validateProduct(product); err != nil {
		return mail.Receipt{}, err
	}
	if currentStock < 0 {
		return mail.Receipt{}, &ValidationError{Field: "current_stock", Message: "must not be negative"}
	}
	if restockAmount < 0 {
		return mail.Receipt{}, &ValidationError{Field: "restock_amount", Message: "must not be negative"}
	}

	subject := "Restock Confirmation: " + product.Name
	html, err := render(restockTmpl, restockView{
		Title:         subject,
		Name:          product.Name,
		SKU:           product.SKUOr(notAvailable),
		PreviousStock: currentStock,
		RestockAmount: restockAmount,
		NewStock:      currentStock + restockAmount,
	})
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("rendering restock notification: %w", err)
	}
	return n.dispatch(ctx, KindRestock, product, subject, html)
}

// SendLowStockOrderSuggestion asks management to reorder product.
func (n *Notifier) SendLowStockOrderSuggestion(ctx context.Context, product inventory.Product) (mail.Receipt, error) {
	if err := validateProduct(product); err != nil {
		return mail.Receipt{}, err
	}

	cost := notAvailable
	if product.CostPrice != nil {
		cost = "$" + product.CostPrice.StringFixed(2)
	}

	subject := fmt.Sprintf("Low Stock Alert: %s - Order Suggestion", product.Name)
	html, err := render(lowStockTmpl, lowStockView{
		Title:     subject,
		Name:      product.Name,
		SKU:       product.SKUOr(notAvailable),
		Stock:     product.Stock,
		Threshold: product.LowStockThreshold,
		CostPrice: cost,
	})
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("rendering low-stock notification: %w", err)
	}
	return n.dispatch(ctx, KindLowStock, product, subject, html)
}

func (n *Notifier) dispatch(ctx context.Context, kind Kind, product inventory.Product, subject, html string) (mail.Receipt, error) {
	msg := mail.Message{
		From:    n.config.From(),
		To:      n.config.Recipient,
		Subject: subject,
		HTML:    html,
	}
	if err := msg.Validate(); err != nil {
		return mail.Receipt{}, fmt.Errorf("building %s notification for %q: %w", kind, product.Name, err)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "notification.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("notification.kind", string(kind)),
			attribute.String("product.name", product.Name),
		),
	)
	defer span.End()

	start := time.Now()
	receipt, err := n.channel.Send(ctx, msg)
	metrics.NotificationSendDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	entry := storage.NotificationLogEntry{
		Kind:        string(kind),
		ProductName: product.Name,
		Recipient:   msg.To,
		Subject:     subject,
		CreatedAt:   time.Now().UTC(),
	}

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(kind), metrics.StatusFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		n.logger.ErrorContext(ctx, "notification failed",
			"kind", kind,
			"product", product.Name,
			"recipient", msg.To,
			"error", err,
		)
		entry.Status = storage.NotificationStatusFailed
		entry.ErrorMsg = err.Error()
		n.record(ctx, entry)
		return mail.Receipt{}, fmt.Errorf("sending %s notification for %q: %w", kind, product.Name, err)
	}

	metrics.NotificationsTotal.WithLabelValues(string(kind), metrics.StatusSent).Inc()
	span.SetAttributes(attribute.String("mail.message_id", receipt.MessageID))
	n.logger.InfoContext(ctx, "notification sent",
		"kind", kind,
		"product", product.Name,
		"recipient", msg.To,
		"message_id", receipt.MessageID,
	)
	entry.Status = storage.NotificationStatusSent
	entry.MessageID = receipt.MessageID
	n.record(ctx, entry)
	return receipt, nil
}

// record writes the delivery log entry. The caller's cancellation does not
// apply: a send that happened must still be recorded.
func (n *Notifier) record(ctx context.Context, entry storage.NotificationLogEntry) {
	if n.store == nil {
		return
	}
	if err := n.store.LogNotification(context.WithoutCancel(ctx), entry); err != nil {
		n.logger.Warn("failed to record notification delivery",
			"kind", entry.Kind, "product", entry.ProductName, "error", err)
	}
}

func validateProduct(p inventory.Product) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "product name is required"}
	}
	return nil
}
