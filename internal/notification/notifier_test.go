package notification_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/mail"
	"github.com/shaharia-lab/stocknotify/internal/notification"
	"github.com/shaharia-lab/stocknotify/internal/storage"
)

const managementAddr = "manager@example.com"

// --- fakes ---

type fakeChannel struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeChannel) Send(_ context.Context, msg mail.Message) (mail.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if f.err != nil {
		return mail.Receipt{}, f.err
	}
	return mail.Receipt{MessageID: fmt.Sprintf("<msg-%d@test>", len(f.sent))}, nil
}

func (f *fakeChannel) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

type stubStore struct {
	mu      sync.Mutex
	entries []storage.NotificationLogEntry
	err     error
}

func (s *stubStore) LogNotification(_ context.Context, entry storage.NotificationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubStore) ListNotifications(_ context.Context, _ int) ([]storage.NotificationLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.NotificationLogEntry(nil), s.entries...), nil
}

// --- helpers ---

type harness struct {
	channel  *fakeChannel
	store    *stubStore
	logs     *bytes.Buffer
	notifier *notification.Notifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		channel: &fakeChannel{},
		store:   &stubStore{},
		logs:    &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h.notifier = notification.New(h.channel, notification.Config{
		FromName:    "Inventory System",
		FromAddress: "inventory@example.com",
		Recipient:   managementAddr,
	}, h.store, logger)
	return h
}

// logRecords decodes the JSON log lines written so far.
func (h *harness) logRecords(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(h.logs.Bytes()))
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	return out
}

// rowValue extracts the table cell rendered next to label.
func rowValue(t *testing.T, html, label string) string {
	t.Helper()
	re := regexp.MustCompile(`<th align="left">` + regexp.QuoteMeta(label) + `:</th><td>(.*?)</td>`)
	m := re.FindStringSubmatch(html)
	require.NotNil(t, m, "row %q not found", label)
	return m[1]
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// --- restock ---

func TestSendRestockNotification(t *testing.T) {
	h := newHarness(t)

	receipt, err := h.notifier.SendRestockNotification(context.Background(), inventory.Product{Name: "Widget"}, 5, 20)
	require.NoError(t, err)
	assert.Equal(t, "<msg-1@test>", receipt.MessageID)

	msgs := h.channel.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, managementAddr, msg.To)
	assert.Equal(t, "Inventory System <inventory@example.com>", msg.From)
	assert.Contains(t, msg.Subject, "Widget")
	assert.NotEmpty(t, msg.HTML)

	assert.Equal(t, "Widget", rowValue(t, msg.HTML, "Product Name"))
	assert.Equal(t, "N/A", rowValue(t, msg.HTML, "SKU"))
	assert.Equal(t, "5 units", rowValue(t, msg.HTML, "Previous Stock"))
	assert.Equal(t, "20 units", rowValue(t, msg.HTML, "Restocked Amount"))
	assert.Equal(t, "25 units", rowValue(t, msg.HTML, "New Stock"))
}

func TestSendRestockNotification_WithSKU(t *testing.T) {
	h := newHarness(t)

	_, err := h.notifier.SendRestockNotification(context.Background(),
		inventory.Product{Name: "Widget", SKU: strPtr("W-100")}, 0, 0)
	require.NoError(t, err)

	msg := h.channel.messages()[0]
	assert.Equal(t, "W-100", rowValue(t, msg.HTML, "SKU"))
	assert.Equal(t, "0 units", rowValue(t, msg.HTML, "New Stock"))
}

func TestSendRestockNotification_EscapesProductName(t *testing.T) {
	h := newHarness(t)

	_, err := h.notifier.SendRestockNotification(context.Background(),
		inventory.Product{Name: `<script>alert("x")</script>`}, 1, 1)
	require.NoError(t, err)

	html := h.channel.messages()[0].HTML
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestSendRestockNotification_Validation(t *testing.T) {
	tests := []struct {
		name          string
		product       inventory.Product
		current, more int
		field         string
	}{
		{"missing name", inventory.Product{}, 1, 1, "name"},
		{"negative current stock", inventory.Product{Name: "Widget"}, -1, 1, "current_stock"},
		{"negative restock amount", inventory.Product{Name: "Widget"}, 1, -5, "restock_amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.notifier.SendRestockNotification(context.Background(), tt.product, tt.current, tt.more)

			var ve *notification.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, h.channel.messages())
			assert.Empty(t, h.store.entries)
		})
	}
}

// --- low stock ---

func TestSendLowStockOrderSuggestion_Defaults(t *testing.T) {
	h := newHarness(t)

	_, err := h.notifier.SendLowStockOrderSuggestion(context.Background(),
		inventory.Product{Name: "Gadget", Stock: 2, LowStockThreshold: 10})
	require.NoError(t, err)

	msgs := h.channel.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, managementAddr, msg.To)
	assert.Equal(t, "Low Stock Alert: Gadget - Order Suggestion", msg.Subject)

	assert.Equal(t, "Gadget", rowValue(t, msg.HTML, "Product Name"))
	assert.Equal(t, "N/A", rowValue(t, msg.HTML, "SKU"))
	assert.Equal(t, "2 units", rowValue(t, msg.HTML, "Current Stock"))
	assert.Equal(t, "10 units", rowValue(t, msg.HTML, "Threshold"))
	assert.Equal(t, "N/A", rowValue(t, msg.HTML, "Cost Price"))
}

func TestSendLowStockOrderSuggestion_CostPrice(t *testing.T) {
	tests := []struct {
		cost string
		want string
	}{
		{"12.5", "$12.50"},
		{"3", "$3.00"},
		{"0.125", "$0.13"},
		{"1999.999", "$2000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.cost, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.notifier.SendLowStockOrderSuggestion(context.Background(), inventory.Product{
				Name:      "Gadget",
				SKU:       strPtr("G-7"),
				CostPrice: decPtr(tt.cost),
			})
			require.NoError(t, err)

			html := h.channel.messages()[0].HTML
			assert.Equal(t, tt.want, rowValue(t, html, "Cost Price"))
			assert.Equal(t, "G-7", rowValue(t, html, "SKU"))
		})
	}
}

func TestSendLowStockOrderSuggestion_MissingName(t *testing.T) {
	h := newHarness(t)
	_, err := h.notifier.SendLowStockOrderSuggestion(context.Background(), inventory.Product{Stock: 1})

	var ve *notification.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Empty(t, h.channel.messages())
}

// --- outcome logging ---

func TestSend_SuccessLogsOnceWithMessageID(t *testing.T) {
	h := newHarness(t)

	receipt, err := h.notifier.SendLowStockOrderSuggestion(context.Background(), inventory.Product{Name: "Gadget"})
	require.NoError(t, err)

	recs := h.logRecords(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "INFO", recs[0]["level"])
	assert.Equal(t, "notification sent", recs[0]["msg"])
	assert.Equal(t, receipt.MessageID, recs[0]["message_id"])
	assert.Equal(t, "low_stock", recs[0]["kind"])

	require.Len(t, h.store.entries, 1)
	assert.Equal(t, storage.NotificationStatusSent, h.store.entries[0].Status)
	assert.Equal(t, receipt.MessageID, h.store.entries[0].MessageID)
	assert.Equal(t, "Gadget", h.store.entries[0].ProductName)
}

func TestSend_FailureIsReturnedAndLoggedOnce(t *testing.T) {
	sendErr := &mail.TransportError{Op: "send", Err: errors.New("535 authentication failed")}

	for _, tc := range []struct {
		name string
		call func(n *notification.Notifier) error
	}{
		{"restock", func(n *notification.Notifier) error {
			_, err := n.SendRestockNotification(context.Background(), inventory.Product{Name: "Widget"}, 5, 20)
			return err
		}},
		{"low stock", func(n *notification.Notifier) error {
			_, err := n.SendLowStockOrderSuggestion(context.Background(), inventory.Product{Name: "Gadget"})
			return err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.channel.err = sendErr

			var err error
			require.NotPanics(t, func() { err = tc.call(h.notifier) })
			require.Error(t, err)

			var te *mail.TransportError
			assert.True(t, errors.As(err, &te))

			recs := h.logRecords(t)
			require.Len(t, recs, 1)
			assert.Equal(t, "ERROR", recs[0]["level"])
			assert.Equal(t, "notification failed", recs[0]["msg"])
			assert.Contains(t, recs[0]["error"], "authentication failed")

			require.Len(t, h.store.entries, 1)
			assert.Equal(t, storage.NotificationStatusFailed, h.store.entries[0].Status)
			assert.Contains(t, h.store.entries[0].ErrorMsg, "authentication failed")
		})
	}
}

func TestSend_StoreErrorDoesNotFailSend(t *testing.T) {
	h := newHarness(t)
	h.store.err = errors.New("db locked")

	receipt, err := h.notifier.SendRestockNotification(context.Background(), inventory.Product{Name: "Widget"}, 1, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.MessageID)
}

func TestSend_NilStore(t *testing.T) {
	ch := &fakeChannel{}
	n := notification.New(ch, notification.Config{FromAddress: "inventory@example.com", Recipient: managementAddr}, nil, nil)

	_, err := n.SendRestockNotification(context.Background(), inventory.Product{Name: "Widget"}, 1, 2)
	require.NoError(t, err)
	require.Len(t, ch.messages(), 1)
	assert.Equal(t, "inventory@example.com", ch.messages()[0].From)
}

func TestSend_IdenticalCallsAreNotDeduplicated(t *testing.T) {
	h := newHarness(t)
	p := inventory.Product{Name: "Widget"}

	first, err := h.notifier.SendRestockNotification(context.Background(), p, 5, 20)
	require.NoError(t, err)
	second, err := h.notifier.SendRestockNotification(context.Background(), p, 5, 20)
	require.NoError(t, err)

	assert.Len(t, h.channel.messages(), 2)
	assert.NotEqual(t, first.MessageID, second.MessageID)
}

func TestConfig_From(t *testing.T) {
	assert.Equal(t, "Inventory System <inv@example.com>",
		notification.Config{FromName: "Inventory System", FromAddress: "inv@example.com"}.From())
	assert.Equal(t, "inv@example.com", notification.Config{FromAddress: "inv@example.com"}.From())
}

func TestSend_IncompleteSenderConfigIsRejected(t *testing.T) {
	channel := &fakeChannel{}
	store := &stubStore{}
	var logs bytes.Buffer
	n := notification.New(channel, notification.Config{
		FromName:    "Inventory System",
		FromAddress: "inventory@example.com",
	}, store, slog.New(slog.NewJSONHandler(&logs, nil)))

	_, err := n.SendRestockNotification(context.Background(), inventory.Product{Name: "Widget"}, 5, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient is required")

	_, err = n.SendLowStockOrderSuggestion(context.Background(), inventory.Product{Name: "Gadget"})
	require.Error(t, err)

	assert.Empty(t, channel.messages())
	assert.Empty(t, store.entries)
	assert.NotContains(t, logs.String(), "notification sent")
}
