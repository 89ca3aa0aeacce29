package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/stocknotify/internal/config"
	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/storage"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		DataDir:        t.TempDir(),
		LogLevel:       "error",
		SMTPPort:       587,
		SMTPEncryption: "starttls",
		SMTPTimeout:    time.Second,
	}
}

func run(t *testing.T, cfg *config.AppConfig, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	root := NewRootCmd(cfg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProductRows(t *testing.T) {
	sku := "W-100"
	cost := decimal.RequireFromString("12.5")
	rows := productRows([]*inventory.Product{
		{ID: "p1", Name: "Widget", SKU: &sku, Stock: 4, LowStockThreshold: 10, CostPrice: &cost},
		{ID: "p2", Name: "Gadget", Stock: 50, LowStockThreshold: 5},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"p1", "Widget", "W-100", "4", "10", "$12.50", "LOW"}, rows[0])
	assert.Equal(t, []string{"p2", "Gadget", notAvailable, "50", "5", notAvailable, ""}, rows[1])
}

func TestLogRows_FailedShowsError(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rows := logRows([]storage.NotificationLogEntry{
		{Kind: "restock", ProductName: "Widget", Status: storage.NotificationStatusSent, MessageID: "<a@b>", CreatedAt: now},
		{Kind: "low_stock", ProductName: "Gadget", Status: storage.NotificationStatusFailed, ErrorMsg: "550 rejected", CreatedAt: now},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "<a@b>", rows[0][4])
	assert.Equal(t, "550 rejected", rows[1][4])
}

func TestRenderTable_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := renderTable(&buf, []string{"A", "B"}, [][]string{{"1", "2"}})
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "2")
	assert.NotContains(t, out, "\x1b[")
}

func TestProductFlags_Inline(t *testing.T) {
	f := productFlags{name: "Widget", sku: "W-100", stock: 3, threshold: 10, cost: "0.125"}
	p, err := f.inline()
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	require.NotNil(t, p.SKU)
	assert.Equal(t, "W-100", *p.SKU)
	require.NotNil(t, p.CostPrice)
	assert.Equal(t, "0.13", p.CostPrice.StringFixed(2))

	p, err = (&productFlags{name: "Bare"}).inline()
	require.NoError(t, err)
	assert.Nil(t, p.SKU)
	assert.Nil(t, p.CostPrice)

	_, err = (&productFlags{name: "Bad", cost: "twelve"}).inline()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --cost")
}

func TestCurrentVersion(t *testing.T) {
	_, err := currentVersion("dev")
	require.Error(t, err)

	_, err = currentVersion("not-a-version")
	require.Error(t, err)

	v, err := currentVersion("v1.4.2")
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", v.String())
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &out, "? "))
	assert.True(t, confirm(strings.NewReader("YES\n"), &out, "? "))
	assert.False(t, confirm(strings.NewReader("\n"), &out, "? "))
	assert.False(t, confirm(strings.NewReader(""), &out, "? "))
}

func TestProductsImportAndList(t *testing.T) {
	cfg := testConfig(t)
	catalog := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(`products:
  - name: Widget
    sku: W-100
    stock: 4
    low_stock_threshold: 10
    cost_price: "12.50"
  - name: Gadget
    sku: G-200
    stock: 50
    low_stock_threshold: 5
`), 0o600))

	out, err := run(t, cfg, "products", "import", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "created 2, skipped 0")

	out, err = run(t, cfg, "products", "import", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "created 0, skipped 2")

	out, err = run(t, cfg, "products", "list", "--low")
	require.NoError(t, err)
	assert.Contains(t, out, "Widget")
	assert.NotContains(t, out, "Gadget")

	out, err = run(t, cfg, "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Gadget")
	assert.Contains(t, out, "$12.50")

	// Logs go to the rotating file under the data directory.
	_, err = os.Stat(cfg.LogDir())
	assert.NoError(t, err)
}

func TestNotify_MailNotConfigured(t *testing.T) {
	_, err := run(t, testConfig(t), "notify", "low-stock", "--name", "Widget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail channel is not configured")
}

func TestLog_Empty(t *testing.T) {
	out, err := run(t, testConfig(t), "log")
	require.NoError(t, err)
	assert.Contains(t, out, "no notifications recorded")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, testConfig(t), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "stocknotify dev"))
}
