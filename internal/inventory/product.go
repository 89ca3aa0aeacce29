// Package inventory holds the product records that drive stock notifications.
package inventory

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a snapshot of a catalog item. SKU and CostPrice are optional.
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	SKU               *string          `json:"sku,omitempty"`
	Stock             int              `json:"stock"`
	LowStockThreshold int              `json:"low_stock_threshold"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// IsLowStock reports whether the current stock is at or below the threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// SKUOr returns the SKU, or fallback when the product has none.
func (p Product) SKUOr(fallback string) string {
	if p.SKU == nil || *p.SKU == "" {
		return fallback
	}
	return *p.SKU
}

// Payload keys used when a product travels through the event bus.
const (
	KeyID                = "id"
	KeyName              = "name"
	KeySKU               = "sku"
	KeyStock             = "stock"
	KeyLowStockThreshold = "low_stock_threshold"
	KeyCostPrice         = "cost_price"
)

// Payload flattens the product into string pairs for an event payload.
// Absent optional fields are omitted rather than written as empty strings.
func (p Product) Payload() map[string]string {
	out := map[string]string{
		KeyID:                p.ID,
		KeyName:              p.Name,
		KeyStock:             strconv.Itoa(p.Stock),
		KeyLowStockThreshold: strconv.Itoa(p.LowStockThreshold),
	}
	if p.SKU != nil {
		out[KeySKU] = *p.SKU
	}
	if p.CostPrice != nil {
		out[KeyCostPrice] = p.CostPrice.String()
	}
	return out
}

// ProductFromPayload is the inverse of Product.Payload.
func ProductFromPayload(payload map[string]string) (Product, error) {
	p := Product{
		ID:   payload[KeyID],
		Name: payload[KeyName],
	}

	var err error
	if p.Stock, err = intField(payload, KeyStock); err != nil {
		return Product{}, err
	}
	if p.LowStockThreshold, err = intField(payload, KeyLowStockThreshold); err != nil {
		return Product{}, err
	}
	if v, ok := payload[KeySKU]; ok {
		sku := v
		p.SKU = &sku
	}
	if v, ok := payload[KeyCostPrice]; ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Product{}, fmt.Errorf("parsing %s %q: %w", KeyCostPrice, v, err)
		}
		p.CostPrice = &d
	}
	return p, nil
}

func intField(payload map[string]string, key string) (int, error) {
	v, ok := payload[key]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", key, v, err)
	}
	return n, nil
}
