package eventbus

import "time"

// Inventory event types.
const (
	// EventProductRestocked carries the product snapshot after the restock
	// plus KeyPreviousStock and KeyRestockAmount.
	EventProductRestocked = "inventory.product.restocked"
	// EventProductLowStock carries the product snapshot found by a low-stock scan.
	EventProductLowStock = "inventory.product.low_stock"
)

// Extra payload keys for EventProductRestocked.
const (
	KeyPreviousStock = "previous_stock"
	KeyRestockAmount = "restock_amount"
)

// Event represents an application event published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener is a function that handles an event.
type Listener func(Event)
