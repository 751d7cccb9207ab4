package payloads

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedEvent summarizes a committed order.
type OrderPlacedEvent struct {
	OrderID        int64           `json:"order_id"`
	Price          decimal.Decimal `json:"price"`
	CashierID      *int64          `json:"cashier_id,omitempty"`
	InstanceCount  int             `json:"instance_count"`
	ComponentCount int             `json:"component_count"`
	PlacedAt       time.Time       `json:"placed_at"`
}

// LowStockEvent is emitted when an order leaves an ingredient at or below its reorder level.
type LowStockEvent struct {
	IngredientID int64           `json:"ingredient_id"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	OrderID      *int64          `json:"order_id,omitempty"`
}
