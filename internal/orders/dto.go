package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/ledger"
)

// SubmitOrderInput is the validated body of POST /api/orders.
type SubmitOrderInput struct {
	Cart       []CartLine
	TotalPrice *decimal.Decimal
	CashierID  *int64
}

// InstanceDetail is one persisted cart line with its component ids.
type InstanceDetail struct {
	ID            int64           `json:"id"`
	MenuItemID    int64           `json:"menu_item_id"`
	InstanceCount int             `json:"instance_count"`
	Price         decimal.Decimal `json:"price"`
	Components    []int64         `json:"components"`
}

// OrderDetail is a placed order with its instances.
type OrderDetail struct {
	ID        int64            `json:"id"`
	Price     decimal.Decimal  `json:"price"`
	Date      time.Time        `json:"date"`
	CashierID *int64           `json:"cashier_id"`
	Items     []InstanceDetail `json:"items"`

	InventoryUsage []ledger.Usage `json:"inventory_usage"`
}

// OrderSummary is a row of the order history list.
type OrderSummary struct {
	ID        int64           `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Date      time.Time       `json:"date"`
	CashierID *int64          `json:"cashier_id"`
	ItemCount int             `json:"item_count"`
}

// OrderList is a page of order history, newest first.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
