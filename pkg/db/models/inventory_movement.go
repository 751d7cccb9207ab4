package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// InventoryMovement is the append-only audit trail of ingredient quantity changes.
type InventoryMovement struct {
	ID              int64                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	IngredientID    int64                `gorm:"column:ingredient_id;not null" json:"ingredient_id"`
	OrderID         *int64               `gorm:"column:order_id" json:"order_id,omitempty"`
	ItemInstanceID  *int64               `gorm:"column:item_instance_id" json:"item_instance_id,omitempty"`
	ItemComponentID *int64               `gorm:"column:item_component_id" json:"item_component_id,omitempty"`
	QtyDelta        decimal.Decimal      `gorm:"column:qty_delta;type:numeric(14,3);not null" json:"qty_delta"`
	Reason          enums.MovementReason `gorm:"column:reason;not null" json:"reason"`
	Note            *string              `gorm:"column:note" json:"note,omitempty"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }
