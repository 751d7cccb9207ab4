package models

import "github.com/shopspring/decimal"

// Ingredient is an inventory row. Quantity may go negative.
type Ingredient struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"column:name;not null;uniqueIndex:ux_inventory_name" json:"name"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null" json:"quantity"`
	Unit         string          `gorm:"column:unit;not null;default:''" json:"unit"`
	ReorderLevel decimal.Decimal `gorm:"column:reorder_level;type:numeric(14,3);not null" json:"reorder_level"`
}

func (Ingredient) TableName() string { return "inventory" }

// BelowReorder reports whether stock is at or under the reorder level.
func (i Ingredient) BelowReorder() bool {
	return i.Quantity.LessThanOrEqual(i.ReorderLevel)
}
