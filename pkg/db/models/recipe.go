package models

import "github.com/shopspring/decimal"

// Recipe maps a component to one ingredient it consumes per unit ordered.
// At most one row exists per (component, ingredient) pair.
type Recipe struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ItemComponentID  int64           `gorm:"column:item_component_id;not null" json:"item_component_id"`
	IngredientID     int64           `gorm:"column:ingredient_id;not null" json:"ingredient_id"`
	QuantityRequired decimal.Decimal `gorm:"column:quantity_required;type:numeric(14,3);not null" json:"quantity_required"`
}

func (Recipe) TableName() string { return "inventory_item_component" }
