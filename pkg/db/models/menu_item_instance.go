package models

import "github.com/shopspring/decimal"

// MenuItemInstance is one cart line within a placed order. Price is the
// per-unit line price, not multiplied by InstanceCount.
type MenuItemInstance struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID       int64           `gorm:"column:order_id;not null" json:"order_id"`
	MenuItemID    int64           `gorm:"column:menu_item_id;not null" json:"menu_item_id"`
	InstanceCount int             `gorm:"column:instance_count;not null" json:"instance_count"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
}

func (MenuItemInstance) TableName() string { return "menu_item_instance" }
