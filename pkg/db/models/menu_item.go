package models

import "github.com/shopspring/decimal"

// MenuItem is the template for a purchasable composite such as "Bowl" or "Plate".
type MenuItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(10,2);not null" json:"base_price"`
	Description string          `gorm:"column:description;not null;default:''" json:"description"`
	Image       string          `gorm:"column:image;not null;default:''" json:"image"`
	MaxEntrees  int             `gorm:"column:maxentrees;not null;default:0" json:"maxentrees"`
	MaxSides    int             `gorm:"column:maxsides;not null;default:0" json:"maxsides"`
	HasDrink    bool            `gorm:"column:hasdrink;not null;default:false" json:"hasdrink"`
}

func (MenuItem) TableName() string { return "menu_item" }
