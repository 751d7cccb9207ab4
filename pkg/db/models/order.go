package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the immutable header of a placed checkout.
type Order struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Date      time.Time       `gorm:"column:date;not null" json:"date"`
	CashierID *int64          `gorm:"column:cashier_id" json:"cashier_id"`
}

func (Order) TableName() string { return "orders" }
