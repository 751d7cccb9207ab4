package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/types"
)

// ItemComponent is a selectable building block of a menu item.
type ItemComponent struct {
	ID        int64                   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string                  `gorm:"column:name;not null" json:"name"`
	Category  enums.ComponentCategory `gorm:"column:category;not null" json:"category"`
	ExtraCost decimal.Decimal         `gorm:"column:extra_cost;type:numeric(10,2);not null" json:"extra_cost"`
	Allergens pq.StringArray          `gorm:"column:allergens;type:text[];not null" json:"allergens"`
	Nutrition types.Nutrition         `gorm:"column:nutrition;type:jsonb;not null" json:"nutrition"`
	Image     string                  `gorm:"column:image;not null;default:''" json:"image"`
}

func (ItemComponent) TableName() string { return "item_component" }

// BeforeSave keeps allergens non-null so the column default never has to apply.
func (c *ItemComponent) BeforeSave(tx *gorm.DB) error {
	if c.Allergens == nil {
		c.Allergens = pq.StringArray{}
	}
	return nil
}
