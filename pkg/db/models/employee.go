package models

import (
	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// Employee is a till operator. Rows without a manager are managers themselves.
type Employee struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	HoursWorked  decimal.Decimal `gorm:"column:hours_worked;type:numeric(10,2);not null" json:"hours_worked"`
	PasswordHash string          `gorm:"column:password;not null;default:''" json:"-"`
	ManagerID    *int64          `gorm:"column:manager_id" json:"manager_id"`
}

func (Employee) TableName() string { return "cashier" }

func (e Employee) Role() enums.EmployeeRole {
	if e.ManagerID == nil {
		return enums.EmployeeRoleManager
	}
	return enums.EmployeeRoleCashier
}
