package employees

import (
	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// EmployeeDTO is the public shape of a cashier row.
type EmployeeDTO struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	HoursWorked decimal.Decimal    `json:"hours_worked"`
	ManagerID   *int64             `json:"manager_id"`
	Role        enums.EmployeeRole `json:"role"`
}

func FromModel(e *models.Employee) *EmployeeDTO {
	if e == nil {
		return nil
	}
	return &EmployeeDTO{
		ID:          e.ID,
		Name:        e.Name,
		HoursWorked: e.HoursWorked,
		ManagerID:   e.ManagerID,
		Role:        e.Role(),
	}
}

func fromModels(rows []models.Employee) []EmployeeDTO {
	out := make([]EmployeeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
