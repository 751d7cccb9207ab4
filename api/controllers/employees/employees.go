package employees

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/middleware"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/validators"
	internalemployees "github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/employees"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/types"
)

type createEmployeeRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Password    string          `json:"password" validate:"required,min=4,max=128"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
	ManagerID   *int64          `json:"manager_id" validate:"omitempty,gt=0"`
}

// updateEmployeeRequest uses clear_manager to promote, since a JSON null
// manager_id cannot be told apart from an absent one.
type updateEmployeeRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=120"`
	Password     *string          `json:"password" validate:"omitempty,min=4,max=128"`
	HoursWorked  *decimal.Decimal `json:"hours_worked"`
	ManagerID    *int64           `json:"manager_id" validate:"omitempty,gt=0"`
	ClearManager bool             `json:"clear_manager"`
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "employee service unavailable"))
}

func List(svc internalemployees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Get(svc internalemployees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func Create(svc internalemployees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		var body createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), internalemployees.CreateInput{
			Name:        body.Name,
			Password:    body.Password,
			HoursWorked: body.HoursWorked,
			ManagerID:   body.ManagerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithFields(r.Context(), map[string]any{"created_employee_id": row.ID, "role": string(row.Role)}), "employee.created")
		responses.WriteJSON(w, http.StatusCreated, row)
	}
}

func Update(svc internalemployees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ClearManager && body.ManagerID != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "manager_id and clear_manager are mutually exclusive"))
			return
		}
		row, err := svc.Update(r.Context(), id, internalemployees.UpdateInput{
			Name:         body.Name,
			Password:     body.Password,
			HoursWorked:  body.HoursWorked,
			ManagerID:    body.ManagerID,
			ClearManager: body.ClearManager,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// Delete removes an employee. Signed-in managers cannot delete themselves.
func Delete(svc internalemployees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if id == middleware.EmployeeIDFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "cannot delete the signed-in employee"))
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(r.Context(), "deleted_employee_id", id), "employee.deleted")
		responses.WriteSuccess(w, types.MessageResponse{Message: "Employee deleted"})
	}
}
