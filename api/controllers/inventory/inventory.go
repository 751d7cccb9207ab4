package inventory

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/validators"
	internalinventory "github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/inventory"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

type createIngredientRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gte=0"`
	Unit         string          `json:"unit" validate:"max=32"`
	ReorderLevel decimal.Decimal `json:"reorder_level" validate:"gte=0"`
}

type updateIngredientRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=120"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Unit         *string          `json:"unit" validate:"omitempty,max=32"`
	ReorderLevel *decimal.Decimal `json:"reorder_level" validate:"omitempty,gte=0"`
}

type adjustRequest struct {
	Delta *decimal.Decimal `json:"delta" validate:"required"`
	Note  string           `json:"note" validate:"max=255"`
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
}

func List(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
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

// LowStock lists ingredients at or below their reorder level.
func LowStock(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		rows, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Get(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "ingredientId")
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

func Create(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		var body createIngredientRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), internalinventory.CreateInput{
			Name:         body.Name,
			Quantity:     body.Quantity,
			Unit:         body.Unit,
			ReorderLevel: body.ReorderLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, row)
	}
}

func Update(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateIngredientRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Update(r.Context(), id, internalinventory.UpdateInput{
			Name:         body.Name,
			Quantity:     body.Quantity,
			Unit:         body.Unit,
			ReorderLevel: body.ReorderLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func Delete(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// Adjust applies a signed stock correction recorded as a manual movement.
func Adjust(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body adjustRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Delta.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero").WithDetails(map[string]string{"delta": "must not be zero"}))
			return
		}
		row, err := svc.Adjust(r.Context(), id, *body.Delta, body.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// Movements returns the newest stock movements of one ingredient.
func Movements(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "ingredientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultMovementLimit, 1, maxMovementLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.Movements(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
