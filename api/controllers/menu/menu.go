package menu

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/validators"
	internalmenu "github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/menu"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

type createMenuItemRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	BasePrice   decimal.Decimal `json:"base_price" validate:"gte=0"`
	Description string          `json:"description" validate:"max=1000"`
	Image       string          `json:"image" validate:"max=2048"`
	MaxEntrees  int             `json:"maxentrees" validate:"gte=0"`
	MaxSides    int             `json:"maxsides" validate:"gte=0"`
	HasDrink    bool            `json:"hasdrink"`
}

type updateMenuItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=120"`
	BasePrice   *decimal.Decimal `json:"base_price" validate:"omitempty,gte=0"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Image       *string          `json:"image" validate:"omitempty,max=2048"`
	MaxEntrees  *int             `json:"maxentrees" validate:"omitempty,gte=0"`
	MaxSides    *int             `json:"maxsides" validate:"omitempty,gte=0"`
	HasDrink    *bool            `json:"hasdrink"`
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
}

// List returns every menu item ordered by id.
func List(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func Get(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "menuItemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func Create(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		var body createMenuItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), internalmenu.CreateInput{
			Name:        body.Name,
			BasePrice:   body.BasePrice,
			Description: body.Description,
			Image:       body.Image,
			MaxEntrees:  body.MaxEntrees,
			MaxSides:    body.MaxSides,
			HasDrink:    body.HasDrink,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, item)
	}
}

func Update(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "menuItemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateMenuItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), id, internalmenu.UpdateInput{
			Name:        body.Name,
			BasePrice:   body.BasePrice,
			Description: body.Description,
			Image:       body.Image,
			MaxEntrees:  body.MaxEntrees,
			MaxSides:    body.MaxSides,
			HasDrink:    body.HasDrink,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// Delete removes a menu item and returns the deleted row.
func Delete(svc internalmenu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "menuItemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
