package components

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/responses"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/api/validators"
	internalcomponents "github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/components"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/types"
)

type recipeLineRequest struct {
	IngredientID     int64           `json:"ingredient_id" validate:"required,gt=0"`
	QuantityRequired decimal.Decimal `json:"quantity_required" validate:"gte=0"`
}

type createComponentRequest struct {
	Name        string              `json:"name" validate:"required,max=120"`
	Category    string              `json:"category" validate:"required"`
	ExtraCost   decimal.Decimal     `json:"extra_cost" validate:"gte=0"`
	Allergens   []string            `json:"allergens" validate:"omitempty,dive,required,max=60"`
	Nutrition   types.Nutrition     `json:"nutrition"`
	Image       string              `json:"image" validate:"max=2048"`
	Ingredients []recipeLineRequest `json:"ingredients" validate:"omitempty,dive"`
}

type updateComponentRequest struct {
	Name        *string              `json:"name" validate:"omitempty,max=120"`
	Category    *string              `json:"category"`
	ExtraCost   *decimal.Decimal     `json:"extra_cost" validate:"omitempty,gte=0"`
	Allergens   *[]string            `json:"allergens"`
	Nutrition   *types.Nutrition     `json:"nutrition"`
	Image       *string              `json:"image" validate:"omitempty,max=2048"`
	Ingredients *[]recipeLineRequest `json:"ingredients"`
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item component service unavailable"))
}

func parseCategory(raw string) (enums.ComponentCategory, error) {
	category, err := enums.ParseComponentCategory(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").WithDetails(map[string]string{"category": raw})
	}
	return category, nil
}

func toRecipe(lines []recipeLineRequest) []internalcomponents.RecipeLine {
	out := make([]internalcomponents.RecipeLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, internalcomponents.RecipeLine{
			IngredientID:     line.IngredientID,
			QuantityRequired: line.QuantityRequired,
		})
	}
	return out
}

// List returns item components, optionally filtered by ?category=.
func List(svc internalcomponents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		rows, err := svc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Get(svc internalcomponents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "componentId")
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

// Ingredients returns the recipe of a component joined with ingredient names.
func Ingredients(svc internalcomponents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := svc.ListIngredients(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if lines == nil {
			lines = []internalcomponents.IngredientLine{}
		}
		responses.WriteSuccess(w, lines)
	}
}

func Create(svc internalcomponents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		var body createComponentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := parseCategory(body.Category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), internalcomponents.CreateInput{
			Name:        body.Name,
			Category:    category,
			ExtraCost:   body.ExtraCost,
			Allergens:   body.Allergens,
			Nutrition:   body.Nutrition,
			Image:       body.Image,
			Ingredients: toRecipe(body.Ingredients),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, row)
	}
}

// Update changes the sent fields. A sent ingredients array replaces the recipe.
func Update(svc internalcomponents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "componentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateComponentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalcomponents.UpdateInput{
			Name:      body.Name,
			ExtraCost: body.ExtraCost,
			Allergens: body.Allergens,
			Nutrition: body.Nutrition,
			Image:     body.Image,
		}
		if body.Category != nil {
			category, err := parseCategory(*body.Category)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Category = &category
		}
		if body.Ingredients != nil {
			for i, line := range *body.Ingredients {
				if err := validators.Struct(line); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid ingredient line").WithDetails(map[string]any{"index": i}))
					return
				}
			}
			recipe := toRecipe(*body.Ingredients)
			input.Ingredients = &recipe
		}

		row, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func Delete(svc internalcomponents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "componentId")
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
