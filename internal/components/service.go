package components

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages item components and the recipes behind them.
type Service interface {
	List(ctx context.Context, category string) ([]models.ItemComponent, error)
	Get(ctx context.Context, id int64) (*models.ItemComponent, error)
	ListIngredients(ctx context.Context, componentID int64) ([]IngredientLine, error)
	Create(ctx context.Context, input CreateInput) (*models.ItemComponent, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.ItemComponent, error)
	Delete(ctx context.Context, id int64) (*models.ItemComponent, error)
}

// CreateInput holds a new component and its starting recipe.
type CreateInput struct {
	Name        string
	Category    enums.ComponentCategory
	ExtraCost   decimal.Decimal
	Allergens   []string
	Nutrition   types.Nutrition
	Image       string
	Ingredients []RecipeLine
}

// UpdateInput changes the non-nil fields. A non-nil Ingredients replaces the
// whole recipe.
type UpdateInput struct {
	Name        *string
	Category    *enums.ComponentCategory
	ExtraCost   *decimal.Decimal
	Allergens   *[]string
	Nutrition   *types.Nutrition
	Image       *string
	Ingredients *[]RecipeLine
}

type service struct {
	tx   txRunner
	repo *Repository
}

func NewService(tx txRunner, repo *Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("component repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) List(ctx context.Context, category string) ([]models.ItemComponent, error) {
	if category != "" {
		if _, err := enums.ParseComponentCategory(category); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
	}
	rows, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list item components")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.ItemComponent, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return row, nil
}

func (s *service) ListIngredients(ctx context.Context, componentID int64) ([]IngredientLine, error) {
	if _, err := s.Get(ctx, componentID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Ingredients(ctx, componentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list component ingredients")
	}
	if rows == nil {
		rows = []IngredientLine{}
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.ItemComponent, error) {
	row := &models.ItemComponent{
		Name:      strings.TrimSpace(input.Name),
		Category:  input.Category,
		ExtraCost: input.ExtraCost,
		Allergens: normalizeAllergens(input.Allergens),
		Nutrition: input.Nutrition,
		Image:     input.Image,
	}
	if err := validate(row); err != nil {
		return nil, err
	}
	if err := validateRecipe(input.Ingredients); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item component")
		}
		return recipeError(repo.ApplyDiff(ctx, row.ID, DiffRecipe(nil, input.Ingredients)))
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.ItemComponent, error) {
	if input.Ingredients != nil {
		if err := validateRecipe(*input.Ingredients); err != nil {
			return nil, err
		}
	}

	var updated *models.ItemComponent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err)
		}
		input.apply(row)
		if err := validate(row); err != nil {
			return err
		}
		if err := repo.Save(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item component")
		}

		if input.Ingredients != nil {
			existing, err := repo.Recipe(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipe")
			}
			if err := recipeError(repo.ApplyDiff(ctx, id, DiffRecipe(existing, *input.Ingredients))); err != nil {
				return err
			}
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the component and, by cascade, its recipe rows. Components
// recorded on placed orders are kept.
func (s *service) Delete(ctx context.Context, id int64) (*models.ItemComponent, error) {
	var deleted *models.ItemComponent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err)
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item component is referenced by placed orders")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item component")
		}
		deleted = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (u UpdateInput) apply(row *models.ItemComponent) {
	if u.Name != nil {
		row.Name = strings.TrimSpace(*u.Name)
	}
	if u.Category != nil {
		row.Category = *u.Category
	}
	if u.ExtraCost != nil {
		row.ExtraCost = *u.ExtraCost
	}
	if u.Allergens != nil {
		row.Allergens = normalizeAllergens(*u.Allergens)
	}
	if u.Nutrition != nil {
		row.Nutrition = *u.Nutrition
	}
	if u.Image != nil {
		row.Image = *u.Image
	}
}

func validate(row *models.ItemComponent) error {
	if row.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !row.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", row.Category))
	}
	if row.ExtraCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "extra_cost must not be negative")
	}
	if field, bad := row.Nutrition.Negative(); bad {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("nutrition %s must not be negative", field))
	}
	return nil
}

func validateRecipe(lines []RecipeLine) error {
	seen := make(map[int64]struct{}, len(lines))
	for i, line := range lines {
		if line.IngredientID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient_id must be positive").WithDetails(map[string]any{"index": i})
		}
		if !line.QuantityRequired.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity_required must be greater than zero").WithDetails(map[string]any{"index": i})
		}
		if _, dup := seen[line.IngredientID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate ingredient in recipe").WithDetails(map[string]any{"ingredient_id": line.IngredientID})
		}
		seen[line.IngredientID] = struct{}{}
	}
	return nil
}

func normalizeAllergens(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func recipeError(err error) error {
	if err == nil {
		return nil
	}
	if db.IsForeignKeyViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "recipe references an unknown ingredient")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write recipe")
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item component not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item component")
}
