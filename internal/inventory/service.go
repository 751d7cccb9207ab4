package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/ledger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type adjuster interface {
	Adjust(ctx context.Context, tx *gorm.DB, input ledger.Adjustment) (*models.Ingredient, error)
	History(ctx context.Context, ingredientID int64, limit int) ([]models.InventoryMovement, error)
}

// Service manages the ingredient stock list.
type Service interface {
	List(ctx context.Context) ([]models.Ingredient, error)
	LowStock(ctx context.Context) ([]models.Ingredient, error)
	Get(ctx context.Context, id int64) (*models.Ingredient, error)
	Create(ctx context.Context, input CreateInput) (*models.Ingredient, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Ingredient, error)
	Delete(ctx context.Context, id int64) (*models.Ingredient, error)
	Adjust(ctx context.Context, id int64, delta decimal.Decimal, note string) (*models.Ingredient, error)
	Movements(ctx context.Context, id int64, limit int) ([]models.InventoryMovement, error)
}

type CreateInput struct {
	Name         string
	Quantity     decimal.Decimal
	Unit         string
	ReorderLevel decimal.Decimal
}

// UpdateInput changes the non-nil fields. Quantity edits here are not
// recorded as movements; use Adjust for audited corrections.
type UpdateInput struct {
	Name         *string
	Quantity     *decimal.Decimal
	Unit         *string
	ReorderLevel *decimal.Decimal
}

type service struct {
	tx     txRunner
	repo   *Repository
	ledger adjuster
	logg   *logger.Logger
}

func NewService(tx txRunner, repo *Repository, ledgerSvc adjuster, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, ledger: ledgerSvc, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}
	return rows, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.Ingredient, error) {
	rows, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list low stock")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Ingredient, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Ingredient, error) {
	row := &models.Ingredient{
		Name:         strings.TrimSpace(input.Name),
		Quantity:     input.Quantity,
		Unit:         strings.TrimSpace(input.Unit),
		ReorderLevel: input.ReorderLevel,
	}
	if err := validate(row); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, writeError(err, "create ingredient")
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Ingredient, error) {
	var updated *models.Ingredient
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err)
		}
		if input.Name != nil {
			row.Name = strings.TrimSpace(*input.Name)
		}
		if input.Quantity != nil {
			row.Quantity = *input.Quantity
		}
		if input.Unit != nil {
			row.Unit = strings.TrimSpace(*input.Unit)
		}
		if input.ReorderLevel != nil {
			row.ReorderLevel = *input.ReorderLevel
		}
		if err := validate(row); err != nil {
			return err
		}
		if err := repo.Save(ctx, row); err != nil {
			return writeError(err, "update ingredient")
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) (*models.Ingredient, error) {
	var deleted *models.Ingredient
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ingredient is used by a recipe")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete ingredient")
		}
		deleted = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Adjust applies a signed correction and records it as a manual movement.
func (s *service) Adjust(ctx context.Context, id int64, delta decimal.Decimal, note string) (*models.Ingredient, error) {
	var updated *models.Ingredient
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		row, err := s.ledger.Adjust(ctx, tx, ledger.Adjustment{IngredientID: id, Delta: delta, Note: strings.TrimSpace(note)})
		if err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"ingredient_id": id,
		"delta":         delta.String(),
		"remaining":     updated.Quantity.String(),
	})
	s.logg.Info(logCtx, "inventory.adjusted")
	if updated.BelowReorder() {
		s.logg.Warn(logCtx, "inventory.low_stock")
	}
	return updated, nil
}

func (s *service) Movements(ctx context.Context, id int64, limit int) ([]models.InventoryMovement, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, id, limit)
}

func validate(row *models.Ingredient) error {
	if row.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if row.ReorderLevel.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "reorder_level must not be negative")
	}
	return nil
}

func writeError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an ingredient with that name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load ingredient")
}
