package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

// Service applies recipe-driven inventory decrements and manual adjustments.
type Service interface {
	Apply(ctx context.Context, tx *gorm.DB, input Consumption) ([]Decrement, error)
	Adjust(ctx context.Context, tx *gorm.DB, input Adjustment) (*models.Ingredient, error)
	History(ctx context.Context, ingredientID int64, limit int) ([]models.InventoryMovement, error)
	OrderUsage(ctx context.Context, orderID int64) ([]Usage, error)
}

// Usage is the total an order drew from one ingredient.
type Usage struct {
	IngredientID int64           `json:"ingredient_id"`
	Consumed     decimal.Decimal `json:"consumed"`
}

// Consumption is one persisted instance component whose recipe must be drawn down.
type Consumption struct {
	OrderID       int64
	InstanceID    int64
	ComponentID   int64
	InstanceCount int
}

// Decrement describes one ingredient update issued for a consumption.
type Decrement struct {
	IngredientID int64
	Name         string
	Amount       decimal.Decimal
	Remaining    decimal.Decimal
	ReorderLevel decimal.Decimal
	LowStock     bool
}

// Adjustment is a manager-entered correction to an ingredient's quantity.
type Adjustment struct {
	IngredientID int64
	Delta        decimal.Decimal
	Note         string
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// Apply decrements every ingredient of the component's recipe by
// quantity_required x InstanceCount. Rows for the same ingredient are summed
// within the component; updates are issued one at a time on tx. A component
// without recipe rows is a no-op.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, input Consumption) ([]Decrement, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.ComponentID <= 0 {
		return nil, fmt.Errorf("component id is required")
	}
	if input.InstanceCount <= 0 {
		return nil, fmt.Errorf("instance count must be positive")
	}

	repo := s.repo.WithTx(tx)
	recipe, err := repo.RecipeFor(ctx, input.ComponentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load recipe")
	}
	if len(recipe) == 0 {
		return nil, nil
	}

	count := decimal.NewFromInt(int64(input.InstanceCount))
	amounts := map[int64]decimal.Decimal{}
	order := make([]int64, 0, len(recipe))
	for _, row := range recipe {
		if _, seen := amounts[row.IngredientID]; !seen {
			order = append(order, row.IngredientID)
		}
		amounts[row.IngredientID] = amounts[row.IngredientID].Add(row.QuantityRequired.Mul(count))
	}

	decrements := make([]Decrement, 0, len(order))
	for _, ingredientID := range order {
		amount := amounts[ingredientID]
		updated, err := repo.ApplyDelta(ctx, ingredientID, amount.Neg())
		if err != nil {
			if errors.Is(err, ErrIngredientMissing) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeReferentialGap, err, fmt.Sprintf("ingredient %d referenced by component %d", ingredientID, input.ComponentID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decrement ingredient")
		}

		movement := &models.InventoryMovement{
			IngredientID:    ingredientID,
			OrderID:         optionalID(input.OrderID),
			ItemInstanceID:  optionalID(input.InstanceID),
			ItemComponentID: optionalID(input.ComponentID),
			QtyDelta:        amount.Neg(),
			Reason:          enums.MovementReasonOrderConsumption,
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "record inventory movement")
		}

		decrements = append(decrements, Decrement{
			IngredientID: ingredientID,
			Name:         updated.Name,
			Amount:       amount,
			Remaining:    updated.Quantity,
			ReorderLevel: updated.ReorderLevel,
			LowStock:     updated.BelowReorder(),
		})
	}
	return decrements, nil
}

func (s *service) Adjust(ctx context.Context, tx *gorm.DB, input Adjustment) (*models.Ingredient, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.IngredientID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	if input.Delta.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	repo := s.repo.WithTx(tx)
	updated, err := repo.ApplyDelta(ctx, input.IngredientID, input.Delta)
	if err != nil {
		if errors.Is(err, ErrIngredientMissing) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ingredient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust ingredient")
	}

	movement := &models.InventoryMovement{
		IngredientID: input.IngredientID,
		QtyDelta:     input.Delta,
		Reason:       enums.MovementReasonManualAdjustment,
	}
	if input.Note != "" {
		note := input.Note
		movement.Note = &note
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record inventory movement")
	}
	return updated, nil
}

func (s *service) History(ctx context.Context, ingredientID int64, limit int) ([]models.InventoryMovement, error) {
	if ingredientID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id is required")
	}
	rows, err := s.repo.ListMovements(ctx, ingredientID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory movements")
	}
	return rows, nil
}

// OrderUsage folds the order's movements into one line per ingredient, in
// the order the ingredients were first touched.
func (s *service) OrderUsage(ctx context.Context, orderID int64) ([]Usage, error) {
	rows, err := s.repo.ListMovementsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order movements")
	}
	usage := []Usage{}
	index := map[int64]int{}
	for _, m := range rows {
		i, seen := index[m.IngredientID]
		if !seen {
			i = len(usage)
			index[m.IngredientID] = i
			usage = append(usage, Usage{IngredientID: m.IngredientID})
		}
		usage[i].Consumed = usage[i].Consumed.Sub(m.QtyDelta)
	}
	return usage, nil
}

func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
