package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
)

// ErrIngredientMissing is returned when an update matched no inventory row.
var ErrIngredientMissing = errors.New("ingredient not found")

// Repository manages recipe reads, ingredient quantity writes and the movement log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	RecipeFor(ctx context.Context, componentID int64) ([]models.Recipe, error)
	ApplyDelta(ctx context.Context, ingredientID int64, delta decimal.Decimal) (*models.Ingredient, error)
	CreateMovement(ctx context.Context, movement *models.InventoryMovement) error
	ListMovements(ctx context.Context, ingredientID int64, limit int) ([]models.InventoryMovement, error)
	ListMovementsByOrder(ctx context.Context, orderID int64) ([]models.InventoryMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) RecipeFor(ctx context.Context, componentID int64) ([]models.Recipe, error) {
	var rows []models.Recipe
	if err := r.db.WithContext(ctx).
		Where("item_component_id = ?", componentID).
		Order("ingredient_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplyDelta adds delta to the ingredient quantity and returns the updated row.
// The UPDATE takes the row lock that serializes concurrent orders.
func (r *repository) ApplyDelta(ctx context.Context, ingredientID int64, delta decimal.Decimal) (*models.Ingredient, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ?", ingredientID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrIngredientMissing
	}

	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", ingredientID).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, ingredientID int64, limit int) ([]models.InventoryMovement, error) {
	var rows []models.InventoryMovement
	q := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListMovementsByOrder(ctx context.Context, orderID int64) ([]models.InventoryMovement, error) {
	var rows []models.InventoryMovement
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
