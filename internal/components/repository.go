package components

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
)

// IngredientLine is a recipe row joined with the ingredient it draws from.
type IngredientLine struct {
	ID               int64           `json:"id"`
	IngredientID     int64           `json:"ingredient_id"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
}

// Repository persists item components and their recipes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) List(ctx context.Context, category string) ([]models.ItemComponent, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var rows []models.ItemComponent
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.ItemComponent, error) {
	var row models.ItemComponent
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, component *models.ItemComponent) error {
	return r.db.WithContext(ctx).Create(component).Error
}

func (r *Repository) Save(ctx context.Context, component *models.ItemComponent) error {
	return r.db.WithContext(ctx).Save(component).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.ItemComponent{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *Repository) Recipe(ctx context.Context, componentID int64) ([]models.Recipe, error) {
	var rows []models.Recipe
	err := r.db.WithContext(ctx).
		Where("item_component_id = ?", componentID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Ingredients(ctx context.Context, componentID int64) ([]IngredientLine, error) {
	var rows []IngredientLine
	err := r.db.WithContext(ctx).
		Table("inventory_item_component AS r").
		Select("r.id, r.ingredient_id, i.name, i.unit, r.quantity_required").
		Joins("JOIN inventory i ON i.id = r.ingredient_id").
		Where("r.item_component_id = ?", componentID).
		Order("r.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ApplyDiff writes the recipe changes for one component.
func (r *Repository) ApplyDiff(ctx context.Context, componentID int64, diff RecipeDiff) error {
	conn := r.db.WithContext(ctx)
	for _, row := range diff.Removed {
		if err := conn.Delete(&models.Recipe{}, "id = ?", row.ID).Error; err != nil {
			return err
		}
	}
	for _, row := range diff.Updated {
		if err := conn.Model(&models.Recipe{}).
			Where("id = ?", row.ID).
			Update("quantity_required", row.QuantityRequired).Error; err != nil {
			return err
		}
	}
	for _, line := range diff.Added {
		row := models.Recipe{
			ItemComponentID:  componentID,
			IngredientID:     line.IngredientID,
			QuantityRequired: line.QuantityRequired,
		}
		if err := conn.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
