package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
)

// Repository persists ingredients.
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

func (r *Repository) List(ctx context.Context) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// LowStock returns ingredients at or below their reorder level, lowest headroom first.
func (r *Repository) LowStock(ctx context.Context) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	err := r.db.WithContext(ctx).
		Where("quantity <= reorder_level").
		Order("quantity - reorder_level ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	var row models.Ingredient
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Ingredient) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) Save(ctx context.Context, row *models.Ingredient) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Ingredient{}, "id = ?", id).Error
}
