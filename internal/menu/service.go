package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the menu items a cart line is built from.
type Service interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id int64) (*models.MenuItem, error)
	Create(ctx context.Context, input CreateInput) (*models.MenuItem, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.MenuItem, error)
	Delete(ctx context.Context, id int64) (*models.MenuItem, error)
}

// CreateInput holds a validated new menu item.
type CreateInput struct {
	Name        string
	BasePrice   decimal.Decimal
	Description string
	Image       string
	MaxEntrees  int
	MaxSides    int
	HasDrink    bool
}

// UpdateInput carries the fields to change; nil fields are left alone.
type UpdateInput struct {
	Name        *string
	BasePrice   *decimal.Decimal
	Description *string
	Image       *string
	MaxEntrees  *int
	MaxSides    *int
	HasDrink    *bool
}

type service struct {
	tx   txRunner
	repo *Repository
}

// NewService builds the menu service.
func NewService(tx txRunner, repo *Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list menu items")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return item, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.MenuItem, error) {
	item := &models.MenuItem{
		Name:        strings.TrimSpace(input.Name),
		BasePrice:   input.BasePrice,
		Description: input.Description,
		Image:       input.Image,
		MaxEntrees:  input.MaxEntrees,
		MaxSides:    input.MaxSides,
		HasDrink:    input.HasDrink,
	}
	if err := validate(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create menu item")
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.MenuItem, error) {
	var updated *models.MenuItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err)
		}
		input.apply(item)
		if err := validate(item); err != nil {
			return err
		}
		if err := repo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update menu item")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the item and returns the row as it was. Items referenced by
// placed orders cannot be deleted.
func (s *service) Delete(ctx context.Context, id int64) (*models.MenuItem, error) {
	var deleted *models.MenuItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindByID(ctx, id)
		if err != nil {
			return lookupError(err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "menu item is referenced by placed orders")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete menu item")
		}
		deleted = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (u UpdateInput) apply(item *models.MenuItem) {
	if u.Name != nil {
		item.Name = strings.TrimSpace(*u.Name)
	}
	if u.BasePrice != nil {
		item.BasePrice = *u.BasePrice
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Image != nil {
		item.Image = *u.Image
	}
	if u.MaxEntrees != nil {
		item.MaxEntrees = *u.MaxEntrees
	}
	if u.MaxSides != nil {
		item.MaxSides = *u.MaxSides
	}
	if u.HasDrink != nil {
		item.HasDrink = *u.HasDrink
	}
}

func validate(item *models.MenuItem) error {
	switch {
	case item.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case item.BasePrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "base_price must not be negative")
	case item.MaxEntrees < 0 || item.MaxSides < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "maxentrees and maxsides must not be negative")
	}
	return nil
}

func lookupError(err error) error {
	if isNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu item")
}
