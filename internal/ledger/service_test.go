package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/dbtest"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	pkgerrors "github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/errors"
)

type fixture struct {
	client *db.Client
	svc    Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.New(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return fixture{client: client, svc: svc}
}

func (f fixture) ingredient(t *testing.T, name, qty, reorder string) models.Ingredient {
	t.Helper()
	row := models.Ingredient{
		Name:         name,
		Quantity:     decimal.RequireFromString(qty),
		Unit:         "lb",
		ReorderLevel: decimal.RequireFromString(reorder),
	}
	require.NoError(t, f.client.DB().Create(&row).Error)
	return row
}

func (f fixture) component(t *testing.T, name string, recipe map[int64]string) models.ItemComponent {
	t.Helper()
	comp := models.ItemComponent{Name: name, Category: enums.ComponentCategorySide, ExtraCost: decimal.Zero}
	require.NoError(t, f.client.DB().Create(&comp).Error)
	for ingredientID, qty := range recipe {
		row := models.Recipe{ItemComponentID: comp.ID, IngredientID: ingredientID, QuantityRequired: decimal.RequireFromString(qty)}
		require.NoError(t, f.client.DB().Create(&row).Error)
	}
	return comp
}

func (f fixture) quantity(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	var row models.Ingredient
	require.NoError(t, f.client.DB().First(&row, "id = ?", id).Error)
	return row.Quantity
}

func TestApplyScalesByInstanceCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.ingredient(t, "Rice", "10", "1")
	comp := f.component(t, "Fried Rice", map[int64]string{rice.ID: "2.0"})

	var decrements []Decrement
	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		decrements, err = f.svc.Apply(ctx, tx, Consumption{ComponentID: comp.ID, InstanceCount: 3})
		return err
	})
	require.NoError(t, err)
	require.Len(t, decrements, 1)
	require.True(t, decrements[0].Amount.Equal(decimal.NewFromInt(6)))
	require.Equal(t, "Rice", decrements[0].Name)
	require.True(t, f.quantity(t, rice.ID).Equal(decimal.NewFromInt(4)))

	movements, err := f.svc.History(ctx, rice.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.True(t, movements[0].QtyDelta.Equal(decimal.NewFromInt(-6)))
	require.Equal(t, enums.MovementReasonOrderConsumption, movements[0].Reason)
}

func TestApplyWithoutRecipeIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.ingredient(t, "Rice", "10", "1")
	comp := f.component(t, "Water Cup", nil)

	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		decrements, err := f.svc.Apply(ctx, tx, Consumption{ComponentID: comp.ID, InstanceCount: 5})
		require.Empty(t, decrements)
		return err
	})
	require.NoError(t, err)
	require.True(t, f.quantity(t, rice.ID).Equal(decimal.NewFromInt(10)))
}

func TestApplyAllowsNegativeStockAndFlagsLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chicken := f.ingredient(t, "Chicken", "1", "2")
	comp := f.component(t, "Orange Chicken", map[int64]string{chicken.ID: "1.5"})

	var decrements []Decrement
	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		decrements, err = f.svc.Apply(ctx, tx, Consumption{ComponentID: comp.ID, InstanceCount: 2})
		return err
	})
	require.NoError(t, err)
	require.Len(t, decrements, 1)
	require.True(t, decrements[0].LowStock)
	require.True(t, decrements[0].Remaining.Equal(decimal.NewFromInt(-2)))
	require.True(t, f.quantity(t, chicken.ID).Equal(decimal.NewFromInt(-2)))
}

func TestApplyTouchesEveryIngredientOfTheRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.ingredient(t, "Rice", "10", "0")
	egg := f.ingredient(t, "Egg", "12", "0")
	comp := f.component(t, "Fried Rice", map[int64]string{rice.ID: "0.5", egg.ID: "1"})

	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		decrements, err := f.svc.Apply(ctx, tx, Consumption{ComponentID: comp.ID, InstanceCount: 2})
		require.Len(t, decrements, 2)
		return err
	})
	require.NoError(t, err)
	require.True(t, f.quantity(t, rice.ID).Equal(decimal.NewFromInt(9)))
	require.True(t, f.quantity(t, egg.ID).Equal(decimal.NewFromInt(10)))
}

func TestApplyRollsBackWithTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.ingredient(t, "Rice", "10", "0")
	comp := f.component(t, "Fried Rice", map[int64]string{rice.ID: "1"})

	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := f.svc.Apply(ctx, tx, Consumption{ComponentID: comp.ID, InstanceCount: 4}); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodePersistence, "later step failed")
	})
	require.Error(t, err)
	require.True(t, f.quantity(t, rice.ID).Equal(decimal.NewFromInt(10)))

	movements, err := f.svc.History(ctx, rice.ID, 0)
	require.NoError(t, err)
	require.Empty(t, movements)
}

func TestApplyValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, nil, Consumption{ComponentID: 1, InstanceCount: 1})
	require.Error(t, err)

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := f.svc.Apply(ctx, tx, Consumption{ComponentID: 1, InstanceCount: 0})
		return err
	})
	require.Error(t, err)
}

func TestAdjustRecordsManualMovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rice := f.ingredient(t, "Rice", "10", "0")

	var updated *models.Ingredient
	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		updated, err = f.svc.Adjust(ctx, tx, Adjustment{IngredientID: rice.ID, Delta: decimal.RequireFromString("2.5"), Note: "delivery"})
		return err
	})
	require.NoError(t, err)
	require.True(t, updated.Quantity.Equal(decimal.RequireFromString("12.5")))

	movements, err := f.svc.History(ctx, rice.ID, 5)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, enums.MovementReasonManualAdjustment, movements[0].Reason)
	require.NotNil(t, movements[0].Note)
	require.Equal(t, "delivery", *movements[0].Note)

	err = f.client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := f.svc.Adjust(ctx, tx, Adjustment{IngredientID: 9999, Delta: decimal.NewFromInt(1)})
		return err
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
