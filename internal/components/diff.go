package components

import (
	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
)

// RecipeLine is one desired ingredient of a component's recipe.
type RecipeLine struct {
	IngredientID     int64
	QuantityRequired decimal.Decimal
}

// RecipeDiff is the set of writes that turns the stored recipe into the desired one.
type RecipeDiff struct {
	Added   []RecipeLine
	Updated []models.Recipe
	Removed []models.Recipe
}

// Empty reports whether applying the diff would change nothing.
func (d RecipeDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// DiffRecipe compares stored rows with the desired lines by ingredient id.
// Updated rows carry the new quantity. Output follows the order of the inputs.
func DiffRecipe(existing []models.Recipe, desired []RecipeLine) RecipeDiff {
	wanted := make(map[int64]decimal.Decimal, len(desired))
	for _, line := range desired {
		wanted[line.IngredientID] = line.QuantityRequired
	}
	stored := make(map[int64]struct{}, len(existing))

	var diff RecipeDiff
	for _, row := range existing {
		stored[row.IngredientID] = struct{}{}
		qty, keep := wanted[row.IngredientID]
		if !keep {
			diff.Removed = append(diff.Removed, row)
			continue
		}
		if !qty.Equal(row.QuantityRequired) {
			row.QuantityRequired = qty
			diff.Updated = append(diff.Updated, row)
		}
	}
	for _, line := range desired {
		if _, ok := stored[line.IngredientID]; !ok {
			diff.Added = append(diff.Added, line)
		}
	}
	return diff
}
