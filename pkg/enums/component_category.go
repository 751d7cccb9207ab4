package enums

import "fmt"

// ComponentCategory classifies an item component on the menu board.
type ComponentCategory string

const (
	ComponentCategorySide          ComponentCategory = "side"
	ComponentCategoryRegularEntree ComponentCategory = "regular_entree"
	ComponentCategoryPremiumEntree ComponentCategory = "premium_entree"
	ComponentCategoryDrink         ComponentCategory = "drink"
	ComponentCategoryAppetizer     ComponentCategory = "appetizer"
	ComponentCategoryExtra         ComponentCategory = "extra"
)

var validComponentCategories = []ComponentCategory{
	ComponentCategorySide,
	ComponentCategoryRegularEntree,
	ComponentCategoryPremiumEntree,
	ComponentCategoryDrink,
	ComponentCategoryAppetizer,
	ComponentCategoryExtra,
}

func (c ComponentCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known component category.
func (c ComponentCategory) IsValid() bool {
	for _, candidate := range validComponentCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsEntree reports whether the category counts toward a menu item's entree limit.
func (c ComponentCategory) IsEntree() bool {
	return c == ComponentCategoryRegularEntree || c == ComponentCategoryPremiumEntree
}

// ParseComponentCategory converts raw input into ComponentCategory.
func ParseComponentCategory(value string) (ComponentCategory, error) {
	for _, candidate := range validComponentCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid component category %q", value)
}
