package orders

import (
	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// NormalizedLine is the canonical per-line record persisted by SubmitOrder.
type NormalizedLine struct {
	MenuItemID int64
	Quantity   int
	// LinePrice is base price plus every selected extra cost, per unit.
	LinePrice  decimal.Decimal
	Components []int64
	RoleCounts map[enums.SelectionRole]int
}

// Normalize flattens validated cart lines. It performs no I/O.
func Normalize(lines []CartLine) ([]NormalizedLine, error) {
	if len(lines) == 0 {
		return nil, invalidCart("cartItems must not be empty", nil)
	}

	out := make([]NormalizedLine, 0, len(lines))
	for i, line := range lines {
		if line.MenuItem.ID <= 0 {
			return nil, invalidCart("cart line has no menu item", map[string]any{"line": i})
		}
		if line.Quantity <= 0 {
			return nil, invalidCart("quantity must be a positive integer", map[string]any{"line": i})
		}

		selections := line.Selections()
		n := NormalizedLine{
			MenuItemID: line.MenuItem.ID,
			Quantity:   line.Quantity,
			LinePrice:  line.MenuItem.BasePrice,
			Components: make([]int64, 0, len(selections)),
			RoleCounts: make(map[enums.SelectionRole]int, len(enums.SelectionRoles)),
		}
		for _, sel := range selections {
			n.LinePrice = n.LinePrice.Add(sel.Component.ExtraCost)
			n.Components = append(n.Components, sel.Component.ID)
			n.RoleCounts[sel.Role]++
		}
		out = append(out, n)
	}
	return out, nil
}
