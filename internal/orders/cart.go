package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// MenuItemRef is the base menu item a cart line was built from.
type MenuItemRef struct {
	ID        int64           `json:"id"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// ComponentRef is one selected component as sent by the till.
type ComponentRef struct {
	ID        int64           `json:"id"`
	ExtraCost decimal.Decimal `json:"extra_cost"`
}

// CartLine is a validated cart entry with its selections grouped by role.
type CartLine struct {
	MenuItem  MenuItemRef
	Quantity  int
	Side      []ComponentRef
	Entrees   []ComponentRef
	Drink     []ComponentRef
	Appetizer []ComponentRef
}

// Selection is a component tagged with the slot it was chosen for.
type Selection struct {
	Role      enums.SelectionRole
	Component ComponentRef
}

// Selections flattens the role arrays in the order side, entrees, drink, appetizer.
func (l CartLine) Selections() []Selection {
	out := make([]Selection, 0, len(l.Side)+len(l.Entrees)+len(l.Drink)+len(l.Appetizer))
	for _, role := range enums.SelectionRoles {
		for _, c := range l.byRole(role) {
			out = append(out, Selection{Role: role, Component: c})
		}
	}
	return out
}

func (l CartLine) byRole(role enums.SelectionRole) []ComponentRef {
	switch role {
	case enums.SelectionRoleSide:
		return l.Side
	case enums.SelectionRoleEntree:
		return l.Entrees
	case enums.SelectionRoleDrink:
		return l.Drink
	case enums.SelectionRoleAppetizer:
		return l.Appetizer
	}
	return nil
}

type cartLineWire struct {
	MenuItem  *MenuItemRef    `json:"menuItem"`
	Quantity  json.Number     `json:"quantity"`
	Side      json.RawMessage `json:"side"`
	Entrees   json.RawMessage `json:"entrees"`
	Drink     json.RawMessage `json:"drink"`
	Appetizer json.RawMessage `json:"appetizer"`
}

// DecodeCart parses the raw cartItems value of an order request. Unknown
// fields are ignored; every structural problem is an InvalidCartError.
func DecodeCart(raw json.RawMessage) ([]CartLine, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, invalidCart("cartItems is required", nil)
	}
	if trimmed[0] != '[' {
		return nil, invalidCart("cartItems must be an array", nil)
	}

	var wire []cartLineWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, invalidCart("cartItems is malformed", map[string]any{"error": err.Error()})
	}
	if len(wire) == 0 {
		return nil, invalidCart("cartItems must not be empty", nil)
	}

	lines := make([]CartLine, 0, len(wire))
	for i, w := range wire {
		line, err := w.toLine(i)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (w cartLineWire) toLine(index int) (CartLine, error) {
	if w.MenuItem == nil || w.MenuItem.ID <= 0 {
		return CartLine{}, invalidCart("cart line has no menu item", map[string]any{"line": index})
	}

	qty, err := strconv.Atoi(w.Quantity.String())
	if err != nil || qty <= 0 || qty > math.MaxInt32 {
		return CartLine{}, invalidCart("quantity must be a positive integer", map[string]any{"line": index, "quantity": w.Quantity.String()})
	}

	line := CartLine{MenuItem: *w.MenuItem, Quantity: qty}
	roles := []struct {
		role enums.SelectionRole
		raw  json.RawMessage
		dst  *[]ComponentRef
	}{
		{enums.SelectionRoleSide, w.Side, &line.Side},
		{enums.SelectionRoleEntree, w.Entrees, &line.Entrees},
		{enums.SelectionRoleDrink, w.Drink, &line.Drink},
		{enums.SelectionRoleAppetizer, w.Appetizer, &line.Appetizer},
	}
	for _, r := range roles {
		comps, err := decodeRole(r.raw)
		if err != nil {
			return CartLine{}, invalidCart(fmt.Sprintf("%s must be an array of components", r.role), map[string]any{"line": index, "role": r.role.String()})
		}
		for _, c := range comps {
			if c.ID <= 0 {
				return CartLine{}, invalidCart("component id must be positive", map[string]any{"line": index, "role": r.role.String()})
			}
		}
		*r.dst = comps
	}
	return line, nil
}

func decodeRole(raw json.RawMessage) ([]ComponentRef, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("not an array")
	}
	var comps []ComponentRef
	if err := json.Unmarshal(trimmed, &comps); err != nil {
		return nil, err
	}
	return comps, nil
}
