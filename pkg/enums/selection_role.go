package enums

// SelectionRole is the cart slot a component was chosen for.
type SelectionRole string

const (
	SelectionRoleSide      SelectionRole = "side"
	SelectionRoleEntree    SelectionRole = "entrees"
	SelectionRoleDrink     SelectionRole = "drink"
	SelectionRoleAppetizer SelectionRole = "appetizer"
)

// SelectionRoles lists the roles in the order selections are flattened.
var SelectionRoles = []SelectionRole{
	SelectionRoleSide,
	SelectionRoleEntree,
	SelectionRoleDrink,
	SelectionRoleAppetizer,
}

func (r SelectionRole) String() string {
	return string(r)
}
