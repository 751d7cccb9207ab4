package enums

import (
	"fmt"
	"strings"
)

// EmployeeRole is derived from the cashier row: managers have no manager.
type EmployeeRole string

const (
	EmployeeRoleManager EmployeeRole = "manager"
	EmployeeRoleCashier EmployeeRole = "cashier"
)

func (r EmployeeRole) String() string {
	return string(r)
}

func (r EmployeeRole) IsValid() bool {
	return r == EmployeeRoleManager || r == EmployeeRoleCashier
}

// ParseEmployeeRole converts raw input into EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	role := EmployeeRole(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("invalid employee role %q", value)
	}
	return role, nil
}
