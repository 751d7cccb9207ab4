package auth

import (
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/internal/employees"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// LoginRequest is the till sign-in form: employee number and password.
type LoginRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Password   string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	Role         enums.EmployeeRole     `json:"role"`
	Employee     *employees.EmployeeDTO `json:"employee"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
