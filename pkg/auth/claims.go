package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

// AccessTokenPayload is what the login flow knows when minting a token.
type AccessTokenPayload struct {
	EmployeeID int64
	Role       enums.EmployeeRole
	// JTI ties the token to its refresh session; generated when empty.
	JTI string
}

// AccessTokenClaims is the JWT body handed to the till.
type AccessTokenClaims struct {
	EmployeeID int64              `json:"employee_id"`
	Role       enums.EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}
