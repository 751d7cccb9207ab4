package middleware

import (
	"context"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
)

type contextKey string

const (
	ctxEmployeeID contextKey = "employee_id"
	ctxRole       contextKey = "actor_role"
)

// EmployeeIDFromContext returns 0 for unauthenticated requests.
func EmployeeIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxEmployeeID).(int64); ok {
		return v
	}
	return 0
}

func RoleFromContext(ctx context.Context) enums.EmployeeRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.EmployeeRole); ok {
		return v
	}
	return ""
}

// WithEmployee seeds the context the way Auth does.
func WithEmployee(ctx context.Context, employeeID int64, role enums.EmployeeRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxEmployeeID, employeeID)
	return context.WithValue(ctx, ctxRole, role)
}
