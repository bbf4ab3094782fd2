package middleware

import (
	"context"

	"github.com/go-chi/jwtauth/v5"
)

// Actor names the caller for audit fields such as paid_by and decided_by.
// It prefers the email claim and falls back to user_id.
func Actor(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}

// Caller returns the employee_id claim and whether the token grants admin
// rights.
func Caller(ctx context.Context) (employeeID string, isAdmin bool) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", false
	}
	employeeID, _ = claims["employee_id"].(string)
	isAdmin, _ = claims["is_admin"].(bool)
	return employeeID, isAdmin
}
