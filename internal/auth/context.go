package auth

import (
	"context"
	"errors"

	"github.com/ferdiebergado/storyboard/internal/platform/jwt"
)

type ctxKey int

const claimsCtxKey ctxKey = iota + 1

var ErrNoUser = errors.New("no user in context")

// ContextWithUser returns a new context carrying the verified token claims.
//
//nolint:ireturn // returning context.Context is intentional: it's the standard context type
func ContextWithUser(baseCtx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(baseCtx, claimsCtxKey, claims)
}

// UserFromContext extracts the authenticated user's ID from the context.
func UserFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(claimsCtxKey).(*jwt.Claims)
	if !ok || claims.UserID == "" {
		return "", ErrNoUser
	}
	return claims.UserID, nil
}

// RoleFromContext returns the role of the authenticated user, or "" for an
// anonymous request.
func RoleFromContext(ctx context.Context) string {
	claims, ok := ctx.Value(claimsCtxKey).(*jwt.Claims)
	if !ok {
		return ""
	}
	return claims.Role
}
