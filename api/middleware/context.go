package middleware

import (
	"context"

	"github.com/teslo-shop/storefront/pkg/auth"
)

type contextKey string

const (
	ctxClaims contextKey = "session_claims"
	ctxToken  contextKey = "session_token"
)

// ClaimsFromContext returns the verified session claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *auth.SessionClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*auth.SessionClaims); ok {
		return v
	}
	return nil
}

// TokenFromContext returns the raw session token forwarded to the shop backend.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxToken).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Role.String()
	}
	return ""
}

// WithSession injects verified claims and their raw token into the context.
func WithSession(ctx context.Context, claims *auth.SessionClaims, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxClaims, claims)
	return context.WithValue(ctx, ctxToken, token)
}
