package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/teslo-shop/storefront/pkg/enums"
)

// SessionPayload captures the identity embedded in a storefront session token.
type SessionPayload struct {
	UserID string
	Email  string
	Name   string
	Role   enums.Role
	JTI    string
}

// SessionClaims represents the typed JWT presented by browsers and forwarded to the backend.
type SessionClaims struct {
	UserID string     `json:"_id"`
	Email  string     `json:"email"`
	Name   string     `json:"name,omitempty"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the session may use the admin views.
func (c *SessionClaims) IsAdmin() bool {
	return c != nil && (c.Role == enums.RoleAdmin || c.Role == enums.RoleSuperUser)
}
