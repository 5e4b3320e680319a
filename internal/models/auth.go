package models

import "github.com/golang-jwt/jwt/v5"

// UserRole distinguishes caller identities minted by the external
// identity service.
type UserRole string

// Known roles.
const (
	RoleStudent    UserRole = "STUDENT"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleAdmin      UserRole = "ADMIN"
)

// JWTClaims are the verified claims attached to each request. Tokens are
// issued elsewhere; this API only consumes them.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
