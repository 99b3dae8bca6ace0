package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the risk engine. The subject is the
// calling user or service.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Roles understood by the gRPC and HTTP policies. Service accounts may score
// but not read stored assessments.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleService = "service"
)

// KnownRole reports whether role is one of the Role constants.
func KnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAnalyst, RoleService:
		return true
	}
	return false
}
