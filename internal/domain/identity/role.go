package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the authorization level of a user
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a role name case-insensitively; empty yields RoleUser
func ParseRole(s string) (Role, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return RoleUser, true
	}
	r := Role(s)
	return r, r.IsValid()
}

// Actor is the authenticated caller of an application service
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the actor may perform administrative operations
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanSee reports whether the actor may read a resource owned by ownerID
func (a Actor) CanSee(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
