package domain

import "time"

// Role identifies the privilege level carried by a token.
type Role string

// RoleSuperAdmin is the only role this service issues. Tokens carrying any other
// role are never treated as authenticated.
const RoleSuperAdmin Role = "SUPER_ADMIN"

// ClaimSet is the verified content of an admin token.
type ClaimSet struct {
	ID        string
	Identity  string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsSuperAdmin reports whether the claim set carries the elevated role.
func (c *ClaimSet) IsSuperAdmin() bool {
	return c != nil && c.Role == RoleSuperAdmin
}
