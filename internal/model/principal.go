package model

import "github.com/google/uuid"

// Role is the closed set of caller roles attached by the identity service.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Principal is the pre-verified caller identity attached to each request.
// The engine never verifies credentials itself; it only authorizes based on
// the principal handed over by the authentication middleware.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether the principal may read or mutate a resource
// owned by ownerID. Admins may access everything, customers only their own.
func (p Principal) CanAccess(ownerID uuid.UUID) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
