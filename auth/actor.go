// Package auth defines the actor identity passed explicitly into every
// authorization and store call, plus the signed-cookie session used by the
// HTTP layer to resolve that actor once per request. Nothing below the HTTP
// layer looks the actor up ambiently.
package auth

// Role is a platform role. Precedence (highest first): super admin, admin,
// dealer admin, dealer staff, provider.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleAdmin       Role = "admin"
	RoleDealerAdmin Role = "dealer_admin"
	RoleDealerStaff Role = "dealer_staff"
	RoleProvider    Role = "provider"
)

// Actor identifies the caller of an engine operation. The zero Actor is
// treated as unauthenticated everywhere.
type Actor struct {
	ID         string
	Email      string
	Role       Role
	DealerID   string
	ProviderID string
}

// IsZero reports whether the actor is unauthenticated.
func (a Actor) IsZero() bool { return a == Actor{} }

// IsPlatformAdmin reports whether the actor holds a platform-wide admin role.
func (a Actor) IsPlatformAdmin() bool {
	return a.Role == RoleSuperAdmin || a.Role == RoleAdmin
}
