// Package policy wires the gate library to the warranty domain: role
// profiles, ownership policies per resource, and the guard services call
// before every store operation. Actors are always passed in explicitly;
// nothing here reads ambient session state.
package policy

import (
	"context"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/auth"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/gate"
)

// Resource type names registered with the gate.
const (
	ResourceContract   = "contract"
	ResourceBatch      = "batch"
	ResourceRemittance = "remittance"
	ResourceUser       = "user"
)

// roleProfiles maps each platform role to its permission profile. Ownership
// policies narrow these further per record; the profile is the ceiling.
var roleProfiles = map[auth.Role]gate.Profile{
	auth.RoleSuperAdmin: gate.NewStaticProfile(string(auth.RoleSuperAdmin),
		gate.PermissionSuperAdmin,
	),
	auth.RoleAdmin: gate.NewStaticProfile(string(auth.RoleAdmin),
		"*:view", "*:list",
		"remittance:update",
		"batch:update",
		"user:approve",
	),
	auth.RoleDealerAdmin: gate.NewStaticProfile(string(auth.RoleDealerAdmin),
		"contract:*", "batch:*", "remittance:*",
	),
	auth.RoleDealerStaff: gate.NewStaticProfile(string(auth.RoleDealerStaff),
		"contract:view", "contract:list", "contract:create", "contract:update",
		"remittance:view", "remittance:list", "remittance:create",
	),
	// Providers are read-only and contract-scoped; remittances carry no
	// provider linkage, so no remittance permissions.
	auth.RoleProvider: gate.NewStaticProfile(string(auth.RoleProvider),
		"contract:view", "contract:list",
	),
}

// roleResolver resolves an actor to the static profile of its role.
type roleResolver struct{}

func (roleResolver) Resolve(_ context.Context, actor auth.Actor) (gate.Profile, error) {
	if profile, ok := roleProfiles[actor.Role]; ok {
		return profile, nil
	}
	return nil, nil
}

// CanAssignRole gates approval-type mutations: granting a platform role to a
// user. Only a super admin may mint admins; admin-or-above may mint dealer
// admins; dealer-level and provider roles need admin-or-above too.
func CanAssignRole(actor auth.Actor, target auth.Role) bool {
	switch target {
	case auth.RoleSuperAdmin, auth.RoleAdmin:
		return actor.Role == auth.RoleSuperAdmin
	case auth.RoleDealerAdmin, auth.RoleDealerStaff, auth.RoleProvider:
		return actor.IsPlatformAdmin()
	default:
		return false
	}
}
