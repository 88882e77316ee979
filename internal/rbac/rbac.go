package rbac

import "github.com/fruitctl/fruitctl/internal/auth"

// Permission constants
const (
	PermReadProposals    = "read_proposals"
	PermResolveProposals = "resolve_proposals"
	PermUseIntegrations  = "use_integrations"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[auth.Role][]string{
	auth.RoleAdmin: {
		PermReadProposals, PermResolveProposals, PermUseIntegrations,
	},
	auth.RoleAgent: {
		PermReadProposals, PermUseIntegrations,
		// Agent CANNOT: PermResolveProposals
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role auth.Role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
