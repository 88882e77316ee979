package rbac

import (
	"testing"

	"github.com/fruitctl/fruitctl/internal/auth"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       auth.Role
		permission string
		expected   bool
	}{
		{auth.RoleAdmin, PermReadProposals, true},
		{auth.RoleAdmin, PermResolveProposals, true},
		{auth.RoleAdmin, PermUseIntegrations, true},

		{auth.RoleAgent, PermReadProposals, true},
		{auth.RoleAgent, PermUseIntegrations, true},
		{auth.RoleAgent, PermResolveProposals, false},

		{auth.Role("guest"), PermReadProposals, false},
		{auth.RoleAdmin, "drop_tables", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.permission, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.expected {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.expected)
			}
		})
	}
}
