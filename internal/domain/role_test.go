package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"CUSTOMER":    RoleCustomer,
		"customer":    RoleCustomer,
		"ADMIN":       RoleAdmin,
		"SUPER_ADMIN": RoleSuperAdmin,
		" superadmin": RoleSuperAdmin,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRole("AUDITOR")
	assert.Error(t, err)
}

func TestRolePermits(t *testing.T) {
	tests := []struct {
		role    Role
		allowed []Action
		denied  []Action
	}{
		{
			role:   RoleUnauthenticated,
			denied: []Action{ActionPlaceOrder, ActionViewOwnOrders, ActionViewAllOrders, ActionManageCatalog, ActionRegisterAdmin},
		},
		{
			role:    RoleCustomer,
			allowed: []Action{ActionPlaceOrder, ActionViewOwnOrders},
			denied:  []Action{ActionViewAllOrders, ActionManageCatalog, ActionRegisterAdmin},
		},
		{
			role:    RoleAdmin,
			allowed: []Action{ActionPlaceOrder, ActionViewAllOrders, ActionManageCatalog},
			denied:  []Action{ActionViewOwnOrders, ActionRegisterAdmin},
		},
		{
			role:    RoleSuperAdmin,
			allowed: []Action{ActionPlaceOrder, ActionViewAllOrders, ActionManageCatalog, ActionRegisterAdmin},
			denied:  []Action{ActionViewOwnOrders},
		},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			for _, a := range tt.allowed {
				assert.True(t, tt.role.Permits(a), "action %d", a)
			}
			for _, a := range tt.denied {
				assert.False(t, tt.role.Permits(a), "action %d", a)
			}
		})
	}
}

func TestRolePermissions(t *testing.T) {
	assert.Empty(t, RoleUnauthenticated.Permissions())
	assert.Equal(t, []string{"place_order", "view_own_orders"}, RoleCustomer.Permissions())
	assert.Contains(t, RoleSuperAdmin.Permissions(), "register_admin")
}
