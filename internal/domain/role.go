package domain

import (
	"fmt"
	"strings"
)

// Role is the permission level of the current visitor.
type Role int

const (
	RoleUnauthenticated Role = iota
	RoleCustomer
	RoleAdmin
	RoleSuperAdmin
)

// Action is a role-gated storefront affordance.
type Action int

const (
	ActionPlaceOrder Action = iota
	ActionViewOwnOrders
	ActionViewAllOrders
	ActionManageCatalog
	ActionRegisterAdmin
)

// ParseRole maps the API role name to a Role. Unknown names are an error so a
// new backend role is never silently granted customer rights.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CUSTOMER":
		return RoleCustomer, nil
	case "ADMIN":
		return RoleAdmin, nil
	case "SUPER_ADMIN", "SUPERADMIN":
		return RoleSuperAdmin, nil
	default:
		return RoleUnauthenticated, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleUnauthenticated:
		return "UNAUTHENTICATED"
	case RoleCustomer:
		return "CUSTOMER"
	case RoleAdmin:
		return "ADMIN"
	case RoleSuperAdmin:
		return "SUPER_ADMIN"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Permits reports whether r may see the affordance a. This gates the UI only;
// the bookshop API enforces the same rules independently.
func (r Role) Permits(a Action) bool {
	switch r {
	case RoleUnauthenticated:
		return false
	case RoleCustomer:
		return a == ActionPlaceOrder || a == ActionViewOwnOrders
	case RoleAdmin:
		return a == ActionPlaceOrder || a == ActionViewAllOrders || a == ActionManageCatalog
	case RoleSuperAdmin:
		return a == ActionPlaceOrder || a == ActionViewAllOrders || a == ActionManageCatalog || a == ActionRegisterAdmin
	default:
		panic(fmt.Sprintf("unhandled role %d", int(r)))
	}
}

// Permissions lists every action r permits, in declaration order.
func (r Role) Permissions() []string {
	all := []struct {
		action Action
		name   string
	}{
		{ActionPlaceOrder, "place_order"},
		{ActionViewOwnOrders, "view_own_orders"},
		{ActionViewAllOrders, "view_all_orders"},
		{ActionManageCatalog, "manage_catalog"},
		{ActionRegisterAdmin, "register_admin"},
	}
	out := make([]string, 0, len(all))
	for _, p := range all {
		if r.Permits(p.action) {
			out = append(out, p.name)
		}
	}
	return out
}
