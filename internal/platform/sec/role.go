// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level of a customer account.
type UserRole string

const (
	// Workshop staff: may list every appointment and change statuses.
	RoleAdmin UserRole = "admin"

	// Default role for registered customers
	RoleCustomer UserRole = "customer"
)

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level. Unknown roles rank lowest.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 20
	case RoleCustomer:
		return 10
	default:
		return 0
	}
}
