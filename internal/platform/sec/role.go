// Copyright (c) 2026 MEhub. All rights reserved.

package sec

import "time"

// # User Roles

// Role represents the authorization level granted to an account.
type Role string

const (
	// Unrestricted system access: moderation, role changes, content removal
	RoleAdmin Role = "Admin"

	// Can publish and manage their own automation scripts
	RoleDeveloper Role = "Developer"

	// Default role for standard registered accounts
	RoleUser Role = "User"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// OneOf reports whether r matches any of the allowed roles exactly. Unlike
// [Role.AtLeast] there is no hierarchy shortcut: an action gated on
// Developer is not implicitly open to Admin unless Admin is listed.
func (r Role) OneOf(allowed ...Role) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleDeveloper:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// # Session Lifetime Policy

// SessionDuration returns how long a freshly started session for this role
// remains active. Higher-trust, higher-activity roles get longer sessions so
// they are interrupted less often.
//
// | Role      | Duration |
// |-----------|----------|
// | User      | 24 hours |
// | Developer | 7 days   |
// | Admin     | 30 days  |
func (r Role) SessionDuration() time.Duration {
	switch r {
	case RoleAdmin:
		return 30 * 24 * time.Hour
	case RoleDeveloper:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
