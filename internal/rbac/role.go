// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package rbac implements the static role policy of the Scholaris admin gateway.

It owns the closed set of platform roles and the process-wide mapping from each
role to its route prefix, dashboard path, and navigation menu. Entries are
established at init and never mutated at runtime.

# Architecture

This package is pure policy: no network, no storage, no request state. The
session layer answers "who is the user"; this package answers "what may a role
see and where does it live". Lookups are fail-closed — an unknown role owns no
routes and gets an empty menu, never an error.
*/
package rbac

// # Roles

// Role represents the authorization category of a platform principal.
//
// Every authenticated user carries exactly one role. Multi-role principals do
// not exist in the platform; see [HasAllRoles] for the consequence.
type Role string

const (
	// RoleSuperAdmin operates across all tenants; the only role that may
	// exist without an owning tenant.
	RoleSuperAdmin Role = "super_admin"

	// RoleTenantAdmin administers a single school (tenant).
	RoleTenantAdmin Role = "tenant_admin"

	// RoleTeacher manages courses and attendance within a tenant.
	RoleTeacher Role = "teacher"

	// RoleStudent is a learner account scoped to a tenant.
	RoleStudent Role = "student"

	// RoleParent is a guardian account linked to student records.
	RoleParent Role = "parent"
)

// AllRoles is the closed role set, in display order. The policy table is
// keyed by exactly these values.
var AllRoles = []Role{RoleSuperAdmin, RoleTenantAdmin, RoleTeacher, RoleStudent, RoleParent}

// IsValid reports whether the role is a member of the closed set.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// ParseRole converts a raw string (e.g. a JWT claim) into a [Role].
// Unknown values return ("", false) so callers fail closed.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	if !role.IsValid() {
		return "", false
	}
	return role, true
}

// # Route Ownership

// Public paths reachable without a credential. The route guard's allow-list
// is built from these.
const (
	PathLogin           = "/login"
	PathSuperAdminLogin = "/super-admin-login"
	PathUnauthorized    = "/unauthorized"
	PathDashboard       = "/dashboard"
)

// RoutePrefix returns the URL prefix owned by the role. Every path beginning
// with this prefix belongs to the role and no other.
//
// Unknown role → empty string (owns nothing).
func (r Role) RoutePrefix() string {
	switch r {
	case RoleSuperAdmin:
		return "/super-admin"
	case RoleTenantAdmin:
		return "/tenant-admin"
	case RoleTeacher:
		return "/teacher"
	case RoleStudent:
		return "/student"
	case RoleParent:
		return "/parent"
	}
	return ""
}

// DashboardPath returns the role-specific dashboard the /dashboard dispatcher
// forwards to. Unknown role → empty string, and the dispatcher falls back to
// the login page.
func (r Role) DashboardPath() string {
	prefix := r.RoutePrefix()
	if prefix == "" {
		return ""
	}
	return prefix + "/dashboard"
}
