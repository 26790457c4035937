// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package rbac

// # Navigation Policy

// NavItem is a single entry in a role's navigation menu.
//
// Icon is an identifier resolved by the UI component library, not a URL or
// file path; the gateway treats it as opaque.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

// navPolicy maps every role in the closed set to its ordered navigation menu.
//
// The table is written once at package init and must never be mutated at
// runtime. [NavItemsFor] hands out copies to enforce that.
var navPolicy = map[Role][]NavItem{
	RoleSuperAdmin: {
		{Label: "Dashboard", Path: "/super-admin/dashboard", Icon: "dashboard"},
		{Label: "Tenants", Path: "/super-admin/tenants", Icon: "building"},
		{Label: "Tenant Admins", Path: "/super-admin/tenant-admins", Icon: "shield"},
		{Label: "Audit Logs", Path: "/super-admin/audit-logs", Icon: "scroll"},
		{Label: "Settings", Path: "/super-admin/settings", Icon: "gear"},
	},
	RoleTenantAdmin: {
		{Label: "Dashboard", Path: "/tenant-admin/dashboard", Icon: "dashboard"},
		{Label: "Teachers", Path: "/tenant-admin/teachers", Icon: "briefcase"},
		{Label: "Students", Path: "/tenant-admin/students", Icon: "graduation-cap"},
		{Label: "Parents", Path: "/tenant-admin/parents", Icon: "users"},
		{Label: "Courses", Path: "/tenant-admin/courses", Icon: "book"},
		{Label: "Attendance", Path: "/tenant-admin/attendance", Icon: "calendar-check"},
		{Label: "Audit Logs", Path: "/tenant-admin/audit-logs", Icon: "scroll"},
	},
	RoleTeacher: {
		{Label: "Dashboard", Path: "/teacher/dashboard", Icon: "dashboard"},
		{Label: "My Courses", Path: "/teacher/courses", Icon: "book"},
		{Label: "Attendance", Path: "/teacher/attendance", Icon: "calendar-check"},
		{Label: "Students", Path: "/teacher/students", Icon: "graduation-cap"},
	},
	RoleStudent: {
		{Label: "Dashboard", Path: "/student/dashboard", Icon: "dashboard"},
		{Label: "My Courses", Path: "/student/courses", Icon: "book"},
		{Label: "My Attendance", Path: "/student/attendance", Icon: "calendar-check"},
	},
	RoleParent: {
		{Label: "Dashboard", Path: "/parent/dashboard", Icon: "dashboard"},
		{Label: "My Children", Path: "/parent/children", Icon: "users"},
		{Label: "Attendance", Path: "/parent/attendance", Icon: "calendar-check"},
	},
}

/*
NavItemsFor returns the static, ordered navigation menu for a role.

Description: Deterministic and order-stable across calls. An unrecognized
role yields an empty slice — fail-closed, never an error or panic.

Parameters:
  - role: Role

Returns:
  - []NavItem: Copy of the role's menu (safe for the caller to hold)
*/
func NavItemsFor(role Role) []NavItem {
	entries, ok := navPolicy[role]
	if !ok {
		return []NavItem{}
	}

	// Copy so callers can never mutate the process-wide table.
	items := make([]NavItem, len(entries))
	copy(items, entries)
	return items
}
