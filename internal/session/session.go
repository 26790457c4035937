// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package session

import "github.com/scholaris/admin-gateway/internal/rbac"

// # Session Tuple

// Session is the tuple (User | nil, IsAuthenticated, IsLoading).
//
// # Invariants
//
// IsAuthenticated is true if and only if User is non-nil. IsLoading is true
// only while a login or rehydration call is in flight; in every other
// reachable state it is false.
type Session struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"is_authenticated"`
	IsLoading       bool  `json:"is_loading"`
}

// # Access Hooks

// Presentation code asks authorization questions through these methods; none
// of them touch the network. All of them are fail-closed: an absent user
// never holds any role.

// HasRole reports whether the session's user holds exactly the given role.
func (s Session) HasRole(role rbac.Role) bool {
	if s.User == nil {
		return false
	}
	return s.User.Role == role
}

// HasAnyRole reports whether the user's role is a member of the given list.
func (s Session) HasAnyRole(roles ...rbac.Role) bool {
	if s.User == nil {
		return false
	}
	for _, role := range roles {
		if s.User.Role == role {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the user holds every role in the given list.
//
// A principal carries exactly one role, so this collapses to the same
// membership test as [Session.HasAnyRole] for single-element lists and is
// false whenever more than one distinct role is required. An empty list is
// fail-closed and reports false, matching [Session.HasAnyRole] and the
// absent-user case: no caller may gain access by asking for nothing. If the
// platform ever introduces multi-role principals, any/all must diverge
// (non-empty intersection vs. subset).
func (s Session) HasAllRoles(roles ...rbac.Role) bool {
	if s.User == nil || len(roles) == 0 {
		return false
	}
	for _, role := range roles {
		if s.User.Role != role {
			return false
		}
	}
	return true
}

// IsSuperAdmin reports whether the current user is a platform super admin.
func (s Session) IsSuperAdmin() bool { return s.HasRole(rbac.RoleSuperAdmin) }

// IsTenantAdmin reports whether the current user administers a tenant.
func (s Session) IsTenantAdmin() bool { return s.HasRole(rbac.RoleTenantAdmin) }

// IsTeacher reports whether the current user is a teacher.
func (s Session) IsTeacher() bool { return s.HasRole(rbac.RoleTeacher) }

// IsStudent reports whether the current user is a student.
func (s Session) IsStudent() bool { return s.HasRole(rbac.RoleStudent) }

// IsParent reports whether the current user is a parent.
func (s Session) IsParent() bool { return s.HasRole(rbac.RoleParent) }

// Role returns the current user's role, or ("", false) when unauthenticated.
func (s Session) Role() (rbac.Role, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Role, true
}
