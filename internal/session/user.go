// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package session implements the browser session layer of the admin gateway.

It defines the authenticated principal (User), the Session tuple, and the
per-browser Store that owns both. The session is materialized from the
credential cookie on every request and injected into the request context;
there is no ambient global session state.

# Architecture

  - Store: Orchestrates login, logout, and rehydration against the remote auth API.
  - Cache: Versioned server-side session records in Redis.
  - Cookies: The credential channel shared with the route guard.

The Session tuple is exclusively owned by the Store; all other components read
it through [Store.Snapshot] and never mutate it directly.
*/
package session

import (
	"time"

	"github.com/scholaris/admin-gateway/internal/rbac"
)

// # Domain Entities

// User represents an authenticated principal of the Scholaris platform.
//
// # Invariants
//
// Role is always a member of the closed role set. TenantID is empty only for
// super_admin accounts — every other role belongs to exactly one school.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           rbac.Role `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	IsActive       bool      `json:"is_active"`
	DateJoined     time.Time `json:"date_joined"`
	TenantID       string    `json:"tenant_id,omitempty"`
}

// FullName returns the display name composed from first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Valid reports whether the user satisfies the principal invariants:
// a recognized role, and a tenant for every role except super_admin.
func (u *User) Valid() bool {
	if !u.Role.IsValid() {
		return false
	}
	if u.TenantID == "" && u.Role != rbac.RoleSuperAdmin {
		return false
	}
	return true
}
