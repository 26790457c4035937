// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package audit records authentication and authorization decisions made at the
gateway.

The remote platform API keeps its own audit log of business operations; this
package covers only what the gateway itself decides: logins, logouts, guard
redirects, and in-page access denials. Events are written asynchronously to
PostgreSQL so the request path never blocks on the audit trail.

Components:

  - Event: One recorded decision.
  - Dispatcher: Buffered async writer with graceful drain on shutdown.
  - Store: The PostgreSQL persistence behind the dispatcher.
*/
package audit

import (
	"time"

	"github.com/scholaris/admin-gateway/internal/rbac"
	"github.com/scholaris/admin-gateway/pkg/uuid"
)

// # Event Model

// EventType classifies a recorded gateway decision.
type EventType string

const (
	// TypeLoginSuccess records an accepted credential submission.
	TypeLoginSuccess EventType = "login_success"

	// TypeLoginFailure records a rejected credential submission.
	TypeLoginFailure EventType = "login_failure"

	// TypeLogout records a session termination, local or remote.
	TypeLogout EventType = "logout"

	// TypeGuardRedirect records the edge guard bouncing an uncredentialed
	// request to a login page.
	TypeGuardRedirect EventType = "guard_redirect"

	// TypeAccessDenied records an authenticated user reaching a page owned
	// by another role.
	TypeAccessDenied EventType = "access_denied"
)

// Event is one auditable gateway decision.
//
// UserID and TenantID are empty for anonymous events (guard redirects and
// failed logins where the principal is unknown).
type Event struct {
	ID        string
	Type      EventType
	UserID    string
	TenantID  string
	Role      rbac.Role
	IP        string
	Path      string
	Detail    string
	CreatedAt time.Time
}

// NewEvent creates an event of the given type with a fresh ID and timestamp.
// Callers fill in the principal and request fields they know.
func NewEvent(eventType EventType) Event {
	return Event{
		ID:        uuid.New(),
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
	}
}
