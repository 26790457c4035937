// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris/admin-gateway/internal/platform/apperr"
	"github.com/scholaris/admin-gateway/internal/platform/respond"
	"github.com/scholaris/admin-gateway/internal/rbac"
	"github.com/scholaris/admin-gateway/internal/session"
)

// # Session Introspection

// errAnonymous is returned by endpoints that have no meaning without a user.
var errAnonymous = apperr.Unauthorized("Authentication required")

// sessionPayload is the wire form of the session tuple served to the client.
type sessionPayload struct {
	IsAuthenticated bool          `json:"is_authenticated"`
	IsLoading       bool          `json:"is_loading"`
	User            *session.User `json:"user"`
}

func newSessionPayload(current session.Session) sessionPayload {
	return sessionPayload{
		IsAuthenticated: current.IsAuthenticated,
		IsLoading:       current.IsLoading,
		User:            current.User,
	}
}

// navigationPayload carries the role's menu plus the places the client
// needs to route to.
type navigationPayload struct {
	Role          rbac.Role      `json:"role"`
	DashboardPath string         `json:"dashboard_path"`
	Items         []rbac.NavItem `json:"items"`
}

// SessionHandler serves the session and navigation read endpoints.
type SessionHandler struct{}

// NewSessionHandler constructs a new [SessionHandler].
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Routes returns a [chi.Router] with the introspection endpoints.
//
// # Endpoints
//   - GET /session    : The materialized session tuple.
//   - GET /navigation : The role's menu; 401 for anonymous sessions.
func (handler *SessionHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/session", handler.current)
	router.Get("/navigation", handler.navigation)

	return router
}

/*
current returns the materialized session tuple.

GET /api/v1/session

Description: Always succeeds. An anonymous session is a valid answer, not an
error; the client uses it to decide whether to render a login page.

Response:
  - 200: sessionPayload
*/
func (handler *SessionHandler) current(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, newSessionPayload(session.Current(request.Context())))
}

/*
navigation returns the navigation menu owned by the session's role.

GET /api/v1/navigation

Description: The menu is computed from the static role policy and is
deterministic for a given role. An anonymous session has no menu.

Response:
  - 200: navigationPayload
  - 401: UNAUTHORIZED: Anonymous session
*/
func (handler *SessionHandler) navigation(writer http.ResponseWriter, request *http.Request) {
	current := session.Current(request.Context())

	role, ok := current.Role()
	if !ok {
		respond.Error(writer, request, errAnonymous)
		return
	}

	respond.OK(writer, navigationPayload{
		Role:          role,
		DashboardPath: role.DashboardPath(),
		Items:         rbac.NavItemsFor(role),
	})
}
