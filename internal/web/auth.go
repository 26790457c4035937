// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package web provides the HTTP delivery layer of the admin console.

It implements the gateway's own endpoints: the authentication lifecycle,
session and navigation introspection, page descriptors for the thin client,
and the role dashboards.

# Architecture

Handlers are thin mediation layers over the session store and the static role
policy:
  - Protocol: RESTful JSON for /api/v1, page descriptors for navigation.
  - Security: All role checks run against the materialized session.
  - Verification: Strict input validation before any remote call.

No business data is assembled here; resource payloads flow through the proxy
package instead.
*/
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris/admin-gateway/internal/audit"
	"github.com/scholaris/admin-gateway/internal/platform/middleware"
	requestutil "github.com/scholaris/admin-gateway/internal/platform/request"
	"github.com/scholaris/admin-gateway/internal/platform/respond"
	"github.com/scholaris/admin-gateway/internal/platform/validate"
	"github.com/scholaris/admin-gateway/internal/session"
)

// # Definitions & Constructors

// Validated field identifiers.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldTenantID = "tenant_id"
)

// AuthHandler implements the authentication endpoints.
//
// # Scope
//
// Login, logout, and nothing else. Password resets, registration, and MFA all
// live on the remote platform API and are reached through it directly.
type AuthHandler struct {
	auditor *audit.Dispatcher
	logger  *slog.Logger
}

// NewAuthHandler constructs a new [AuthHandler].
func NewAuthHandler(auditor *audit.Dispatcher, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auditor: auditor, logger: logger}
}

// Routes returns a [chi.Router] with the authentication endpoints.
//
// # Endpoints
//   - POST /login             : Tenant-scoped login (all roles except super admin).
//   - POST /super-admin/login : Platform super admin login.
//   - POST /logout            : Session termination.
func (handler *AuthHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/login", handler.login)
	router.Post("/super-admin/login", handler.superAdminLogin)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenant_id,omitempty"`
}

/*
login authenticates a tenant-scoped principal.

POST /api/v1/auth/login

Description: Validates input, delegates to the session store, and returns the
established session. The credential cookies are set on this response before
the body is written, so the very next navigation passes the edge guard.

Request:
  - Body: loginRequest (Email, Password, optional TenantID)

Response:
  - 200: sessionPayload: The authenticated session
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: UNAUTHORIZED: The remote API rejected the credentials
  - 503: SERVICE_UNAVAILABLE: The remote API is unreachable
*/
func (handler *AuthHandler) login(writer http.ResponseWriter, request *http.Request) {
	handler.handleLogin(writer, request, false)
}

/*
superAdminLogin authenticates a platform super admin.

POST /api/v1/auth/super-admin/login

Description: Same contract as login, against the dedicated super-admin
endpoint. Tenant scoping does not apply.
*/
func (handler *AuthHandler) superAdminLogin(writer http.ResponseWriter, request *http.Request) {
	handler.handleLogin(writer, request, true)
}

func (handler *AuthHandler) handleLogin(writer http.ResponseWriter, request *http.Request, superAdmin bool) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if input.TenantID != "" {
		validator.UUID(FieldTenantID, input.TenantID)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	store := session.FromContext(request.Context())
	err := store.Login(request.Context(), input.Email, input.Password, superAdmin, input.TenantID)

	// Audit both outcomes. Failures record the attempted email in the detail
	// field; successes record the resolved principal.
	event := audit.NewEvent(audit.TypeLoginFailure)
	event.IP = middleware.RealIP(request)
	event.Path = request.URL.Path

	if err != nil {
		event.Detail = "login failed for " + input.Email
		handler.auditor.Submit(event)
		respond.Error(writer, request, err)
		return
	}

	current := store.Snapshot()
	event.Type = audit.TypeLoginSuccess
	event.UserID = current.User.ID
	event.TenantID = current.User.TenantID
	event.Role = current.User.Role
	handler.auditor.Submit(event)

	respond.OK(writer, newSessionPayload(current))
}

/*
logout terminates the current session.

POST /api/v1/auth/logout

Description: Never fails. The remote invalidation is best-effort; the local
session and cookies are always cleared, and the response is always the
anonymous session.

Response:
  - 200: sessionPayload: The anonymous session
*/
func (handler *AuthHandler) logout(writer http.ResponseWriter, request *http.Request) {
	store := session.FromContext(request.Context())

	// Capture the principal before it is cleared, for the audit trail.
	event := audit.NewEvent(audit.TypeLogout)
	event.IP = middleware.RealIP(request)
	event.Path = request.URL.Path
	if current := store.Snapshot(); current.IsAuthenticated {
		event.UserID = current.User.ID
		event.TenantID = current.User.TenantID
		event.Role = current.User.Role
	}

	store.Logout(request.Context())
	handler.auditor.Submit(event)

	respond.OK(writer, newSessionPayload(store.Snapshot()))
}
