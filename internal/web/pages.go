// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package web

import (
	"net/http"

	"github.com/scholaris/admin-gateway/internal/platform/respond"
	"github.com/scholaris/admin-gateway/internal/rbac"
	"github.com/scholaris/admin-gateway/internal/session"
)

// # Page Descriptors

// pageDescriptor tells the thin client what to render. The client owns the
// markup; the gateway owns what appears on it and who may see it.
type pageDescriptor struct {
	Page     string         `json:"page"`
	Title    string         `json:"title"`
	Role     rbac.Role      `json:"role,omitempty"`
	User     *session.User  `json:"user,omitempty"`
	Nav      []rbac.NavItem `json:"nav,omitempty"`
	SubmitTo string         `json:"submit_to,omitempty"`
	BackTo   string         `json:"back_to,omitempty"`
}

// PagesHandler serves the page descriptors and the dashboard dispatcher.
type PagesHandler struct{}

// NewPagesHandler constructs a new [PagesHandler].
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

/*
Login serves the tenant login page descriptor.

GET /login

Description: Public. An already-authenticated visitor is sent to their own
dashboard instead of being shown a login form.
*/
func (handler *PagesHandler) Login(writer http.ResponseWriter, request *http.Request) {
	if handler.redirectAuthenticated(writer, request) {
		return
	}

	respond.OK(writer, pageDescriptor{
		Page:     "login",
		Title:    "Sign in to Scholaris",
		SubmitTo: "/api/v1/auth/login",
	})
}

/*
SuperAdminLogin serves the super admin login page descriptor.

GET /super-admin-login
*/
func (handler *PagesHandler) SuperAdminLogin(writer http.ResponseWriter, request *http.Request) {
	if handler.redirectAuthenticated(writer, request) {
		return
	}

	respond.OK(writer, pageDescriptor{
		Page:     "super_admin_login",
		Title:    "Platform Administration",
		SubmitTo: "/api/v1/auth/super-admin/login",
	})
}

/*
Unauthorized serves the access denied page descriptor.

GET /unauthorized

Description: Public, so a freshly-denied user can always load it. When the
session is authenticated the descriptor carries the user's own dashboard as
the way back; anonymous visitors are pointed at the login page.
*/
func (handler *PagesHandler) Unauthorized(writer http.ResponseWriter, request *http.Request) {
	backTo := rbac.PathLogin
	current := session.Current(request.Context())
	if role, ok := current.Role(); ok {
		backTo = role.DashboardPath()
	}

	respond.OK(writer, pageDescriptor{
		Page:   "unauthorized",
		Title:  "Access denied",
		BackTo: backTo,
	})
}

/*
DispatchDashboard routes /dashboard to the session's role dashboard.

GET /dashboard

Description: The generic dashboard path exists so the client never has to
know role prefixes. Anonymous sessions fall back to the login page; an
authenticated session is forwarded to its role's dashboard.

Response:
  - 302: Location set to the role dashboard or the login page
*/
func (handler *PagesHandler) DispatchDashboard(writer http.ResponseWriter, request *http.Request) {
	current := session.Current(request.Context())

	role, ok := current.Role()
	if !ok {
		respond.Redirect(writer, request, rbac.PathLogin)
		return
	}

	respond.Redirect(writer, request, role.DashboardPath())
}

/*
Dashboard returns the role dashboard handler for one role.

GET /{role-prefix}/dashboard

Description: Mounted inside the role's route group, AFTER the in-page role
check, so by the time this runs the session is known to own the page. The
descriptor bundles the user and the role's menu so the client renders in one
round trip.
*/
func (handler *PagesHandler) Dashboard(role rbac.Role) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		current := session.Current(request.Context())

		respond.OK(writer, pageDescriptor{
			Page:  string(role) + "_dashboard",
			Title: dashboardTitle(role),
			Role:  role,
			User:  current.User,
			Nav:   rbac.NavItemsFor(role),
		})
	}
}

// redirectAuthenticated bounces logged-in visitors from login pages to their
// dashboard. Returns true when a redirect was written.
func (handler *PagesHandler) redirectAuthenticated(writer http.ResponseWriter, request *http.Request) bool {
	current := session.Current(request.Context())

	role, ok := current.Role()
	if !ok {
		return false
	}

	respond.Redirect(writer, request, role.DashboardPath())
	return true
}

func dashboardTitle(role rbac.Role) string {
	switch role {
	case rbac.RoleSuperAdmin:
		return "Platform Overview"
	case rbac.RoleTenantAdmin:
		return "School Administration"
	case rbac.RoleTeacher:
		return "Teacher Workspace"
	case rbac.RoleStudent:
		return "Student Home"
	case rbac.RoleParent:
		return "Parent Portal"
	}
	return "Dashboard"
}
