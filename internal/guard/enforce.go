// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package guard

import (
	"log/slog"
	"net/http"

	"github.com/scholaris/admin-gateway/internal/audit"
	"github.com/scholaris/admin-gateway/internal/platform/ctxutil"
	"github.com/scholaris/admin-gateway/internal/platform/middleware"
	"github.com/scholaris/admin-gateway/internal/rbac"
	"github.com/scholaris/admin-gateway/internal/session"
)

// # In-Page Enforcement

// RequireRole protects a role-owned route group after session materialization.
//
// Unlike the edge guard this runs on a MATERIALIZED session: the credential
// has been resolved to a user (or to anonymous). Anonymous users go back to
// the area's login page; authenticated users of the wrong role go to the
// unauthorized page, and the denial is audited.
func RequireRole(role rbac.Role, auditor *audit.Dispatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			current := session.Current(request.Context())

			// Anonymous: the cookie existed at the edge but did not resolve
			// to a user (expired, revoked, forged).
			if !current.IsAuthenticated {
				target := rbac.PathLogin
				if role == rbac.RoleSuperAdmin {
					target = rbac.PathSuperAdminLogin
				}
				http.Redirect(writer, request, target, http.StatusFound)
				return
			}

			// Wrong role: authenticated but this area belongs to someone else.
			if !current.HasRole(role) {
				user := current.User

				event := audit.NewEvent(audit.TypeAccessDenied)
				event.UserID = user.ID
				event.TenantID = user.TenantID
				event.Role = user.Role
				event.IP = middleware.RealIP(request)
				event.Path = request.URL.Path
				event.Detail = "requires role " + string(role)
				auditor.Submit(event)

				ctxutil.GetLogger(request.Context()).Warn("access_denied",
					slog.String("user_id", user.ID),
					slog.String("role", string(user.Role)),
					slog.String("required_role", string(role)),
					slog.String("path", request.URL.Path),
				)

				http.Redirect(writer, request, rbac.PathUnauthorized, http.StatusFound)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAnyRole is the multi-role variant used by shared areas.
//
// With single-role principals this reduces to "role is in the set"; it exists
// for route groups that more than one role may enter (e.g. a shared profile
// area).
func RequireAnyRole(roles []rbac.Role, auditor *audit.Dispatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			current := session.Current(request.Context())

			if !current.IsAuthenticated {
				http.Redirect(writer, request, rbac.PathLogin, http.StatusFound)
				return
			}

			if !current.HasAnyRole(roles...) {
				user := current.User

				event := audit.NewEvent(audit.TypeAccessDenied)
				event.UserID = user.ID
				event.TenantID = user.TenantID
				event.Role = user.Role
				event.IP = middleware.RealIP(request)
				event.Path = request.URL.Path
				event.Detail = "requires one of the allowed roles"
				auditor.Submit(event)

				http.Redirect(writer, request, rbac.PathUnauthorized, http.StatusFound)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
