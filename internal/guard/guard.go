// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package guard implements the two layers of route protection.

# Edge guard (this file)

The edge guard runs before any session code. It sees only the request path
and whether a credential cookie EXISTS; it never decodes or verifies the
token. Its entire job is to bounce obviously-anonymous navigation to a login
page cheaply. A forged or expired cookie passes the edge on purpose: the
session layer materializes to anonymous and the in-page check catches it.

# In-page enforcement (enforce.go)

After the session is materialized, role-prefixed routes verify that the
authenticated user's role owns the prefix. Failures redirect to the
unauthorized page and are audited.
*/
package guard

import (
	"net/http"
	"strings"

	"github.com/scholaris/admin-gateway/internal/audit"
	"github.com/scholaris/admin-gateway/internal/platform/constants"
	"github.com/scholaris/admin-gateway/internal/platform/middleware"
	"github.com/scholaris/admin-gateway/internal/rbac"
)

// # Decisions

// Decision is the edge guard's verdict for one request.
type Decision int

const (
	// Allow passes the request through to session materialization.
	Allow Decision = iota

	// Redirect bounces the request to a login page.
	Redirect
)

// publicPaths are reachable without any credential. Login pages must be here
// or nobody could ever log in; the unauthorized page must be here or a
// misrouted user would loop forever.
var publicPaths = map[string]struct{}{
	rbac.PathLogin:                   {},
	rbac.PathSuperAdminLogin:         {},
	rbac.PathUnauthorized:            {},
	"/health/live":                   {},
	"/health/ready":                  {},
	"/metrics":                       {},
	"/api/v1/auth/login":             {},
	"/api/v1/auth/super-admin/login": {},

	// The client polls the session endpoint to decide what to render; an
	// anonymous answer is a valid answer, so it must not bounce to login.
	"/api/v1/session": {},
}

// IsPublic reports whether the path is reachable without a credential.
func IsPublic(path string) bool {
	_, ok := publicPaths[path]
	return ok
}

/*
Evaluate decides what the edge does with a request.

Description: Pure function of the path and credential presence, so the policy
is trivially table-testable. Public paths always pass. Protected paths with a
credential cookie pass (the cookie's validity is NOT checked here). Protected
paths without one are redirected to the login page that matches the area the
user was trying to reach: super-admin paths go to the super-admin login,
everything else to the tenant login.

Parameters:
  - path: The cleaned request path.
  - hasCredential: Whether the access token cookie exists.

Returns:
  - Decision: Allow or Redirect.
  - string: Redirect target; empty on Allow.
*/
func Evaluate(path string, hasCredential bool) (Decision, string) {
	if IsPublic(path) {
		return Allow, ""
	}

	if hasCredential {
		return Allow, ""
	}

	if strings.HasPrefix(path, rbac.RoleSuperAdmin.RoutePrefix()) {
		return Redirect, rbac.PathSuperAdminLogin
	}

	return Redirect, rbac.PathLogin
}

// # Middleware

// Edge returns the edge guard middleware.
//
// Redirects are recorded in the audit trail as anonymous events and counted
// in metrics. The auditor may be nil.
func Edge(auditor *audit.Dispatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Cookie presence only. No decoding at the edge.
			_, cookieErr := request.Cookie(constants.AccessTokenCookieName)
			decision, target := Evaluate(request.URL.Path, cookieErr == nil)

			if decision == Allow {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Record the bounce and send the browser to the login page.
			event := audit.NewEvent(audit.TypeGuardRedirect)
			event.IP = middleware.RealIP(request)
			event.Path = request.URL.Path
			event.Detail = "redirected to " + target
			auditor.Submit(event)

			middleware.ObserveGuardRedirect(target)
			http.Redirect(writer, request, target, http.StatusFound)
		})
	}
}
