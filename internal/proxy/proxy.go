// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package proxy forwards resource requests from the admin console to the remote
platform API.

All business data (tenants, students, teachers, parents, classes) lives behind
the REST API; the gateway adds exactly two things on the way through:

 1. Credential injection: The browser's cookie becomes a bearer token, so the
    access token never has to be readable by page scripts.
 2. A role gate: Each resource collection is reachable only by the roles that
    own it. This mirrors the remote API's own authorization and exists to cut
    obviously-denied traffic before it leaves the gateway.

The proxy is deliberately transparent otherwise: status codes, bodies, and
content types come back verbatim.
*/
package proxy

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/scholaris/admin-gateway/internal/platform/apperr"
	"github.com/scholaris/admin-gateway/internal/platform/constants"
	requestutil "github.com/scholaris/admin-gateway/internal/platform/request"
	"github.com/scholaris/admin-gateway/internal/platform/respond"
	"github.com/scholaris/admin-gateway/internal/rbac"
	"github.com/scholaris/admin-gateway/internal/session"
)

// # Resource Policy

// resourcePolicy maps each proxied collection to the roles allowed to touch
// it. A collection absent from the table is reachable by nobody (fail closed).
var resourcePolicy = map[string][]rbac.Role{
	"tenants":       {rbac.RoleSuperAdmin},
	"students":      {rbac.RoleTenantAdmin, rbac.RoleTeacher},
	"teachers":      {rbac.RoleTenantAdmin},
	"parents":       {rbac.RoleTenantAdmin},
	"classes":       {rbac.RoleTenantAdmin, rbac.RoleTeacher},
	"attendance":    {rbac.RoleTenantAdmin, rbac.RoleTeacher, rbac.RoleStudent, rbac.RoleParent},
	"grades":        {rbac.RoleTeacher, rbac.RoleStudent, rbac.RoleParent},
	"announcements": {rbac.RoleSuperAdmin, rbac.RoleTenantAdmin, rbac.RoleTeacher, rbac.RoleStudent, rbac.RoleParent},
	"profile":       {rbac.RoleSuperAdmin, rbac.RoleTenantAdmin, rbac.RoleTeacher, rbac.RoleStudent, rbac.RoleParent},
}

// AllowedRoles returns the roles that may access a resource collection.
// Unknown collections return an empty slice.
func AllowedRoles(resource string) []rbac.Role {
	roles := resourcePolicy[resource]
	out := make([]rbac.Role, len(roles))
	copy(out, roles)
	return out
}

// Allowed reports whether the role may access the resource collection.
func Allowed(resource string, role rbac.Role) bool {
	for _, allowed := range resourcePolicy[resource] {
		if allowed == role {
			return true
		}
	}
	return false
}

// # Proxy

// Proxy forwards authorized resource requests to the platform API.
type Proxy struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a resource proxy targeting the given API base URL.
func New(baseURL string, logger *slog.Logger) *Proxy {
	return &Proxy{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: constants.GlobalRequestTimeout,
			// Redirects from the API are returned to the browser as-is.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger.With(slog.String("component", "proxy")),
	}
}

/*
Handle serves /api/v1/proxy/{resource}/*.

Description: Applies the resource role gate against the materialized session,
then forwards the request upstream with the session's bearer token. The
upstream response is streamed back verbatim.

Failure modes:
  - 401 when the session is anonymous (the cookie did not resolve to a user)
  - 403 when the role does not own the collection
  - 503 when the platform API is unreachable
*/
func (p *Proxy) Handle(writer http.ResponseWriter, request *http.Request) {
	resource := requestutil.Param(request, "resource")
	current := session.Current(request.Context())

	// 1. The proxy is never anonymous
	if !current.IsAuthenticated {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	// 2. Role gate, fail closed for unknown collections
	role, _ := current.Role()
	if !Allowed(resource, role) {
		respond.Error(writer, request, apperr.Forbidden("Your role does not have access to this resource"))
		return
	}

	// 3. Rebuild the upstream URL: /api/v1/proxy/students/42 -> {base}/students/42
	rest := requestutil.Param(request, "*")
	upstreamURL := p.baseURL + "/" + resource
	if rest != "" {
		upstreamURL += "/" + rest
	}
	if request.URL.RawQuery != "" {
		upstreamURL += "?" + request.URL.RawQuery
	}

	// 4. Forward with the session's credential
	upstream, err := http.NewRequestWithContext(request.Context(), request.Method, upstreamURL, request.Body)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}
	if contentType := request.Header.Get("Content-Type"); contentType != "" {
		upstream.Header.Set("Content-Type", contentType)
	}
	upstream.Header.Set("Accept", "application/json")
	upstream.Header.Set(constants.HeaderAuthorization, "Bearer "+session.FromContext(request.Context()).AccessToken())

	response, err := p.httpClient.Do(upstream)
	if err != nil {
		p.logger.Warn("proxy_upstream_unreachable",
			slog.String("resource", resource),
			slog.Any("error", err),
		)
		respond.Error(writer, request, apperr.ServiceUnavailable("The platform API is currently unreachable"))
		return
	}
	defer func() { _ = response.Body.Close() }()

	// 5. Stream the upstream response back verbatim
	if contentType := response.Header.Get("Content-Type"); contentType != "" {
		writer.Header().Set("Content-Type", contentType)
	}
	writer.WriteHeader(response.StatusCode)
	if _, err := io.Copy(writer, response.Body); err != nil {
		p.logger.Warn("proxy_copy_failed", slog.Any("error", err))
	}
}
