// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/admin-gateway/internal/api"
	"github.com/scholaris/admin-gateway/internal/platform/config"
	"github.com/scholaris/admin-gateway/internal/platform/constants"
	"github.com/scholaris/admin-gateway/internal/proxy"
	"github.com/scholaris/admin-gateway/internal/rbac"
	"github.com/scholaris/admin-gateway/internal/session"
	"github.com/scholaris/admin-gateway/internal/web"
)

// # Full-Pipeline Fixture

// scriptedAuthClient plays the remote auth API for whole-router tests.
type scriptedAuthClient struct {
	users  map[string]*session.User // token -> principal
	reject bool
}

func (s *scriptedAuthClient) LoginTenant(_ context.Context, email, _, _ string) (*session.LoginResult, error) {
	if s.reject {
		return nil, errRejected
	}
	for token, user := range s.users {
		if user.Email == email && user.Role != rbac.RoleSuperAdmin {
			return &session.LoginResult{AccessToken: token, RefreshToken: "r-" + token, User: user}, nil
		}
	}
	return nil, errRejected
}

func (s *scriptedAuthClient) LoginSuperAdmin(_ context.Context, email, _ string) (*session.LoginResult, error) {
	for token, user := range s.users {
		if user.Email == email && user.Role == rbac.RoleSuperAdmin {
			return &session.LoginResult{AccessToken: token, User: user}, nil
		}
	}
	return nil, errRejected
}

func (s *scriptedAuthClient) Logout(context.Context, string) error { return nil }

func (s *scriptedAuthClient) Me(_ context.Context, token string) (*session.User, error) {
	if user, ok := s.users[token]; ok {
		return user, nil
	}
	return nil, errRejected
}

var errRejected = &rejectionError{}

type rejectionError struct{}

func (*rejectionError) Error() string { return "Invalid login credentials" }

func newTestGateway(t *testing.T, client session.AuthClient) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		ServerPort:  "8080",
		Environment: "development",
		APIBaseURL:  "http://api.invalid",
	}

	handlers := api.Handlers{
		Liveness:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
		Readiness: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
		Auth:      web.NewAuthHandler(nil, logger),
		Session:   web.NewSessionHandler(),
		Pages:     web.NewPagesHandler(),
		Proxy:     proxy.New(cfg.APIBaseURL, logger),
	}

	deps := api.Dependencies{
		AuthClient: client,
		Cookies:    session.NewCookies(false),
	}

	server := api.NewServer(context.Background(), cfg, logger, deps, handlers)
	return server.Handler()
}

func studentPrincipal() *session.User {
	return &session.User{
		ID:       "018f6b1a-0000-7000-8000-0000000000aa",
		Email:    "k.tanaka@aozora.example",
		Role:     rbac.RoleStudent,
		IsActive: true,
		TenantID: "018f6b1a-4242-7000-8000-000000000001",
	}
}

// do runs one request, carrying cookies from a previous response if given.
func do(handler http.Handler, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, target, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		if cookie.MaxAge >= 0 {
			request.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		}
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

// # Scenarios

/*
TestGateway_StudentJourney drives the whole student lifecycle through the
real router: anonymous bounce, login, own dashboard, foreign dashboard,
logout, and the post-logout bounce.
*/
func TestGateway_StudentJourney(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{
		users: map[string]*session.User{"token-student": studentPrincipal()},
	})

	// 1. Anonymous navigation to a protected page bounces to login.
	response := do(gateway, http.MethodGet, "/student/dashboard", "", nil)
	require.Equal(t, http.StatusFound, response.Code)
	assert.Equal(t, "/login", response.Header().Get("Location"))

	// 2. The session endpoint is reachable anonymously and says so.
	response = do(gateway, http.MethodGet, "/api/v1/session", "", nil)
	require.Equal(t, http.StatusOK, response.Code)
	var sessionEnvelope struct {
		Data struct {
			IsAuthenticated bool          `json:"is_authenticated"`
			User            *session.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &sessionEnvelope))
	assert.False(t, sessionEnvelope.Data.IsAuthenticated)
	assert.Nil(t, sessionEnvelope.Data.User)

	// 3. Login succeeds and sets the credential cookies.
	response = do(gateway, http.MethodPost, "/api/v1/auth/login",
		`{"email":"k.tanaka@aozora.example","password":"correct"}`, nil)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())

	cookies := response.Result().Cookies()
	var accessCookie *http.Cookie
	for _, cookie := range cookies {
		if cookie.Name == constants.AccessTokenCookieName {
			accessCookie = cookie
		}
	}
	require.NotNil(t, accessCookie)
	assert.True(t, accessCookie.HttpOnly)
	assert.Equal(t, "token-student", accessCookie.Value)

	// 4. The generic dashboard dispatches to the student area.
	response = do(gateway, http.MethodGet, "/dashboard", "", cookies)
	require.Equal(t, http.StatusFound, response.Code)
	assert.Equal(t, "/student/dashboard", response.Header().Get("Location"))

	// 5. The student dashboard renders with the principal and menu.
	response = do(gateway, http.MethodGet, "/student/dashboard", "", cookies)
	require.Equal(t, http.StatusOK, response.Code)
	var pageEnvelope struct {
		Data struct {
			Page string         `json:"page"`
			User *session.User  `json:"user"`
			Nav  []rbac.NavItem `json:"nav"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &pageEnvelope))
	assert.Equal(t, "student_dashboard", pageEnvelope.Data.Page)
	require.NotNil(t, pageEnvelope.Data.User)
	assert.Equal(t, "k.tanaka@aozora.example", pageEnvelope.Data.User.Email)
	require.NotEmpty(t, pageEnvelope.Data.Nav)
	assert.Equal(t, "/student/dashboard", pageEnvelope.Data.Nav[0].Path)

	// 6. A teacher page passes the EDGE (cookie exists) but fails the
	// IN-PAGE role check.
	response = do(gateway, http.MethodGet, "/teacher/dashboard", "", cookies)
	require.Equal(t, http.StatusFound, response.Code)
	assert.Equal(t, "/unauthorized", response.Header().Get("Location"))

	// 7. The unauthorized page offers the way back to the student's own area.
	response = do(gateway, http.MethodGet, "/unauthorized", "", cookies)
	require.Equal(t, http.StatusOK, response.Code)
	var unauthorizedEnvelope struct {
		Data struct {
			BackTo string `json:"back_to"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &unauthorizedEnvelope))
	assert.Equal(t, "/student/dashboard", unauthorizedEnvelope.Data.BackTo)

	// 8. Logout clears the credentials.
	response = do(gateway, http.MethodPost, "/api/v1/auth/logout", "", cookies)
	require.Equal(t, http.StatusOK, response.Code)
	var cleared *http.Cookie
	for _, cookie := range response.Result().Cookies() {
		if cookie.Name == constants.AccessTokenCookieName {
			cleared = cookie
		}
	}
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	// 9. Without the cookie the guard bounces again.
	response = do(gateway, http.MethodGet, "/student/dashboard", "", nil)
	require.Equal(t, http.StatusFound, response.Code)
	assert.Equal(t, "/login", response.Header().Get("Location"))
}

/*
TestGateway_SuperAdminAreaRedirect verifies the login tie-break: anonymous
super-admin navigation goes to the super-admin login, not the tenant login.
*/
func TestGateway_SuperAdminAreaRedirect(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{})

	response := do(gateway, http.MethodGet, "/super-admin/tenants", "", nil)
	require.Equal(t, http.StatusFound, response.Code)
	assert.Equal(t, "/super-admin-login", response.Header().Get("Location"))
}

/*
TestGateway_ForgedCookieEndsAnonymous verifies the two-tier contract end to
end: a garbage cookie passes the edge, materializes to anonymous, and tier 2
sends the visitor to login.
*/
func TestGateway_ForgedCookieEndsAnonymous(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{})

	forged := []*http.Cookie{{Name: constants.AccessTokenCookieName, Value: "forged-token"}}
	response := do(gateway, http.MethodGet, "/student/dashboard", "", forged)

	require.Equal(t, http.StatusFound, response.Code)
	assert.Equal(t, "/login", response.Header().Get("Location"))
}

/*
TestGateway_LoginFailureSurfacesMessage verifies a rejected login returns the
error payload rather than a silent or generic failure.
*/
func TestGateway_LoginFailureSurfacesMessage(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{reject: true})

	response := do(gateway, http.MethodPost, "/api/v1/auth/login",
		`{"email":"k.tanaka@aozora.example","password":"wrong"}`, nil)

	require.Equal(t, http.StatusInternalServerError, response.Code)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope["code"])
}

/*
TestGateway_LoginValidation verifies malformed submissions never reach the
remote API.
*/
func TestGateway_LoginValidation(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid_json", `{"email": `},
		{"missing_password", `{"email":"a@b.c"}`},
		{"bad_email", `{"email":"not-an-email","password":"pw"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := do(gateway, http.MethodPost, "/api/v1/auth/login", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, response.Code)
		})
	}
}

/*
TestGateway_NavigationRequiresSession verifies the navigation endpoint is
guarded while the session endpoint is not.
*/
func TestGateway_NavigationRequiresSession(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{
		users: map[string]*session.User{"token-student": studentPrincipal()},
	})

	// Anonymous: bounced by the edge.
	response := do(gateway, http.MethodGet, "/api/v1/navigation", "", nil)
	assert.Equal(t, http.StatusFound, response.Code)

	// Authenticated: the role's menu.
	cookies := []*http.Cookie{{Name: constants.AccessTokenCookieName, Value: "token-student"}}
	response = do(gateway, http.MethodGet, "/api/v1/navigation", "", cookies)
	require.Equal(t, http.StatusOK, response.Code)

	var envelope struct {
		Data struct {
			Role          rbac.Role      `json:"role"`
			DashboardPath string         `json:"dashboard_path"`
			Items         []rbac.NavItem `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))
	assert.Equal(t, rbac.RoleStudent, envelope.Data.Role)
	assert.Equal(t, "/student/dashboard", envelope.Data.DashboardPath)
	assert.NotEmpty(t, envelope.Data.Items)
}

/*
TestGateway_HealthEndpointsArePublic verifies probes bypass the guard.
*/
func TestGateway_HealthEndpointsArePublic(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{})

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		response := do(gateway, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, response.Code, path)
	}
}

/*
TestGateway_AuthenticatedLoginPageRedirects verifies a logged-in visitor is
sent from the login page to their dashboard.
*/
func TestGateway_AuthenticatedLoginPageRedirects(t *testing.T) {
	gateway := newTestGateway(t, &scriptedAuthClient{
		users: map[string]*session.User{"token-student": studentPrincipal()},
	})

	cookies := []*http.Cookie{{Name: constants.AccessTokenCookieName, Value: "token-student"}}
	response := do(gateway, http.MethodGet, "/login", "", cookies)

	require.Equal(t, http.StatusFound, response.Code)
	assert.Equal(t, "/student/dashboard", response.Header().Get("Location"))
}
