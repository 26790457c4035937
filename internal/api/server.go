// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package api wires together the HTTP router, middleware chain, the two guard
tiers, and all handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/admin are allowed to import net/http server primitives.

# Request pipeline

Every request flows through the same spine: tracing, logging, timeout, rate
limit, recovery, metrics, CORS. Behind that sits the EDGE GUARD (cookie
presence only), then SESSION MATERIALIZATION, and finally the role groups,
each wrapped in its IN-PAGE role check. The ordering is the security model:
the cheap check runs before any session work, the real check runs after.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scholaris/admin-gateway/internal/audit"
	"github.com/scholaris/admin-gateway/internal/guard"
	"github.com/scholaris/admin-gateway/internal/platform/config"
	"github.com/scholaris/admin-gateway/internal/platform/constants"
	"github.com/scholaris/admin-gateway/internal/platform/middleware"
	"github.com/scholaris/admin-gateway/internal/proxy"
	"github.com/scholaris/admin-gateway/internal/rbac"
	"github.com/scholaris/admin-gateway/internal/session"
	"github.com/scholaris/admin-gateway/internal/web"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// Dependencies are the session-layer collaborators the router needs to build
// its middleware tiers.
type Dependencies struct {
	// AuthClient talks to the remote auth API.
	AuthClient session.AuthClient

	// Cache is the shared Redis session cache.
	Cache *session.Cache

	// Cookies is the credential channel configuration.
	Cookies *session.Cookies

	// Auditor records guard and auth decisions. May be nil.
	Auditor *audit.Dispatcher
}

// # Handler Registry

// Handlers groups all HTTP handler sets.
//
// # Usage
//
// New areas add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health/live handler, 200 whenever the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /health/ready handler, 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the login and logout endpoints.
	Auth *web.AuthHandler

	// Session serves session and navigation introspection.
	Session *web.SessionHandler

	// Pages serves page descriptors and the dashboard dispatcher.
	Pages *web.PagesHandler

	// Audit serves the super-admin view of the gateway audit trail.
	Audit *web.AuditHandler

	// Proxy forwards resource requests to the platform API.
	Proxy *proxy.Proxy
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain, both
// guard tiers, and all route groups.
func NewServer(appContext context.Context, cfg *config.Config, log *slog.Logger, deps Dependencies, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(appContext, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Health probes and metrics stay outside the guard: orchestrators and
	// scrapers carry no cookies.
	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// # Guarded Application
	r.Group(func(app chi.Router) {
		app.Use(guard.Edge(deps.Auditor))
		app.Use(session.Materialize(deps.AuthClient, deps.Cache, deps.Cookies))

		// Public pages (listed in the guard's allow-list).
		app.Get(rbac.PathLogin, h.Pages.Login)
		app.Get(rbac.PathSuperAdminLogin, h.Pages.SuperAdminLogin)
		app.Get(rbac.PathUnauthorized, h.Pages.Unauthorized)

		// The generic dashboard dispatcher and the root both resolve to the
		// role's own area.
		app.Get(rbac.PathDashboard, h.Pages.DispatchDashboard)
		app.Get("/", h.Pages.DispatchDashboard)

		// # JSON API
		app.Route("/api/v1", func(api chi.Router) {

			// Credential submissions get a much stricter bucket.
			api.Group(func(authAPI chi.Router) {
				authAPI.Use(middleware.RateLimit(appContext, constants.LoginRateLimitRPS, constants.LoginRateLimitBurst))
				authAPI.Mount("/auth", h.Auth.Routes())
			})

			api.Mount("/", h.Session.Routes())

			api.HandleFunc("/proxy/{resource}", h.Proxy.Handle)
			api.HandleFunc("/proxy/{resource}/*", h.Proxy.Handle)
		})

		// # Role Areas
		// Each role prefix carries its own in-page enforcement.
		for _, role := range rbac.AllRoles {
			registerRoleArea(app, role, deps.Auditor, h)
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// registerRoleArea mounts one role's route group behind its role check.
func registerRoleArea(app chi.Router, role rbac.Role, auditor *audit.Dispatcher, h Handlers) {
	app.Route(role.RoutePrefix(), func(area chi.Router) {
		area.Use(guard.RequireRole(role, auditor))

		area.Get("/dashboard", h.Pages.Dashboard(role))

		// The gateway audit trail is a platform concern: super admin only.
		if role == rbac.RoleSuperAdmin && h.Audit != nil {
			area.Get("/gateway-audit", h.Audit.List)
		}
	})
}

// Handler exposes the composed router, primarily for tests driving the full
// pipeline through httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
