// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package constants provides centralized, immutable values for the admin gateway.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Cookie names for the credential channel.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "scholaris-admin"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Proxied upstream calls inherit this deadline through the request context.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// LoginRateLimitRPS throttles credential submissions much harder than
	// general traffic to slow down password guessing at the gateway edge.
	LoginRateLimitRPS = 1.0

	// LoginRateLimitBurst is the burst allowed for login attempts per IP.
	LoginRateLimitBurst = 5

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Credential Channel

const (
	// AccessTokenCookieName is the cookie holding the remote API access token.
	// The route guard reads this cookie at the network edge; it is the only
	// data available before any session code runs.
	AccessTokenCookieName = "scholaris_access_token"

	// RefreshTokenCookieName is the cookie holding the remote refresh token.
	// Scoped to the auth endpoints so it is never sent with page navigation.
	RefreshTokenCookieName = "scholaris_refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"

	// BrowserSessionCookieName identifies a browser session across logins and
	// logouts. It carries no credential; it only keys the server-side session
	// cache so that optimistic versioning spans the whole browser lifetime.
	BrowserSessionCookieName = "scholaris_sid"

	// BrowserSessionMaxAge bounds the browser session identity (30 days).
	BrowserSessionMaxAge = 30 * 24 * 60 * 60
)

// # Session Cache

const (
	// SessionCacheTTL is how long a materialized session survives in Redis
	// without being refreshed by a request.
	SessionCacheTTL = 12 * time.Hour

	// RedisPrefixSession is the key prefix for cached browser sessions.
	RedisPrefixSession = "admin:session:"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)
