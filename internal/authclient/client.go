// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

/*
Package authclient implements the HTTP client for the remote Scholaris auth API.

The gateway holds no credential database of its own. Every authentication
decision is delegated to the platform REST API; this package is the single
place where those endpoints are spoken to.

Components:

  - Client: Implements the session layer's AuthClient contract over HTTP.
  - Verifier: Optional local JWKS verification used to short-circuit
    rehydration for tokens that are provably expired or forged.

Failures from the remote API are translated into apperr values so the rest of
the gateway never inspects raw HTTP status codes.
*/
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/scholaris/admin-gateway/internal/platform/apperr"
	"github.com/scholaris/admin-gateway/internal/platform/constants"
	"github.com/scholaris/admin-gateway/internal/session"
)

// # Client Configuration

const (
	// requestTimeout caps every remote auth call.
	requestTimeout = 10 * time.Second

	// meCacheSize bounds the in-process rehydration cache (token hash -> user).
	meCacheSize = 1024

	// meCacheTTL keeps rehydrated users only briefly, so deactivations on the
	// remote API propagate within a minute even without a new login.
	meCacheTTL = 1 * time.Minute
)

// Remote endpoint paths, relative to the API base URL.
const (
	pathLogin           = "/auth/login"
	pathSuperAdminLogin = "/auth/super-admin/login"
	pathLogout          = "/auth/logout"
	pathMe              = "/auth/me"
)

// Client talks to the remote Scholaris auth API. It implements
// [session.AuthClient].
type Client struct {
	baseURL    string
	httpClient *http.Client
	verifier   *Verifier
	logger     *slog.Logger

	// meCache short-circuits repeated /auth/me calls for the same token.
	meCache *expirable.LRU[string, session.User]
}

// New creates an auth API client.
//
// # Parameters
//   - baseURL: The remote API base URL, without trailing slash.
//   - verifier: Optional local token verifier; nil disables the fast path.
//   - logger: Structured logger for client events.
func New(baseURL string, verifier *Verifier, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		verifier:   verifier,
		logger:     logger.With(slog.String("component", "auth_client")),
		meCache:    expirable.NewLRU[string, session.User](meCacheSize, nil, meCacheTTL),
	}
}

// # Wire Types

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenant_id,omitempty"`
}

type loginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	SessionID    string        `json:"session_id"`
	User         *session.User `json:"user"`
}

// errorResponse covers the remote API's error payload variants.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func (e *errorResponse) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	}
	return e.Detail
}

// # Operations

/*
LoginTenant authenticates a tenant-scoped principal.

Description: Posts the credentials to the tenant login endpoint. A tenant ID,
when provided, pins the login to one school; the API otherwise resolves the
tenant from the email domain.

Returns:
  - *session.LoginResult: Tokens plus the authenticated user
  - error: apperr mapped from the remote status
*/
func (c *Client) LoginTenant(ctx context.Context, email, password, tenantID string) (*session.LoginResult, error) {
	return c.login(ctx, pathLogin, loginRequest{Email: email, Password: password, TenantID: tenantID})
}

/*
LoginSuperAdmin authenticates a platform super admin.

Description: Posts the credentials to the dedicated super-admin endpoint. The
endpoint never accepts tenant-scoped accounts, so a tenant admin cannot reach
platform scope through this path.
*/
func (c *Client) LoginSuperAdmin(ctx context.Context, email, password string) (*session.LoginResult, error) {
	return c.login(ctx, pathSuperAdminLogin, loginRequest{Email: email, Password: password})
}

func (c *Client) login(ctx context.Context, path string, payload loginRequest) (*session.LoginResult, error) {
	var response loginResponse
	if err := c.do(ctx, http.MethodPost, path, "", payload, &response); err != nil {
		return nil, err
	}

	if response.AccessToken == "" || response.User == nil {
		return nil, apperr.ServiceUnavailable("The platform API returned an incomplete login response")
	}
	if !response.User.Valid() {
		// An unrecognized role must fail closed at the boundary, not surface
		// as a half-working session.
		c.logger.Error("login_rejected_invalid_principal",
			slog.String("role", string(response.User.Role)),
			slog.String("user_id", response.User.ID),
		)
		return nil, apperr.Unauthorized("Your account role is not supported by this console")
	}

	return &session.LoginResult{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
		SessionID:    response.SessionID,
		User:         response.User,
	}, nil
}

/*
Logout asks the remote API to invalidate the access token.

Description: Best-effort by contract. The caller clears local state regardless
of the outcome here.
*/
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	c.meCache.Remove(session.HashToken(accessToken))
	return c.do(ctx, http.MethodPost, pathLogout, accessToken, nil, nil)
}

/*
Me reconstructs the user that owns an access token (rehydration).

Description: Resolution order is designed to keep remote traffic low:

 1. In-process cache keyed by token hash (bounded, short TTL).
 2. Local JWKS verification, which rejects expired or forged tokens
    without any network call.
 3. The remote /auth/me endpoint for the full profile.

Returns:
  - *session.User: The token's principal
  - error: apperr.Unauthorized for rejected tokens, transport errors otherwise
*/
func (c *Client) Me(ctx context.Context, accessToken string) (*session.User, error) {
	tokenHash := session.HashToken(accessToken)

	// 1. In-process cache.
	if cached, found := c.meCache.Get(tokenHash); found {
		user := cached
		return &user, nil
	}

	// 2. Local verification: cheap rejection of dead tokens.
	if c.verifier != nil {
		if _, err := c.verifier.Verify(accessToken); err != nil {
			c.logger.Debug("token_rejected_locally", slog.Any("error", err))
			return nil, apperr.Unauthorized("Your session has expired")
		}
	}

	// 3. Full profile from the remote API.
	var user session.User
	if err := c.do(ctx, http.MethodGet, pathMe, accessToken, nil, &user); err != nil {
		return nil, err
	}
	if !user.Valid() {
		return nil, apperr.Unauthorized("Your account role is not supported by this console")
	}

	c.meCache.Add(tokenHash, user)
	return &user, nil
}

// Ping probes the remote API's health endpoint. Used by the gateway's own
// readiness check: a gateway that cannot reach the API serves nothing useful.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

// # Transport

// do executes one request against the remote API and decodes the response.
// Non-2xx responses are returned as apperr values via [apperr.Upstream].
func (c *Client) do(ctx context.Context, method, path, bearer string, payload, out any) error {

	// 1. Encode the request body when present
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("authclient: failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	// 2. Build the request with the shared timeout and auth header
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("authclient: failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if bearer != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+bearer)
	}

	// 3. Execute
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("auth_api_unreachable",
			slog.String("path", path),
			slog.Any("error", err),
		)
		return apperr.ServiceUnavailable("The platform API is currently unreachable")
	}
	defer func() { _ = response.Body.Close() }()

	// 4. Map failures to the gateway's error vocabulary
	if response.StatusCode < 200 || response.StatusCode > 299 {
		var remote errorResponse
		raw, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		_ = json.Unmarshal(raw, &remote)
		return apperr.Upstream(response.StatusCode, remote.text())
	}

	// 5. Decode the success payload when the caller expects one
	if out != nil {
		if err := json.NewDecoder(response.Body).Decode(out); err != nil {
			return apperr.ServiceUnavailable("The platform API returned a malformed response")
		}
	}

	return nil
}
