// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scholaris/admin-gateway/internal/platform/apperr"
	"github.com/scholaris/admin-gateway/internal/platform/middleware"
)

// # Contracts & Types

// AuthClient defines the remote auth API operations the Store depends on.
//
// # Why an interface?
//
// Defining AuthClient here decouples the session layer from the HTTP client
// implementation, allowing tests to inject fakes that simulate network and
// credential failures.
type AuthClient interface {

	/*
		LoginTenant authenticates a tenant-scoped principal (tenant admin,
		teacher, student, parent). tenantID optionally pins the login to a
		specific school.

		Returns:
		  - *LoginResult: Tokens plus the authenticated user
		  - error: apperr.Unauthorized on bad credentials, transport failures otherwise
	*/
	LoginTenant(context context.Context, email, password, tenantID string) (*LoginResult, error)

	/*
		LoginSuperAdmin authenticates a platform super admin through the
		dedicated super-admin endpoint.
	*/
	LoginSuperAdmin(context context.Context, email, password string) (*LoginResult, error)

	/*
		Logout asks the remote API to invalidate the access token.
		Best-effort: callers must treat failures as non-blocking.
	*/
	Logout(context context.Context, accessToken string) error

	/*
		Me reconstructs the user from a stored access token (rehydration).

		Returns:
		  - *User: The principal the token belongs to
		  - error: apperr.Unauthorized when the token is expired or revoked
	*/
	Me(context context.Context, accessToken string) (*User, error)
}

// LoginResult is the remote login response consumed by the Store.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	User         *User
}

// # Store

// Store owns the Session tuple for one browser session.
//
// A Store is constructed per request by [Materialize] and handed to handlers
// through the request context. It binds together the credential cookies (on
// this request's writer), the shared Redis cache, and the remote auth client.
//
// # Concurrency
//
// A Store serves a single request and is not safe for concurrent use. Two
// overlapping logins from the same browser are not serialized — the cache's
// optimistic versioning only guarantees that a stale response cannot
// overwrite a newer state; within one request, last write wins.
type Store struct {
	session Session

	client  AuthClient
	cache   *Cache
	cookies *Cookies
	logger  *slog.Logger

	// Request binding for the credential channel.
	writer  http.ResponseWriter
	request *http.Request

	// browserID keys the shared cache; version is the last version observed
	// for this browser session, advanced on every write.
	browserID string
	version   int64

	// accessToken is the credential read from the cookie at materialization.
	accessToken string
}

// NewStore binds a session store to a single request/response pair.
func NewStore(client AuthClient, cache *Cache, cookies *Cookies, logger *slog.Logger, writer http.ResponseWriter, request *http.Request) *Store {
	store := &Store{
		client:  client,
		cache:   cache,
		cookies: cookies,
		logger:  logger,
		writer:  writer,
		request: request,
	}
	store.browserID = cookies.BrowserID(writer, request)
	store.accessToken, _ = cookies.AccessToken(request)
	return store
}

// # Operations

// SetUser atomically replaces the session's user and recomputes
// IsAuthenticated. It always leaves IsLoading false. It never fails.
func (s *Store) SetUser(user *User) {
	s.session = Session{
		User:            user,
		IsAuthenticated: user != nil,
		IsLoading:       false,
	}
}

/*
Login authenticates against the remote auth API and establishes the session.

Description: Uses the super-admin endpoint when superAdmin is set, otherwise
the tenant endpoint (optionally scoped to tenantID). On success the credential
cookies are persisted before returning and the session cache is advanced. On
failure any partial state is cleared and the failure is propagated, never
swallowed, so presentation code can surface the API's message.

Parameters:
  - context: context.Context
  - email, password: credentials
  - superAdmin: bool (selects the login endpoint)
  - tenantID: string (optional tenant scope; ignored for super admins)

Returns:
  - error: apperr.Unauthorized or transport failures
*/
func (s *Store) Login(context context.Context, email, password string, superAdmin bool, tenantID string) error {
	s.session.IsLoading = true

	var result *LoginResult
	var err error
	if superAdmin {
		result, err = s.client.LoginSuperAdmin(context, email, password)
	} else {
		result, err = s.client.LoginTenant(context, email, password, tenantID)
	}

	if err != nil {
		s.cookies.ClearCredentials(s.writer)
		s.SetUser(nil)
		return err
	}

	// Persist the credential before the session state so the guard sees it
	// on the very next navigation.
	s.cookies.WriteCredentials(s.writer, result.AccessToken, result.RefreshToken)
	s.accessToken = result.AccessToken

	s.putCache(context, &Record{
		User:      result.User,
		TokenHash: HashToken(result.AccessToken),
		Version:   s.version + 1,
	})

	s.SetUser(result.User)
	return nil
}

/*
Logout terminates the session.

Description: Asks the remote API to invalidate the credential, then clears
the local session unconditionally: a network failure on invalidation must
never leave the user unable to log out. The cache write is a tombstone with
an advanced version, so a stale login response arriving afterwards is
rejected rather than resurrecting the session.
*/
func (s *Store) Logout(context context.Context) {
	if s.accessToken != "" {
		if err := s.client.Logout(context, s.accessToken); err != nil {
			// Best-effort: log and continue. Local termination wins.
			s.logger.Warn("remote_logout_failed", slog.Any("error", err))
		}
	}

	s.putCache(context, &Record{
		User:    nil,
		Version: s.version + 1,
	})

	s.cookies.ClearCredentials(s.writer)
	s.accessToken = ""
	s.SetUser(nil)
}

/*
LoadUser rehydrates the session from the stored credential.

Description: Called once per request at materialization, and is idempotent;
calling it again without an intervening login leaves the session unchanged.
Resolution order: no credential → anonymous; cached record bound to this
token → cached user; otherwise the auth client reconstructs the user from the
token. A credential the remote API rejects is deleted, per the credential
lifecycle.

Returns:
  - error: Transport-level failures only. An invalid or expired credential is
    not an error, it yields an anonymous session.
*/
func (s *Store) LoadUser(context context.Context) error {
	s.session.IsLoading = true

	// Adopt the stored version even on the anonymous path, so the next write
	// from this browser advances past everything already recorded.
	record, err := s.cacheGet(context)
	if err != nil {
		s.logger.Warn("session_cache_unavailable", slog.Any("error", err))
	}
	if record != nil {
		s.version = record.Version
	}

	if s.accessToken == "" {
		s.SetUser(nil)
		return nil
	}

	// Fast path: a cached record bound to this exact token.
	if record != nil && record.User != nil && record.TokenHash == HashToken(s.accessToken) {
		middleware.ObserveSessionCache("hit")
		s.SetUser(record.User)
		return nil
	}

	middleware.ObserveSessionCache("miss")
	user, err := s.client.Me(context, s.accessToken)
	if err != nil {
		var appError *apperr.AppError
		if errors.As(err, &appError) && appError.HTTPStatus == http.StatusUnauthorized {
			// The server rejected the credential as expired/invalid: delete it.
			s.cookies.ClearCredentials(s.writer)
			s.accessToken = ""
			s.SetUser(nil)
			return nil
		}
		s.SetUser(nil)
		return err
	}

	s.putCache(context, &Record{
		User:      user,
		TokenHash: HashToken(s.accessToken),
		Version:   s.version + 1,
	})

	s.SetUser(user)
	return nil
}

// Snapshot returns a copy of the current Session tuple. Callers must read the
// session through this accessor and never mutate the Store's state directly.
func (s *Store) Snapshot() Session {
	return s.session
}

// AccessToken returns the credential bound to this request, or "" for an
// anonymous session. The resource proxy forwards it upstream as a bearer.
func (s *Store) AccessToken() string {
	return s.accessToken
}

// # Internals

// putCache writes a record and adopts its version on success. A stale write
// means a newer state (typically a logout) has already landed for this
// browser: the write is dropped and logged, never retried.
func (s *Store) putCache(context context.Context, record *Record) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(context, s.browserID, record); err != nil {
		if errors.Is(err, ErrStaleWrite) {
			middleware.ObserveSessionCache("stale")
			s.logger.Info("session_write_superseded", slog.Int64("version", record.Version))
			return
		}
		s.logger.Warn("session_cache_write_failed", slog.Any("error", err))
		return
	}
	s.version = record.Version
}

// cacheGet reads this browser's record, tolerating a missing cache.
func (s *Store) cacheGet(context context.Context) (*Record, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.Get(context, s.browserID)
}
