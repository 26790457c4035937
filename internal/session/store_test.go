// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package session_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/admin-gateway/internal/platform/apperr"
	"github.com/scholaris/admin-gateway/internal/platform/constants"
	"github.com/scholaris/admin-gateway/internal/session"
)

// # Test Doubles

// fakeAuthClient scripts the remote auth API for store tests.
type fakeAuthClient struct {
	loginResult *session.LoginResult
	loginErr    error
	meUser      *session.User
	meErr       error
	logoutErr   error

	loginCalls  int
	meCalls     int
	logoutCalls int
}

func (f *fakeAuthClient) LoginTenant(_ context.Context, _, _, _ string) (*session.LoginResult, error) {
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeAuthClient) LoginSuperAdmin(_ context.Context, _, _ string) (*session.LoginResult, error) {
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeAuthClient) Logout(_ context.Context, _ string) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuthClient) Me(_ context.Context, _ string) (*session.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.meUser, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore builds a store bound to a fresh request. accessToken and
// browserID, when non-empty, arrive as cookies the way a browser would send
// them.
func newTestStore(t *testing.T, client session.AuthClient, cache *session.Cache, accessToken, browserID string) (*session.Store, *httptest.ResponseRecorder) {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if accessToken != "" {
		request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: accessToken})
	}
	if browserID != "" {
		request.AddCookie(&http.Cookie{Name: constants.BrowserSessionCookieName, Value: browserID})
	}

	recorder := httptest.NewRecorder()
	store := session.NewStore(client, cache, session.NewCookies(false), testLogger(), recorder, request)
	return store, recorder
}

// cookieByName digs a named cookie out of the recorded response, or nil.
func cookieByName(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// # SetUser

/*
TestStore_SetUser verifies the tuple invariant: IsAuthenticated tracks the
user pointer exactly, and SetUser always clears IsLoading.
*/
func TestStore_SetUser(t *testing.T) {
	store, _ := newTestStore(t, &fakeAuthClient{}, nil, "", "")

	// Initial state is anonymous and settled.
	initial := store.Snapshot()
	assert.False(t, initial.IsAuthenticated)
	assert.False(t, initial.IsLoading)
	assert.Nil(t, initial.User)

	// User present -> authenticated.
	store.SetUser(teacherUser())
	current := store.Snapshot()
	assert.True(t, current.IsAuthenticated)
	assert.False(t, current.IsLoading)
	require.NotNil(t, current.User)

	// Back to nil -> anonymous again.
	store.SetUser(nil)
	current = store.Snapshot()
	assert.False(t, current.IsAuthenticated)
	assert.Nil(t, current.User)
}

// # Login

/*
TestStore_Login_Success verifies that a successful login persists the
credential cookies before exposing the authenticated session.
*/
func TestStore_Login_Success(t *testing.T) {
	user := teacherUser()
	client := &fakeAuthClient{
		loginResult: &session.LoginResult{
			AccessToken:  "access-a",
			RefreshToken: "refresh-a",
			SessionID:    "remote-session-1",
			User:         user,
		},
	}
	store, recorder := newTestStore(t, client, nil, "", "")

	err := store.Login(context.Background(), user.Email, "correct-password", false, "")
	require.NoError(t, err)

	current := store.Snapshot()
	assert.True(t, current.IsAuthenticated)
	assert.False(t, current.IsLoading)
	assert.Equal(t, user.ID, current.User.ID)
	assert.Equal(t, "access-a", store.AccessToken())

	// Both credential cookies were written, HttpOnly.
	access := cookieByName(recorder, constants.AccessTokenCookieName)
	require.NotNil(t, access)
	assert.Equal(t, "access-a", access.Value)
	assert.True(t, access.HttpOnly)

	refresh := cookieByName(recorder, constants.RefreshTokenCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-a", refresh.Value)
	assert.Equal(t, constants.RefreshTokenCookiePath, refresh.Path)
}

/*
TestStore_Login_Failure verifies that a rejected login clears any partial
state and propagates the failure untouched, so the UI can show the API's
own message.
*/
func TestStore_Login_Failure(t *testing.T) {
	rejection := apperr.Unauthorized("Invalid login credentials")
	client := &fakeAuthClient{loginErr: rejection}
	store, recorder := newTestStore(t, client, nil, "", "")

	err := store.Login(context.Background(), "t.sato@aozora.example", "wrong", false, "")

	// The exact error surfaces, never a swallowed generic.
	require.Error(t, err)
	assert.Equal(t, rejection, apperr.As(err))

	current := store.Snapshot()
	assert.False(t, current.IsAuthenticated)
	assert.False(t, current.IsLoading)
	assert.Nil(t, current.User)

	// Credentials were actively cleared.
	access := cookieByName(recorder, constants.AccessTokenCookieName)
	require.NotNil(t, access)
	assert.Equal(t, -1, access.MaxAge)
}

// # Logout

/*
TestStore_Logout_SurvivesRemoteFailure is the logout guarantee: a network
failure on remote invalidation must never leave the user logged in locally.
*/
func TestStore_Logout_SurvivesRemoteFailure(t *testing.T) {
	client := &fakeAuthClient{
		meUser:    teacherUser(),
		logoutErr: apperr.ServiceUnavailable("API down"),
	}
	store, recorder := newTestStore(t, client, nil, "access-a", "")
	require.NoError(t, store.LoadUser(context.Background()))
	require.True(t, store.Snapshot().IsAuthenticated)

	store.Logout(context.Background())

	assert.Equal(t, 1, client.logoutCalls, "remote invalidation was attempted")

	current := store.Snapshot()
	assert.False(t, current.IsAuthenticated)
	assert.Nil(t, current.User)
	assert.Empty(t, store.AccessToken())

	access := cookieByName(recorder, constants.AccessTokenCookieName)
	require.NotNil(t, access)
	assert.Equal(t, -1, access.MaxAge)
}

/*
TestStore_Logout_Anonymous verifies logging out an anonymous session is a
no-op remotely and stays anonymous.
*/
func TestStore_Logout_Anonymous(t *testing.T) {
	client := &fakeAuthClient{}
	store, _ := newTestStore(t, client, nil, "", "")

	store.Logout(context.Background())

	assert.Zero(t, client.logoutCalls, "no token, nothing to invalidate")
	assert.False(t, store.Snapshot().IsAuthenticated)
}

// # LoadUser (rehydration)

/*
TestStore_LoadUser_NoCredential verifies the anonymous fast path: no cookie,
no remote traffic, no error.
*/
func TestStore_LoadUser_NoCredential(t *testing.T) {
	client := &fakeAuthClient{meUser: teacherUser()}
	store, _ := newTestStore(t, client, nil, "", "")

	require.NoError(t, store.LoadUser(context.Background()))

	assert.Zero(t, client.meCalls)
	current := store.Snapshot()
	assert.False(t, current.IsAuthenticated)
	assert.False(t, current.IsLoading)
}

/*
TestStore_LoadUser_RemoteRehydration verifies the token is resolved through
the auth client and that repeating the call is idempotent.
*/
func TestStore_LoadUser_RemoteRehydration(t *testing.T) {
	user := teacherUser()
	client := &fakeAuthClient{meUser: user}
	store, _ := newTestStore(t, client, nil, "access-a", "")

	require.NoError(t, store.LoadUser(context.Background()))
	first := store.Snapshot()
	assert.True(t, first.IsAuthenticated)
	assert.Equal(t, user.ID, first.User.ID)

	// Idempotent: a second call leaves the session unchanged.
	require.NoError(t, store.LoadUser(context.Background()))
	assert.Equal(t, first, store.Snapshot())
}

/*
TestStore_LoadUser_RejectedCredential verifies that a 401 from the API deletes
the credential and yields an anonymous session WITHOUT an error.
*/
func TestStore_LoadUser_RejectedCredential(t *testing.T) {
	client := &fakeAuthClient{meErr: apperr.Unauthorized("Token expired")}
	store, recorder := newTestStore(t, client, nil, "stale-token", "")

	require.NoError(t, store.LoadUser(context.Background()))

	current := store.Snapshot()
	assert.False(t, current.IsAuthenticated)
	assert.Empty(t, store.AccessToken())

	access := cookieByName(recorder, constants.AccessTokenCookieName)
	require.NotNil(t, access)
	assert.Equal(t, -1, access.MaxAge)
}

/*
TestStore_LoadUser_TransportFailure verifies that an unreachable API is a
real error (the caller decides to proceed anonymous) and not a silent logout.
*/
func TestStore_LoadUser_TransportFailure(t *testing.T) {
	client := &fakeAuthClient{meErr: apperr.ServiceUnavailable("API down")}
	store, recorder := newTestStore(t, client, nil, "access-a", "")

	err := store.LoadUser(context.Background())
	require.Error(t, err)
	assert.False(t, store.Snapshot().IsAuthenticated)

	// The credential is NOT deleted: it may still be valid once the API is back.
	access := cookieByName(recorder, constants.AccessTokenCookieName)
	if access != nil {
		assert.NotEqual(t, -1, access.MaxAge)
	}
}

/*
TestStore_LoadUser_CacheFastPath verifies that a cached record bound to the
same token skips the remote call entirely.
*/
func TestStore_LoadUser_CacheFastPath(t *testing.T) {
	cache, _ := newTestCache(t)
	user := teacherUser()

	// Request 1: login populates the cache.
	loginClient := &fakeAuthClient{
		loginResult: &session.LoginResult{AccessToken: "access-a", User: user},
	}
	first, _ := newTestStore(t, loginClient, cache, "", "browser-1")
	require.NoError(t, first.Login(context.Background(), user.Email, "pw", false, ""))

	// Request 2: same browser, same token; rehydrates from the cache.
	client := &fakeAuthClient{meUser: user}
	second, _ := newTestStore(t, client, cache, "access-a", "browser-1")
	require.NoError(t, second.LoadUser(context.Background()))

	assert.Zero(t, client.meCalls, "cache hit must not call the remote API")
	assert.True(t, second.Snapshot().IsAuthenticated)
}

/*
TestStore_LoadUser_CacheBoundToToken verifies the token binding: a cached
record for a DIFFERENT token never resurrects; the remote API is asked.
*/
func TestStore_LoadUser_CacheBoundToToken(t *testing.T) {
	cache, _ := newTestCache(t)
	user := teacherUser()

	loginClient := &fakeAuthClient{
		loginResult: &session.LoginResult{AccessToken: "access-old", User: user},
	}
	first, _ := newTestStore(t, loginClient, cache, "", "browser-1")
	require.NoError(t, first.Login(context.Background(), user.Email, "pw", false, ""))

	client := &fakeAuthClient{meUser: user}
	second, _ := newTestStore(t, client, cache, "access-new", "browser-1")
	require.NoError(t, second.LoadUser(context.Background()))

	assert.Equal(t, 1, client.meCalls, "mismatched token hash must revalidate remotely")
}

// # Cross-Request Versioning

/*
TestStore_StaleLoginCannotResurrectLogout replays the shared-cache race: a
login response that lands after a newer logout must not overwrite the
tombstone.
*/
func TestStore_StaleLoginCannotResurrectLogout(t *testing.T) {
	cache, _ := newTestCache(t)
	user := teacherUser()
	ctx := context.Background()

	// Request 1: the user logs in (cache version 1).
	loginClient := &fakeAuthClient{
		loginResult: &session.LoginResult{AccessToken: "access-a", User: user},
	}
	first, _ := newTestStore(t, loginClient, cache, "", "browser-1")
	require.NoError(t, first.Login(ctx, user.Email, "pw", false, ""))

	// Request 2: the user logs out (adopts version 1, writes tombstone at 2).
	second, _ := newTestStore(t, &fakeAuthClient{}, cache, "access-a", "browser-1")
	require.NoError(t, second.LoadUser(ctx))
	second.Logout(ctx)

	// Request 3: a slow duplicate login response finally lands. Its store
	// never observed the logout, so its write carries a stale version.
	stale, _ := newTestStore(t, loginClient, cache, "", "browser-1")
	require.NoError(t, stale.Login(ctx, user.Email, "pw", false, ""))

	// The shared cache still holds the tombstone.
	record, err := cache.Get(ctx, "browser-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Nil(t, record.User, "tombstone survived the stale login write")
	assert.Equal(t, int64(2), record.Version)
}

// # Cache Metrics

// cacheOutcomeCount reads the current value of the session cache outcome
// counter for one label. The series is cumulative across the test process,
// so assertions compare deltas.
func cacheOutcomeCount(t *testing.T, outcome string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "scholaris_admin_session_cache_results_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

/*
TestStore_CacheOutcomesAreCounted verifies rehydration reports cache hits and
misses to the metrics layer.
*/
func TestStore_CacheOutcomesAreCounted(t *testing.T) {
	cache, _ := newTestCache(t)
	user := teacherUser()
	client := &fakeAuthClient{meUser: user}

	hitsBefore := cacheOutcomeCount(t, "hit")
	missesBefore := cacheOutcomeCount(t, "miss")

	// Request 1: nothing cached for this browser, so rehydration misses and
	// falls through to the remote API.
	first, _ := newTestStore(t, client, cache, "access-a", "browser-1")
	require.NoError(t, first.LoadUser(context.Background()))
	assert.Equal(t, missesBefore+1, cacheOutcomeCount(t, "miss"))
	assert.Equal(t, hitsBefore, cacheOutcomeCount(t, "hit"))

	// Request 2: the record written by request 1 is bound to the same token,
	// so this lookup is a hit.
	second, _ := newTestStore(t, client, cache, "access-a", "browser-1")
	require.NoError(t, second.LoadUser(context.Background()))
	assert.Equal(t, hitsBefore+1, cacheOutcomeCount(t, "hit"))
	assert.Equal(t, missesBefore+1, cacheOutcomeCount(t, "miss"))
}
