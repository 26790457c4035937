// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package session

import (
	"context"
	"net/http"

	"github.com/scholaris/admin-gateway/internal/platform/ctxkey"
	"github.com/scholaris/admin-gateway/internal/platform/ctxutil"
)

// # Session Materialization

// Materialize builds the per-request session Store and injects it into the
// request context.
//
// # Flow
//
//  1. Bind a Store to this request's cookies and response writer.
//  2. Rehydrate: [Store.LoadUser] resolves the credential to a user
//     (cache hit, token verification, or remote /auth/me).
//  3. Inject the Store for downstream handlers and the role-enforcement tier.
//
// Materialization runs AFTER the route guard: the guard only needs cookie
// presence and must never pay the cost of building a session.
func Materialize(client AuthClient, cache *Cache, cookies *Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			logger := ctxutil.GetLogger(request.Context())
			store := NewStore(client, cache, cookies, logger, writer, request)

			if err := store.LoadUser(request.Context()); err != nil {
				// Transport failure against the auth API: the request
				// proceeds anonymously rather than failing hard.
				logger.Warn("session_rehydration_failed", "error", err)
			}

			ctx := context.WithValue(request.Context(), ctxkey.KeySession, store)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// FromContext retrieves the request's session Store.
//
// # Returns
//   - The materialized [*Store], or nil when [Materialize] did not run
//     (infrastructure endpoints outside the session chain).
func FromContext(ctx context.Context) *Store {
	store, ok := ctx.Value(ctxkey.KeySession).(*Store)
	if !ok {
		return nil
	}
	return store
}

// Current is a convenience accessor returning the Session tuple, fail-closed:
// when no store is materialized it returns the anonymous session.
func Current(ctx context.Context) Session {
	store := FromContext(ctx)
	if store == nil {
		return Session{}
	}
	return store.Snapshot()
}
