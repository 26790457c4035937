// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package authclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// # Local Token Verification

// Claims is the access token payload issued by the Scholaris auth service.
type Claims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`

	jwt.RegisteredClaims
}

// Verifier checks access tokens locally against the auth service's JWKS.
//
// Local verification lets a gateway reject an expired or forged token during
// rehydration without a round trip to the remote API. Keys are fetched and
// refreshed in the background by keyfunc.
type Verifier struct {
	keys   keyfunc.Keyfunc
	parser *jwt.Parser
}

// NewVerifier builds a Verifier backed by the given JWKS endpoint.
//
// # Parameters
//   - ctx: Governs the lifetime of the background JWKS refresh.
//   - jwksURL: The auth service's JWKS endpoint.
//   - logger: Structured logger for key fetch events.
func NewVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*Verifier, error) {
	keys, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("authclient: failed to load JWKS from %s: %w", jwksURL, err)
	}

	logger.Info("jwks loaded", slog.String("url", jwksURL))

	return &Verifier{
		keys: keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Verify parses and validates an access token, returning its claims.
//
// An expired, malformed, or badly signed token returns an error; the caller
// decides whether that means "delete the credential" or "fall back".
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := v.parser.ParseWithClaims(token, claims, v.keys.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("authclient: token verification failed: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("authclient: token is not valid")
	}

	return claims, nil
}
