// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/admin-gateway/internal/platform/apperr"
)

/*
TestConstructors verifies the code and HTTP status of each error family.
*/
func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *apperr.AppError
		wantCode   string
		wantStatus int
	}{
		{"not_found", apperr.NotFound("Tenant"), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", apperr.Unauthorized("Session expired"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("Not your area"), "ACCESS_DENIED", http.StatusForbidden},
		{"validation", apperr.ValidationError("Bad input"), "VALIDATION_ERROR", http.StatusBadRequest},
		{"rate_limited", apperr.RateLimited(30), "RATE_LIMITED", http.StatusTooManyRequests},
		{"internal", apperr.Internal(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"unavailable", apperr.ServiceUnavailable("API down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

/*
TestUpstream verifies the mapping from remote API failures to gateway errors.
*/
func TestUpstream(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		message     string
		wantCode    string
		wantStatus  int
		wantMessage string
	}{
		{"remote_401_keeps_message", http.StatusUnauthorized, "Invalid login credentials", "UNAUTHORIZED", http.StatusUnauthorized, "Invalid login credentials"},
		{"remote_403", http.StatusForbidden, "Tenant suspended", "ACCESS_DENIED", http.StatusForbidden, "Tenant suspended"},
		{"remote_404", http.StatusNotFound, "", "NOT_FOUND", http.StatusNotFound, "Not Found"},
		{"remote_400", http.StatusBadRequest, "Missing field", "VALIDATION_ERROR", http.StatusBadRequest, "Missing field"},
		{"remote_418_generic", http.StatusTeapot, "", "UPSTREAM_REJECTED", http.StatusTeapot, "I'm a teapot"},
		{"remote_500_masked", http.StatusInternalServerError, "stack trace leaked", "UPSTREAM_ERROR", http.StatusServiceUnavailable, "The platform API is currently unavailable"},
		{"remote_502_masked", http.StatusBadGateway, "", "UPSTREAM_ERROR", http.StatusServiceUnavailable, "The platform API is currently unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apperr.Upstream(tt.status, tt.message)

			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantStatus, err.HTTPStatus)
			assert.Equal(t, tt.wantMessage, err.Message)
		})
	}
}

/*
TestUnwrap verifies the cause chain works with the errors package.
*/
func TestUnwrap(t *testing.T) {
	cause := errors.New("pgx: connection refused")
	err := apperr.Internal(cause)

	assert.ErrorIs(t, err, cause)

	// Wrapping on the way up keeps the AppError reachable.
	wrapped := fmt.Errorf("querying audit trail: %w", err)
	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)

	assert.True(t, apperr.IsAppError(wrapped))
	assert.False(t, apperr.IsAppError(cause))
	assert.Nil(t, apperr.As(cause))
}
