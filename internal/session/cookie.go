// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package session

import (
	"net/http"

	"github.com/scholaris/admin-gateway/internal/platform/constants"
	"github.com/scholaris/admin-gateway/pkg/uuid"
)

// # Credential Channel

// Cookies writes and reads the credential cookies shared with the route
// guard. It is the single writer of the credential channel: no other
// component may set or delete these cookies.
type Cookies struct {
	// secure sets the Secure flag on every cookie (true behind HTTPS).
	secure bool
}

// NewCookies constructs the cookie manager.
func NewCookies(secure bool) *Cookies {
	return &Cookies{secure: secure}
}

// AccessToken returns the raw access token from the request, or ("", false)
// when the credential cookie is absent or empty.
func (c *Cookies) AccessToken(request *http.Request) (string, bool) {
	cookie, err := request.Cookie(constants.AccessTokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// WriteCredentials persists the access and refresh tokens after a successful
// login. The access token is host-wide so the guard sees it on every
// navigation; the refresh token is scoped to the auth endpoints only.
func (c *Cookies) WriteCredentials(writer http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    accessToken,
		Path:     "/",
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if refreshToken != "" {
		http.SetCookie(writer, &http.Cookie{
			Name:     constants.RefreshTokenCookieName,
			Value:    refreshToken,
			Path:     constants.RefreshTokenCookiePath,
			Secure:   c.secure,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// ClearCredentials deletes both credential cookies (logout, or a credential
// the remote API rejected as expired/invalid).
func (c *Cookies) ClearCredentials(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// BrowserID returns the stable browser-session identifier, minting and
// setting a new one when the request does not carry it yet.
//
// The identifier is not a credential — the guard ignores it. It only keys
// the server-side session cache so that version numbers survive across
// logins and logouts within the same browser.
func (c *Cookies) BrowserID(writer http.ResponseWriter, request *http.Request) string {
	cookie, err := request.Cookie(constants.BrowserSessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New()
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.BrowserSessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   constants.BrowserSessionMaxAge,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
