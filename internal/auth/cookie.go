// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package auth

import (
	"net/http"
	"time"
)

// TokenCookieName is the cookie that carries the signed token.
const TokenCookieName = "token"

// CookiePolicy fixes the security attributes of the token cookie.
// Secure is enabled in production deployments only so local development
// over plain HTTP keeps working.
type CookiePolicy struct {
	Secure bool
	MaxAge time.Duration
}

// SetToken attaches the token to the response as an HttpOnly,
// SameSite=Strict cookie scoped to the whole site.
func (p CookiePolicy) SetToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(p.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearToken expires the token cookie immediately.
func (p CookiePolicy) ClearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ReadToken returns the token carried by the request cookie, or "" if the
// cookie is absent.
func ReadToken(r *http.Request) string {
	c, err := r.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
