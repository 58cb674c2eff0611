// Copyright (c) 2026 MEhub. All rights reserved.

package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/constants"
)

// # Session Cookies

// SetSessionCookie issues the signed token cookie to the client.
//
// The cookie is HttpOnly so page scripts can never read the token; browser
// code that needs identity reads the profile mirror cookie instead.
func SetSessionCookie(writer http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie removes the token cookie from the client.
func ClearSessionCookie(writer http.ResponseWriter, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// SetProfileCookie mirrors the public profile into a script-readable cookie
// as base64-encoded JSON. It carries no credentials; the token cookie stays
// authoritative.
func SetProfileCookie(writer http.ResponseWriter, profile *Profile, expiresAt time.Time, secure bool) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.ProfileCookieName,
		Value:    base64.StdEncoding.EncodeToString(payload),
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearProfileCookie removes the profile mirror cookie from the client.
func ClearProfileCookie(writer http.ResponseWriter, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.ProfileCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// # Credential Extraction

// TokenFromRequest extracts the raw signed token from the request, along
// with where it was found. The Authorization header takes precedence over
// the cookie; it marks an API client that is served statelessly.
func TokenFromRequest(request *http.Request) (string, Source) {
	if header := request.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			return token, SourceBearer
		}
	}

	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, SourceCookie
	}

	return "", SourceNone
}
