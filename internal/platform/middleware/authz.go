// Copyright (c) 2026 MEhub. All rights reserved.

// Package middleware provides the HTTP middleware chain for the MEhub API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like Logging, AuthN/AuthZ, Rate Limiting, and CORS.
package middleware

import (
	"net/http"
	"strings"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/ctxutil"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/respond"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token
// service implementation, allowing us to easily inject mocks during unit
// testing.
type TokenVerifier interface {
	Verify(tokenString string) (*sec.SessionClaims, error)
}

// Authenticate verifies the request's credential and installs the per-request
// session resolver.
//
// # Flow
//  1. Extract the signed token: Authorization header first, session cookie second.
//  2. If absent, the request proceeds as anonymous.
//  3. Verify the token signature (no session-row lookup here; this link is
//     stateless and every request pays only the signature check).
//  4. Inject [*sec.SessionClaims] and a shared [*session.Resolver] into the
//     request context for downstream use.
//
// A credential that fails verification is treated identically to no
// credential at all: the request continues as anonymous and RequireAuth or
// the action wrapper produces the 401 where authentication is actually
// required. A stale bearer token must never lock a caller out of public
// reads. Failing cookies are additionally cleared so the browser stops
// resending them.
func Authenticate(verifier TokenVerifier, sessions *session.Service, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token, source := session.TokenFromRequest(request)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if source == session.SourceNone {
				ctx := session.WithResolver(request.Context(), session.NewResolver(sessions, nil, session.SourceNone))
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(token)
			if err != nil {
				// Stale browser cookie: drop it so the browser stops resending it
				if source == session.SourceCookie {
					session.ClearSessionCookie(writer, secure)
					session.ClearProfileCookie(writer, secure)
				}

				ctx := session.WithResolver(request.Context(), session.NewResolver(sessions, nil, session.SourceNone))
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithClaims(request.Context(), claims)
			ctx = session.WithResolver(ctx, session.NewResolver(sessions, claims, source))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.SessionClaims] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetClaims(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose authenticated user holds none of the
// listed roles.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically
// implies [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.SessionClaims] exists in context (implies AuthN).
//  2. Check the user's role against the allow-list. The 401/403 distinction
//     is strict: anonymous is ALWAYS 401, wrong role is ALWAYS 403.
func RequireRole(roles ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetClaims(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !sec.Role(claims.Role).OneOf(roles...) {
				respond.Error(writer, request, apperr.Forbidden(forbiddenMessage(roles)))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// forbiddenMessage names the roles a rejected caller would have needed.
func forbiddenMessage(roles []sec.Role) string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return "This action requires one of the following roles: " + strings.Join(names, ", ")
}
