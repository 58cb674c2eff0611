// Copyright (c) 2026 MEhub. All rights reserved.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/constants"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/ctxutil"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// # Route Guard

// Page navigation classes. Paths are matched after UUID segments are
// normalized to ":id", so "/scripts/0198…beef" matches "/scripts/:id".
var (
	// publicPages are browsable by anyone.
	publicPages = map[string]struct{}{
		"/":               {},
		"/about":          {},
		"/search":         {},
		"/scripts":        {},
		"/scripts/:id":    {},
		"/developers/:id": {},
	}

	// protectedPages require a signed-in visitor.
	protectedPages = map[string]struct{}{
		"/dashboard":         {},
		"/dashboard/scripts": {},
		"/account":           {},
		"/account/sessions":  {},
		"/scripts/:id/edit":  {},
		"/scripts/submit":    {},
		"/admin":             {},
		"/admin/users":       {},
		"/admin/users/:id":   {},
	}

	// authGatePages only make sense for anonymous visitors.
	authGatePages = map[string]struct{}{
		constants.SignInPath: {},
		"/register":          {},
	}
)

// NormalizeRoute collapses UUID path segments into the ":id" placeholder so
// concrete URLs can be matched against the route classes above.
func NormalizeRoute(requestPath string) string {
	segments := strings.Split(requestPath, "/")
	for index, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := uuid.Parse(segment); err == nil {
			segments[index] = ":id"
		}
	}

	normalized := strings.Join(segments, "/")
	if len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}

// RouteGuard redirects page navigation based on sign-in state.
//
// # Flow
//  1. API paths are never touched; their handlers enforce authorization
//     themselves and answer with status codes, not redirects.
//  2. The path is normalized (UUID segments become ":id") and classified.
//  3. Anonymous visitors of protected pages are sent to the sign-in page,
//     signed-in visitors of auth-gate pages to the dashboard. Both use 303
//     See Other so the browser re-issues a GET.
//  4. Unclassified paths FAIL OPEN with a warning log: a page missing from
//     the classification must never lock users out of the whole site.
//
// The decision is stateless: claims presence only, no session-row lookup.
// A freshly revoked session can therefore still pass the guard until its
// token expires; authoritative checks happen in the handlers behind it.
func RouteGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. API passthrough ────────────────────────────────────────────
			if strings.HasPrefix(request.URL.Path, constants.APIPrefix) {
				next.ServeHTTP(writer, request)
				return
			}

			route := NormalizeRoute(request.URL.Path)
			signedIn := ctxutil.GetClaims(request.Context()) != nil

			// ── 2. Classified routes ──────────────────────────────────────────
			if _, ok := publicPages[route]; ok {
				next.ServeHTTP(writer, request)
				return
			}

			if _, ok := protectedPages[route]; ok {
				if !signedIn {
					http.Redirect(writer, request, constants.SignInPath, http.StatusSeeOther)
					return
				}
				next.ServeHTTP(writer, request)
				return
			}

			if _, ok := authGatePages[route]; ok {
				if signedIn {
					http.Redirect(writer, request, constants.DashboardPath, http.StatusSeeOther)
					return
				}
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Fail open ──────────────────────────────────────────────────
			ctxutil.GetLogger(request.Context()).WarnContext(request.Context(),
				"route_guard_unclassified_path",
				slog.String("route", route),
			)
			next.ServeHTTP(writer, request)
		})
	}
}

// # Sliding Session Renewal

// TokenIssuer defines the interface needed to mint fresh tokens during
// sliding renewal.
type TokenIssuer interface {
	Generate(userID, email, username, role, sessionID string) (string, error)
}

// SessionRenewal transparently extends browser sessions that are past the
// half-life of their role's lifetime.
//
// # Flow
//  1. Only cookie-backed requests participate; bearer clients manage their
//     own token lifecycle.
//  2. The shared request resolver supplies the session row (memoized, so the
//     authorization wrapper later in the chain reuses the same lookup).
//  3. An expired or revoked session is never extended; the check happens
//     before any half-life comparison and the store re-checks liveness in
//     the UPDATE itself, so a racing revocation wins.
//  4. On extension, a fresh signed token and profile mirror cookie are
//     issued alongside the moved expiry.
//
// Renewal failures are logged and swallowed: the user still holds a valid
// grant, it just was not extended this time.
func SessionRenewal(sessions *session.Service, issuer TokenIssuer, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			resolver := session.ResolverFrom(request.Context())
			if resolver.Source() != session.SourceCookie {
				next.ServeHTTP(writer, request)
				return
			}

			grant, err := resolver.Grant(request.Context())
			if err != nil || grant == nil {
				next.ServeHTTP(writer, request)
				return
			}

			if session.ShouldExtend(&grant.Session, grant.Profile.Role, timeNow()) {
				renewed := *grant
				logger := ctxutil.GetLogger(request.Context())

				activeUntil, err := sessions.Extend(request.Context(), grant.Session.ID, grant.Profile.Role)
				if err != nil {
					logger.WarnContext(request.Context(), "session_renewal_skipped",
						slog.String("session_id", grant.Session.ID),
						slog.Any("error", err),
					)
					next.ServeHTTP(writer, request)
					return
				}
				renewed.Session.ActiveUntil = activeUntil

				token, err := issuer.Generate(
					grant.Profile.ID,
					grant.Profile.Email,
					grant.Profile.Username,
					string(grant.Profile.Role),
					grant.Session.ID,
				)
				if err != nil {
					logger.ErrorContext(request.Context(), "session_renewal_token_failed",
						slog.String("session_id", grant.Session.ID),
						slog.Any("error", err),
					)
					next.ServeHTTP(writer, request)
					return
				}

				session.SetSessionCookie(writer, token, timeNow().Add(sec.TokenTTL), secure)
				session.SetProfileCookie(writer, &renewed.Profile, activeUntil, secure)
				resolver.Refresh(&renewed)

				logger.InfoContext(request.Context(), "session_renewed",
					slog.String("session_id", grant.Session.ID),
					slog.Time("active_until", activeUntil),
				)
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// timeNow is a test seam.
var timeNow = time.Now

// # API CORS

// APICors opens the JSON API to any origin.
//
// Auth on /api/* rides the Authorization header (never ambient cookies),
// which is why the wildcard is safe here and why credentials are not
// allowed. Page routes get no CORS headers at all.
func APICors() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !strings.HasPrefix(request.URL.Path, constants.APIPrefix) {
				next.ServeHTTP(writer, request)
				return
			}

			header := writer.Header()
			header.Set("Access-Control-Allow-Origin", "*")
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
			header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
			header.Set("Access-Control-Max-Age", "300")

			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
