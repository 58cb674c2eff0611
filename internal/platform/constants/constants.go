// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.
  - Routing: Browser navigation targets used by the route guard.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "mehub-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "mehub.dev"

	// SessionCookieName carries the signed session token used for
	// authoritative (stateful) authorization. httpOnly, never readable by JS.
	SessionCookieName = "mehub_session"

	// ProfileCookieName is the client-readable mirror of the signed-in
	// profile (id, username, email, role, bio, avatar). Non-sensitive; lets
	// the UI personalize without a server round-trip.
	ProfileCookieName = "session-user"

	// RequestIDCookieName is a client-readable correlation id for
	// support/debugging. Regenerated on every request.
	RequestIDCookieName = "requestId"
)

// # Diagnostic Headers

const (
	HeaderXRequestID     = "x-request-id"
	HeaderXRequestPath   = "x-request-path"
	HeaderXRequestMethod = "x-request-method"
	HeaderXSessionID     = "x-session-id"
	HeaderXUserID        = "x-user-id"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderOrigin         = "Origin"
)

// # Routing

const (
	// APIPrefix marks paths that perform their own authorization and are
	// never redirected by the route guard.
	APIPrefix = "/api/"

	// AssetsPrefix marks static asset paths that bypass the middleware chain.
	AssetsPrefix = "/assets/"

	// SignInPath is where anonymous visitors of protected pages are sent.
	SignInPath = "/signin"

	// DashboardPath is the default landing page for authenticated visitors
	// hitting an auth gate page (sign-in, register).
	DashboardPath = "/dashboard"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldSuccess = "success"
	FieldToken   = "token"
	FieldUser    = "user"
)

// # Database Schemas

const (
	SchemaUsers  = "users"
	SchemaMarket = "market"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixDownloads = "market:dl:"
	RedisPrefixListCache = "market:list:"
)
