// Copyright (c) 2026 MEhub. All rights reserved.

package session

import (
	"context"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/ctxkey"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
)

// Source identifies where a request's credentials came from.
type Source int

const (
	// SourceNone marks an anonymous request.
	SourceNone Source = iota
	// SourceCookie marks a browser session cookie.
	SourceCookie
	// SourceBearer marks an Authorization: Bearer header. Bearer callers are
	// served statelessly and skip the session-row lookup.
	SourceBearer
)

// Resolver memoizes the stateful session lookup for a single request.
//
// The authentication middleware attaches one Resolver per request after
// verifying the token signature. Every downstream consumer (renewal
// middleware, authorization wrapper, handlers) shares the same instance, so
// the session row is fetched at most once per request and everyone sees the
// same view of it.
//
// Resolver is not safe for concurrent use; a request is handled by one
// goroutine.
type Resolver struct {
	sessions *Service
	claims   *sec.SessionClaims
	source   Source

	resolved bool
	grant    *Grant
	err      error
}

// NewResolver builds a Resolver for verified claims. Pass nil claims for an
// anonymous request.
func NewResolver(sessions *Service, claims *sec.SessionClaims, source Source) *Resolver {
	return &Resolver{sessions: sessions, claims: claims, source: source}
}

// Claims returns the verified token claims, or nil for anonymous requests.
func (resolver *Resolver) Claims() *sec.SessionClaims {
	if resolver == nil {
		return nil
	}
	return resolver.claims
}

// Source returns where the request's credentials came from.
func (resolver *Resolver) Source() Source {
	if resolver == nil {
		return SourceNone
	}
	return resolver.source
}

/*
Grant resolves the live session grant for the request, at most once.

Description: The first call performs the store lookup; later calls replay
the memoized result. Anonymous requests, bearer requests, and sessions that
turn out to be revoked or expired all yield (nil, nil).

Parameters:
  - context: context.Context

Returns:
  - *Grant: The live grant, or nil when the request has no valid session
  - error: Infrastructure errors only
*/
func (resolver *Resolver) Grant(context context.Context) (*Grant, error) {
	if resolver == nil || resolver.claims == nil || resolver.claims.SessionID == "" {
		return nil, nil
	}
	if resolver.source == SourceBearer {
		return nil, nil
	}

	if !resolver.resolved {
		resolver.grant, resolver.err = resolver.sessions.GetSessionProfile(context, resolver.claims.SessionID)
		resolver.resolved = true
	}

	return resolver.grant, resolver.err
}

/*
Profile returns the authenticated user's profile at the resolver's trust level.

Description: Cookie requests resolve the session row and return the profile
stored there, so revocation takes effect immediately. Bearer requests are
stateless and reconstruct the profile from the signed claims.

Parameters:
  - context: context.Context

Returns:
  - *Profile: The user's profile, or nil when the request is anonymous
  - error: Infrastructure errors only
*/
func (resolver *Resolver) Profile(context context.Context) (*Profile, error) {
	if resolver == nil || resolver.claims == nil {
		return nil, nil
	}

	if resolver.source == SourceBearer {
		return &Profile{
			ID:       resolver.claims.UserID,
			Email:    resolver.claims.Email,
			Username: resolver.claims.Username,
			Role:     sec.Role(resolver.claims.Role),
		}, nil
	}

	grant, err := resolver.Grant(context)
	if err != nil || grant == nil {
		return nil, err
	}
	profile := grant.Profile
	return &profile, nil
}

// Refresh replaces the memoized grant after the session row changed (for
// example after a sliding-renewal extension).
func (resolver *Resolver) Refresh(grant *Grant) {
	resolver.grant = grant
	resolver.err = nil
	resolver.resolved = true
}

// # Context Plumbing

// WithResolver attaches the request's resolver to the context.
func WithResolver(parent context.Context, resolver *Resolver) context.Context {
	return context.WithValue(parent, ctxkey.KeyResolver, resolver)
}

// ResolverFrom extracts the request's resolver from the context. It returns
// nil when no authentication middleware ran, which callers treat as an
// anonymous request.
func ResolverFrom(parent context.Context) *Resolver {
	resolver, _ := parent.Value(ctxkey.KeyResolver).(*Resolver)
	return resolver
}
