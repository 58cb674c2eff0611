// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package session implements the server-side authorization grant store.

A Session row is the single source of truth for "is this sign-in still
valid". Signed tokens merely reference a session; revoking the row is what
authoritatively ends access.

# Trust Levels

Two levels of trust exist around sessions:

  - Stateless: signature-only token validation, no store round-trip. Used by
    the middleware route guard, where staleness up to the token lifetime is
    an accepted tradeoff.
  - Stateful: token validation plus a live lookup of the session row. Used
    wherever authorization is authoritative.

# Architecture

  - Entities: Session, Profile, Grant.
  - Service: Orchestrates start/lookup/extend/stop against the Store.
  - Resolver: Per-request memoization of the stateful lookup.
*/
package session

import (
	"time"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
)

// # Domain Entities

// Session represents a server-side authorization grant.
//
// A session is valid iff now < ActiveUntil. There is no separate revoked
// flag: stopping a session sets ActiveUntil to the moment of revocation, and
// the row is retained for audit history.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ActiveFrom  time.Time `json:"active_from"`
	ActiveUntil time.Time `json:"active_until"`
}

// Active reports whether the session is valid at the given instant.
func (s *Session) Active(at time.Time) bool {
	return at.Before(s.ActiveUntil)
}

// Profile is the public view of a user account: everything except the
// password hash. Storage queries that produce a Profile never select the
// hash column, so the exclusion holds by construction rather than by
// runtime filtering.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      sec.Role  `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Grant is a session joined with its owning user's public profile. Every
// stateful session lookup produces this shape.
type Grant struct {
	Session Session `json:"session"`
	Profile Profile `json:"profile"`
}

// # Sliding Renewal Policy

// ShouldExtend reports whether the sliding-renewal policy wants to extend
// the session at the given instant: the session must still be active (an
// expired session is NEVER extended — checked before the half-life
// comparison) and less than half of the role's full lifetime may remain.
func ShouldExtend(s *Session, role sec.Role, at time.Time) bool {
	if !s.Active(at) {
		return false
	}
	remaining := s.ActiveUntil.Sub(at)
	return remaining < role.SessionDuration()/2
}
