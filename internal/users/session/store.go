// Copyright (c) 2026 MEhub. All rights reserved.

package session

import (
	"context"
	"time"
)

// Store defines the persistence contract for authorization grants.
type Store interface {
	// Insert persists a new session row.
	Insert(context context.Context, session *Session) error

	// FindActive returns the grant for a session that is still valid at the
	// time of the query. A stopped or expired session is indistinguishable
	// from one that never existed: both return apperr.NotFound.
	FindActive(context context.Context, sessionID string) (*Grant, error)

	// Extend moves the session's expiry forward, but only if the session is
	// still active at the time of the update. Returns false when no live row
	// matched, which means a concurrent revocation or expiry won the race
	// and the session must NOT be revived.
	Extend(context context.Context, sessionID string, activeUntil time.Time) (bool, error)

	// Stop revokes a session by setting its expiry to now. Stopping an
	// already-stopped or unknown session is a no-op, not an error.
	Stop(context context.Context, sessionID string) error

	// StopAllForUser revokes every live session belonging to the user.
	StopAllForUser(context context.Context, userID string) error

	// ListForUser returns all sessions (live and historical) for the user,
	// newest first.
	ListForUser(context context.Context, userID string) ([]*Session, error)
}
