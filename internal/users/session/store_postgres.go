// Copyright (c) 2026 MEhub. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
)

// # Session Repository

// PostgresStore implements the Store interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Insert persists a new session row into the users.session table.

Description: Records the grant exactly as computed by the service; no
timestamps are defaulted here because the validity window is domain policy.

Parameters:
  - context: context.Context
  - session: *Session (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (store *PostgresStore) Insert(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (
			id, userid, activefrom, activeuntil
		) VALUES ($1, $2, $3, $4)`

	_, err := store.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.ActiveFrom,
		session.ActiveUntil,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_store_insert_failed: %w", err)
	}

	return nil
}

/*
FindActive retrieves a live session joined with its owner's public profile.

Description: The validity check (activeuntil > NOW()) is part of the query,
so expired and revoked sessions are indistinguishable from missing ones. The
password hash column is never selected.

Parameters:
  - context: context.Context
  - sessionID: string (UUIDv7)

Returns:
  - *Grant: Session plus owning user's profile
  - error: apperr.NotFound or database errors
*/
func (store *PostgresStore) FindActive(context context.Context, sessionID string) (*Grant, error) {
	const query = `
		SELECT s.id, s.userid, s.activefrom, s.activeuntil,
		       a.id, a.email, a.username, a.role, a.bio, a.avatarurl, a.joinedat
		FROM users.session s
		JOIN users.account a ON a.id = s.userid AND a.deletedat IS NULL
		WHERE s.id = $1 AND s.activeuntil > NOW()`

	grant := &Grant{}
	err := store.pool.QueryRow(context, query, sessionID).Scan(
		&grant.Session.ID,
		&grant.Session.UserID,
		&grant.Session.ActiveFrom,
		&grant.Session.ActiveUntil,
		&grant.Profile.ID,
		&grant.Profile.Email,
		&grant.Profile.Username,
		&grant.Profile.Role,
		&grant.Profile.Bio,
		&grant.Profile.AvatarURL,
		&grant.Profile.JoinedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session not found or expired")
		}
		return nil, fmt.Errorf("postgres_session_store_find_active_failed: %w", err)
	}

	return grant, nil
}

/*
Extend moves a live session's expiry forward.

Description: The WHERE clause requires the row to still be active, so a
session revoked or expired by a concurrent request cannot be revived here.

Parameters:
  - context: context.Context
  - sessionID: string
  - activeUntil: time.Time (New expiry)

Returns:
  - bool: True when a live row was updated
  - error: Execution errors
*/
func (store *PostgresStore) Extend(context context.Context, sessionID string, activeUntil time.Time) (bool, error) {
	const query = `
		UPDATE users.session
		SET activeuntil = $2
		WHERE id = $1 AND activeuntil > NOW()`

	tag, err := store.pool.Exec(context, query, sessionID, activeUntil)
	if err != nil {
		return false, fmt.Errorf("postgres_session_store_extend_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

/*
Stop revokes a session by clamping its expiry to the current instant.

Description: Rows are retained for audit history. Stopping an unknown or
already-stopped session matches zero rows and is treated as success.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) Stop(context context.Context, sessionID string) error {
	const query = `
		UPDATE users.session
		SET activeuntil = NOW()
		WHERE id = $1 AND activeuntil > NOW()`

	_, err := store.pool.Exec(context, query, sessionID)
	if err != nil {
		return fmt.Errorf("postgres_session_store_stop_failed: %w", err)
	}

	return nil
}

/*
StopAllForUser revokes every live session belonging to a user.

Description: Used when an administrator force-signs-out a user or when the
user's role changes and existing grants must be invalidated.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (store *PostgresStore) StopAllForUser(context context.Context, userID string) error {
	const query = `
		UPDATE users.session
		SET activeuntil = NOW()
		WHERE userid = $1 AND activeuntil > NOW()`

	_, err := store.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_store_stop_all_failed: %w", err)
	}

	return nil
}

/*
ListForUser returns all sessions for a user, newest first.

Description: Includes expired and revoked rows so the account page can show
sign-in history alongside live sessions.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Session: Sessions ordered by activefrom descending
  - error: Execution errors
*/
func (store *PostgresStore) ListForUser(context context.Context, userID string) ([]*Session, error) {
	const query = `
		SELECT id, userid, activefrom, activeuntil
		FROM users.session
		WHERE userid = $1
		ORDER BY activefrom DESC`

	rows, err := store.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_store_list_failed: %w", err)
	}
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		session := &Session{}
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.ActiveFrom,
			&session.ActiveUntil,
		); err != nil {
			return nil, fmt.Errorf("postgres_session_store_scan_failed: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_store_rows_failed: %w", err)
	}

	return sessions, nil
}
