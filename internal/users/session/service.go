// Copyright (c) 2026 MEhub. All rights reserved.

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/uuid"
)

// Service implements the session lifecycle use cases.
//
// All validity decisions delegate to the store's time comparison so that a
// revocation committed by a concurrent request always wins.
type Service struct {
	store Store
}

// NewService constructs a new session [Service].
func NewService(store Store) *Service {
	return &Service{store: store}
}

/*
Start opens a new session for the given profile.

Description: The validity window is derived from the role at sign-in time
(administrators get the longest window, plain users the shortest). Starting a
session never touches other sessions, so a user may hold several concurrent
grants from different devices.

Parameters:
  - context: context.Context
  - profile: *Profile (Owner of the new grant)

Returns:
  - *Grant: The newly persisted session joined with the profile
  - error: Persistence errors
*/
func (service *Service) Start(context context.Context, profile *Profile) (*Grant, error) {
	now := time.Now()
	session := &Session{
		ID:          uuid.New(),
		UserID:      profile.ID,
		ActiveFrom:  now,
		ActiveUntil: now.Add(profile.Role.SessionDuration()),
	}

	if err := service.store.Insert(context, session); err != nil {
		return nil, err
	}

	return &Grant{Session: *session, Profile: *profile}, nil
}

/*
GetSessionProfile resolves a session ID to its grant, if still valid.

Description: A stopped or expired session yields (nil, nil) rather than an
error: callers treat the request as anonymous and decide themselves whether
that warrants a 401.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - *Grant: The live grant, or nil when the session is gone
  - error: Infrastructure errors only
*/
func (service *Service) GetSessionProfile(context context.Context, sessionID string) (*Grant, error) {
	grant, err := service.store.FindActive(context, sessionID)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	return grant, nil
}

/*
Extend pushes a live session's expiry to a full role lifetime from now.

Description: Implements the write half of sliding renewal. The store refuses
to touch a row that is no longer active, so a revocation racing with this
call always wins; in that case apperr.Unauthorized is returned and the
caller drops the grant.

Parameters:
  - context: context.Context
  - sessionID: string
  - role: sec.Role (Determines the new window length)

Returns:
  - time.Time: The new expiry
  - error: apperr.Unauthorized when the session is gone, or store errors
*/
func (service *Service) Extend(context context.Context, sessionID string, role sec.Role) (time.Time, error) {
	activeUntil := time.Now().Add(role.SessionDuration())

	extended, err := service.store.Extend(context, sessionID, activeUntil)
	if err != nil {
		return time.Time{}, err
	}
	if !extended {
		return time.Time{}, apperr.Unauthorized("Session is no longer active")
	}

	return activeUntil, nil
}

// Stop revokes a single session. Idempotent.
func (service *Service) Stop(context context.Context, sessionID string) error {
	return service.store.Stop(context, sessionID)
}

// StopAllForUser revokes every live session the user holds.
func (service *Service) StopAllForUser(context context.Context, userID string) error {
	return service.store.StopAllForUser(context, userID)
}

// ListForUser returns the user's sessions, newest first.
func (service *Service) ListForUser(context context.Context, userID string) ([]*Session, error) {
	return service.store.ListForUser(context, userID)
}
