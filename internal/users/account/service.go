// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package account implements self-service profile and session management.

It lets a signed-in member read and edit their own profile, inspect their
sign-in history, and revoke individual grants. All operations act strictly
on the caller's own account; cross-account administration lives in the
admin package.
*/
package account

import (
	"context"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/auth"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// Service implements account self-management use cases.
type Service struct {
	users    auth.UserRepository
	sessions *session.Service
}

// NewService constructs a new account [Service].
func NewService(users auth.UserRepository, sessions *session.Service) *Service {
	return &Service{users: users, sessions: sessions}
}

/*
GetProfile returns the caller's own profile.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *session.Profile: The public view of the account
  - error: apperr.NotFound or storage errors
*/
func (service *Service) GetProfile(context context.Context, userID string) (*session.Profile, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// UpdateProfileInput carries the editable profile fields. Nil pointers mean
// "leave unchanged" so a partial PATCH does not blank omitted fields.
type UpdateProfileInput struct {
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

/*
UpdateProfile applies a partial update to the caller's profile.

Description: Only bio and avatar are editable here. Identity fields are
immutable and the role is controlled by administrators.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *session.Profile: The updated profile
  - error: apperr.NotFound or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*session.Profile, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	if err := service.users.UpdateProfile(context, user); err != nil {
		return nil, err
	}

	return user.Profile(), nil
}

/*
ListSessions returns the caller's sign-in history, newest first, including
expired and revoked grants.
*/
func (service *Service) ListSessions(context context.Context, userID string) ([]*session.Session, error) {
	return service.sessions.ListForUser(context, userID)
}

/*
RevokeSession stops one of the caller's own sessions.

Description: Ownership is checked first; a session belonging to someone
else is reported as missing rather than forbidden so session IDs cannot be
probed.

Parameters:
  - context: context.Context
  - userID: string (The caller)
  - sessionID: string (The grant to revoke)

Returns:
  - error: apperr.NotFound when the session is not the caller's
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	owned, err := service.sessions.ListForUser(context, userID)
	if err != nil {
		return err
	}

	for _, s := range owned {
		if s.ID == sessionID {
			return service.sessions.Stop(context, sessionID)
		}
	}

	return apperr.NotFound("Session")
}

/*
RevokeOtherSessions stops every session of the caller except the one making
the request.
*/
func (service *Service) RevokeOtherSessions(context context.Context, userID, keepSessionID string) error {
	owned, err := service.sessions.ListForUser(context, userID)
	if err != nil {
		return err
	}

	for _, s := range owned {
		if s.ID == keepSessionID {
			continue
		}
		if err := service.sessions.Stop(context, s.ID); err != nil {
			return err
		}
	}

	return nil
}

/*
GetPublicProfile returns another member's public profile for the developer
pages.
*/
func (service *Service) GetPublicProfile(context context.Context, userID string) (*session.Profile, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}
