// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package admin implements cross-account administration.

Every operation is restricted to the Admin role and logged. Role changes
and account removals revoke the target's live sessions so the change takes
effect immediately instead of when their tokens happen to expire.
*/
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/ctxutil"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/auth"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/pagination"
)

// Service implements administrative use cases over accounts and sessions.
type Service struct {
	users    auth.UserRepository
	sessions *session.Service
}

// NewService constructs a new admin [Service].
func NewService(users auth.UserRepository, sessions *session.Service) *Service {
	return &Service{users: users, sessions: sessions}
}

/*
ListUsers returns a page of accounts with pagination metadata.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []*auth.User: One page of accounts, newest first
  - pagination.Meta: Totals for the response envelope
  - error: Storage errors
*/
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]*auth.User, pagination.Meta, error) {
	users, total, err := service.users.List(context, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return users, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
ChangeRole assigns a new role to an account and revokes its live sessions.

Description: Existing grants were sized and authorized for the old role, so
they are stopped; the member signs in again under the new role. An admin
demoting their own account is refused to prevent locking the last admin
out.

Parameters:
  - context: context.Context
  - actorID: string (The admin performing the change)
  - userID: string (The target account)
  - role: sec.Role

Returns:
  - *session.Profile: The updated account profile
  - error: Validation, NotFound, or storage errors
*/
func (service *Service) ChangeRole(context context.Context, actorID, userID string, role sec.Role) (*session.Profile, error) {
	if !role.Valid() {
		return nil, apperr.ValidationError("Unknown role", apperr.FieldError{
			Field:   auth.FieldRole,
			Message: "must be one of User, Developer, Admin",
		})
	}

	if actorID == userID {
		return nil, apperr.Unprocessable("Administrators cannot change their own role")
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if user.Role == role {
		return user.Profile(), nil
	}

	if err := service.users.UpdateRole(context, userID, role); err != nil {
		return nil, err
	}

	// Old grants carry the old role's window and claims
	if err := service.sessions.StopAllForUser(context, userID); err != nil {
		return nil, fmt.Errorf("admin_service_revoke_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "admin_role_changed",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.String("from", string(user.Role)),
		slog.String("to", string(role)),
	)

	user.Role = role
	return user.Profile(), nil
}

/*
ForceSignOut revokes every live session of an account.
*/
func (service *Service) ForceSignOut(context context.Context, actorID, userID string) error {
	if _, err := service.users.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.sessions.StopAllForUser(context, userID); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "admin_forced_sign_out",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
	)
	return nil
}

/*
RemoveUser soft-deletes an account and revokes its sessions.

Description: The row is retained so the account's scripts and session
history keep their references, but the account vanishes from every lookup
and can no longer sign in.

Parameters:
  - context: context.Context
  - actorID: string (The admin performing the removal)
  - userID: string (The target account)

Returns:
  - error: Unprocessable on self-removal, NotFound, or storage errors
*/
func (service *Service) RemoveUser(context context.Context, actorID, userID string) error {
	if actorID == userID {
		return apperr.Unprocessable("Administrators cannot remove their own account")
	}

	if err := service.users.SoftDelete(context, userID); err != nil {
		return err
	}

	if err := service.sessions.StopAllForUser(context, userID); err != nil {
		return fmt.Errorf("admin_service_revoke_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "admin_account_removed",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
	)
	return nil
}
