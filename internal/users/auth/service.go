// Copyright (c) 2026 MEhub. All rights reserved.

package auth

import (
	"context"
	"fmt"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for minting signed session tokens.
type TokenProvider interface {
	// Generate creates a signed token carrying the user's identity claims
	// and the session reference.
	Generate(userID, email, username, role, sessionID string) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, sign-in,
// or enumeration-resistance logic must be reviewed before merging.
type Service struct {
	userRepository UserRepository
	sessions       *session.Service
	tokenProvider  TokenProvider
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(userRepo UserRepository, sessions *session.Service, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository: userRepo,
		sessions:       sessions,
		tokenProvider:  tokenProv,
	}
}

// SignedInUser bundles everything a successful registration or sign-in
// produces: the signed token for the cookie/header and the started grant.
type SignedInUser struct {
	Token string
	Grant *session.Grant
}

// signInFailedMessage is deliberately identical for "no such account" and
// "wrong password" so responses cannot be used to probe which emails are
// registered.
const signInFailedMessage = "No account found with the given combination"

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register validates, hashes, and persists a brand new account, then signs
the new member in.

Description: Deep-enrollment of a new member. Every account starts as a
plain User; the Developer role is granted later through the admin flow.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *SignedInUser: Token and started session grant
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*SignedInUser, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new account. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
	}

	// Persist the account to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return service.startSession(context, user)
}

// # Sign-In Flow

// SignInInput defines credentials for an authentication attempt. Login
// accepts either the email address or the username.
type SignInInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

/*
SignIn validates credentials and establishes a fresh session.

Description: Verifies identity with a constant-work password check: when no
account matches, the full hash computation still runs against a dummy
credential so the response time does not reveal whether the login exists.

Parameters:
  - context: context.Context
  - input: SignInInput

Returns:
  - *SignedInUser: Token and started session grant
  - error: Unauthorized with a deliberately generic message, or internal failures
*/
func (service *Service) SignIn(context context.Context, input SignInInput) (*SignedInUser, error) {

	// Flexible login: look up by Email or Username
	user, err := service.userRepository.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.userRepository.FindByUsername(context, input.Login)
	}

	// Unknown login: burn the same hashing work before answering so the
	// timing matches the wrong-password path exactly.
	if err != nil {
		sec.VerifyPassword(sec.DummyHash(), input.Password)
		return nil, apperr.Unauthorized(signInFailedMessage)
	}

	if !sec.VerifyPassword(user.PasswordHash, input.Password) {
		return nil, apperr.Unauthorized(signInFailedMessage)
	}

	return service.startSession(context, user)
}

// startSession opens a grant for the user and mints its signed token.
func (service *Service) startSession(context context.Context, user *User) (*SignedInUser, error) {
	grant, err := service.sessions.Start(context, user.Profile())
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_start_failed: %w", err)
	}

	token, err := service.tokenProvider.Generate(
		user.ID,
		user.Email,
		user.Username,
		string(user.Role),
		grant.Session.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &SignedInUser{Token: token, Grant: grant}, nil
}

// # Sign-Out Flow

/*
SignOut revokes the caller's session.

Description: Idempotent: signing out an already-stopped or unknown session
succeeds, because the end state the caller asked for already holds.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - error: Revocation failures
*/
func (service *Service) SignOut(context context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return service.sessions.Stop(context, sessionID)
}

// # Credential Maintenance

// ChangePasswordInput carries a password rotation request.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
ChangePassword rotates the caller's credential after re-verification.

Description: Requires the current password even for an authenticated
session. Every existing session is revoked so a stolen grant cannot outlive
the rotation, and a fresh session is started for the caller.

Parameters:
  - context: context.Context
  - userID: string
  - input: ChangePasswordInput

Returns:
  - *SignedInUser: The caller's replacement session
  - error: Unauthorized on wrong current password, or storage errors
*/
func (service *Service) ChangePassword(context context.Context, userID string, input ChangePasswordInput) (*SignedInUser, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if !sec.VerifyPassword(user.PasswordHash, input.CurrentPassword) {
		return nil, apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return nil, err
	}

	// Drop every grant, then restart the caller's own session
	if err := service.sessions.StopAllForUser(context, userID); err != nil {
		return nil, fmt.Errorf("auth_service_revoke_failed: %w", err)
	}

	user.PasswordHash = hashedPassword
	return service.startSession(context, user)
}
