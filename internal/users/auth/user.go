// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package auth implements the identity core of the marketplace: accounts,
credentials, and the sign-in lifecycle.

It covers user registration with salted PBKDF2 password hashing, credential
verification with user-enumeration resistance, and the issuing of
session-backed signed tokens.

Architecture:

  - Service: Orchestrates business logic (Register, SignIn, SignOut).
  - Repository: Abstracted interface over the users.account table.
  - Sessions: Delegated to the session package; auth only starts and stops
    grants, it never inspects session rows itself.
*/
package auth

import (
	"time"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// # Validation Field Identifiers

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldBio      = "bio"
	FieldAvatar   = "avatar_url"
	FieldRole     = "role"
)

// # Entity

// User is the persisted account record.
//
// The password hash never crosses the transport boundary: it is excluded
// from JSON and the public view is produced by [User.Profile].
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         sec.Role   `json:"role"`
	Bio          string     `json:"bio,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	JoinedAt     time.Time  `json:"joined_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// Profile maps the account to its public view.
func (user *User) Profile() *session.Profile {
	return &session.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      user.Role,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		JoinedAt:  user.JoinedAt,
	}
}
