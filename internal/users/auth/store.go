// Copyright (c) 2026 MEhub. All rights reserved.

package auth

import (
	"context"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/pagination"
)

// UserRepository defines the persistence contract for account records.
type UserRepository interface {
	// Create persists a new account.
	Create(context context.Context, user *User) error

	// FindByID retrieves a non-deleted account by primary key.
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail retrieves a non-deleted account by email.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByUsername retrieves a non-deleted account by username.
	FindByUsername(context context.Context, username string) (*User, error)

	// UpdateProfile persists the editable profile fields (bio, avatar).
	UpdateProfile(context context.Context, user *User) error

	// UpdatePassword replaces the stored credential hash.
	UpdatePassword(context context.Context, userID string, passwordHash string) error

	// UpdateRole changes an account's role.
	UpdateRole(context context.Context, userID string, role sec.Role) error

	// List returns a page of accounts, newest first, with the total count.
	List(context context.Context, params pagination.Params) ([]*User, int, error)

	// SoftDelete marks an account deleted without destroying the row.
	SoftDelete(context context.Context, userID string) error
}
