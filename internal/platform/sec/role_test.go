// Copyright (c) 2026 MEhub. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
)

/*
TestRole_SessionDuration pins the role-based session lifetimes.
*/
func TestRole_SessionDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, sec.RoleUser.SessionDuration())
	assert.Equal(t, 7*24*time.Hour, sec.RoleDeveloper.SessionDuration())
	assert.Equal(t, 30*24*time.Hour, sec.RoleAdmin.SessionDuration())

	// Unknown roles fall back to the shortest window.
	assert.Equal(t, 24*time.Hour, sec.Role("Mystery").SessionDuration())
}

/*
TestRole_Hierarchy covers the ordering and the exact-match allow-list.
*/
func TestRole_Hierarchy(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleUser))
	assert.True(t, sec.RoleDeveloper.AtLeast(sec.RoleDeveloper))
	assert.False(t, sec.RoleUser.AtLeast(sec.RoleDeveloper))

	assert.True(t, sec.RoleDeveloper.OneOf(sec.RoleDeveloper, sec.RoleAdmin))
	assert.False(t, sec.RoleAdmin.OneOf(sec.RoleDeveloper), "OneOf has no hierarchy shortcut")
	assert.False(t, sec.Role("").OneOf(sec.RoleUser))
}

/*
TestRole_Valid accepts only the three known roles.
*/
func TestRole_Valid(t *testing.T) {
	assert.True(t, sec.RoleUser.Valid())
	assert.True(t, sec.RoleDeveloper.Valid())
	assert.True(t, sec.RoleAdmin.Valid())
	assert.False(t, sec.Role("").Valid())
	assert.False(t, sec.Role("admin").Valid(), "role names are case-sensitive")
}
