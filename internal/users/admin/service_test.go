// Copyright (c) 2026 MEhub. All rights reserved.

package admin

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/auth"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/pagination"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/uuid"
)

// # Test Doubles

type fakeUsers struct {
	accounts map[string]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{accounts: map[string]*auth.User{}}
}

func (repo *fakeUsers) Create(_ context.Context, user *auth.User) error {
	clone := *user
	repo.accounts[user.ID] = &clone
	return nil
}

func (repo *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := repo.accounts[id]
	if !ok || user.DeletedAt != nil {
		return nil, apperr.NotFound("Account")
	}
	clone := *user
	return &clone, nil
}

func (repo *fakeUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.accounts {
		if user.Email == email && user.DeletedAt == nil {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.accounts {
		if user.Username == username && user.DeletedAt == nil {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *fakeUsers) UpdateProfile(_ context.Context, user *auth.User) error {
	stored, ok := repo.accounts[user.ID]
	if !ok || stored.DeletedAt != nil {
		return apperr.NotFound("Account")
	}
	stored.Bio = user.Bio
	stored.AvatarURL = user.AvatarURL
	return nil
}

func (repo *fakeUsers) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	stored, ok := repo.accounts[userID]
	if !ok {
		return apperr.NotFound("Account")
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (repo *fakeUsers) UpdateRole(_ context.Context, userID string, role sec.Role) error {
	stored, ok := repo.accounts[userID]
	if !ok || stored.DeletedAt != nil {
		return apperr.NotFound("Account")
	}
	stored.Role = role
	return nil
}

func (repo *fakeUsers) List(_ context.Context, params pagination.Params) ([]*auth.User, int, error) {
	users := []*auth.User{}
	for _, user := range repo.accounts {
		if user.DeletedAt == nil {
			clone := *user
			users = append(users, &clone)
		}
	}
	return users, len(users), nil
}

func (repo *fakeUsers) SoftDelete(_ context.Context, userID string) error {
	stored, ok := repo.accounts[userID]
	if !ok || stored.DeletedAt != nil {
		return apperr.NotFound("Account")
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*session.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*session.Session{}}
}

func (store *fakeSessionStore) Insert(_ context.Context, s *session.Session) error {
	clone := *s
	store.sessions[s.ID] = &clone
	return nil
}

func (store *fakeSessionStore) FindActive(_ context.Context, sessionID string) (*session.Grant, error) {
	s, ok := store.sessions[sessionID]
	if !ok || !s.Active(time.Now()) {
		return nil, apperr.NotFound("Session")
	}
	return &session.Grant{Session: *s}, nil
}

func (store *fakeSessionStore) Extend(_ context.Context, sessionID string, activeUntil time.Time) (bool, error) {
	s, ok := store.sessions[sessionID]
	if !ok || !s.Active(time.Now()) {
		return false, nil
	}
	s.ActiveUntil = activeUntil
	return true, nil
}

func (store *fakeSessionStore) Stop(_ context.Context, sessionID string) error {
	if s, ok := store.sessions[sessionID]; ok && s.Active(time.Now()) {
		s.ActiveUntil = time.Now()
	}
	return nil
}

func (store *fakeSessionStore) StopAllForUser(_ context.Context, userID string) error {
	for _, s := range store.sessions {
		if s.UserID == userID && s.Active(time.Now()) {
			s.ActiveUntil = time.Now()
		}
	}
	return nil
}

func (store *fakeSessionStore) ListForUser(_ context.Context, userID string) ([]*session.Session, error) {
	result := []*session.Session{}
	for _, s := range store.sessions {
		if s.UserID == userID {
			clone := *s
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (store *fakeSessionStore) liveCount(userID string) int {
	count := 0
	for _, s := range store.sessions {
		if s.UserID == userID && s.Active(time.Now()) {
			count++
		}
	}
	return count
}

type fixture struct {
	service *Service
	users   *fakeUsers
	store   *fakeSessionStore
}

func newFixture() *fixture {
	users := newFakeUsers()
	store := newFakeSessionStore()
	return &fixture{
		service: NewService(users, session.NewService(store)),
		users:   users,
		store:   store,
	}
}

func (fx *fixture) seedUser(role sec.Role) *auth.User {
	user := &auth.User{
		ID:       uuid.New(),
		Username: "member-" + uuid.New()[:8],
		Email:    uuid.New()[:8] + "@example.com",
		Role:     role,
		JoinedAt: time.Now(),
	}
	fx.users.accounts[user.ID] = user

	fx.store.sessions[uuid.New()] = &session.Session{
		ID:          uuid.New(),
		UserID:      user.ID,
		ActiveFrom:  time.Now(),
		ActiveUntil: time.Now().Add(role.SessionDuration()),
	}
	return user
}

// # Role Changes

func TestChangeRole(t *testing.T) {
	fx := newFixture()
	actor := fx.seedUser(sec.RoleAdmin)

	t.Run("promotes_and_revokes_sessions", func(t *testing.T) {
		target := fx.seedUser(sec.RoleUser)
		require.Equal(t, 1, fx.store.liveCount(target.ID))

		profile, err := fx.service.ChangeRole(context.Background(), actor.ID, target.ID, sec.RoleDeveloper)
		require.NoError(t, err)

		assert.Equal(t, sec.RoleDeveloper, profile.Role)
		assert.Equal(t, 0, fx.store.liveCount(target.ID), "old grants must be revoked on role change")
	})

	t.Run("same_role_is_a_no_op", func(t *testing.T) {
		target := fx.seedUser(sec.RoleDeveloper)

		_, err := fx.service.ChangeRole(context.Background(), actor.ID, target.ID, sec.RoleDeveloper)
		require.NoError(t, err)

		assert.Equal(t, 1, fx.store.liveCount(target.ID), "a no-op change must not revoke sessions")
	})

	t.Run("self_change_refused", func(t *testing.T) {
		_, err := fx.service.ChangeRole(context.Background(), actor.ID, actor.ID, sec.RoleUser)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, apperr.As(err).HTTPStatus)
	})

	t.Run("unknown_role_rejected", func(t *testing.T) {
		target := fx.seedUser(sec.RoleUser)

		_, err := fx.service.ChangeRole(context.Background(), actor.ID, target.ID, sec.Role("SuperAdmin"))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	})
}

// # Forced Sign-Out and Removal

func TestForceSignOut(t *testing.T) {
	fx := newFixture()
	actor := fx.seedUser(sec.RoleAdmin)
	target := fx.seedUser(sec.RoleUser)

	require.NoError(t, fx.service.ForceSignOut(context.Background(), actor.ID, target.ID))
	assert.Equal(t, 0, fx.store.liveCount(target.ID))

	err := fx.service.ForceSignOut(context.Background(), actor.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)
}

func TestRemoveUser(t *testing.T) {
	fx := newFixture()
	actor := fx.seedUser(sec.RoleAdmin)

	t.Run("removes_and_revokes", func(t *testing.T) {
		target := fx.seedUser(sec.RoleDeveloper)

		require.NoError(t, fx.service.RemoveUser(context.Background(), actor.ID, target.ID))

		_, err := fx.users.FindByID(context.Background(), target.ID)
		require.Error(t, err)
		assert.Equal(t, 0, fx.store.liveCount(target.ID))
	})

	t.Run("self_removal_refused", func(t *testing.T) {
		err := fx.service.RemoveUser(context.Background(), actor.ID, actor.ID)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, apperr.As(err).HTTPStatus)
	})
}

// # Listing

func TestListUsers(t *testing.T) {
	fx := newFixture()
	fx.seedUser(sec.RoleAdmin)
	fx.seedUser(sec.RoleUser)
	fx.seedUser(sec.RoleDeveloper)

	users, meta, err := fx.service.ListUsers(context.Background(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Len(t, users, 3)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 1, meta.TotalPages)
}
