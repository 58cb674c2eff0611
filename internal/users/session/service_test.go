// Copyright (c) 2026 MEhub. All rights reserved.

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// fakeStore is an in-memory Store used to exercise the service and resolver
// without a database.
type fakeStore struct {
	sessions        map[string]*session.Session
	profiles        map[string]*session.Profile
	findActiveCalls int
	extendLive      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:   map[string]*session.Session{},
		profiles:   map[string]*session.Profile{},
		extendLive: true,
	}
}

func (store *fakeStore) Insert(_ context.Context, s *session.Session) error {
	copied := *s
	store.sessions[s.ID] = &copied
	return nil
}

func (store *fakeStore) FindActive(_ context.Context, sessionID string) (*session.Grant, error) {
	store.findActiveCalls++
	s, ok := store.sessions[sessionID]
	if !ok || !s.Active(time.Now()) {
		return nil, apperr.NotFound("Session")
	}
	profile, ok := store.profiles[s.UserID]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	return &session.Grant{Session: *s, Profile: *profile}, nil
}

func (store *fakeStore) Extend(_ context.Context, sessionID string, activeUntil time.Time) (bool, error) {
	s, ok := store.sessions[sessionID]
	if !ok || !store.extendLive || !s.Active(time.Now()) {
		return false, nil
	}
	s.ActiveUntil = activeUntil
	return true, nil
}

func (store *fakeStore) Stop(_ context.Context, sessionID string) error {
	if s, ok := store.sessions[sessionID]; ok && s.Active(time.Now()) {
		s.ActiveUntil = time.Now()
	}
	return nil
}

func (store *fakeStore) StopAllForUser(_ context.Context, userID string) error {
	now := time.Now()
	for _, s := range store.sessions {
		if s.UserID == userID && s.Active(now) {
			s.ActiveUntil = now
		}
	}
	return nil
}

func (store *fakeStore) ListForUser(_ context.Context, userID string) ([]*session.Session, error) {
	out := []*session.Session{}
	for _, s := range store.sessions {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func testProfile(role sec.Role) *session.Profile {
	return &session.Profile{
		ID:       "0198a111-0000-7000-8000-000000000001",
		Email:    "dev@mehub.dev",
		Username: "scriptwright",
		Role:     role,
		JoinedAt: time.Now().Add(-30 * 24 * time.Hour),
	}
}

/*
TestService_Start_WindowPerRole verifies the session validity window follows
the role at sign-in time.
*/
func TestService_Start_WindowPerRole(t *testing.T) {
	tests := []struct {
		name     string
		role     sec.Role
		duration time.Duration
	}{
		{"user_24h", sec.RoleUser, 24 * time.Hour},
		{"developer_7d", sec.RoleDeveloper, 7 * 24 * time.Hour},
		{"admin_30d", sec.RoleAdmin, 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			service := session.NewService(store)

			before := time.Now()
			grant, err := service.Start(context.Background(), testProfile(tt.role))
			after := time.Now()

			require.NoError(t, err)
			require.NotNil(t, grant)
			assert.NotEmpty(t, grant.Session.ID)

			window := grant.Session.ActiveUntil.Sub(grant.Session.ActiveFrom)
			assert.Equal(t, tt.duration, window)
			assert.False(t, grant.Session.ActiveFrom.Before(before))
			assert.False(t, grant.Session.ActiveFrom.After(after))

			_, ok := store.sessions[grant.Session.ID]
			assert.True(t, ok, "session row must be persisted")
		})
	}
}

/*
TestService_Start_ConcurrentSessions checks that a user can hold several live
sessions at once.
*/
func TestService_Start_ConcurrentSessions(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleUser)
	store.profiles[profile.ID] = profile

	first, err := service.Start(context.Background(), profile)
	require.NoError(t, err)
	second, err := service.Start(context.Background(), profile)
	require.NoError(t, err)

	assert.NotEqual(t, first.Session.ID, second.Session.ID)

	grant, err := service.GetSessionProfile(context.Background(), first.Session.ID)
	require.NoError(t, err)
	assert.NotNil(t, grant, "starting a second session must not stop the first")
}

/*
TestService_GetSessionProfile treats gone sessions as anonymous, not as
errors.
*/
func TestService_GetSessionProfile(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleDeveloper)
	store.profiles[profile.ID] = profile

	grant, err := service.Start(context.Background(), profile)
	require.NoError(t, err)

	t.Run("live_session", func(t *testing.T) {
		found, err := service.GetSessionProfile(context.Background(), grant.Session.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, profile.Username, found.Profile.Username)
	})

	t.Run("unknown_session", func(t *testing.T) {
		found, err := service.GetSessionProfile(context.Background(), "0198a111-dead-7000-8000-000000000000")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("stopped_session", func(t *testing.T) {
		require.NoError(t, service.Stop(context.Background(), grant.Session.ID))
		found, err := service.GetSessionProfile(context.Background(), grant.Session.ID)
		require.NoError(t, err)
		assert.Nil(t, found, "a stopped session must look like a missing one")
	})
}

/*
TestService_Extend_RevokeWins checks that extension refuses to revive a
session that was stopped in the meantime.
*/
func TestService_Extend_RevokeWins(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleUser)
	store.profiles[profile.ID] = profile

	grant, err := service.Start(context.Background(), profile)
	require.NoError(t, err)

	require.NoError(t, service.Stop(context.Background(), grant.Session.ID))

	_, err = service.Extend(context.Background(), grant.Session.ID, sec.RoleUser)
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

/*
TestService_Extend_MovesExpiryForward verifies the happy path gives a full
role lifetime from now.
*/
func TestService_Extend_MovesExpiryForward(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleUser)
	store.profiles[profile.ID] = profile

	grant, err := service.Start(context.Background(), profile)
	require.NoError(t, err)

	// Simulate a session close to expiry.
	store.sessions[grant.Session.ID].ActiveUntil = time.Now().Add(time.Hour)

	newUntil, err := service.Extend(context.Background(), grant.Session.ID, sec.RoleUser)
	require.NoError(t, err)

	remaining := time.Until(newUntil)
	assert.Greater(t, remaining, 23*time.Hour)
	assert.LessOrEqual(t, remaining, 24*time.Hour)
}

/*
TestService_Stop_Idempotent ensures stopping twice stays a success and the
first stop's timestamp is the one that sticks.
*/
func TestService_Stop_Idempotent(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleUser)
	store.profiles[profile.ID] = profile

	grant, err := service.Start(context.Background(), profile)
	require.NoError(t, err)

	require.NoError(t, service.Stop(context.Background(), grant.Session.ID))
	stoppedAt := store.sessions[grant.Session.ID].ActiveUntil

	require.NoError(t, service.Stop(context.Background(), grant.Session.ID))
	assert.Equal(t, stoppedAt, store.sessions[grant.Session.ID].ActiveUntil)

	require.NoError(t, service.Stop(context.Background(), "0198a111-dead-7000-8000-000000000000"))
}

/*
TestShouldExtend covers the sliding-renewal decision on both sides of the
half-life and for already-expired sessions.
*/
func TestShouldExtend(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		remaining time.Duration
		role      sec.Role
		want      bool
	}{
		{"user_plenty_left", 20 * time.Hour, sec.RoleUser, false},
		{"user_just_over_half", 12*time.Hour + time.Minute, sec.RoleUser, false},
		{"user_under_half", 11 * time.Hour, sec.RoleUser, true},
		{"user_nearly_gone", time.Minute, sec.RoleUser, true},
		{"user_expired", -time.Minute, sec.RoleUser, false},
		{"developer_under_half", 3 * 24 * time.Hour, sec.RoleDeveloper, true},
		{"admin_over_half", 20 * 24 * time.Hour, sec.RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &session.Session{
				ActiveFrom:  now.Add(-time.Hour),
				ActiveUntil: now.Add(tt.remaining),
			}
			assert.Equal(t, tt.want, session.ShouldExtend(s, tt.role, now))
		})
	}
}
