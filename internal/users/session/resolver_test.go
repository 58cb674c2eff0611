// Copyright (c) 2026 MEhub. All rights reserved.

package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/constants"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

func claimsFor(profile *session.Profile, sessionID string) *sec.SessionClaims {
	return &sec.SessionClaims{
		Email:     profile.Email,
		UserID:    profile.ID,
		Username:  profile.Username,
		Role:      string(profile.Role),
		SessionID: sessionID,
	}
}

/*
TestResolver_MemoizesLookup verifies the session row is fetched at most once
per resolver regardless of how many consumers ask.
*/
func TestResolver_MemoizesLookup(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleUser)
	store.profiles[profile.ID] = profile

	grant, err := service.Start(context.Background(), profile)
	require.NoError(t, err)

	resolver := session.NewResolver(service, claimsFor(profile, grant.Session.ID), session.SourceCookie)

	for range 3 {
		found, err := resolver.Grant(context.Background())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, grant.Session.ID, found.Session.ID)
	}

	assert.Equal(t, 1, store.findActiveCalls)
}

/*
TestResolver_Anonymous returns nil without touching the store when there are
no claims.
*/
func TestResolver_Anonymous(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)

	resolver := session.NewResolver(service, nil, session.SourceNone)

	found, err := resolver.Grant(context.Background())
	require.NoError(t, err)
	assert.Nil(t, found)

	profile, err := resolver.Profile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)

	assert.Equal(t, 0, store.findActiveCalls)
}

/*
TestResolver_BearerIsStateless checks API clients get a claims-derived
profile with no session-row lookup.
*/
func TestResolver_BearerIsStateless(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleDeveloper)

	resolver := session.NewResolver(service, claimsFor(profile, "0198a111-0000-7000-8000-00000000beef"), session.SourceBearer)

	found, err := resolver.Profile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, profile.Username, found.Username)
	assert.Equal(t, sec.RoleDeveloper, found.Role)

	grant, err := resolver.Grant(context.Background())
	require.NoError(t, err)
	assert.Nil(t, grant)

	assert.Equal(t, 0, store.findActiveCalls)
}

/*
TestResolver_RevokedSession makes a revoked cookie session look anonymous to
every consumer.
*/
func TestResolver_RevokedSession(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	profile := testProfile(sec.RoleUser)
	store.profiles[profile.ID] = profile

	grant, err := service.Start(context.Background(), profile)
	require.NoError(t, err)
	require.NoError(t, service.Stop(context.Background(), grant.Session.ID))

	resolver := session.NewResolver(service, claimsFor(profile, grant.Session.ID), session.SourceCookie)

	found, err := resolver.Grant(context.Background())
	require.NoError(t, err)
	assert.Nil(t, found)

	resolved, err := resolver.Profile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

/*
TestResolver_ContextRoundTrip exercises the context plumbing, including the
missing-middleware case.
*/
func TestResolver_ContextRoundTrip(t *testing.T) {
	store := newFakeStore()
	service := session.NewService(store)
	resolver := session.NewResolver(service, nil, session.SourceNone)

	ctx := session.WithResolver(context.Background(), resolver)
	assert.Same(t, resolver, session.ResolverFrom(ctx))

	assert.Nil(t, session.ResolverFrom(context.Background()))
}

/*
TestTokenFromRequest checks the bearer header wins over the cookie.
*/
func TestTokenFromRequest(t *testing.T) {
	t.Run("bearer_header", func(t *testing.T) {
		request := httptest.NewRequest("GET", "/api/v1/scripts", nil)
		request.Header.Set("Authorization", "Bearer signed-token")

		token, source := session.TokenFromRequest(request)
		assert.Equal(t, "signed-token", token)
		assert.Equal(t, session.SourceBearer, source)
	})

	t.Run("cookie", func(t *testing.T) {
		request := httptest.NewRequest("GET", "/dashboard", nil)
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "cookie-token"})

		token, source := session.TokenFromRequest(request)
		assert.Equal(t, "cookie-token", token)
		assert.Equal(t, session.SourceCookie, source)
	})

	t.Run("bearer_wins_over_cookie", func(t *testing.T) {
		request := httptest.NewRequest("GET", "/api/v1/scripts", nil)
		request.Header.Set("Authorization", "Bearer header-token")
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "cookie-token"})

		token, source := session.TokenFromRequest(request)
		assert.Equal(t, "header-token", token)
		assert.Equal(t, session.SourceBearer, source)
	})

	t.Run("anonymous", func(t *testing.T) {
		request := httptest.NewRequest("GET", "/", nil)

		token, source := session.TokenFromRequest(request)
		assert.Empty(t, token)
		assert.Equal(t, session.SourceNone, source)
	})
}
