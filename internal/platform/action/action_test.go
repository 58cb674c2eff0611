// Copyright (c) 2026 MEhub. All rights reserved.

package action_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/action"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/validate"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

type submitInput struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// signedIn builds a request context with a stateless (bearer-trust) caller
// of the given role.
func signedIn(request *http.Request, role sec.Role) *http.Request {
	claims := &sec.SessionClaims{
		Email:     "dev@mehub.dev",
		UserID:    "0198a111-0000-7000-8000-000000000001",
		Username:  "scriptwright",
		Role:      string(role),
		SessionID: "0198a111-0000-7000-8000-00000000beef",
	}
	resolver := session.NewResolver(nil, claims, session.SourceBearer)
	return request.WithContext(session.WithResolver(request.Context(), resolver))
}

func anonymous(request *http.Request) *http.Request {
	resolver := session.NewResolver(nil, nil, session.SourceNone)
	return request.WithContext(session.WithResolver(request.Context(), resolver))
}

/*
TestHandler_AuthBeforeRoles proves an anonymous caller of a role-gated
action sees 401, never 403.
*/
func TestHandler_AuthBeforeRoles(t *testing.T) {
	executed := false
	handler := action.Handler(
		action.Options{Roles: []sec.Role{sec.RoleAdmin}},
		nil,
		func(*action.Context[submitInput], *http.Request) (any, error) {
			executed = true
			return nil, nil
		},
	)

	request := anonymous(httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil))
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "Admin", "role demands must not leak to anonymous callers")
	assert.False(t, executed)
}

/*
TestHandler_RoleGateNamesRoles gives signed-in callers of the wrong role a
403 that names the roles that would have sufficed.
*/
func TestHandler_RoleGateNamesRoles(t *testing.T) {
	handler := action.Handler(
		action.Options{Roles: []sec.Role{sec.RoleAdmin}},
		nil,
		func(*action.Context[submitInput], *http.Request) (any, error) {
			return nil, nil
		},
	)

	request := signedIn(httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil), sec.RoleUser)
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Admin")
}

/*
TestHandler_ValidationEchoesValues returns the field errors together with
the submitted form values when echoing is enabled.
*/
func TestHandler_ValidationEchoesValues(t *testing.T) {
	handler := action.Handler(
		action.Options{Authenticated: true, EchoData: true},
		func(v *validate.Validator, data submitInput) {
			v.Required("title", data.Title)
		},
		func(*action.Context[submitInput], *http.Request) (any, error) {
			t.Fatal("domain function must not run on validation failure")
			return nil, nil
		},
	)

	body := strings.NewReader("title=&tags=go&tags=cli")
	request := httptest.NewRequest(http.MethodPost, "/scripts/submit", body)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request = signedIn(request, sec.RoleDeveloper)

	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	payload := recorder.Body.String()
	assert.Contains(t, payload, `"details"`)
	assert.Contains(t, payload, `"title"`)
	assert.Contains(t, payload, `"values"`)
	assert.Contains(t, payload, `"cli"`, "submitted values must be echoed back")
}

/*
TestHandler_SuccessEchoesPayload returns the validated payload as the
response body when the domain function succeeds without a result of its own
and the action opted into echoing. Unknown form keys never come back: the
typed payload filters them during decoding.
*/
func TestHandler_SuccessEchoesPayload(t *testing.T) {
	handler := action.Handler(
		action.Options{Authenticated: true, EchoData: true},
		func(v *validate.Validator, data submitInput) {
			v.Required("title", data.Title)
		},
		func(*action.Context[submitInput], *http.Request) (any, error) {
			return nil, nil
		},
	)

	body := strings.NewReader("title=keep-me&tags=go&tags=cli&stray=drop-me")
	request := httptest.NewRequest(http.MethodPost, "/scripts/submit", body)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request = signedIn(request, sec.RoleDeveloper)

	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	payload := recorder.Body.String()
	assert.Contains(t, payload, "keep-me", "validated fields must be echoed on success")
	assert.NotContains(t, payload, "drop-me", "keys outside the payload type must be filtered")
}

/*
TestHandler_SuccessWithoutEchoIs204 keeps the bare 204 for actions that did
not opt into echoing.
*/
func TestHandler_SuccessWithoutEchoIs204(t *testing.T) {
	handler := action.Handler(
		action.Options{Authenticated: true},
		nil,
		func(*action.Context[submitInput], *http.Request) (any, error) {
			return nil, nil
		},
	)

	request := signedIn(httptest.NewRequest(http.MethodPost, "/scripts/submit", nil), sec.RoleDeveloper)
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}

/*
TestHandler_NoEchoWithoutOptIn keeps submitted values out of the failure
payload unless the action opted in.
*/
func TestHandler_NoEchoWithoutOptIn(t *testing.T) {
	handler := action.Handler(
		action.Options{Authenticated: true},
		func(v *validate.Validator, data submitInput) {
			v.Required("title", data.Title)
		},
		func(*action.Context[submitInput], *http.Request) (any, error) {
			return nil, nil
		},
	)

	body := strings.NewReader("title=&tags=secret-value")
	request := httptest.NewRequest(http.MethodPost, "/scripts/submit", body)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request = signedIn(request, sec.RoleDeveloper)

	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "secret-value")
}

/*
TestHandler_FormDecoding feeds an HTML form submission through the flat-key
normalizer into the typed payload.
*/
func TestHandler_FormDecoding(t *testing.T) {
	var got submitInput
	handler := action.Handler(
		action.Options{Authenticated: true},
		nil,
		func(ctx *action.Context[submitInput], _ *http.Request) (any, error) {
			got = ctx.Data
			return map[string]string{"status": "ok"}, nil
		},
	)

	body := strings.NewReader("title=Deploy+Helper&tags=go&tags=devops&$ACTION_REF_1=ignored")
	request := httptest.NewRequest(http.MethodPost, "/scripts/submit", body)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request = signedIn(request, sec.RoleDeveloper)

	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Deploy Helper", got.Title)
	assert.Equal(t, []string{"go", "devops"}, got.Tags)
}

/*
TestHandler_JSONDecoding decodes API bodies directly.
*/
func TestHandler_JSONDecoding(t *testing.T) {
	var got submitInput
	handler := action.Handler(
		action.Options{Authenticated: true},
		nil,
		func(ctx *action.Context[submitInput], _ *http.Request) (any, error) {
			got = ctx.Data
			return nil, nil
		},
	)

	body := strings.NewReader(`{"title":"Deploy Helper","tags":["go"]}`)
	request := httptest.NewRequest(http.MethodPost, "/api/v1/scripts", body)
	request.Header.Set("Content-Type", "application/json")
	request = signedIn(request, sec.RoleDeveloper)

	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "Deploy Helper", got.Title)
}

/*
TestHandler_RedirectSentinel turns the redirect sentinel into a 303 with
the target location.
*/
func TestHandler_RedirectSentinel(t *testing.T) {
	handler := action.Handler(
		action.Options{},
		nil,
		func(*action.Context[submitInput], *http.Request) (any, error) {
			return nil, action.Redirect{Location: "/dashboard"}
		},
	)

	request := anonymous(httptest.NewRequest(http.MethodPost, "/signin", nil))
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/dashboard", recorder.Header().Get("Location"))
}

/*
TestHandler_DomainErrorEnvelope renders domain errors through the standard
error envelope.
*/
func TestHandler_DomainErrorEnvelope(t *testing.T) {
	handler := action.Handler(
		action.Options{Authenticated: true},
		nil,
		func(*action.Context[submitInput], *http.Request) (any, error) {
			return nil, apperr.Conflict("Script slug already exists")
		},
	)

	request := signedIn(httptest.NewRequest(http.MethodPost, "/api/v1/scripts", nil), sec.RoleDeveloper)
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "CONFLICT")
}

/*
TestHandler_ProfileFromClaims hands the domain function the caller's
profile.
*/
func TestHandler_ProfileFromClaims(t *testing.T) {
	var profile *session.Profile
	handler := action.Handler(
		action.Options{Authenticated: true},
		nil,
		func(ctx *action.Context[submitInput], _ *http.Request) (any, error) {
			profile = ctx.Profile
			return nil, nil
		},
	)

	request := signedIn(httptest.NewRequest(http.MethodPost, "/api/v1/account", nil), sec.RoleDeveloper)
	recorder := httptest.NewRecorder()
	handler(recorder, request)

	require.NotNil(t, profile)
	assert.Equal(t, "scriptwright", profile.Username)
	assert.Equal(t, sec.RoleDeveloper, profile.Role)
}
