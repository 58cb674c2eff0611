// Copyright (c) 2026 MEhub. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/action"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/middleware"
	requestutil "github.com/MathiasBorgers/MEhub-sub000/internal/platform/request"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/respond"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/validate"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/auth"
)

// Handler implements the HTTP layer for account self-management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public profile discovery
	router.Get("/users/{id}", handler.getUserProfile)

	// Self-service endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me/profile", handler.getProfile)
		r.Patch("/me/profile", handler.updateProfile())

		r.Get("/me/sessions", handler.listSessions)
		r.Delete("/me/sessions", handler.revokeOtherSessions)
		r.Delete("/me/sessions/{id}", handler.revokeSession)
	})

	return router
}

// # Profile Endpoints

/*
GET /api/v1/account/me/profile.

Description: Retrieves the caller's profile.

Response:
  - 200: session.Profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
PATCH /api/v1/account/me/profile.

Description: Partial profile update through the action pipeline. Accepts
JSON from API clients and form submissions from the profile page; failed
validation echoes the submitted values back for form repopulation.

Request:
  - Body: UpdateProfileInput (Bio, AvatarURL; omitted fields stay unchanged)

Response:
  - 200: session.Profile: The updated profile
  - 400: Validation failure with field details and echoed values
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateProfile() http.HandlerFunc {
	return action.Handler(
		action.Options{Authenticated: true, EchoData: true},
		func(v *validate.Validator, input UpdateProfileInput) {
			if input.Bio != nil {
				v.MaxLen(auth.FieldBio, *input.Bio, 500)
			}
			if input.AvatarURL != nil && *input.AvatarURL != "" {
				v.URL(auth.FieldAvatar, *input.AvatarURL)
			}
		},
		func(ctx *action.Context[UpdateProfileInput], request *http.Request) (any, error) {
			return handler.accountService.UpdateProfile(request.Context(), ctx.Profile.ID, ctx.Data)
		},
	)
}

/*
GET /api/v1/account/users/{id}.

Description: Public profile lookup for developer pages.

Response:
  - 200: session.Profile
  - 404: ErrNotFound: Unknown or deleted account
*/
func (handler *Handler) getUserProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.accountService.GetPublicProfile(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// # Session Security Endpoints

/*
GET /api/v1/account/me/sessions.

Description: Lists the caller's sign-in history, live and expired, newest
first.

Response:
  - 200: []session.Session
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.accountService.ListSessions(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessions)
}

/*
DELETE /api/v1/account/me/sessions/{id}.

Description: Revokes one of the caller's own sessions. Foreign session IDs
are reported as missing, never as forbidden.

Response:
  - 204: No Content
  - 404: ErrNotFound: Not the caller's session
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RevokeSession(request.Context(), userID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/account/me/sessions.

Description: Revokes every session of the caller except the current one.

Response:
  - 204: No Content
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) revokeOtherSessions(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RevokeOtherSessions(request.Context(), claims.UserID, claims.SessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
