// Copyright (c) 2026 MEhub. All rights reserved.

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/action"
	requestutil "github.com/MathiasBorgers/MEhub-sub000/internal/platform/request"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/respond"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/validate"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/auth"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/pagination"
)

// Handler implements the HTTP layer for administration.
//
// # Security
//
// Every route runs through the action pipeline with an Admin-only role
// list, so anonymous callers get 401 and non-admin members get 403 before
// any input is even decoded.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new admin [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

// Routes returns a [chi.Router] configured with the admin endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/users", handler.listUsers())
	router.Patch("/users/{id}/role", handler.changeRole())
	router.Post("/users/{id}/signout", handler.forceSignOut())
	router.Delete("/users/{id}", handler.removeUser())

	return router
}

type emptyInput struct{}

/*
GET /api/v1/admin/users.

Description: Paginated account listing for the moderation console.

Response:
  - 200: Paginated []auth.User
  - 401/403: Authentication and role failures
*/
func (handler *Handler) listUsers() http.HandlerFunc {
	admin := action.Options{Roles: []sec.Role{sec.RoleAdmin}}

	return action.Handler(admin, nil,
		func(_ *action.Context[emptyInput], request *http.Request) (any, error) {
			params := pagination.FromRequest(request)
			users, meta, err := handler.adminService.ListUsers(request.Context(), params)
			if err != nil {
				return nil, err
			}
			return respond.PaginatedEnvelope{Data: users, Meta: meta}, nil
		},
	)
}

// changeRoleInput carries the target role for a role change.
type changeRoleInput struct {
	Role string `json:"role"`
}

/*
PATCH /api/v1/admin/users/{id}/role.

Description: Assigns a new role and revokes the target's sessions.

Request:
  - Body: changeRoleInput (Role: User, Developer, or Admin)

Response:
  - 200: session.Profile: The updated account
  - 400: Validation failure
  - 422: Self-modification refused
*/
func (handler *Handler) changeRole() http.HandlerFunc {
	admin := action.Options{Roles: []sec.Role{sec.RoleAdmin}}

	return action.Handler(admin,
		func(v *validate.Validator, input changeRoleInput) {
			v.Required(auth.FieldRole, input.Role).
				OneOf(auth.FieldRole, input.Role, string(sec.RoleUser), string(sec.RoleDeveloper), string(sec.RoleAdmin))
		},
		func(ctx *action.Context[changeRoleInput], request *http.Request) (any, error) {
			return handler.adminService.ChangeRole(
				request.Context(),
				ctx.Profile.ID,
				requestutil.ID(request, "id"),
				sec.Role(ctx.Data.Role),
			)
		},
	)
}

/*
POST /api/v1/admin/users/{id}/signout.

Description: Revokes every live session of the target account.

Response:
  - 204: No Content
  - 404: Unknown account
*/
func (handler *Handler) forceSignOut() http.HandlerFunc {
	admin := action.Options{Roles: []sec.Role{sec.RoleAdmin}}

	return action.Handler(admin, nil,
		func(ctx *action.Context[emptyInput], request *http.Request) (any, error) {
			err := handler.adminService.ForceSignOut(request.Context(), ctx.Profile.ID, requestutil.ID(request, "id"))
			return nil, err
		},
	)
}

/*
DELETE /api/v1/admin/users/{id}.

Description: Soft-deletes the account and revokes its sessions.

Response:
  - 204: No Content
  - 422: Self-removal refused
*/
func (handler *Handler) removeUser() http.HandlerFunc {
	admin := action.Options{Roles: []sec.Role{sec.RoleAdmin}}

	return action.Handler(admin, nil,
		func(ctx *action.Context[emptyInput], request *http.Request) (any, error) {
			err := handler.adminService.RemoveUser(request.Context(), ctx.Profile.ID, requestutil.ID(request, "id"))
			return nil, err
		},
	)
}
