// Copyright (c) 2026 MEhub. All rights reserved.

package script

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/action"
	requestutil "github.com/MathiasBorgers/MEhub-sub000/internal/platform/request"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/respond"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/validate"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/pagination"
)

// Handler implements the HTTP layer for the marketplace catalog.
type Handler struct {
	catalogService *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{catalogService: service}
}

// Routes returns a [chi.Router] configured with the catalog endpoints.
//
// Reads are public. Mutations run through the action pipeline, which
// enforces authentication and roles before any input is decoded.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public catalog
	router.Get("/", handler.list)
	router.Get("/{slug}", handler.getBySlug)
	router.Get("/{slug}/download", handler.download)

	// Publishing and curation
	router.Post("/", handler.publish())
	router.Patch("/{slug}", handler.update())
	router.Delete("/{slug}", handler.remove())
	router.Put("/{slug}/rating", handler.rate())

	return router
}

// # Catalog Reads

/*
GET /api/v1/scripts.

Description: Lists published scripts, newest first. Supports tag and
free-text filters plus page navigation.

Request:
  - Query: page, limit, tag, q (search), owner

Response:
  - 200: Paginated scripts with live download totals
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	query := ListQuery{
		Params:  pagination.FromRequest(request),
		Tag:     request.URL.Query().Get("tag"),
		Search:  request.URL.Query().Get("q"),
		OwnerID: request.URL.Query().Get("owner"),
	}

	page, err := handler.catalogService.List(request.Context(), query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Data, page.Meta)
}

/*
GET /api/v1/scripts/{slug}.

Description: Retrieves one published script by its catalog slug.

Response:
  - 200: Script
  - 404: ErrNotFound: Unknown or removed script
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	entry, err := handler.catalogService.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
GET /api/v1/scripts/{slug}/download.

Description: Counts the download and redirects the client to the script's
file. The redirect is a 303 so download managers re-request with GET.

Response:
  - 303: Location header pointing at the file
  - 404: ErrNotFound: Unknown or removed script
*/
func (handler *Handler) download(writer http.ResponseWriter, request *http.Request) {
	location, err := handler.catalogService.Download(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, location, http.StatusSeeOther)
}

// # Publishing Endpoints

/*
POST /api/v1/scripts.

Description: Publishes a new script. Restricted to developer and
administrator accounts; regular members must upgrade first.

Request:
  - Body: PublishInput

Response:
  - 200: Script: The created entry
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Caller is not a developer
  - 409: ErrConflict: Title collapses to an existing slug
*/
func (handler *Handler) publish() http.HandlerFunc {
	return action.Handler(
		action.Options{Roles: []sec.Role{sec.RoleDeveloper, sec.RoleAdmin}, EchoData: true},
		func(v *validate.Validator, input PublishInput) {
			v.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 120)
			v.Required(FieldSummary, input.Summary).MaxLen(FieldSummary, input.Summary, 300)
			v.MaxLen(FieldDescription, input.Description, 10_000)
			v.Required(FieldVersion, input.Version)
			v.Required(FieldFileURL, input.FileURL).URL(FieldFileURL, input.FileURL)
			v.Custom(FieldTags, len(input.Tags) > 10, "at most 10 tags allowed")
		},
		func(ctx *action.Context[PublishInput], request *http.Request) (any, error) {
			return handler.catalogService.Publish(request.Context(), ctx.Profile, ctx.Data)
		},
	)
}

/*
PATCH /api/v1/scripts/{slug}.

Description: Edits a script. The service refuses callers that are neither
the owner nor an administrator.

Request:
  - Body: UpdateInput (omitted fields stay unchanged)

Response:
  - 200: Script: The updated entry
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Unknown script
*/
func (handler *Handler) update() http.HandlerFunc {
	return action.Handler(
		action.Options{Authenticated: true, EchoData: true},
		func(v *validate.Validator, input UpdateInput) {
			if input.Title != nil {
				v.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 120)
			}
			if input.Summary != nil {
				v.Required(FieldSummary, *input.Summary).MaxLen(FieldSummary, *input.Summary, 300)
			}
			if input.Description != nil {
				v.MaxLen(FieldDescription, *input.Description, 10_000)
			}
			if input.FileURL != nil {
				v.URL(FieldFileURL, *input.FileURL)
			}
			if input.Tags != nil {
				v.Custom(FieldTags, len(*input.Tags) > 10, "at most 10 tags allowed")
			}
		},
		func(ctx *action.Context[UpdateInput], request *http.Request) (any, error) {
			return handler.catalogService.Update(request.Context(), ctx.Profile, requestutil.Param(request, "slug"), ctx.Data)
		},
	)
}

/*
DELETE /api/v1/scripts/{slug}.

Description: Retires a script from the catalog. Owner or administrator
only.

Response:
  - 204: No Content
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Unknown script
*/
func (handler *Handler) remove() http.HandlerFunc {
	return action.Handler(
		action.Options{Authenticated: true},
		nil,
		func(ctx *action.Context[emptyInput], request *http.Request) (any, error) {
			return nil, handler.catalogService.Remove(request.Context(), ctx.Profile, requestutil.Param(request, "slug"))
		},
	)
}

// # Rating Endpoint

type rateInput struct {
	Stars int `json:"stars"`
}

type emptyInput struct{}

/*
PUT /api/v1/scripts/{slug}/rating.

Description: Records or replaces the caller's star rating. Idempotent per
member and script.

Request:
  - Body: rateInput (Stars 1 through 5)

Response:
  - 200: Script: The entry with its refreshed aggregate
  - 400: Validation failure
  - 404: ErrNotFound: Unknown script
*/
func (handler *Handler) rate() http.HandlerFunc {
	return action.Handler(
		action.Options{Authenticated: true},
		func(v *validate.Validator, input rateInput) {
			v.Range(FieldStars, input.Stars, 1, 5)
		},
		func(ctx *action.Context[rateInput], request *http.Request) (any, error) {
			return handler.catalogService.Rate(request.Context(), ctx.Profile, requestutil.Param(request, "slug"), ctx.Data.Stars)
		},
	)
}
