// Copyright (c) 2026 MEhub. All rights reserved.

/*
Auth HTTP delivery layer.

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Issues and clears the session cookie pair (signed token plus
    client-readable profile mirror).
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON, cookies).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/middleware"
	requestutil "github.com/MathiasBorgers/MEhub-sub000/internal/platform/request"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/respond"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/validate"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the account lifecycle entry points (registration,
// sign-in, sign-out, credential rotation).
type Handler struct {
	authService   *Service
	secureCookies bool
}

// NewHandler constructs a new [Handler] with its service dependency.
// secureCookies should be true outside development so cookies are
// HTTPS-only.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{authService: service, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register        : Creates an account and signs it in.
//   - POST /signin          : Authenticates and starts a session.
//   - POST /signout         : Revokes the caller's session. Idempotent.
//   - GET  /me              : Returns the caller's profile.
//   - POST /change-password : Rotates the credential, revoking other sessions.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/signin", handler.signIn)
	router.Post("/signout", handler.signOut)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Response Payloads

// signedInResponse is the JSON body of every endpoint that establishes a
// session. API clients read the token from here; browsers rely on the
// cookies set alongside.
type signedInResponse struct {
	Token   string           `json:"token"`
	User    *session.Profile `json:"user"`
	Session *session.Session `json:"session"`
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, persists the
account, and signs the new member in immediately.

Request:
  - Body: RegisterInput (Username, Email, Password)

Response:
  - 201: signedInResponse: Token, profile, and session window
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		MaxLen(FieldUsername, input.Username, 32).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	signedIn, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.issueCookies(writer, signedIn)
	respond.Created(writer, signedInResponse{
		Token:   signedIn.Token,
		User:    &signedIn.Grant.Profile,
		Session: &signedIn.Grant.Session,
	})
}

/*
SignIn authenticates a member and starts a session.

POST /api/v1/auth/signin

Description: Verifies the login/password pair. The failure message never
distinguishes an unknown login from a wrong password.

Request:
  - Body: SignInInput (Login, Password)

Response:
  - 200: signedInResponse: Token, profile, and session window
  - 401: Unauthorized: Generic credential failure
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	var input SignInInput

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("login", input.Login).
		Required(FieldPassword, input.Password)

	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	signedIn, err := handler.authService.SignIn(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.issueCookies(writer, signedIn)
	respond.OK(writer, signedInResponse{
		Token:   signedIn.Token,
		User:    &signedIn.Grant.Profile,
		Session: &signedIn.Grant.Session,
	})
}

/*
SignOut revokes the caller's session and clears the cookie pair.

POST /api/v1/auth/signout

Description: Idempotent; an anonymous or already-signed-out caller receives
the same 204 as a live one, because the requested end state already holds.

Response:
  - 204: No Content
*/
func (handler *Handler) signOut(writer http.ResponseWriter, request *http.Request) {
	sessionID := ""
	if claims := requestutil.Claims(request); claims != nil {
		sessionID = claims.SessionID
	}

	if err := handler.authService.SignOut(request.Context(), sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session.ClearSessionCookie(writer, handler.secureCookies)
	session.ClearProfileCookie(writer, handler.secureCookies)
	respond.NoContent(writer)
}

/*
Me returns the caller's profile at the caller's trust level.

GET /api/v1/auth/me

Response:
  - 200: session.Profile
  - 401: Unauthorized: Anonymous caller or revoked session
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	resolver := session.ResolverFrom(request.Context())

	profile, err := resolver.Profile(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if profile == nil {
		respond.Error(writer, request, apperr.Unauthorized("Session is no longer active"))
		return
	}

	respond.OK(writer, profile)
}

/*
ChangePassword rotates the caller's credential.

POST /api/v1/auth/change-password

Description: Re-verifies the current password, revokes every session, and
issues a replacement session for the caller.

Request:
  - Body: ChangePasswordInput (CurrentPassword, NewPassword)

Response:
  - 200: signedInResponse: Replacement token and session
  - 401: Unauthorized: Wrong current password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ChangePasswordInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("current_password", input.CurrentPassword).
		Required("new_password", input.NewPassword).
		MinLen("new_password", input.NewPassword, 8)

	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	signedIn, err := handler.authService.ChangePassword(request.Context(), claims.UserID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.issueCookies(writer, signedIn)
	respond.OK(writer, signedInResponse{
		Token:   signedIn.Token,
		User:    &signedIn.Grant.Profile,
		Session: &signedIn.Grant.Session,
	})
}

// issueCookies installs the cookie pair for a fresh session: the HttpOnly
// signed token (token lifetime) and the readable profile mirror (session
// lifetime).
func (handler *Handler) issueCookies(writer http.ResponseWriter, signedIn *SignedInUser) {
	session.SetSessionCookie(writer, signedIn.Token, time.Now().Add(sec.TokenTTL), handler.secureCookies)
	session.SetProfileCookie(writer, &signedIn.Grant.Profile, signedIn.Grant.Session.ActiveUntil, handler.secureCookies)
}
