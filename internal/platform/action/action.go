// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package action provides the generic authorization and validation wrapper for
mutating endpoints.

Every form submission and API mutation flows through [Handler], which
enforces a fixed pipeline in front of the domain function:

 1. Authentication (401 before anything else; an anonymous caller never
    learns which roles an action wants).
 2. Role authorization (403, naming the roles that would have sufficed).
 3. Input decoding: JSON bodies directly, HTML form bodies through the
    flat-key normalizer in the form package.
 4. Declarative validation; failures echo the submitted values back so the
    UI can repopulate the form.
 5. Execution. A [Redirect] returned by the domain function becomes a 303;
    any other error is rendered through the standard error envelope. A nil
    result answers 204, or echoes the validated payload when
    [Options.EchoData] is set.

The pipeline owns the boilerplate so domain functions receive typed,
validated input and an authoritative profile, nothing else.
*/
package action

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/ctxutil"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/form"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/respond"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/validate"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// # Wrapper Contracts

// Options declares what an action demands before its domain function runs.
type Options struct {
	// Authenticated requires a signed-in caller with a live session.
	Authenticated bool

	// Roles restricts the action to callers holding one of the listed
	// roles exactly. A non-empty list implies Authenticated.
	Roles []sec.Role

	// EchoData returns the submitted values back to the caller: alongside
	// validation failures so forms can repopulate, and as the response body
	// when the domain function succeeds without a result of its own. Leave
	// off for payloads carrying secrets.
	EchoData bool
}

// Context carries the decoded input and caller identity into the domain
// function.
type Context[T any] struct {
	// Data is the decoded and validated input payload.
	Data T

	// Profile is the authoritative caller profile, nil for anonymous
	// actions. For cookie callers it reflects the live session row, so a
	// mid-session role change is visible immediately.
	Profile *session.Profile

	// Logger is the request-scoped structured logger.
	Logger *slog.Logger
}

// Redirect is a sentinel the domain function returns to send the browser
// somewhere instead of rendering a payload.
type Redirect struct {
	Location string
}

// Error implements the error interface so Redirect can travel the normal
// error return path.
func (r Redirect) Error() string {
	return "redirect to " + r.Location
}

// Func is the domain half of an action: pure input to output, no HTTP.
type Func[T any] func(ctx *Context[T], request *http.Request) (any, error)

// Rules declares field validations for the decoded payload. Nil means the
// payload needs no validation.
type Rules[T any] func(v *validate.Validator, data T)

// # Pipeline

/*
Handler wraps a domain function into an http.HandlerFunc enforcing the
authentication, authorization, decoding, and validation pipeline.

Description: Steps run in a fixed order and each failure short-circuits.
The ordering is part of the contract: the 401 check always precedes the
403 check, and no input is decoded for callers that are not allowed to
act in the first place.

Parameters:
  - options: Options (Authentication and role demands)
  - rules: Rules[T] (Declarative field validation, may be nil)
  - fn: Func[T] (The domain function)

Returns:
  - http.HandlerFunc: The wrapped endpoint
*/
func Handler[T any](options Options, rules Rules[T], fn Func[T]) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		logger := ctxutil.GetLogger(request.Context())

		// ── 1. Authentication ────────────────────────────────────────────────
		needsAuth := options.Authenticated || len(options.Roles) > 0

		var profile *session.Profile
		if resolver := session.ResolverFrom(request.Context()); resolver != nil {
			resolved, err := resolver.Profile(request.Context())
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			profile = resolved
		}

		if needsAuth && profile == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		// ── 2. Role Authorization ────────────────────────────────────────────
		if len(options.Roles) > 0 && !profile.Role.OneOf(options.Roles...) {
			respond.Error(writer, request, apperr.Forbidden(roleMessage(options.Roles)))
			return
		}

		// ── 3. Input Decoding ────────────────────────────────────────────────
		data, submitted, err := decode[T](request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		// ── 4. Validation ────────────────────────────────────────────────────
		if rules != nil {
			validator := &validate.Validator{}
			rules(validator, data)
			if validator.HasErrors() {
				writeValidationFailure(writer, request, validator.Err(), submitted, options.EchoData)
				return
			}
		}

		// ── 5. Execution ─────────────────────────────────────────────────────
		result, err := fn(&Context[T]{Data: data, Profile: profile, Logger: logger}, request)
		if err != nil {
			var redirect Redirect
			if errors.As(err, &redirect) {
				http.Redirect(writer, request, redirect.Location, http.StatusSeeOther)
				return
			}
			respond.Error(writer, request, err)
			return
		}

		if result == nil {
			// Echo the typed payload, not the raw submission: decoding into T
			// already dropped unknown keys.
			if options.EchoData {
				respond.OK(writer, data)
				return
			}
			respond.NoContent(writer)
			return
		}
		respond.OK(writer, result)
	}
}

// # Decoding

// maxFormMemory caps in-memory buffering of multipart submissions.
const maxFormMemory = 10 << 20

// decode reads the request body into T. JSON bodies decode directly; form
// bodies are normalized from flat keys into a nested document first and the
// raw submission is kept for value echoing.
func decode[T any](request *http.Request) (T, map[string]any, error) {
	var data T

	if request.Body == nil || request.ContentLength == 0 {
		return data, nil, nil
	}

	contentType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	switch contentType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if contentType == "multipart/form-data" {
			if err := request.ParseMultipartForm(maxFormMemory); err != nil {
				return data, nil, apperr.ValidationError("Malformed form submission")
			}
		} else if err := request.ParseForm(); err != nil {
			return data, nil, apperr.ValidationError("Malformed form submission")
		}
		document := form.Normalize(request.PostForm)
		if err := remarshal(document, &data); err != nil {
			return data, document, apperr.ValidationError("Malformed form submission")
		}
		return data, document, nil

	default:
		if err := json.NewDecoder(request.Body).Decode(&data); err != nil {
			return data, nil, validate.ErrInvalidJSON
		}
		return data, nil, nil
	}
}

// remarshal converts the normalized form document into the typed payload.
// A JSON round-trip keeps one set of field tags authoritative for both
// body formats.
func remarshal(document map[string]any, target any) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// # Failure Rendering

// validationEnvelope extends the standard error envelope with the caller's
// submitted values.
type validationEnvelope struct {
	Code    string              `json:"code"`
	Message string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
	Values  map[string]any      `json:"values,omitempty"`
}

func writeValidationFailure(writer http.ResponseWriter, request *http.Request, err error, submitted map[string]any, echo bool) {
	appError := apperr.As(err)
	if appError == nil {
		respond.Error(writer, request, err)
		return
	}

	envelope := validationEnvelope{
		Code:    appError.Code,
		Message: appError.Message,
		Details: appError.Details,
	}
	if echo {
		envelope.Values = submitted
	}

	respond.JSON(writer, appError.HTTPStatus, envelope)
}

func roleMessage(roles []sec.Role) string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return "This action requires one of the following roles: " + strings.Join(names, ", ")
}
