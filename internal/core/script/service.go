// Copyright (c) 2026 MEhub. All rights reserved.

package script

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/pagination"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/slug"
	"github.com/MathiasBorgers/MEhub-sub000/pkg/uuid"
)

// listCacheTTL bounds staleness of the cached first catalog page.
const listCacheTTL = 30 * time.Second

// listCacheKey identifies the one page variant worth caching.
const listCacheKey = "first"

const slugConflictMessage = "A script with a similar title already exists"

// Service implements the marketplace catalog use cases.
type Service struct {
	scripts   ScriptRepository
	ratings   RatingRepository
	downloads DownloadCounter
	cache     ListCache
	logger    *slog.Logger
}

// NewService creates a new catalog service.
func NewService(
	scripts ScriptRepository,
	ratings RatingRepository,
	downloads DownloadCounter,
	cache ListCache,
	logger *slog.Logger,
) *Service {
	return &Service{
		scripts:   scripts,
		ratings:   ratings,
		downloads: downloads,
		cache:     cache,
		logger:    logger,
	}
}

// # Read Path

// Page is one rendered catalog page: entries with live download totals
// merged in, plus navigation metadata.
type Page struct {
	Data []*Script       `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

/*
List returns one page of the catalog matching the query.

Description: The plain first page is served from the Redis cache when
possible. Filtered, searched, owner-scoped, and deep pages always hit
the database.

Parameters:
  - context: context.Context
  - query: ListQuery

Returns:
  - *Page: Scripts with merged download totals and pagination metadata
  - error: Storage errors
*/
func (service *Service) List(context context.Context, query ListQuery) (*Page, error) {
	if query.Cacheable() {
		if page := service.cachedPage(context); page != nil {
			return page, nil
		}
	}

	scripts, total, err := service.scripts.List(context, query)
	if err != nil {
		return nil, err
	}

	if err := service.mergeDownloads(context, scripts); err != nil {
		return nil, err
	}

	page := &Page{
		Data: scripts,
		Meta: pagination.NewMeta(query.Params.Page, query.Params.Limit, total),
	}

	if query.Cacheable() {
		service.storePage(context, page)
	}

	return page, nil
}

// cachedPage returns the cached first page, or nil on any miss or cache
// trouble. Cache failures never fail the request.
func (service *Service) cachedPage(context context.Context) *Page {
	payload, err := service.cache.GetPage(context, listCacheKey)
	if err != nil {
		service.logger.Warn("script_list_cache_read_failed", "error", err)
		return nil
	}
	if payload == nil {
		return nil
	}

	page := &Page{}
	if err := json.Unmarshal(payload, page); err != nil {
		service.logger.Warn("script_list_cache_decode_failed", "error", err)
		return nil
	}
	return page
}

func (service *Service) storePage(context context.Context, page *Page) {
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := service.cache.SetPage(context, listCacheKey, payload, listCacheTTL); err != nil {
		service.logger.Warn("script_list_cache_write_failed", "error", err)
	}
}

// mergeDownloads copies the live Redis totals into the entities. A counter
// outage degrades to zero totals rather than failing the read.
func (service *Service) mergeDownloads(context context.Context, scripts []*Script) error {
	if len(scripts) == 0 {
		return nil
	}

	ids := make([]string, len(scripts))
	for index, entry := range scripts {
		ids[index] = entry.ID
	}

	totals, err := service.downloads.GetMany(context, ids)
	if err != nil {
		service.logger.Warn("script_download_totals_unavailable", "error", err)
		return nil
	}

	for _, entry := range scripts {
		entry.Downloads = totals[entry.ID]
	}
	return nil
}

/*
GetBySlug returns one published script with its live download total.
*/
func (service *Service) GetBySlug(context context.Context, slugValue string) (*Script, error) {
	entry, err := service.scripts.FindBySlug(context, slugValue)
	if err != nil {
		return nil, err
	}

	total, err := service.downloads.Get(context, entry.ID)
	if err != nil {
		service.logger.Warn("script_download_totals_unavailable", "script_id", entry.ID, "error", err)
	} else {
		entry.Downloads = total
	}

	return entry, nil
}

// # Publishing

// PublishInput carries the fields of a new catalog entry.
type PublishInput struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Version     string   `json:"version"`
	FileURL     string   `json:"file_url"`
}

/*
Publish creates a new catalog entry owned by the caller.

Description: The slug derives from the title; two scripts whose titles
collapse to the same slug conflict, which keeps catalog URLs stable and
unambiguous.

Parameters:
  - context: context.Context
  - owner: *session.Profile (The publishing developer)
  - input: PublishInput

Returns:
  - *Script: The created entry
  - error: Conflict on slug collision, storage errors
*/
func (service *Service) Publish(context context.Context, owner *session.Profile, input PublishInput) (*Script, error) {
	entry := &Script{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Title:       input.Title,
		Slug:        slug.From(input.Title),
		Summary:     input.Summary,
		Description: input.Description,
		Tags:        input.Tags,
		Version:     input.Version,
		FileURL:     input.FileURL,
	}

	if err := service.scripts.Create(context, entry); err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "CONFLICT" {
			return nil, apperr.Conflict(slugConflictMessage)
		}
		return nil, err
	}

	service.invalidateListCache(context)

	service.logger.Info("script_published",
		"script_id", entry.ID,
		"slug", entry.Slug,
		"owner_id", owner.ID,
	)

	return entry, nil
}

// UpdateInput carries the editable fields of a script. Nil pointers leave
// the current value unchanged.
type UpdateInput struct {
	Title       *string   `json:"title"`
	Summary     *string   `json:"summary"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Version     *string   `json:"version"`
	FileURL     *string   `json:"file_url"`
}

/*
Update edits a catalog entry addressed by its slug.

Description: Only the owner or an administrator may edit. The slug is
fixed at publish time and never follows a title change, so bookmarks and
download links keep working.

Parameters:
  - context: context.Context
  - actor: *session.Profile (The caller)
  - slugValue: string
  - input: UpdateInput

Returns:
  - *Script: The updated entry
  - error: NotFound, Forbidden, storage errors
*/
func (service *Service) Update(context context.Context, actor *session.Profile, slugValue string, input UpdateInput) (*Script, error) {
	entry, err := service.scripts.FindBySlug(context, slugValue)
	if err != nil {
		return nil, err
	}

	if err := service.authorizeOwner(actor, entry, "update"); err != nil {
		return nil, err
	}

	if input.Title != nil {
		entry.Title = *input.Title
	}
	if input.Summary != nil {
		entry.Summary = *input.Summary
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}
	if input.Tags != nil {
		entry.Tags = *input.Tags
	}
	if input.Version != nil {
		entry.Version = *input.Version
	}
	if input.FileURL != nil {
		entry.FileURL = *input.FileURL
	}

	if err := service.scripts.Update(context, entry); err != nil {
		return nil, err
	}

	service.invalidateListCache(context)

	return entry, nil
}

/*
Remove retires a catalog entry.

Description: Only the owner or an administrator may remove. The entry is
soft deleted so its ratings and download history remain for audit.

Parameters:
  - context: context.Context
  - actor: *session.Profile
  - slugValue: string

Returns:
  - error: NotFound, Forbidden, storage errors
*/
func (service *Service) Remove(context context.Context, actor *session.Profile, slugValue string) error {
	entry, err := service.scripts.FindBySlug(context, slugValue)
	if err != nil {
		return err
	}

	if err := service.authorizeOwner(actor, entry, "remove"); err != nil {
		return err
	}

	if err := service.scripts.SoftDelete(context, entry.ID); err != nil {
		return err
	}

	service.invalidateListCache(context)

	service.logger.Info("script_removed",
		"script_id", entry.ID,
		"slug", entry.Slug,
		"actor_id", actor.ID,
	)

	return nil
}

// authorizeOwner allows the entry's owner and administrators; every other
// caller is refused and the attempt is logged.
func (service *Service) authorizeOwner(actor *session.Profile, entry *Script, operation string) error {
	if actor.ID == entry.OwnerID || actor.Role == sec.RoleAdmin {
		return nil
	}

	service.logger.Warn("script_ownership_violation",
		"operation", operation,
		"script_id", entry.ID,
		"owner_id", entry.OwnerID,
		"actor_id", actor.ID,
	)

	return apperr.Forbidden("Only the script owner can perform this action")
}

// # Ratings

/*
Rate records or replaces the caller's star rating for a script.

Description: One rating per member per script; rating again overwrites
the previous value. The script's pre-aggregated average refreshes in the
same transaction as the rating row.

Parameters:
  - context: context.Context
  - actor: *session.Profile
  - slugValue: string
  - stars: int (1 through 5)

Returns:
  - *Script: The entry with its refreshed aggregate
  - error: ValidationError, NotFound, storage errors
*/
func (service *Service) Rate(context context.Context, actor *session.Profile, slugValue string, stars int) (*Script, error) {
	if stars < 1 || stars > 5 {
		return nil, apperr.ValidationError("Rating must be between 1 and 5 stars", apperr.FieldError{
			Field:   FieldStars,
			Message: "must be between 1 and 5",
		})
	}

	entry, err := service.scripts.FindBySlug(context, slugValue)
	if err != nil {
		return nil, err
	}

	rating := &Rating{
		ScriptID: entry.ID,
		UserID:   actor.ID,
		Stars:    stars,
	}
	if err := service.ratings.Upsert(context, rating); err != nil {
		return nil, err
	}

	service.invalidateListCache(context)

	return service.scripts.FindByID(context, entry.ID)
}

// # Downloads

/*
Download records a download and returns the file location to redirect to.

Description: The counter lives only in Redis; the relational row is not
touched, so the hot path stays a single increment. A counter outage does
not block the download itself.

Parameters:
  - context: context.Context
  - slugValue: string

Returns:
  - string: The script's file URL
  - error: NotFound, storage errors
*/
func (service *Service) Download(context context.Context, slugValue string) (string, error) {
	entry, err := service.scripts.FindBySlug(context, slugValue)
	if err != nil {
		return "", err
	}

	if _, err := service.downloads.Increment(context, entry.ID); err != nil {
		service.logger.Warn("script_download_count_failed", "script_id", entry.ID, "error", err)
	}

	return entry.FileURL, nil
}

func (service *Service) invalidateListCache(context context.Context) {
	if err := service.cache.Invalidate(context); err != nil {
		service.logger.Warn("script_list_cache_invalidate_failed", "error", err)
	}
}
