// Copyright (c) 2026 MEhub. All rights reserved.

package script

import (
	"context"
	"time"

	"github.com/MathiasBorgers/MEhub-sub000/pkg/pagination"
)

// ListQuery narrows the catalog listing.
type ListQuery struct {
	Params pagination.Params

	// Tag filters to scripts carrying the tag exactly.
	Tag string

	// Search matches title and summary, case-insensitively.
	Search string

	// OwnerID filters to one developer's scripts (dashboard view).
	OwnerID string
}

// Cacheable reports whether the query is the plain first catalog page, the
// only variant worth caching.
func (q ListQuery) Cacheable() bool {
	return q.Tag == "" && q.Search == "" && q.OwnerID == "" &&
		q.Params.Page == pagination.DefaultPage && q.Params.Limit == pagination.DefaultLimit
}

// ScriptRepository defines the persistence contract for catalog entries.
type ScriptRepository interface {
	// Create persists a new script.
	Create(context context.Context, script *Script) error

	// FindByID retrieves a non-deleted script by primary key.
	FindByID(context context.Context, id string) (*Script, error)

	// FindBySlug retrieves a non-deleted script by its URL slug.
	FindBySlug(context context.Context, slug string) (*Script, error)

	// List returns one page of non-deleted scripts matching the query,
	// newest first, with the total match count.
	List(context context.Context, query ListQuery) ([]*Script, int, error)

	// Update persists the editable fields of a script.
	Update(context context.Context, script *Script) error

	// SoftDelete retires a script from the catalog without destroying it.
	SoftDelete(context context.Context, id string) error
}

// RatingRepository defines the persistence contract for ratings.
type RatingRepository interface {
	// Upsert inserts or replaces the member's rating and recomputes the
	// script's aggregate in the same transaction.
	Upsert(context context.Context, rating *Rating) error

	// FindByUser returns the member's rating for a script, if any.
	FindByUser(context context.Context, scriptID, userID string) (*Rating, error)
}

// DownloadCounter tracks per-script download totals on the hot path.
type DownloadCounter interface {
	// Increment bumps the script's counter and returns the new total.
	Increment(context context.Context, scriptID string) (int64, error)

	// Get returns the script's current total (zero when never downloaded).
	Get(context context.Context, scriptID string) (int64, error)

	// GetMany returns totals for several scripts in one round trip.
	GetMany(context context.Context, scriptIDs []string) (map[string]int64, error)
}

// ListCache holds the rendered first catalog page for a short window.
type ListCache interface {
	// GetPage returns the cached page payload, or (nil, nil) on a miss.
	GetPage(context context.Context, key string) ([]byte, error)

	// SetPage stores a page payload with a TTL.
	SetPage(context context.Context, key string, payload []byte, ttl time.Duration) error

	// Invalidate drops every cached page.
	Invalidate(context context.Context) error
}
