// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package script implements the automation-script marketplace core.

It covers the public catalog (listing, search, detail pages), the developer
publishing flow (submit, update, retire), community ratings with
pre-aggregated averages, and download delivery with live counters.

Architecture:

  - Service: Orchestrates business logic and ownership authorization.
  - ScriptRepository / RatingRepository: PostgreSQL persistence (market schema).
  - DownloadCounter / ListCache: Redis-backed hot-path state.
*/
package script

import (
	"time"
)

// # Validation Field Identifiers

const (
	FieldTitle       = "title"
	FieldSummary     = "summary"
	FieldDescription = "description"
	FieldTags        = "tags"
	FieldVersion     = "version"
	FieldFileURL     = "file_url"
	FieldStars       = "stars"
)

// # Entities

// Script is a published automation script in the marketplace catalog.
//
// Downloads are not stored here: the live counter lives in Redis and is
// merged into the payload on read.
type Script struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags"`
	Version     string     `json:"version"`
	FileURL     string     `json:"file_url"`
	RatingAvg   float64    `json:"rating_avg"`
	RatingCount int        `json:"rating_count"`
	Downloads   int64      `json:"downloads"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// Rating is one member's score for one script. A member rates a script at
// most once; re-rating replaces the previous score.
type Rating struct {
	ScriptID  string    `json:"script_id"`
	UserID    string    `json:"user_id"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
