// Copyright (c) 2026 MEhub. All rights reserved.

package script

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/apperr"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/dberr"
)

// # Script Repository

const scriptColumns = "id, ownerid, title, slug, summary, description, tags, version, fileurl, ratingavg, ratingcount, createdat, updatedat"

// PostgresScriptRepository implements the ScriptRepository interface using pgx.
type PostgresScriptRepository struct {
	pool *pgxpool.Pool
}

// NewScriptRepository creates a new PostgreSQL implementation of the ScriptRepository.
func NewScriptRepository(pool *pgxpool.Pool) *PostgresScriptRepository {
	return &PostgresScriptRepository{pool: pool}
}

/*
Create persists a new script record into the market.script table.

Description: Slug uniqueness is enforced by the database; violations
surface as apperr.Conflict.

Parameters:
  - context: context.Context
  - script: *Script (Entity to persist)

Returns:
  - error: Conflict, constraint violations, or connectivity errors
*/
func (repository *PostgresScriptRepository) Create(context context.Context, script *Script) error {
	const query = `
		INSERT INTO market.script (
			id, ownerid, title, slug, summary, description, tags, version, fileurl,
			ratingavg, ratingcount, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	if script.CreatedAt.IsZero() {
		script.CreatedAt = now
	}
	script.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		script.ID,
		script.OwnerID,
		script.Title,
		script.Slug,
		script.Summary,
		script.Description,
		script.Tags,
		script.Version,
		script.FileURL,
		script.RatingAvg,
		script.RatingCount,
		script.CreatedAt,
		script.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_script_repo_create_failed: %w", err), "Script")
	}

	return nil
}

/*
FindByID retrieves a script record by its unique ID.
*/
func (repository *PostgresScriptRepository) FindByID(context context.Context, id string) (*Script, error) {
	const query = `
		SELECT ` + scriptColumns + `
		FROM market.script
		WHERE id = $1 AND deletedat IS NULL`

	return repository.findOne(context, query, id)
}

/*
FindBySlug retrieves a script record by its URL slug.

Description: The slug is the public catalog identifier; detail pages and
downloads resolve through it.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Script: Hydrated catalog entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresScriptRepository) FindBySlug(context context.Context, slug string) (*Script, error) {
	const query = `
		SELECT ` + scriptColumns + `
		FROM market.script
		WHERE slug = $1 AND deletedat IS NULL`

	return repository.findOne(context, query, slug)
}

// findOne runs a single-row script query and hydrates the entity.
func (repository *PostgresScriptRepository) findOne(context context.Context, query string, argument any) (*Script, error) {
	script := &Script{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
		&script.ID,
		&script.OwnerID,
		&script.Title,
		&script.Slug,
		&script.Summary,
		&script.Description,
		&script.Tags,
		&script.Version,
		&script.FileURL,
		&script.RatingAvg,
		&script.RatingCount,
		&script.CreatedAt,
		&script.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Script")
		}
		return nil, fmt.Errorf("postgres_script_repo_find_failed: %w", err)
	}

	return script, nil
}

/*
List returns one page of catalog entries matching the query, newest first.

Description: Filters compose dynamically: tag membership, case-insensitive
title/summary search, and owner scoping for the developer dashboard.

Parameters:
  - context: context.Context
  - query: ListQuery

Returns:
  - []*Script: One page of scripts
  - int: Total number of matches across all pages
  - error: Execution errors
*/
func (repository *PostgresScriptRepository) List(context context.Context, query ListQuery) ([]*Script, int, error) {
	conditions := []string{"deletedat IS NULL"}
	arguments := []any{}

	if query.Tag != "" {
		arguments = append(arguments, query.Tag)
		conditions = append(conditions, "$"+strconv.Itoa(len(arguments))+" = ANY(tags)")
	}
	if query.Search != "" {
		arguments = append(arguments, "%"+query.Search+"%")
		position := "$" + strconv.Itoa(len(arguments))
		conditions = append(conditions, "(title ILIKE "+position+" OR summary ILIKE "+position+")")
	}
	if query.OwnerID != "" {
		arguments = append(arguments, query.OwnerID)
		conditions = append(conditions, "ownerid = $"+strconv.Itoa(len(arguments)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM market.script WHERE " + where
	total := 0
	if err := repository.pool.QueryRow(context, countQuery, arguments...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_script_repo_count_failed: %w", err)
	}

	arguments = append(arguments, query.Params.Limit, query.Params.Offset())
	listQuery := "SELECT " + scriptColumns + " FROM market.script WHERE " + where +
		" ORDER BY createdat DESC" +
		" LIMIT $" + strconv.Itoa(len(arguments)-1) +
		" OFFSET $" + strconv.Itoa(len(arguments))

	rows, err := repository.pool.Query(context, listQuery, arguments...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_script_repo_list_failed: %w", err)
	}
	defer rows.Close()

	scripts := []*Script{}
	for rows.Next() {
		script := &Script{}
		if err := rows.Scan(
			&script.ID,
			&script.OwnerID,
			&script.Title,
			&script.Slug,
			&script.Summary,
			&script.Description,
			&script.Tags,
			&script.Version,
			&script.FileURL,
			&script.RatingAvg,
			&script.RatingCount,
			&script.CreatedAt,
			&script.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_script_repo_scan_failed: %w", err)
		}
		scripts = append(scripts, script)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_script_repo_rows_failed: %w", err)
	}

	return scripts, total, nil
}

/*
Update persists the editable fields of a script.
*/
func (repository *PostgresScriptRepository) Update(context context.Context, script *Script) error {
	const query = `
		UPDATE market.script
		SET title = $2, summary = $3, description = $4, tags = $5, version = $6, fileurl = $7, updatedat = $8
		WHERE id = $1 AND deletedat IS NULL`

	script.UpdatedAt = time.Now()

	tag, err := repository.pool.Exec(context, query,
		script.ID,
		script.Title,
		script.Summary,
		script.Description,
		script.Tags,
		script.Version,
		script.FileURL,
		script.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_script_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Script")
	}

	return nil
}

/*
SoftDelete retires a script from the catalog.

Description: The row is retained so existing ratings and download stats
keep their references, but the script vanishes from every catalog path.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresScriptRepository) SoftDelete(context context.Context, id string) error {
	const query = `
		UPDATE market.script
		SET deletedat = NOW(), updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_script_repo_soft_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Script")
	}

	return nil
}

// # Rating Repository

// PostgresRatingRepository implements the RatingRepository interface using pgx.
type PostgresRatingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository creates a new PostgreSQL implementation of the RatingRepository.
func NewRatingRepository(pool *pgxpool.Pool) *PostgresRatingRepository {
	return &PostgresRatingRepository{pool: pool}
}

/*
Upsert inserts or replaces a member's rating and refreshes the script's
aggregate.

Description: Both statements run in one transaction so the pre-aggregated
average can never drift from the rating rows.

Parameters:
  - context: context.Context
  - rating: *Rating

Returns:
  - error: Execution errors
*/
func (repository *PostgresRatingRepository) Upsert(context context.Context, rating *Rating) error {
	const upsertQuery = `
		INSERT INTO market.rating (scriptid, userid, stars, createdat, updatedat)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (scriptid, userid)
		DO UPDATE SET stars = EXCLUDED.stars, updatedat = NOW()`

	const aggregateQuery = `
		UPDATE market.script
		SET ratingavg = aggregate.avg, ratingcount = aggregate.count
		FROM (
			SELECT COALESCE(AVG(stars), 0) AS avg, COUNT(*) AS count
			FROM market.rating
			WHERE scriptid = $1
		) AS aggregate
		WHERE id = $1`

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres_rating_repo_begin_failed: %w", err)
	}
	defer func() { _ = transaction.Rollback(context) }()

	if _, err := transaction.Exec(context, upsertQuery, rating.ScriptID, rating.UserID, rating.Stars); err != nil {
		return fmt.Errorf("postgres_rating_repo_upsert_failed: %w", err)
	}

	if _, err := transaction.Exec(context, aggregateQuery, rating.ScriptID); err != nil {
		return fmt.Errorf("postgres_rating_repo_aggregate_failed: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres_rating_repo_commit_failed: %w", err)
	}

	return nil
}

/*
FindByUser returns a member's rating for a script, if any.
*/
func (repository *PostgresRatingRepository) FindByUser(context context.Context, scriptID, userID string) (*Rating, error) {
	const query = `
		SELECT scriptid, userid, stars, createdat, updatedat
		FROM market.rating
		WHERE scriptid = $1 AND userid = $2`

	rating := &Rating{}
	err := repository.pool.QueryRow(context, query, scriptID, userID).Scan(
		&rating.ScriptID,
		&rating.UserID,
		&rating.Stars,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Rating")
		}
		return nil, fmt.Errorf("postgres_rating_repo_find_failed: %w", err)
	}

	return rating, nil
}
