package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"nara/internal/model"
	"nara/internal/repository"
)

// ShowcasePostgres is a PostgreSQL implementation of repository.ShowcaseRepository.
type ShowcasePostgres struct {
	db *sql.DB
}

// NewShowcasePostgres creates a new ShowcasePostgres repository.
func NewShowcasePostgres(db *sql.DB) *ShowcasePostgres {
	return &ShowcasePostgres{db: db}
}

var _ repository.ShowcaseRepository = (*ShowcasePostgres)(nil)

const showcaseColumns = `s.id, s.user_id, COALESCE(u.name, ''), s.title, s.description, s.url, s.repo_url, s.image_key, s.tags,
		s.published, s.is_deleted, s.vote_count, s.published_at, s.created_at, s.updated_at`

func scanShowcase(row rowScanner) (*model.Showcase, error) {
	var (
		s         model.Showcase
		tags      string
		published sql.NullTime
	)
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.AuthorName,
		&s.Title,
		&s.Description,
		&s.URL,
		&s.RepoURL,
		&s.ImageKey,
		&tags,
		&s.Published,
		&s.IsDeleted,
		&s.VoteCount,
		&published,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Tags = splitTags(tags)
	s.PublishedAt = timePtr(published)
	return &s, nil
}

// Create inserts a showcase and returns it with the author's name.
func (r *ShowcasePostgres) Create(ctx context.Context, sc *model.Showcase) (*model.Showcase, error) {
	const q = `
		WITH s AS (
			INSERT INTO showcases (id, user_id, title, description, url, repo_url, image_key, tags, published, published_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
			RETURNING *
		)
		SELECT ` + showcaseColumns + `
		FROM s LEFT JOIN users u ON u.id = s.user_id
	`
	row := r.db.QueryRowContext(ctx, q,
		sc.ID,
		sc.UserID,
		sc.Title,
		sc.Description,
		sc.URL,
		sc.RepoURL,
		sc.ImageKey,
		joinTags(sc.Tags),
		sc.Published,
		sc.PublishedAt,
		sc.CreatedAt,
	)
	return scanShowcase(row)
}

// FindByID fetches a showcase that has not been soft-deleted.
func (r *ShowcasePostgres) FindByID(ctx context.Context, id string) (*model.Showcase, error) {
	const q = `
		SELECT ` + showcaseColumns + `
		FROM showcases s LEFT JOIN users u ON u.id = s.user_id
		WHERE s.id = $1 AND s.is_deleted = false
	`
	return scanShowcase(r.db.QueryRowContext(ctx, q, id))
}

// List returns showcases matching f using LIMIT/OFFSET pagination and a total count.
func (r *ShowcasePostgres) List(ctx context.Context, f repository.ShowcaseFilter) (*repository.PageResult[model.Showcase], error) {
	where := []string{"s.is_deleted = false"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.PublishedOnly {
		where = append(where, "s.published = true")
	}
	if f.UserID != "" {
		where = append(where, "s.user_id = "+arg(f.UserID))
	}
	if f.Search != "" {
		p := arg("%" + escapeLike(f.Search) + "%")
		where = append(where, "(s.title ILIKE "+p+" OR s.description ILIKE "+p+")")
	}
	if f.Tag != "" {
		where = append(where, "(',' || s.tags || ',') LIKE "+arg("%,"+escapeLike(f.Tag)+",%"))
	}
	cond := strings.Join(where, " AND ")

	var total int
	qCount := `SELECT COUNT(*) FROM showcases s WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	order := "s.created_at DESC, s.id DESC"
	if f.Sort == repository.SortTop {
		order = "s.vote_count DESC, s.created_at DESC, s.id DESC"
	}
	qList := `
		SELECT ` + showcaseColumns + `
		FROM showcases s LEFT JOIN users u ON u.id = s.user_id
		WHERE ` + cond + `
		ORDER BY ` + order + `
		LIMIT ` + arg(f.Page.Limit) + ` OFFSET ` + arg(f.Page.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Showcase, 0)
	for rows.Next() {
		s, err := scanShowcase(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Showcase]{
		Items: items,
		Total: total,
	}, nil
}

// Update overwrites the editable columns of a live showcase.
func (r *ShowcasePostgres) Update(ctx context.Context, sc *model.Showcase) (*model.Showcase, error) {
	const q = `
		WITH s AS (
			UPDATE showcases
			SET title = $2, description = $3, url = $4, repo_url = $5, image_key = $6, tags = $7, updated_at = $8
			WHERE id = $1 AND is_deleted = false
			RETURNING *
		)
		SELECT ` + showcaseColumns + `
		FROM s LEFT JOIN users u ON u.id = s.user_id
	`
	row := r.db.QueryRowContext(ctx, q,
		sc.ID,
		sc.Title,
		sc.Description,
		sc.URL,
		sc.RepoURL,
		sc.ImageKey,
		joinTags(sc.Tags),
		time.Now().UTC(),
	)
	return scanShowcase(row)
}

// SetPublished publishes or unpublishes a showcase. The first publication time is kept.
func (r *ShowcasePostgres) SetPublished(ctx context.Context, id string, published bool) (*model.Showcase, error) {
	const q = `
		WITH s AS (
			UPDATE showcases
			SET published = $2,
			    published_at = CASE WHEN $2 THEN COALESCE(published_at, $3) ELSE published_at END,
			    updated_at = $3
			WHERE id = $1 AND is_deleted = false
			RETURNING *
		)
		SELECT ` + showcaseColumns + `
		FROM s LEFT JOIN users u ON u.id = s.user_id
	`
	return scanShowcase(r.db.QueryRowContext(ctx, q, id, published, time.Now().UTC()))
}

// SoftDelete flags a showcase as deleted and unpublishes it.
func (r *ShowcasePostgres) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE showcases SET is_deleted = true, published = false, updated_at = $2 WHERE id = $1 AND is_deleted = false`
	res, err := r.db.ExecContext(ctx, q, id, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Vote inserts the user's vote and bumps the tally in a single statement.
// A repeated vote leaves the tally unchanged.
func (r *ShowcasePostgres) Vote(ctx context.Context, showcaseID, userID string) (int, error) {
	const q = `
		WITH ins AS (
			INSERT INTO showcase_votes (showcase_id, user_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (showcase_id, user_id) DO NOTHING
			RETURNING 1
		)
		UPDATE showcases
		SET vote_count = vote_count + (SELECT COUNT(*) FROM ins)
		WHERE id = $1
		RETURNING vote_count
	`
	var count int
	if err := r.db.QueryRowContext(ctx, q, showcaseID, userID, time.Now().UTC()).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Unvote removes the user's vote and decrements the tally in a single statement.
func (r *ShowcasePostgres) Unvote(ctx context.Context, showcaseID, userID string) (int, error) {
	const q = `
		WITH del AS (
			DELETE FROM showcase_votes
			WHERE showcase_id = $1 AND user_id = $2
			RETURNING 1
		)
		UPDATE showcases
		SET vote_count = GREATEST(vote_count - (SELECT COUNT(*) FROM del), 0)
		WHERE id = $1
		RETURNING vote_count
	`
	var count int
	if err := r.db.QueryRowContext(ctx, q, showcaseID, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// HasVoted reports whether the user voted for the showcase.
func (r *ShowcasePostgres) HasVoted(ctx context.Context, showcaseID, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM showcase_votes WHERE showcase_id = $1 AND user_id = $2)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, showcaseID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
