package postgres

import (
	"context"
	"database/sql"
	"time"

	"nara/internal/model"
	"nara/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

const postColumns = `p.id, p.slug, p.title, p.excerpt, p.body, COALESCE(p.author_id::text, ''), COALESCE(u.name, ''),
		p.published, p.is_deleted, p.published_at, p.created_at, p.updated_at`

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		p         model.Post
		published sql.NullTime
	)
	if err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.Title,
		&p.Excerpt,
		&p.Body,
		&p.AuthorID,
		&p.AuthorName,
		&p.Published,
		&p.IsDeleted,
		&published,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.PublishedAt = timePtr(published)
	return &p, nil
}

// ListPublished returns published posts, newest first.
func (r *PostPostgres) ListPublished(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Post], error) {
	const qCount = `SELECT COUNT(*) FROM posts p WHERE p.published = true AND p.is_deleted = false`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + postColumns + `
		FROM posts p LEFT JOIN users u ON u.id = p.author_id
		WHERE p.published = true AND p.is_deleted = false
		ORDER BY p.published_at DESC, p.id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Post]{Items: items, Total: total}, nil
}

// FindBySlug fetches a post that has not been soft-deleted.
func (r *PostPostgres) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p LEFT JOIN users u ON u.id = p.author_id
		WHERE p.slug = $1 AND p.is_deleted = false
	`
	return scanPost(r.db.QueryRowContext(ctx, q, slug))
}

// SlugExists reports whether any post, deleted or not, uses slug.
func (r *PostPostgres) SlugExists(ctx context.Context, slug string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, slug).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Create inserts a post.
func (r *PostPostgres) Create(ctx context.Context, p *model.Post) (*model.Post, error) {
	const q = `
		WITH p AS (
			INSERT INTO posts (id, slug, title, excerpt, body, author_id, published, published_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p LEFT JOIN users u ON u.id = p.author_id
	`
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Slug,
		p.Title,
		p.Excerpt,
		p.Body,
		nullString(p.AuthorID),
		p.Published,
		p.PublishedAt,
		p.CreatedAt,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return created, nil
}

// Update overwrites the editable columns of a live post.
func (r *PostPostgres) Update(ctx context.Context, p *model.Post) (*model.Post, error) {
	const q = `
		WITH p AS (
			UPDATE posts
			SET title = $2, excerpt = $3, body = $4, published = $5, published_at = $6, updated_at = $7
			WHERE id = $1 AND is_deleted = false
			RETURNING *
		)
		SELECT ` + postColumns + `
		FROM p LEFT JOIN users u ON u.id = p.author_id
	`
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.Title,
		p.Excerpt,
		p.Body,
		p.Published,
		p.PublishedAt,
		time.Now().UTC(),
	)
	return scanPost(row)
}

// SoftDelete flags a post as deleted.
func (r *PostPostgres) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE posts SET is_deleted = true, updated_at = $2 WHERE id = $1 AND is_deleted = false`
	res, err := r.db.ExecContext(ctx, q, id, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireAffected(res)
}
