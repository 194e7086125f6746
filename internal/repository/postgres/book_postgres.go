package postgres

import (
	"context"
	"database/sql"
	"time"

	"nara/internal/model"
	"nara/internal/repository"
)

// BookPostgres is a PostgreSQL implementation of repository.BookRepository.
type BookPostgres struct {
	db *sql.DB
}

// NewBookPostgres creates a new BookPostgres repository.
func NewBookPostgres(db *sql.DB) *BookPostgres {
	return &BookPostgres{db: db}
}

var _ repository.BookRepository = (*BookPostgres)(nil)

func scanBook(row rowScanner) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublishedYear, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a book.
func (r *BookPostgres) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	const q = `
		INSERT INTO books (id, title, author, isbn, published_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, title, author, isbn, published_year, created_at, updated_at
	`
	return scanBook(r.db.QueryRowContext(ctx, q, b.ID, b.Title, b.Author, b.ISBN, b.PublishedYear, b.CreatedAt))
}

// FindByID fetches a single book.
func (r *BookPostgres) FindByID(ctx context.Context, id string) (*model.Book, error) {
	const q = `SELECT id, title, author, isbn, published_year, created_at, updated_at FROM books WHERE id = $1`
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

// List returns books in insertion order using LIMIT/OFFSET pagination and a total count.
func (r *BookPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Book], error) {
	const qCount = `SELECT COUNT(*) FROM books`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, title, author, isbn, published_year, created_at, updated_at
		FROM books
		ORDER BY created_at ASC, id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Book]{Items: items, Total: total}, nil
}

// Update replaces a book's fields.
func (r *BookPostgres) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	const q = `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, published_year = $5, updated_at = $6
		WHERE id = $1
		RETURNING id, title, author, isbn, published_year, created_at, updated_at
	`
	return scanBook(r.db.QueryRowContext(ctx, q, b.ID, b.Title, b.Author, b.ISBN, b.PublishedYear, time.Now().UTC()))
}

// Delete removes a book. It returns sql.ErrNoRows when the book does not exist.
func (r *BookPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM books WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
