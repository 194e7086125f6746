package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"nara/internal/model"
	"nara/internal/repository"
	"nara/internal/validate"
)

// BookInput is the body of POST and PUT /api/books.
type BookInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Author        string `json:"author" validate:"required,max=200"`
	ISBN          string `json:"isbn" validate:"omitempty,isbn"`
	PublishedYear int    `json:"published_year" validate:"year=1"`
}

// BookListResult is the service-level DTO for paginated books.
type BookListResult struct {
	Items []model.Book `json:"data"`
	Total int          `json:"total"`
}

// BookService is the demo CRUD over books.
type BookService interface {
	List(ctx context.Context, limit, offset int) (*BookListResult, error)
	Get(ctx context.Context, id string) (*model.Book, error)
	Create(ctx context.Context, in BookInput) (*model.Book, error)
	Update(ctx context.Context, id string, in BookInput) (*model.Book, error)
	Delete(ctx context.Context, id string) error
}

type bookService struct {
	repo repository.BookRepository
	now  func() time.Time
}

// NewBookService constructs a new BookService.
func NewBookService(repo repository.BookRepository) BookService {
	return &bookService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *bookService) List(ctx context.Context, limit, offset int) (*BookListResult, error) {
	limit, offset = pageBounds(limit, offset)
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &BookListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *bookService) Get(ctx context.Context, id string) (*model.Book, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (s *bookService) Create(ctx context.Context, in BookInput) (*model.Book, error) {
	in, err := s.check(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &model.Book{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          in.ISBN,
		PublishedYear: in.PublishedYear,
		CreatedAt:     s.now(),
	})
}

func (s *bookService) Update(ctx context.Context, id string, in BookInput) (*model.Book, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	in, err := s.check(ctx, in)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.Update(ctx, &model.Book{
		ID:            id,
		Title:         in.Title,
		Author:        in.Author,
		ISBN:          in.ISBN,
		PublishedYear: in.PublishedYear,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (s *bookService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.repo.Delete(ctx, id))
}

// check trims the input and validates it against the service clock.
func (s *bookService) check(ctx context.Context, in BookInput) (BookInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)

	return in, validate.StructCtx(validate.WithNow(ctx, s.now()), in)
}
