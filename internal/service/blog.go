package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"nara/internal/model"
	"nara/internal/repository"
	"nara/internal/validate"
)

const maxSlugLen = 80

// PostInput is the create/edit form of a blog post.
type PostInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Excerpt   string `json:"excerpt" validate:"max=500"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}

// PostListResult is the service-level DTO for paginated posts.
type PostListResult struct {
	Items []model.Post `json:"data"`
	Total int          `json:"total"`
}

// BlogService manages blog posts.
type BlogService interface {
	ListPublished(ctx context.Context, limit, offset int) (*PostListResult, error)
	// GetBySlug hides drafts from everyone but admins.
	GetBySlug(ctx context.Context, viewer *model.User, slug string) (*model.Post, error)
	Create(ctx context.Context, actor *model.User, in PostInput) (*model.Post, error)
	Update(ctx context.Context, actor *model.User, slug string, in PostInput) (*model.Post, error)
	Delete(ctx context.Context, actor *model.User, slug string) error
}

type blogService struct {
	repo repository.PostRepository
	now  func() time.Time
}

// NewBlogService constructs a new BlogService.
func NewBlogService(repo repository.PostRepository) BlogService {
	return &blogService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *blogService) ListPublished(ctx context.Context, limit, offset int) (*PostListResult, error) {
	limit, offset = pageBounds(limit, offset)
	res, err := s.repo.ListPublished(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PostListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *blogService) GetBySlug(ctx context.Context, viewer *model.User, slug string) (*model.Post, error) {
	if !validate.IsSlug(slug) {
		return nil, ErrNotFound
	}
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if !p.Published && !viewer.IsAdmin() {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *blogService) Create(ctx context.Context, actor *model.User, in PostInput) (*model.Post, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	in = trimPost(in)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, Slugify(in.Title))
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Post{
		ID:        uuid.NewString(),
		Slug:      slug,
		Title:     in.Title,
		Excerpt:   in.Excerpt,
		Body:      in.Body,
		AuthorID:  actor.ID,
		Published: in.Published,
		CreatedAt: now,
	}
	if in.Published {
		p.PublishedAt = &now
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: slug %q is taken", ErrConflict, slug)
		}
		return nil, err
	}
	return created, nil
}

func (s *blogService) Update(ctx context.Context, actor *model.User, slug string, in PostInput) (*model.Post, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	in = trimPost(in)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	p.Title = in.Title
	p.Excerpt = in.Excerpt
	p.Body = in.Body
	if in.Published && p.PublishedAt == nil {
		now := s.now()
		p.PublishedAt = &now
	}
	p.Published = in.Published

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *blogService) Delete(ctx context.Context, actor *model.User, slug string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return notFound(err)
	}
	return notFound(s.repo.SoftDelete(ctx, p.ID))
}

// uniqueSlug appends -2, -3, ... until the slug is free. Deleted posts keep their slugs.
func (s *blogService) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i < 100; i++ {
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := "-" + strconv.Itoa(i)
		candidate = strings.TrimRight(truncate(base, maxSlugLen-len(suffix)), "-") + suffix
	}
	return "", fmt.Errorf("%w: no free slug for %q", ErrConflict, base)
}

func trimPost(in PostInput) PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Body = strings.TrimSpace(in.Body)
	return in
}

// Slugify folds accents, lowercases, and joins alphanumeric runs with dashes.
// An empty result becomes "post".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(truncate(b.String(), maxSlugLen), "-")
	if slug == "" {
		return "post"
	}
	return slug
}
