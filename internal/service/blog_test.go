package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nara/internal/model"
	"nara/internal/repository"
	repoMocks "nara/internal/repository/mocks"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello, World!":               "hello-world",
		"  Crème Brûlée à la carte  ": "creme-brulee-a-la-carte",
		"Go 1.24 -- what's new?":      "go-1-24-what-s-new",
		"¿Qué pasa?":                  "que-pasa",
		"日本語":                         "post",
		"":                            "post",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}

	long := Slugify(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(long), 80)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestBlogService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin only", func(t *testing.T) {
		svc := NewBlogService(new(repoMocks.MockPostRepository))
		_, err := svc.Create(ctx, owner, PostInput{Title: "x", Body: "y"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unique slug", func(t *testing.T) {
		repo := new(repoMocks.MockPostRepository)
		svc := NewBlogService(repo)

		repo.On("SlugExists", ctx, "hello-world").Return(true, nil)
		repo.On("SlugExists", ctx, "hello-world-2").Return(true, nil)
		repo.On("SlugExists", ctx, "hello-world-3").Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p *model.Post) bool {
			return p.Slug == "hello-world-3" && p.AuthorID == "admin" && p.Published && p.PublishedAt != nil
		})).Return(&model.Post{Slug: "hello-world-3"}, nil)

		p, err := svc.Create(ctx, admin, PostInput{Title: "Hello World", Body: "body", Published: true})
		require.NoError(t, err)
		assert.Equal(t, "hello-world-3", p.Slug)
		repo.AssertExpectations(t)
	})

	t.Run("draft has no publish time", func(t *testing.T) {
		repo := new(repoMocks.MockPostRepository)
		svc := NewBlogService(repo)

		repo.On("SlugExists", ctx, "draft").Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p *model.Post) bool {
			return !p.Published && p.PublishedAt == nil
		})).Return(&model.Post{Slug: "draft"}, nil)

		_, err := svc.Create(ctx, admin, PostInput{Title: "Draft", Body: "body"})
		require.NoError(t, err)
	})

	t.Run("duplicate race", func(t *testing.T) {
		repo := new(repoMocks.MockPostRepository)
		svc := NewBlogService(repo)

		repo.On("SlugExists", ctx, "race").Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)

		_, err := svc.Create(ctx, admin, PostInput{Title: "Race", Body: "body"})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestBlogService_GetBySlug(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockPostRepository)
	svc := NewBlogService(repo)

	repo.On("FindBySlug", ctx, "live").Return(&model.Post{Slug: "live", Published: true}, nil)
	repo.On("FindBySlug", ctx, "draft").Return(&model.Post{Slug: "draft"}, nil)
	repo.On("FindBySlug", ctx, "gone").Return(nil, sql.ErrNoRows)

	_, err := svc.GetBySlug(ctx, nil, "live")
	assert.NoError(t, err)
	_, err = svc.GetBySlug(ctx, owner, "draft")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetBySlug(ctx, admin, "draft")
	assert.NoError(t, err)
	_, err = svc.GetBySlug(ctx, nil, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetBySlug(ctx, nil, "Not A Slug")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlogService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockPostRepository)
	svc := NewBlogService(repo)

	repo.On("FindBySlug", ctx, "draft").Return(&model.Post{ID: "p1", Slug: "draft"}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(p *model.Post) bool {
		return p.Title == "Now live" && p.Published && p.PublishedAt != nil
	})).Return(&model.Post{ID: "p1", Published: true}, nil)
	repo.On("SoftDelete", ctx, "p1").Return(nil)

	p, err := svc.Update(ctx, admin, "draft", PostInput{Title: "Now live", Body: "b", Published: true})
	require.NoError(t, err)
	assert.True(t, p.Published)

	assert.ErrorIs(t, svc.Delete(ctx, owner, "draft"), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, admin, "draft"))
	repo.AssertExpectations(t)
}

func TestBlogService_ListPublished(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockPostRepository)
	svc := NewBlogService(repo)

	repo.On("ListPublished", ctx, repository.PageQuery{Limit: 12, Offset: 0}).
		Return(nil, errors.New("db fail"))

	_, err := svc.ListPublished(ctx, 0, 0)
	assert.Error(t, err)
}
