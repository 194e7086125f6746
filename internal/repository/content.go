package repository

import (
	"context"
	"time"

	"nara/internal/model"
)

// FeatureFlagRepository persists feature flags.
type FeatureFlagRepository interface {
	List(ctx context.Context) ([]model.FeatureFlag, error)
	FindByKey(ctx context.Context, key string) (*model.FeatureFlag, error)
	// Upsert inserts the flag or replaces the stored one with the same key.
	Upsert(ctx context.Context, f *model.FeatureFlag) (*model.FeatureFlag, error)
	Delete(ctx context.Context, key string) error
}

// PostRepository persists blog posts.
type PostRepository interface {
	ListPublished(ctx context.Context, pq PageQuery) (*PageResult[model.Post], error)
	// FindBySlug returns a post that is not soft-deleted, published or not.
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *model.Post) (*model.Post, error)
	Update(ctx context.Context, p *model.Post) (*model.Post, error)
	SoftDelete(ctx context.Context, id string) error
}

// BookRepository persists the demo books.
type BookRepository interface {
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	FindByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Book], error)
	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id string) error
}

// StatsRepository aggregates dashboard counters over the half-open period [from, to).
type StatsRepository interface {
	Overview(ctx context.Context, userID string, from, to time.Time) (*model.Stats, error)
	// DailyShowcases counts the user's new showcases per calendar day in tz.
	// Days without showcases are omitted.
	DailyShowcases(ctx context.Context, userID string, from, to time.Time, tz string) ([]model.DailyCount, error)
}
