package repository

import (
	"context"

	"nara/internal/model"
)

// Showcase sort orders.
const (
	SortNew = "new"
	SortTop = "top"
)

// ShowcaseFilter narrows a showcase listing. Soft-deleted rows are always excluded.
type ShowcaseFilter struct {
	PublishedOnly bool
	UserID        string
	Search        string
	Tag           string
	Sort          string
	Page          PageQuery
}

// ShowcaseRepository persists showcase entries and their votes.
type ShowcaseRepository interface {
	Create(ctx context.Context, s *model.Showcase) (*model.Showcase, error)
	// FindByID returns a showcase that is not soft-deleted.
	FindByID(ctx context.Context, id string) (*model.Showcase, error)
	List(ctx context.Context, f ShowcaseFilter) (*PageResult[model.Showcase], error)
	// Update overwrites the editable columns.
	Update(ctx context.Context, s *model.Showcase) (*model.Showcase, error)
	SetPublished(ctx context.Context, id string, published bool) (*model.Showcase, error)
	SoftDelete(ctx context.Context, id string) error
	// Vote records one vote per user and returns the new tally.
	Vote(ctx context.Context, showcaseID, userID string) (int, error)
	// Unvote removes the user's vote, if any, and returns the new tally.
	Unvote(ctx context.Context, showcaseID, userID string) (int, error)
	HasVoted(ctx context.Context, showcaseID, userID string) (bool, error)
}
