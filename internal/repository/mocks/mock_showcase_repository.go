package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nara/internal/model"
	"nara/internal/repository"
)

type MockShowcaseRepository struct {
	mock.Mock
}

func (m *MockShowcaseRepository) Create(ctx context.Context, s *model.Showcase) (*model.Showcase, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseRepository) FindByID(ctx context.Context, id string) (*model.Showcase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseRepository) List(ctx context.Context, f repository.ShowcaseFilter) (*repository.PageResult[model.Showcase], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Showcase]), args.Error(1)
}

func (m *MockShowcaseRepository) Update(ctx context.Context, s *model.Showcase) (*model.Showcase, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseRepository) SetPublished(ctx context.Context, id string, published bool) (*model.Showcase, error) {
	args := m.Called(ctx, id, published)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockShowcaseRepository) Vote(ctx context.Context, showcaseID, userID string) (int, error) {
	args := m.Called(ctx, showcaseID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockShowcaseRepository) Unvote(ctx context.Context, showcaseID, userID string) (int, error) {
	args := m.Called(ctx, showcaseID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockShowcaseRepository) HasVoted(ctx context.Context, showcaseID, userID string) (bool, error) {
	args := m.Called(ctx, showcaseID, userID)
	return args.Bool(0), args.Error(1)
}
