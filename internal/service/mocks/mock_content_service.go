package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"nara/internal/model"
	"nara/internal/service"
)

type MockFeatureFlagService struct {
	mock.Mock
}

func (m *MockFeatureFlagService) List(ctx context.Context) ([]model.FeatureFlag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FeatureFlag), args.Error(1)
}

func (m *MockFeatureFlagService) Get(ctx context.Context, key string) (*model.FeatureFlag, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeatureFlag), args.Error(1)
}

func (m *MockFeatureFlagService) Upsert(ctx context.Context, actor *model.User, in service.FlagInput) (*model.FeatureFlag, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeatureFlag), args.Error(1)
}

func (m *MockFeatureFlagService) Delete(ctx context.Context, actor *model.User, key string) error {
	args := m.Called(ctx, actor, key)
	return args.Error(0)
}

func (m *MockFeatureFlagService) IsEnabled(ctx context.Context, key, userID string) (bool, error) {
	args := m.Called(ctx, key, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeatureFlagService) Evaluate(ctx context.Context, userID string) (service.FlagSet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(service.FlagSet), args.Error(1)
}

type MockBlogService struct {
	mock.Mock
}

func (m *MockBlogService) ListPublished(ctx context.Context, limit, offset int) (*service.PostListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostListResult), args.Error(1)
}

func (m *MockBlogService) GetBySlug(ctx context.Context, viewer *model.User, slug string) (*model.Post, error) {
	args := m.Called(ctx, viewer, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockBlogService) Create(ctx context.Context, actor *model.User, in service.PostInput) (*model.Post, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockBlogService) Update(ctx context.Context, actor *model.User, slug string, in service.PostInput) (*model.Post, error) {
	args := m.Called(ctx, actor, slug, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockBlogService) Delete(ctx context.Context, actor *model.User, slug string) error {
	args := m.Called(ctx, actor, slug)
	return args.Error(0)
}

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) List(ctx context.Context, limit, offset int) (*service.BookListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BookListResult), args.Error(1)
}

func (m *MockBookService) Get(ctx context.Context, id string) (*model.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Create(ctx context.Context, in service.BookInput) (*model.Book, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, id string, in service.BookInput) (*model.Book, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Overview(ctx context.Context, user *model.User, preset string) (*service.DashboardOverview, error) {
	args := m.Called(ctx, user, preset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DashboardOverview), args.Error(1)
}
