package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"nara/internal/model"
	"nara/internal/service"
	"nara/internal/storage"
)

type MockShowcaseService struct {
	mock.Mock
}

func (m *MockShowcaseService) List(ctx context.Context, q service.ShowcaseQuery) (*service.ShowcaseListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShowcaseListResult), args.Error(1)
}

func (m *MockShowcaseService) ListMine(ctx context.Context, userID string, limit, offset int) (*service.ShowcaseListResult, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShowcaseListResult), args.Error(1)
}

func (m *MockShowcaseService) Get(ctx context.Context, viewer *model.User, id string) (*model.Showcase, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseService) Create(ctx context.Context, author *model.User, in service.ShowcaseInput, img *service.ImageUpload) (*model.Showcase, error) {
	args := m.Called(ctx, author, in, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseService) Update(ctx context.Context, actor *model.User, id string, in service.ShowcaseInput, img *service.ImageUpload) (*model.Showcase, error) {
	args := m.Called(ctx, actor, id, in, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseService) Delete(ctx context.Context, actor *model.User, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockShowcaseService) SetPublished(ctx context.Context, actor *model.User, id string, published bool) (*model.Showcase, error) {
	args := m.Called(ctx, actor, id, published)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Showcase), args.Error(1)
}

func (m *MockShowcaseService) Vote(ctx context.Context, voter *model.User, id string) (int, error) {
	args := m.Called(ctx, voter, id)
	return args.Int(0), args.Error(1)
}

func (m *MockShowcaseService) Unvote(ctx context.Context, voter *model.User, id string) (int, error) {
	args := m.Called(ctx, voter, id)
	return args.Int(0), args.Error(1)
}

func (m *MockShowcaseService) HasVoted(ctx context.Context, userID, id string) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockShowcaseService) ImageURL(ctx context.Context, s *model.Showcase) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

func (m *MockShowcaseService) Image(ctx context.Context, s *model.Showcase) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
