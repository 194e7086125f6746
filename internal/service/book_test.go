package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nara/internal/model"
	"nara/internal/repository"
	repoMocks "nara/internal/repository/mocks"
	"nara/internal/validate"
)

func newBooks(repo *repoMocks.MockBookRepository) *bookService {
	s := NewBookService(repo).(*bookService)
	s.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestBookService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         BookInput
		wantFields map[string]string
	}{
		{name: "valid", in: BookInput{Title: "Dune", Author: "Frank Herbert", ISBN: "978-0-441-01359-3", PublishedYear: 1965}},
		{name: "next year allowed", in: BookInput{Title: "Soon", Author: "A", PublishedYear: 2027}},
		{
			name:       "missing fields",
			in:         BookInput{Title: " ", PublishedYear: 2028},
			wantFields: map[string]string{"title": "is required", "author": "is required", "published_year": "must be between 0 and 2027"},
		},
		{
			name:       "bad isbn",
			in:         BookInput{Title: "X", Author: "Y", ISBN: "12345"},
			wantFields: map[string]string{"isbn": "must be a valid ISBN-10 or ISBN-13"},
		},
		{
			name:       "negative year only",
			in:         BookInput{Title: "X", Author: "Y", PublishedYear: -1},
			wantFields: map[string]string{"published_year": "must be between 0 and 2027"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockBookRepository)
			svc := newBooks(repo)
			if tt.wantFields == nil {
				repo.On("Create", ctx, mock.MatchedBy(func(b *model.Book) bool {
					return b.ID != "" && b.Title == tt.in.Title
				})).Return(&model.Book{ID: "b1"}, nil)
			}

			b, err := svc.Create(ctx, tt.in)
			if tt.wantFields != nil {
				ve, ok := validate.AsError(err)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, tt.wantFields, ve.Fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "b1", b.ID)
			repo.AssertExpectations(t)
		})
	}
}

func TestBookService_GetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockBookRepository)
	svc := newBooks(repo)

	repo.On("FindByID", ctx, "b1").Return(&model.Book{ID: "b1"}, nil)
	repo.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)
	repo.On("Update", ctx, mock.MatchedBy(func(b *model.Book) bool { return b.ID == "nope" })).Return(nil, sql.ErrNoRows)
	repo.On("Delete", ctx, "nope").Return(sql.ErrNoRows)
	repo.On("List", ctx, repository.PageQuery{Limit: 5, Offset: 5}).
		Return(&repository.PageResult[model.Book]{Items: []model.Book{{ID: "b6"}}, Total: 6}, nil)

	_, err := svc.Get(ctx, "b1")
	assert.NoError(t, err)
	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)

	_, err = svc.Update(ctx, "nope", BookInput{Title: "T", Author: "A"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrNotFound)

	res, err := svc.List(ctx, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Total)
	repo.AssertExpectations(t)
}
