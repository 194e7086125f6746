package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nara/internal/model"
	repoMocks "nara/internal/repository/mocks"
)

func TestDashboardService_Overview(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockStatsRepository)
	svc := NewDashboardService(repo, time.UTC).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	prevStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	repo.On("Overview", ctx, "owner", start, end).Return(&model.Stats{ShowcasesCreated: 3, VotesReceived: 9}, nil)
	repo.On("Overview", ctx, "owner", prevStart, start).Return(&model.Stats{ShowcasesCreated: 1}, nil)
	repo.On("DailyShowcases", ctx, "owner", start, end, "UTC").Return([]model.DailyCount{
		{Day: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Count: 2},
		{Day: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), Count: 1},
	}, nil)

	ov, err := svc.Overview(ctx, owner, "7d")
	require.NoError(t, err)

	assert.Equal(t, "7d", ov.Range.Preset)
	assert.Equal(t, 3, ov.Current.ShowcasesCreated)
	assert.Equal(t, 1, ov.Previous.ShowcasesCreated)
	require.Len(t, ov.Daily, 7)
	assert.Equal(t, 0, ov.Daily[0].Count)
	assert.Equal(t, 2, ov.Daily[1].Count)
	assert.Equal(t, 1, ov.Daily[6].Count)
	repo.AssertExpectations(t)
}

func TestDashboardService_Errors(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockStatsRepository)
	svc := NewDashboardService(repo, nil)

	_, err := svc.Overview(ctx, nil, "7d")
	assert.ErrorIs(t, err, ErrUnauthorized)

	repo.On("Overview", ctx, "owner", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
	_, err = svc.Overview(ctx, owner, "7d")
	assert.ErrorContains(t, err, "current stats: db fail")
}
