package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nara/internal/model"
	repoMocks "nara/internal/repository/mocks"
	"nara/internal/validate"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		name string
		flag *model.FeatureFlag
		user string
		want bool
	}{
		{"nil flag", nil, "u1", false},
		{"disabled", &model.FeatureFlag{Key: "a", Enabled: false, RolloutPercentage: 100}, "u1", false},
		{"zero rollout", &model.FeatureFlag{Key: "a", Enabled: true, RolloutPercentage: 0}, "u1", false},
		{"full rollout", &model.FeatureFlag{Key: "a", Enabled: true, RolloutPercentage: 100}, "u1", true},
		{"full rollout anonymous", &model.FeatureFlag{Key: "a", Enabled: true, RolloutPercentage: 100}, "", true},
		{"partial rollout anonymous", &model.FeatureFlag{Key: "a", Enabled: true, RolloutPercentage: 99}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Enabled(tt.flag, tt.user))
		})
	}
}

func TestBucketIsStableAndSpread(t *testing.T) {
	assert.Equal(t, Bucket("showcase.voting", "u1"), Bucket("showcase.voting", "u1"))

	f := &model.FeatureFlag{Key: "dashboard.charts", Enabled: true, RolloutPercentage: 50}
	on := 0
	for i := 0; i < 2000; i++ {
		b := Bucket(f.Key, fmt.Sprintf("user-%d", i))
		require.True(t, b >= 0 && b < 100)
		if Enabled(f, fmt.Sprintf("user-%d", i)) {
			on++
		}
	}
	// A 50% rollout over 2000 users lands well inside 40..60%.
	assert.InDelta(t, 1000, on, 200)
}

func TestBucketMonotonicRollout(t *testing.T) {
	// Raising the percentage never turns a flag off for a user who already had it.
	for i := 0; i < 200; i++ {
		user := fmt.Sprintf("u%d", i)
		prev := false
		for pct := 0; pct <= 100; pct += 10 {
			cur := Enabled(&model.FeatureFlag{Key: "k", Enabled: true, RolloutPercentage: pct}, user)
			if prev {
				require.True(t, cur, "user %s lost flag at %d%%", user, pct)
			}
			prev = cur
		}
	}
}

func TestFeatureFlagService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("admin only", func(t *testing.T) {
		svc := NewFeatureFlagService(new(repoMocks.MockFeatureFlagRepository))
		_, err := svc.Upsert(ctx, owner, FlagInput{Key: "a"})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = svc.Upsert(ctx, nil, FlagInput{Key: "a"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("validates key and rollout", func(t *testing.T) {
		svc := NewFeatureFlagService(new(repoMocks.MockFeatureFlagRepository))
		_, err := svc.Upsert(ctx, admin, FlagInput{Key: "Bad Key", RolloutPercentage: 101})

		ve, ok := validate.AsError(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "key")
		assert.Contains(t, ve.Fields, "rollout_percentage")
	})

	t.Run("stores flag", func(t *testing.T) {
		repo := new(repoMocks.MockFeatureFlagRepository)
		svc := NewFeatureFlagService(repo)
		repo.On("Upsert", ctx, mock.MatchedBy(func(f *model.FeatureFlag) bool {
			return f.Key == "blog.comments" && f.Enabled && f.RolloutPercentage == 25 && !f.UpdatedAt.IsZero()
		})).Return(&model.FeatureFlag{Key: "blog.comments"}, nil)

		f, err := svc.Upsert(ctx, admin, FlagInput{Key: " blog.comments ", Enabled: true, RolloutPercentage: 25})
		require.NoError(t, err)
		assert.Equal(t, "blog.comments", f.Key)
		repo.AssertExpectations(t)
	})
}

func TestFeatureFlagService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockFeatureFlagRepository)
	svc := NewFeatureFlagService(repo)

	repo.On("Delete", ctx, "a").Return(nil)
	repo.On("Delete", ctx, "missing").Return(sql.ErrNoRows)

	assert.ErrorIs(t, svc.Delete(ctx, owner, "a"), ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, admin, "a"))
	assert.ErrorIs(t, svc.Delete(ctx, admin, "missing"), ErrNotFound)
}

func TestFeatureFlagService_IsEnabled(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockFeatureFlagRepository)
	svc := NewFeatureFlagService(repo)

	repo.On("FindByKey", ctx, "on").Return(&model.FeatureFlag{Key: "on", Enabled: true, RolloutPercentage: 100}, nil)
	repo.On("FindByKey", ctx, "unknown").Return(nil, sql.ErrNoRows)
	repo.On("FindByKey", ctx, "broken").Return(nil, errors.New("db fail"))

	ok, err := svc.IsEnabled(ctx, "on", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsEnabled(ctx, "unknown", "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsEnabled(ctx, "NOT A KEY", "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.IsEnabled(ctx, "broken", "u1")
	assert.Error(t, err)
}

func TestFeatureFlagService_Evaluate(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockFeatureFlagRepository)
	svc := NewFeatureFlagService(repo)

	repo.On("List", ctx).Return([]model.FeatureFlag{
		{Key: "a", Enabled: true, RolloutPercentage: 100},
		{Key: "b", Enabled: false, RolloutPercentage: 100},
	}, nil)

	fs, err := svc.Evaluate(ctx, "")
	require.NoError(t, err)
	assert.True(t, fs.On("a"))
	assert.False(t, fs.On("b"))
	assert.False(t, fs.On("missing"))

	var empty FlagSet
	assert.False(t, empty.On("a"))
}
