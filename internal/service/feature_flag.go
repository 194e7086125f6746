package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"nara/internal/model"
	"nara/internal/repository"
	"nara/internal/validate"
)

// FlagInput is the body of PUT /api/feature-flags/:key.
type FlagInput struct {
	Key               string `json:"key" validate:"required,flagkey"`
	Description       string `json:"description" validate:"max=500"`
	Enabled           bool   `json:"enabled"`
	RolloutPercentage int    `json:"rollout_percentage" validate:"min=0,max=100"`
}

// FeatureFlagService reads and manages feature flags.
type FeatureFlagService interface {
	List(ctx context.Context) ([]model.FeatureFlag, error)
	Get(ctx context.Context, key string) (*model.FeatureFlag, error)
	Upsert(ctx context.Context, actor *model.User, in FlagInput) (*model.FeatureFlag, error)
	Delete(ctx context.Context, actor *model.User, key string) error
	// IsEnabled evaluates a flag for a user. Unknown flags are off. userID may be empty.
	IsEnabled(ctx context.Context, key, userID string) (bool, error)
	// Evaluate returns the state of every flag for a user.
	Evaluate(ctx context.Context, userID string) (FlagSet, error)
}

type featureFlagService struct {
	repo repository.FeatureFlagRepository
	now  func() time.Time
}

// NewFeatureFlagService constructs a new FeatureFlagService.
func NewFeatureFlagService(repo repository.FeatureFlagRepository) FeatureFlagService {
	return &featureFlagService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *featureFlagService) List(ctx context.Context) ([]model.FeatureFlag, error) {
	return s.repo.List(ctx)
}

func (s *featureFlagService) Get(ctx context.Context, key string) (*model.FeatureFlag, error) {
	if !validate.IsFlagKey(key) {
		return nil, ErrNotFound
	}
	f, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (s *featureFlagService) Upsert(ctx context.Context, actor *model.User, in FlagInput) (*model.FeatureFlag, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	in.Key = strings.TrimSpace(in.Key)
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, &model.FeatureFlag{
		Key:               in.Key,
		Description:       in.Description,
		Enabled:           in.Enabled,
		RolloutPercentage: in.RolloutPercentage,
		UpdatedAt:         s.now(),
	})
}

func (s *featureFlagService) Delete(ctx context.Context, actor *model.User, key string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return notFound(s.repo.Delete(ctx, key))
}

func (s *featureFlagService) IsEnabled(ctx context.Context, key, userID string) (bool, error) {
	f, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return Enabled(f, userID), nil
}

func (s *featureFlagService) Evaluate(ctx context.Context, userID string) (FlagSet, error) {
	flags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(FlagSet, len(flags))
	for i := range flags {
		out[flags[i].Key] = Enabled(&flags[i], userID)
	}
	return out, nil
}

// Enabled evaluates f for userID. Partial rollouts bucket users deterministically,
// so a user keeps the same answer until the percentage changes. Anonymous users
// only see flags rolled out to everyone.
func Enabled(f *model.FeatureFlag, userID string) bool {
	if f == nil || !f.Enabled || f.RolloutPercentage <= 0 {
		return false
	}
	if f.RolloutPercentage >= 100 {
		return true
	}
	if userID == "" {
		return false
	}
	return Bucket(f.Key, userID) < f.RolloutPercentage
}

// Bucket maps a user to 0..99 for the given flag.
func Bucket(key, userID string) int {
	return int(xxhash.Sum64String(key+":"+userID) % 100)
}

// FlagSet is the evaluated flag map handed to templates and handlers.
type FlagSet map[string]bool

// Flags consulted by handlers and templates.
const (
	FlagShowcaseVoting  = "showcase.voting"
	FlagDashboardCharts = "dashboard.charts"
)

// On reports whether the named flag is enabled. A nil set has every flag off.
func (fs FlagSet) On(key string) bool {
	return fs[key]
}

