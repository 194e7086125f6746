package service

import (
	"context"
	"fmt"
	"time"

	"nara/internal/daterange"
	"nara/internal/model"
	"nara/internal/repository"
)

// DashboardOverview is everything the dashboard page shows for one period.
type DashboardOverview struct {
	Range    daterange.Range    `json:"-"`
	Current  model.Stats        `json:"current"`
	Previous model.Stats        `json:"previous"`
	Daily    []model.DailyCount `json:"daily"`
}

// DashboardService computes per-user dashboard statistics.
type DashboardService interface {
	Overview(ctx context.Context, user *model.User, preset string) (*DashboardOverview, error)
}

type dashboardService struct {
	repo repository.StatsRepository
	loc  *time.Location
	now  func() time.Time
}

// NewDashboardService constructs a new DashboardService. Days are cut at midnight in loc.
func NewDashboardService(repo repository.StatsRepository, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{repo: repo, loc: loc, now: time.Now}
}

func (s *dashboardService) Overview(ctx context.Context, user *model.User, preset string) (*DashboardOverview, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	r := daterange.Parse(preset, s.now(), s.loc)
	prev := r.Previous()

	cur, err := s.repo.Overview(ctx, user.ID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("current stats: %w", err)
	}
	before, err := s.repo.Overview(ctx, user.ID, prev.Start, prev.End)
	if err != nil {
		return nil, fmt.Errorf("previous stats: %w", err)
	}
	daily, err := s.repo.DailyShowcases(ctx, user.ID, r.Start, r.End, s.loc.String())
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}

	return &DashboardOverview{
		Range:    r,
		Current:  *cur,
		Previous: *before,
		Daily:    fillDays(r, daily),
	}, nil
}

// fillDays returns one entry per day of r, with zero counts for missing days.
func fillDays(r daterange.Range, counts []model.DailyCount) []model.DailyCount {
	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[c.Day.Format(time.DateOnly)] += c.Count
	}
	out := make([]model.DailyCount, 0, r.Days())
	r.EachDay(func(day time.Time) {
		out = append(out, model.DailyCount{Day: day, Count: byDay[day.Format(time.DateOnly)]})
	})
	return out
}
