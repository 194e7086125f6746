package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 13, 45, 0, 0, loc)
	end := time.Date(2026, 3, 16, 0, 0, 0, 0, loc)

	tests := []struct {
		preset     string
		wantPreset string
		wantStart  time.Time
		wantDays   int
	}{
		{Today, Today, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), 1},
		{Last7Days, Last7Days, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), 7},
		{Last30Days, Last30Days, time.Date(2026, 2, 14, 0, 0, 0, 0, loc), 30},
		{Last90Days, Last90Days, time.Date(2025, 12, 16, 0, 0, 0, 0, loc), 90},
		{MonthToDate, MonthToDate, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), 15},
		{YearToDate, YearToDate, time.Date(2026, 1, 1, 0, 0, 0, 0, loc), 74},
		{"bogus", Last30Days, time.Date(2026, 2, 14, 0, 0, 0, 0, loc), 30},
		{"", Last30Days, time.Date(2026, 2, 14, 0, 0, 0, 0, loc), 30},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			r := Parse(tt.preset, now, loc)
			assert.Equal(t, tt.wantPreset, r.Preset)
			assert.True(t, tt.wantStart.Equal(r.Start), "start %s", r.Start)
			assert.True(t, end.Equal(r.End), "end %s", r.End)
			assert.Equal(t, tt.wantDays, r.Days())
		})
	}
}

func TestParseUsesLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in Tokyo.
	now := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)
	r := Parse(Today, now, loc)

	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, loc), r.Start)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, loc), r.End)
}

func TestParseAcrossDSTKeepsWholeDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST starts on 2026-03-08 in New York.
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, loc)
	r := Parse(Last7Days, now, loc)

	assert.Equal(t, 7, r.Days())
	r.EachDay(func(day time.Time) {
		assert.Equal(t, 0, day.Hour())
	})
}

func TestPrevious(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	r := Parse(Last7Days, now, time.UTC)
	prev := r.Previous()

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), prev.Start)
	assert.Equal(t, r.Start, prev.End)
	assert.Equal(t, r.Days(), prev.Days())
}

func TestContains(t *testing.T) {
	r := Parse(Today, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), time.UTC)

	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.End.Add(-time.Nanosecond)))
	assert.False(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.Start.Add(-time.Nanosecond)))
}

func TestEachDay(t *testing.T) {
	r := Parse(Last7Days, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), time.UTC)

	var days []string
	r.EachDay(func(d time.Time) { days = append(days, d.Format(time.DateOnly)) })

	assert.Equal(t, []string{
		"2026-03-09", "2026-03-10", "2026-03-11", "2026-03-12", "2026-03-13", "2026-03-14", "2026-03-15",
	}, days)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("ytd"))
	assert.False(t, Valid("1y"))
}
