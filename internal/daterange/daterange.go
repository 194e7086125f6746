// Package daterange resolves dashboard period presets into half-open local-time ranges.
package daterange

import "time"

// Presets accepted by Parse.
const (
	Today       = "today"
	Last7Days   = "7d"
	Last30Days  = "30d"
	Last90Days  = "90d"
	MonthToDate = "mtd"
	YearToDate  = "ytd"

	Default = Last30Days
)

// Presets lists the presets in display order.
var Presets = []string{Today, Last7Days, Last30Days, Last90Days, MonthToDate, YearToDate}

// Range is the half-open period [Start, End). Both bounds sit on local midnight.
type Range struct {
	Preset string
	Start  time.Time
	End    time.Time
}

// Parse resolves preset relative to now in loc. Unknown presets fall back to Default.
// Every preset ends at the midnight after now, so today is always included.
func Parse(preset string, now time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := midnight.AddDate(0, 0, 1)

	var start time.Time
	switch preset {
	case Today:
		start = midnight
	case Last7Days:
		start = midnight.AddDate(0, 0, -6)
	case Last90Days:
		start = midnight.AddDate(0, 0, -89)
	case MonthToDate:
		start = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	case YearToDate:
		start = time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
	case Last30Days:
		start = midnight.AddDate(0, 0, -29)
	default:
		preset = Default
		start = midnight.AddDate(0, 0, -29)
	}
	return Range{Preset: preset, Start: start, End: end}
}

// Days returns the number of calendar days in r.
func (r Range) Days() int {
	n := 0
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Previous returns the period of the same number of days that ends at r.Start.
func (r Range) Previous() Range {
	return Range{
		Preset: r.Preset,
		Start:  r.Start.AddDate(0, 0, -r.Days()),
		End:    r.Start,
	}
}

// Contains reports whether t falls inside [Start, End).
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// EachDay calls fn with the local midnight of every day in r, in order.
func (r Range) EachDay(fn func(day time.Time)) {
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Valid reports whether preset is a known preset.
func Valid(preset string) bool {
	for _, p := range Presets {
		if p == preset {
			return true
		}
	}
	return false
}
