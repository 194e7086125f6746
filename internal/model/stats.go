package model

import "time"

// Stats are the dashboard counters for one user over a period.
type Stats struct {
	ShowcasesCreated   int `json:"showcases_created"`
	ShowcasesPublished int `json:"showcases_published"`
	VotesReceived      int `json:"votes_received"`
	TotalShowcases     int `json:"total_showcases"`
	NewUsers           int `json:"new_users"`
}

// DailyCount is the number of events on one calendar day.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}
