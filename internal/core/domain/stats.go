package domain

import (
	"time"
)

// CoverageStats is the campaign coverage summary returned by the API.
// Absent fields decode to zero, which is also what the dashboard displays.
type CoverageStats struct {
	UniqueLocationsCovered int64   `json:"unique_locations_covered"`
	TotalVisits            int64   `json:"total_visits"`
	AverageStayDuration    float64 `json:"average_stay_duration"` // seconds
	CoverageEfficiency     float64 `json:"coverage_efficiency"`   // percent
	ProductiveVisits       int64   `json:"productive_visits"`
}

// ViewState is derived presentation state.
type ViewState struct {
	IsLoading  bool      `json:"is_loading"`
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if nothing was applied within the given TTL.
func (v ViewState) IsStale(ttl time.Duration) bool {
	return time.Since(v.LastUpdate) > ttl
}

// DashboardState is a consistent copy of everything the dashboard renders.
type DashboardState struct {
	Points []HeatPoint   `json:"points"`
	Stats  CoverageStats `json:"stats"`
	View   ViewState     `json:"view"`

	// Version increases with every applied change; listeners can drop
	// anything older than what they already hold.
	Version uint64 `json:"version"`

	// PollFailures counts consecutive failed refreshes. It is never rendered.
	PollFailures int  `json:"-"`
	Polled       bool `json:"-"`
}
