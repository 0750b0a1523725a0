package domain

import "time"

// CoverageReport aggregates what the coverage PDF shows.
type CoverageReport struct {
	ID          string
	Title       string
	GeneratedAt time.Time
	Location    *time.Location

	Stats         CoverageStats
	LastUpdate    time.Time
	PointCount    int
	MeanIntensity float64

	// Hotspots are the most intense displayed points, hottest first.
	Hotspots []HeatPoint
	// History holds recent polls, newest first.
	History []SnapshotSummary
}
