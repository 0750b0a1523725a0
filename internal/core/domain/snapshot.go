package domain

import "time"

// Snapshot is one successful poll, kept for history and warm starts.
type Snapshot struct {
	ID      string        `json:"id"`
	TakenAt time.Time     `json:"taken_at"`
	Points  []HeatPoint   `json:"points,omitempty"`
	Stats   CoverageStats `json:"stats"`
}

// SnapshotSummary is the history row exposed over the API.
type SnapshotSummary struct {
	ID         string        `json:"id"`
	TakenAt    time.Time     `json:"taken_at"`
	PointCount int           `json:"point_count"`
	Stats      CoverageStats `json:"stats"`
}

// Summary drops the point payload.
func (s Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:         s.ID,
		TakenAt:    s.TakenAt,
		PointCount: len(s.Points),
		Stats:      s.Stats,
	}
}
