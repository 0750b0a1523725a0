package storage

import (
	"encoding/json"
	"fmt"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
)

// toModel converts a domain snapshot to its database model.
func toModel(s domain.Snapshot) (SnapshotModel, error) {
	rows, err := json.Marshal(domain.Tuples(s.Points))
	if err != nil {
		return SnapshotModel{}, fmt.Errorf("encode snapshot points: %w", err)
	}
	return SnapshotModel{
		ID:               s.ID,
		TakenAt:          s.TakenAt,
		PointCount:       len(s.Points),
		UniqueLocations:  s.Stats.UniqueLocationsCovered,
		TotalVisits:      s.Stats.TotalVisits,
		AvgStayDuration:  s.Stats.AverageStayDuration,
		Efficiency:       s.Stats.CoverageEfficiency,
		ProductiveVisits: s.Stats.ProductiveVisits,
		Points:           string(rows),
	}, nil
}

// toDomain converts a database model back to a snapshot.
func toDomain(m SnapshotModel) (*domain.Snapshot, error) {
	var points []domain.HeatPoint
	if m.Points != "" {
		if err := json.Unmarshal([]byte(m.Points), &points); err != nil {
			return nil, fmt.Errorf("decode snapshot %s points: %w", m.ID, err)
		}
	}
	return &domain.Snapshot{
		ID:      m.ID,
		TakenAt: m.TakenAt,
		Points:  points,
		Stats:   statsOf(m),
	}, nil
}

func toSummary(m SnapshotModel) domain.SnapshotSummary {
	return domain.SnapshotSummary{
		ID:         m.ID,
		TakenAt:    m.TakenAt,
		PointCount: m.PointCount,
		Stats:      statsOf(m),
	}
}

func statsOf(m SnapshotModel) domain.CoverageStats {
	return domain.CoverageStats{
		UniqueLocationsCovered: m.UniqueLocations,
		TotalVisits:            m.TotalVisits,
		AverageStayDuration:    m.AvgStayDuration,
		CoverageEfficiency:     m.Efficiency,
		ProductiveVisits:       m.ProductiveVisits,
	}
}
